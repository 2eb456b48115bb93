package main

import (
	"context"

	"github.com/Donekulda/openproject-mcp-server/internal/adapters/openproject"
	"github.com/Donekulda/openproject-mcp-server/internal/config"
	"github.com/Donekulda/openproject-mcp-server/internal/logger"
	"github.com/Donekulda/openproject-mcp-server/internal/repo"
	"github.com/Donekulda/openproject-mcp-server/internal/report"
	"github.com/rs/zerolog"
)

// app holds the wired dependency graph shared by all subcommands.
type app struct {
	cfg        config.Config
	log        zerolog.Logger
	client     *openproject.Client
	repository *repo.Repository
	gen        *report.Generator

	db *repo.DB
}

// newApp wires config, logging, the API client, the optional run-audit
// store and the generator. DB_DSN left empty disables auditing.
func newApp(ctx context.Context) *app {
	cfg := config.Load()
	log := logger.New(cfg)

	client := openproject.NewClient(cfg, log)
	rules := report.LoadRules(cfg.RulesFile, log)

	a := &app{cfg: cfg, log: log, client: client}

	var recorder report.RunRecorder
	if cfg.DBDSN != "" {
		a.db = repo.MustOpen(ctx, cfg, log)
		a.repository = repo.NewRepository(a.db, log)
		if err := a.repository.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("run audit schema setup failed")
		}
		recorder = a.repository
	}

	a.gen = report.NewGenerator(client, rules, recorder, cfg.PageSize, cfg.RelationProbeLimit, log)
	return a
}

func (a *app) close() {
	if a.db != nil { a.db.Close() }
}
