package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/Donekulda/openproject-mcp-server/internal/http"
	"github.com/Donekulda/openproject-mcp-server/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a := newApp(ctx)
		defer a.close()

		srv := mcp.NewServer(a.gen, a.client, version, a.log)
		a.log.Info().Msg("mcp server starting on stdio")
		return srv.Run(ctx)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a := newApp(ctx)
		defer a.close()

		router := httpapi.NewRouter(a.cfg, a.log, a.gen, a.repository)

		errCh := make(chan error, 1)
		go func() { errCh <- router.Run(a.cfg.HTTPAddr) }()
		a.log.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			a.log.Info().Msg("shutting down...")
		case err := <-errCh:
			if err != nil { a.log.Error().Err(err).Msg("http server error") }
		}
		time.Sleep(500 * time.Millisecond)
		return nil
	},
}
