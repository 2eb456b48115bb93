package http

import (
	"github.com/Donekulda/openproject-mcp-server/internal/config"
	"github.com/Donekulda/openproject-mcp-server/internal/repo"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter builds the HTTP surface. A nil repository disables the run
// audit endpoint.
func NewRouter(cfg config.Config, log zerolog.Logger, gen generator, repository *repo.Repository) *gin.Engine {
	var runs runStore
	if repository != nil { runs = repository }
	if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Next()
		log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
	})

	h := NewHandlers(cfg, log, gen, runs)

	r.GET("/healthz", h.Healthz)
	r.POST("/report", h.GenerateReport)
	r.POST("/report/data", h.ExportData)
	r.GET("/admin/last-run", h.LastRun)

	return r
}
