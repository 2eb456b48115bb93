package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/Donekulda/openproject-mcp-server/internal/config"
	"github.com/Donekulda/openproject-mcp-server/internal/repo"
	"github.com/Donekulda/openproject-mcp-server/internal/report"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type generator interface {
	Generate(ctx context.Context, p report.Params) string
	ExportData(ctx context.Context, projectID int, from, to string) string
}

type runStore interface {
	GetLastRun(ctx context.Context) (*repo.LastRun, error)
}

type Handlers struct {
	cfg  config.Config
	log  zerolog.Logger
	gen  generator
	runs runStore
}

func NewHandlers(cfg config.Config, log zerolog.Logger, gen generator, runs runStore) *Handlers {
	return &Handlers{cfg: cfg, log: log, gen: gen, runs: runs}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type reportRequest struct {
	ProjectID  int    `json:"project_id" binding:"required,gt=0"`
	FromDate   string `json:"from_date" binding:"required"`
	ToDate     string `json:"to_date" binding:"required"`
	SprintGoal string `json:"sprint_goal"`
	TeamName   string `json:"team_name"`
	Format     string `json:"format"`
}

func (h *Handlers) GenerateReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out := h.gen.Generate(c.Request.Context(), report.Params{
		ProjectID:  req.ProjectID,
		FromDate:   req.FromDate,
		ToDate:     req.ToDate,
		SprintGoal: req.SprintGoal,
		TeamName:   req.TeamName,
		Format:     req.Format,
	})
	if strings.HasPrefix(out, "❌") {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": out})
		return
	}
	if strings.EqualFold(req.Format, "json") {
		c.Data(http.StatusOK, "application/json", []byte(out))
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(out))
}

func (h *Handlers) ExportData(c *gin.Context) {
	var req struct {
		ProjectID int    `json:"project_id" binding:"required,gt=0"`
		FromDate  string `json:"from_date" binding:"required"`
		ToDate    string `json:"to_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out := h.gen.ExportData(c.Request.Context(), req.ProjectID, req.FromDate, req.ToDate)
	if strings.HasPrefix(out, "❌") {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": out})
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(out))
}

func (h *Handlers) LastRun(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run auditing disabled"})
		return
	}
	lr, err := h.runs.GetLastRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lr)
}
