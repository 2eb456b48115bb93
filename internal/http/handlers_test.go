package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Donekulda/openproject-mcp-server/internal/config"
	"github.com/Donekulda/openproject-mcp-server/internal/repo"
	"github.com/Donekulda/openproject-mcp-server/internal/report"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	lastParams report.Params
	out        string
}

func (s *stubGenerator) Generate(ctx context.Context, p report.Params) string {
	s.lastParams = p
	return s.out
}

func (s *stubGenerator) ExportData(ctx context.Context, projectID int, from, to string) string {
	return s.out
}

func newTestRouter(gen *stubGenerator) http.Handler {
	return NewRouter(config.Config{AppEnv: "test"}, zerolog.Nop(), gen, nil)
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	newTestRouter(&stubGenerator{}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
}

func TestGenerateReport_PassesParamsAndReturnsMarkdown(t *testing.T) {
	gen := &stubGenerator{out: "# WEEKLY REPORT - AGILE SCRUM\n"}
	w := httptest.NewRecorder()
	body := `{"project_id": 5, "from_date": "2025-12-02", "to_date": "2025-12-08", "team_name": "Core"}`
	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(gen).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "WEEKLY REPORT")
	assert.Equal(t, 5, gen.lastParams.ProjectID)
	assert.Equal(t, "Core", gen.lastParams.TeamName)
}

func TestGenerateReport_RejectsMissingFields(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader(`{"project_id": 5}`))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(&stubGenerator{}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateReport_ErrorMarkedPayloadBecomes422(t *testing.T) {
	gen := &stubGenerator{out: "❌ failed to generate weekly report: boom"}
	w := httptest.NewRecorder()
	body := `{"project_id": 5, "from_date": "2025-12-02", "to_date": "2025-12-08"}`
	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(gen).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "boom")
}

func TestLastRun_DisabledWithoutStore(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/last-run", nil)
	newTestRouter(&stubGenerator{}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLastRun_DisabledWithTypedNilRepository(t *testing.T) {
	var repository *repo.Repository
	router := NewRouter(config.Config{AppEnv: "test"}, zerolog.Nop(), &stubGenerator{}, repository)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/last-run", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
