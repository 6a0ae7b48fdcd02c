package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ventia-app/ventia/assistant/application"
	assistantDomain "github.com/ventia-app/ventia/assistant/domain"
	pkgError "github.com/ventia-app/ventia/pkg/error"
	"github.com/ventia-app/ventia/reports/usecase"
	"github.com/ventia-app/ventia/ui/rest/middleware"
)

type stubReportService struct {
	result usecase.ReportResult
	err    error
}

func (s *stubReportService) Fetch(_ assistantDomain.Intent) (usecase.ReportResult, error) {
	return s.result, s.err
}

func newTestApp(reports usecase.IReportService) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Recovery())

	orchestrator := application.NewOrchestrator(
		application.OrchestratorConfig{Greeting: "hola"},
		nil,
		application.NewRuleExtractor(application.DefaultExtractorConfig()),
		func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) },
	)
	InitRestAssistant(app.Group("/api"), orchestrator, reports)
	return app
}

func doQuery(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/assistant/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestQueryResolvesIntent(t *testing.T) {
	app := newTestApp(nil)

	status, out := doQuery(t, app, `{"text": "cuanto vendimos en total"}`)
	assert.Equal(t, 200, status)
	assert.Equal(t, "SUCCESS", out["code"])

	results, ok := out["results"].(map[string]any)
	require.True(t, ok)
	intent, ok := results["intent"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "resumen", intent["recurso"])
}

func TestQueryEmptyTextRejected(t *testing.T) {
	app := newTestApp(nil)

	status, out := doQuery(t, app, `{"text": ""}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "VALIDATION_ERROR", out["code"])
}

func TestQueryBadBodyRejected(t *testing.T) {
	app := newTestApp(nil)

	status, out := doQuery(t, app, `{text:`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "VALIDATION_ERROR", out["code"])
}

func TestQueryReturnsReport(t *testing.T) {
	app := newTestApp(&stubReportService{result: usecase.ReportResult{
		Recurso: "resumen",
		Message: "Llevas 10 ventas.",
	}})

	status, out := doQuery(t, app, `{"text": "cuanto vendimos en total"}`)
	assert.Equal(t, 200, status)

	results, ok := out["results"].(map[string]any)
	require.True(t, ok)
	report, ok := results["report"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "resumen", report["recurso"])
	assert.Equal(t, "Llevas 10 ventas.", results["message"])
}

func TestQueryUnknownRecursoMapsTo404(t *testing.T) {
	app := newTestApp(&stubReportService{err: pkgError.NotFoundError("recurso desconocido: inventado")})

	status, out := doQuery(t, app, `{"text": "cuanto vendimos en total"}`)
	assert.Equal(t, 404, status)
	assert.Equal(t, "NOT_FOUND_ERROR", out["code"])
}

func TestQueryRepositoryFailureMapsTo500(t *testing.T) {
	app := newTestApp(&stubReportService{err: errors.New("database is locked")})

	status, out := doQuery(t, app, `{"text": "cuanto vendimos en total"}`)
	assert.Equal(t, 500, status)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", out["code"])
	assert.Equal(t, "database is locked", out["message"])
}

func TestHealth(t *testing.T) {
	app := newTestApp(nil)

	req := httptest.NewRequest("GET", "/api/assistant/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
