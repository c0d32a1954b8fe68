package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/yectos/projects-api/internal/auth"
	"github.com/yectos/projects-api/internal/cache"
	"github.com/yectos/projects-api/internal/config"
	"github.com/yectos/projects-api/internal/domain"
	"github.com/yectos/projects-api/internal/events"
	"github.com/yectos/projects-api/internal/export"
	"github.com/yectos/projects-api/internal/http/handler"
	"github.com/yectos/projects-api/internal/http/middleware"
	"github.com/yectos/projects-api/internal/http/router"
	"github.com/yectos/projects-api/internal/repository"
	"github.com/yectos/projects-api/internal/service"
	"github.com/yectos/projects-api/internal/testutil"
)

const testAPIKey = "test-api-key"

// tokenValidator accepts "<user>-token" bearer tokens
type tokenValidator struct{}

func (tokenValidator) ValidateToken(token string) (*auth.UserContext, error) {
	user, ok := strings.CutSuffix(token, "-token")
	if !ok || user == "" {
		return nil, errors.New("invalid token")
	}
	return &auth.UserContext{UserID: user, Email: user + "@example.com", Provider: "test"}, nil
}

type testServer struct {
	handler http.Handler
	t       *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	cfg := &config.Config{}
	cfg.App.Environment = "test"
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	cfg.Server.RequestTimeout = 5
	cfg.Auth.ApiKeyUserID = "system"

	projectRepo := repository.NewProjectRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	noCache := cache.NoopCache{}
	publisher := events.NoopPublisher{}

	projectService := service.NewProjectService(projectRepo, activityRepo, noCache, publisher, logger)
	dashboardService := service.NewDashboardService(projectRepo, snapshotRepo, noCache, time.Minute, logger)

	rt := router.NewRouter(
		cfg,
		logger,
		auth.NewMiddlewareWithValidator(tokenValidator{}, testAPIKey, cfg.Auth.ApiKeyUserID, logger),
		middleware.NewRateLimiter(&cfg.RateLimit, logger),
		handler.NewHealthHandler(db, noCache, publisher, logger),
		handler.NewAuthHandler(logger),
		handler.NewProjectHandler(projectService, logger),
		handler.NewDashboardHandler(dashboardService, logger),
	)
	return &testServer{handler: rt.Setup(), t: t}
}

func (s *testServer) do(method, path, user string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user+"-token")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func projectBody(name string, total, paid float64, stages ...domain.StageInput) map[string]interface{} {
	return map[string]interface{}{
		"name":       name,
		"client":     name + " Ltd",
		"totalCost":  total,
		"amountPaid": paid,
		"tags":       []string{"web"},
		"stages":     stages,
	}
}

func (s *testServer) create(user string, body map[string]interface{}) domain.ProjectDTO {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/projects", user, body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.ProjectDTO](s.t, rec)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = s.do(http.MethodGet, "/health/db", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]interface{}](t, rec)["status"])

	rec = s.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	ready := decode[struct {
		Status string                 `json:"status"`
		Checks map[string]interface{} `json:"checks"`
	}](t, rec)
	assert.Equal(t, "healthy", ready.Status)
	assert.Contains(t, ready.Checks, "database")
	assert.Contains(t, ready.Checks, "cache")
	assert.NotContains(t, ready.Checks, "events")

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/auth/me", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[domain.UserDTO](t, rec)
	assert.Equal(t, "alice", me.ID)
	assert.Equal(t, "alice@example.com", me.Email)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("x-api-key", testAPIKey)
	apiRec := httptest.NewRecorder()
	s.handler.ServeHTTP(apiRec, req)
	require.Equal(t, http.StatusOK, apiRec.Code)
	me = decode[domain.UserDTO](t, apiRec)
	assert.Equal(t, "system", me.ID)
	assert.Equal(t, "api_key", me.Provider)
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestServer(t)

	created := s.create("alice", projectBody("Website", 1000, 200,
		domain.StageInput{Name: "Design", Completed: true},
		domain.StageInput{Name: "Build"},
	))
	assert.Equal(t, domain.ProjectStatusInProgress, created.Status)
	assert.Equal(t, 50, created.Progress)
	assert.InDelta(t, 800.0, created.PendingAmount, 0.001)
	assert.Equal(t, domain.ProjectPriorityMedium, created.Priority)
	require.Len(t, created.Stages, 2)

	path := "/api/v1/projects/" + created.ID.String()

	rec := s.do(http.MethodGet, path, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Website", decode[domain.ProjectDTO](t, rec).Name)

	update := projectBody("Website", 1000, 1000,
		domain.StageInput{ID: created.Stages[0].ID, Name: "Design", Completed: true},
		domain.StageInput{ID: created.Stages[1].ID, Name: "Build", Completed: true},
	)
	rec = s.do(http.MethodPut, path, "alice", update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.ProjectDTO](t, rec)
	assert.Equal(t, domain.ProjectStatusCompleted, updated.Status)
	assert.Equal(t, 100, updated.Progress)
	assert.Zero(t, updated.PendingAmount)

	rec = s.do(http.MethodGet, path+"/activities", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	activities := decode[[]domain.ActivityDTO](t, rec)
	types := make([]domain.ActivityType, 0, len(activities))
	for _, a := range activities {
		types = append(types, a.Type)
	}
	assert.Contains(t, types, domain.ActivityTypeCreated)
	assert.Contains(t, types, domain.ActivityTypePayment)
	assert.Contains(t, types, domain.ActivityTypeStageCompleted)
	assert.Contains(t, types, domain.ActivityTypeStatusChanged)

	rec = s.do(http.MethodDelete, path, "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, path, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectOwnership(t *testing.T) {
	s := newTestServer(t)
	created := s.create("alice", projectBody("Private", 100, 0))
	path := "/api/v1/projects/" + created.ID.String()

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, "bob", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, path, "bob", projectBody("Stolen", 100, 0)).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, "bob", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path+"/activities", "bob", nil).Code)

	rec := s.do(http.MethodGet, "/api/v1/projects", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[domain.PaginatedResponse](t, rec).Total)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, "alice", nil).Code)
}

func TestCreateProject_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		body      map[string]interface{}
		wantField string
	}{
		{"missing name", projectBody("", 100, 0), "name"},
		{"negative total", projectBody("X", -1, 0), "totalCost"},
		{"paid exceeds total", projectBody("X", 100, 150), "amountPaid"},
		{"bad priority", func() map[string]interface{} {
			b := projectBody("X", 100, 0)
			b["priority"] = "urgent"
			return b
		}(), "priority"},
		{"stage without name", projectBody("X", 100, 0, domain.StageInput{}), "stages[0].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/v1/projects", "alice", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			apiErr := decode[domain.APIError](t, rec)
			assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
			assert.Contains(t, apiErr.Errors, tt.wantField)
		})
	}

	rec := s.do(http.MethodPost, "/api/v1/projects", "alice", map[string]interface{}{"name": "X", "client": "Y", "status": "archived"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer alice-token")
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestGetProject_InvalidID(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/v1/projects/not-a-uuid", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ErrorTypeBadRequest, decode[domain.APIError](t, rec).Type)
}

func TestListProjects_FilterSortPaginate(t *testing.T) {
	s := newTestServer(t)

	s.create("alice", projectBody("Alpha", 300, 0))
	beta := projectBody("Beta", 100, 0, domain.StageInput{Name: "Only", Completed: true})
	beta["tags"] = []string{"mobile"}
	beta["priority"] = "high"
	s.create("alice", beta)
	s.create("alice", projectBody("Gamma", 200, 50, domain.StageInput{Name: "A", Completed: true}, domain.StageInput{Name: "B"}))

	list := func(query string) domain.PaginatedResponse {
		rec := s.do(http.MethodGet, "/api/v1/projects"+query, "alice", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[domain.PaginatedResponse](t, rec)
	}
	names := func(resp domain.PaginatedResponse) []string {
		items, ok := resp.Data.([]interface{})
		require.True(t, ok)
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.(map[string]interface{})["name"].(string))
		}
		return out
	}

	resp := list("?sortBy=totalCost&sortOrder=asc")
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, []string{"Beta", "Gamma", "Alpha"}, names(resp))

	assert.Equal(t, []string{"Beta"}, names(list("?status=completed")))
	assert.Equal(t, []string{"Beta"}, names(list("?tags=mobile")))
	assert.Equal(t, []string{"Beta"}, names(list("?priority=high")))
	assert.Equal(t, []string{"Gamma"}, names(list("?search=gam")))
	assert.ElementsMatch(t, []string{"Alpha", "Gamma"}, names(list("?status=not_started,in_progress")))

	resp = list("?sortBy=name&sortOrder=asc&page=2&pageSize=2")
	assert.Equal(t, []string{"Gamma"}, names(resp))
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 2, resp.TotalPages)

	for _, q := range []string{"?sortBy=color", "?sortOrder=sideways", "?status=archived", "?priority=urgent"} {
		rec := s.do(http.MethodGet, "/api/v1/projects"+q, "alice", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec := s.do(http.MethodGet, "/api/v1/projects/tags", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"web", "mobile"}, decode[[]string](t, rec))
}

func TestListProjects_PageFarPastEnd(t *testing.T) {
	s := newTestServer(t)
	s.create("alice", projectBody("Alpha", 300, 0))

	for _, q := range []string{
		"?page=92233720368547759&pageSize=200",
		"?page=9223372036854775807",
	} {
		rec := s.do(http.MethodGet, "/api/v1/projects"+q, "alice", nil)
		require.Equal(t, http.StatusOK, rec.Code, q)

		resp := decode[domain.PaginatedResponse](t, rec)
		assert.Empty(t, resp.Data, q)
		assert.Equal(t, int64(1), resp.Total, q)
		assert.Equal(t, 1, resp.TotalPages, q)
	}
}

func TestExportProjects(t *testing.T) {
	s := newTestServer(t)
	s.create("alice", projectBody("Website", 1000, 200, domain.StageInput{Name: "Design", Completed: true}))
	s.create("bob", projectBody("Other", 10, 0))

	rec := s.do(http.MethodGet, "/api/v1/projects/export", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".json")
	doc, err := export.Decode(rec.Body, export.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.UserID)
	require.Len(t, doc.Projects, 1)
	assert.Equal(t, "Website", doc.Projects[0].Name)

	rec = s.do(http.MethodGet, "/api/v1/projects/export?format=yaml", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Len(t, raw["projects"], 1)

	rec = s.do(http.MethodGet, "/api/v1/projects/export?format=xml", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.create("alice", projectBody("Done", 1000, 1000, domain.StageInput{Name: "A", Completed: true}))
	s.create("alice", projectBody("Open", 500, 100))
	s.create("bob", projectBody("Elsewhere", 9999, 0))

	rec := s.do(http.MethodGet, "/api/v1/dashboard/stats", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[domain.DashboardStats](t, rec)
	assert.Equal(t, 2, stats.TotalProjects)
	assert.Equal(t, 1, stats.CompletedProjects)
	assert.Equal(t, 1, stats.NotStartedProjects)
	assert.InDelta(t, 1500.0, stats.TotalRevenue, 0.001)
	assert.InDelta(t, 400.0, stats.PendingAmount, 0.001)
	assert.InDelta(t, 50.0, stats.CompletionRate, 0.001)

	rec = s.do(http.MethodGet, "/api/v1/dashboard/charts", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	charts := decode[domain.DashboardCharts](t, rec)
	assert.Len(t, charts.RecentProjects, 2)
	assert.Len(t, charts.StatusDistribution, 2)

	rec = s.do(http.MethodGet, "/api/v1/dashboard/history", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.DashboardSnapshotDTO](t, rec))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))
}
