package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openAPISpec = "../../api/openapi/openapi.yaml"

type envelope[T any] struct {
	Data  T `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(source SnapshotSource) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		NewHandler(source).RegisterRoutes(r)
	})
	return r
}

func serve(t *testing.T, h http.Handler, path string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return req, rec
}

func TestHandler_ListIncidents(t *testing.T) {
	c, _ := newTestController(seedIncidents())
	router := newTestRouter(c)
	validator := testutil.NewOpenAPIValidator(t, openAPISpec)

	tests := []struct {
		name     string
		path     string
		severity domain.SeverityFilter
		sort     domain.SortOrder
		ids      []string
	}{
		{"defaults follow the ui", "/api/v1/incidents", domain.FilterAll, domain.SortNewest, []string{"4", "2", "5", "1", "3"}},
		{"high only", "/api/v1/incidents?severity=High", "High", domain.SortNewest, []string{"2", "5"}},
		{"case insensitive", "/api/v1/incidents?severity=high&sort=OLDEST", "High", domain.SortOldest, []string{"5", "2"}},
		{"explicit all", "/api/v1/incidents?severity=all&sort=oldest", domain.FilterAll, domain.SortOldest, []string{"3", "1", "5", "2", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := serve(t, router, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)
			validator.ValidateRecorder(t, req, rec)

			var body envelope[ViewResponse]
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.severity, body.Data.Severity)
			assert.Equal(t, tt.sort, body.Data.Sort)
			assert.Equal(t, len(tt.ids), body.Data.Count)

			got := make([]string, 0, len(body.Data.Incidents))
			for _, inc := range body.Data.Incidents {
				got = append(got, inc.ID)
			}
			assert.Equal(t, tt.ids, got)
		})
	}
}

func TestHandler_ListIncidents_UsesCurrentCriteria(t *testing.T) {
	c, _ := newTestController(seedIncidents())
	require.NoError(t, c.SetSeverityFilter("Medium"))
	require.NoError(t, c.SetSortOrder(domain.SortOldest))

	_, rec := serve(t, newTestRouter(c), "/api/v1/incidents")
	require.Equal(t, http.StatusOK, rec.Code)

	var body envelope[ViewResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.SeverityFilter("Medium"), body.Data.Severity)
	require.Len(t, body.Data.Incidents, 2)
	assert.Equal(t, "1", body.Data.Incidents[0].ID)
}

func TestHandler_ListIncidents_InvalidQuery(t *testing.T) {
	c, _ := newTestController(seedIncidents())
	router := newTestRouter(c)
	validator := testutil.NewOpenAPIValidator(t, openAPISpec)

	for _, path := range []string{
		"/api/v1/incidents?severity=critical",
		"/api/v1/incidents?sort=random",
	} {
		req, rec := serve(t, router, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		validator.ValidateRecorder(t, req, rec)
	}
}

func TestHandler_GetIncident(t *testing.T) {
	c, _ := newTestController(seedIncidents())
	router := newTestRouter(c)
	validator := testutil.NewOpenAPIValidator(t, openAPISpec)

	req, rec := serve(t, router, "/api/v1/incidents/2")
	require.Equal(t, http.StatusOK, rec.Code)
	validator.ValidateRecorder(t, req, rec)

	var body envelope[domain.Incident]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "two", body.Data.Title)

	req, rec = serve(t, router, "/api/v1/incidents/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	validator.ValidateRecorder(t, req, rec)
}

func TestHandler_GetSummary(t *testing.T) {
	c, _ := newTestController(seedIncidents())
	router := newTestRouter(c)
	validator := testutil.NewOpenAPIValidator(t, openAPISpec)

	req, rec := serve(t, router, "/api/v1/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	validator.ValidateRecorder(t, req, rec)

	var body envelope[struct {
		Total          int     `json:"total"`
		High           int     `json:"high"`
		LastReportedAt *string `json:"last_reported_at"`
	}]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Data.Total)
	assert.Equal(t, 2, body.Data.High)
	assert.NotNil(t, body.Data.LastReportedAt)
}

func TestHandler_GetSummary_Empty(t *testing.T) {
	c, _ := newTestController(nil)
	router := newTestRouter(c)
	validator := testutil.NewOpenAPIValidator(t, openAPISpec)

	req, rec := serve(t, router, "/api/v1/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	validator.ValidateRecorder(t, req, rec)

	var body envelope[struct {
		Total          int     `json:"total"`
		LastReportedAt *string `json:"last_reported_at"`
	}]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Data.Total)
	assert.Nil(t, body.Data.LastReportedAt)
}

type nilSource struct{}

func (nilSource) Snapshot() *Snapshot { return nil }

func TestHandler_NotReady(t *testing.T) {
	_, rec := serve(t, newTestRouter(nilSource{}), "/api/v1/summary")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
