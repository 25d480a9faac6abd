package dashboard

import (
	"net/http"
	"strings"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/incidents"
	"github.com/bissquit/safety-dashboard/internal/pkg/ctxlog"
	"github.com/bissquit/safety-dashboard/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler serves a read-only HTTP view of the dashboard.
type Handler struct {
	source    SnapshotSource
	validator *validator.Validate
}

// NewHandler creates a new dashboard handler.
func NewHandler(source SnapshotSource) *Handler {
	return &Handler{
		source:    source,
		validator: validator.New(),
	}
}

// RegisterRoutes registers the dashboard routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/incidents", h.ListIncidents)
	r.Get("/incidents/{id}", h.GetIncident)
	r.Get("/summary", h.GetSummary)
}

// ListIncidentsQuery holds the query parameters of GET /incidents.
// Empty values fall back to the criteria currently selected in the UI.
type ListIncidentsQuery struct {
	Severity string `validate:"omitempty,oneof=All Low Medium High"`
	Sort     string `validate:"omitempty,oneof=newest oldest"`
}

// ViewResponse is the body of GET /incidents.
type ViewResponse struct {
	Severity  domain.SeverityFilter `json:"severity"`
	Sort      domain.SortOrder      `json:"sort"`
	Count     int                   `json:"count"`
	Incidents []domain.Incident     `json:"incidents"`
}

var errorMappings = []httputil.ErrorMapping{
	{Error: incidents.ErrIncidentNotFound, Status: http.StatusNotFound},
}

// ListIncidents handles GET /incidents request.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	q := ListIncidentsQuery{
		Severity: incidents.CanonicalCase(r.URL.Query().Get("severity")),
		Sort:     strings.ToLower(strings.TrimSpace(r.URL.Query().Get("sort"))),
	}
	if err := h.validator.Struct(q); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	filter := snap.Filter
	if q.Severity != "" {
		filter = domain.SeverityFilter(q.Severity)
	}
	order := snap.Sort
	if q.Sort != "" {
		order = domain.SortOrder(q.Sort)
	}

	view := snap.View(filter, order)
	httputil.Success(w, http.StatusOK, ViewResponse{
		Severity:  filter,
		Sort:      order,
		Count:     len(view),
		Incidents: view,
	})
}

// GetIncident handles GET /incidents/{id} request.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	ctx := ctxlog.With(r.Context(), "incident_id", id)

	inc, err := incidents.Find(snap.Incidents, id)
	if err != nil {
		httputil.HandleError(ctx, w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, inc)
}

// GetSummary handles GET /summary request.
func (h *Handler) GetSummary(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	httputil.Success(w, http.StatusOK, snap.Summary)
}

func (h *Handler) snapshot(w http.ResponseWriter) (*Snapshot, bool) {
	snap := h.source.Snapshot()
	if snap == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "dashboard not ready")
		return nil, false
	}
	return snap, true
}
