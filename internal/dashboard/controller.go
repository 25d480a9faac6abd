// Package dashboard owns the incident collection and view criteria and
// exposes them to the terminal UI and the read-only HTTP API.
package dashboard

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/incidents"
)

// CloseReason says why the form was closed.
type CloseReason string

// Close reasons.
const (
	CloseSubmitted CloseReason = "submitted"
	CloseCancel    CloseReason = "cancel"
	CloseEscape    CloseReason = "escape"
	CloseBackdrop  CloseReason = "backdrop"
	CloseTeardown  CloseReason = "teardown"
)

// Config holds controller settings.
type Config struct {
	DefaultSeverity domain.Severity
	DefaultSort     domain.SortOrder
	Clock           incidents.Clock
	NewID           incidents.IDGenerator
}

// DefaultConfig returns default controller configuration.
func DefaultConfig() Config {
	return Config{
		DefaultSeverity: domain.SeverityMedium,
		DefaultSort:     domain.SortNewest,
		Clock:           incidents.SystemClock,
		NewID:           incidents.NewUUIDGenerator(),
	}
}

// Submission is a validated incident waiting for the form's completion delay.
type Submission struct {
	Session  uint64
	Incident domain.Incident
}

// Controller is the single owner of the canonical incident collection, the
// severity filter, the sort order and the form. It is not safe for concurrent
// use: all mutation happens on the UI event loop. Other goroutines read the
// published Snapshot.
type Controller struct {
	config    Config
	validator *incidents.Validator

	items  []domain.Incident
	ids    map[string]struct{}
	filter domain.SeverityFilter
	order  domain.SortOrder

	form          *Form
	sessions      uint64
	scroll        ScrollLock
	releaseScroll func()

	version  uint64
	snapshot atomic.Pointer[Snapshot]
}

// NewController creates a controller holding a copy of seed.
func NewController(seed []domain.Incident, config Config) *Controller {
	defaults := DefaultConfig()
	if !config.DefaultSeverity.IsValid() {
		config.DefaultSeverity = defaults.DefaultSeverity
	}
	if !config.DefaultSort.IsValid() {
		config.DefaultSort = defaults.DefaultSort
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}
	if config.NewID == nil {
		config.NewID = defaults.NewID
	}

	c := &Controller{
		config:    config,
		validator: incidents.NewValidator(),
		items:     make([]domain.Incident, 0, len(seed)),
		ids:       make(map[string]struct{}, len(seed)),
		filter:    domain.FilterAll,
		order:     config.DefaultSort,
	}
	for _, inc := range seed {
		c.items = append(c.items, inc)
		c.ids[inc.ID] = struct{}{}
	}

	c.publish()
	return c
}

// Incidents returns a copy of the canonical collection in insertion order.
func (c *Controller) Incidents() []domain.Incident {
	return append([]domain.Incident(nil), c.items...)
}

// Filter returns the current severity filter.
func (c *Controller) Filter() domain.SeverityFilter { return c.filter }

// SortOrder returns the current sort order.
func (c *Controller) SortOrder() domain.SortOrder { return c.order }

// View returns the filtered and sorted projection of the collection.
func (c *Controller) View() []domain.Incident {
	return incidents.DeriveView(c.items, c.filter, c.order)
}

// Summary returns statistics over the whole collection, ignoring the filter.
func (c *Controller) Summary() incidents.Summary {
	return incidents.Summarize(c.items)
}

// Snapshot returns the latest published state. Safe for concurrent use.
func (c *Controller) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// SetSeverityFilter replaces the severity filter.
func (c *Controller) SetSeverityFilter(filter domain.SeverityFilter) error {
	if !filter.IsValid() {
		return fmt.Errorf("%w: %q", incidents.ErrInvalidFilter, filter)
	}
	if filter == c.filter {
		return nil
	}

	c.filter = filter
	slog.Debug("severity filter changed", "filter", filter)
	c.publish()
	return nil
}

// ClearFilter resets the severity filter to FilterAll.
func (c *Controller) ClearFilter() {
	_ = c.SetSeverityFilter(domain.FilterAll)
}

// SetSortOrder replaces the sort order.
func (c *Controller) SetSortOrder(order domain.SortOrder) error {
	if !order.IsValid() {
		return fmt.Errorf("%w: %q", incidents.ErrInvalidSortOrder, order)
	}
	if order == c.order {
		return nil
	}

	c.order = order
	slog.Debug("sort order changed", "sort", order)
	c.publish()
	return nil
}

// FormOpen reports whether the new-incident form is visible.
func (c *Controller) FormOpen() bool { return c.form != nil }

// Form returns the open form, or nil.
func (c *Controller) Form() *Form { return c.form }

// ScrollLocked reports whether the background list must not scroll.
func (c *Controller) ScrollLocked() bool { return c.scroll.Locked() }

// OpenForm shows the form with a fresh draft. If the form is already open it
// is returned unchanged.
func (c *Controller) OpenForm() *Form {
	if c.form != nil {
		return c.form
	}

	c.sessions++
	c.form = newForm(c.sessions, c.config.Clock.Now(), c.config.DefaultSeverity)
	c.releaseScroll = c.scroll.Acquire()

	slog.Debug("incident form opened", "session", c.sessions)
	return c.form
}

// CloseForm hides the form and discards its draft. While a submission is
// pending every reason except CloseSubmitted and CloseTeardown is ignored.
// It returns true if the form was closed.
func (c *Controller) CloseForm(reason CloseReason) bool {
	if c.form == nil {
		return false
	}
	if c.form.submitting && reason != CloseSubmitted && reason != CloseTeardown {
		slog.Debug("form close ignored while submitting", "reason", reason)
		return false
	}

	session := c.form.session
	c.form = nil
	if c.releaseScroll != nil {
		c.releaseScroll()
		c.releaseScroll = nil
	}

	recordFormClosed(reason)
	slog.Debug("incident form closed", "session", session, "reason", reason)
	return true
}

// SetField edits a field of the open form.
func (c *Controller) SetField(field, value string) error {
	if c.form == nil {
		return ErrFormClosed
	}
	if c.form.submitting {
		return ErrFormSubmitting
	}
	if !c.form.SetField(field, value) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// Submit validates the open form. On failure the field errors are stored on
// the form and returned. On success the form enters the submitting state and
// the built incident is returned; it joins the collection only when Complete
// is called with the same Submission.
func (c *Controller) Submit() (Submission, error) {
	if c.form == nil {
		return Submission{}, ErrFormClosed
	}
	if c.form.submitting {
		return Submission{}, ErrFormSubmitting
	}

	c.form.submitting = true
	draft := c.form.draft

	errs := c.validator.Validate(draft)
	if len(errs) > 0 {
		c.form.errors = errs
		c.form.submitting = false
		for field := range errs {
			recordValidationFailure(field)
		}
		slog.Debug("incident form rejected", "session", c.form.session, "fields", len(errs))
		return Submission{}, errs
	}

	return Submission{
		Session: c.form.session,
		Incident: domain.Incident{
			ID:          c.nextID(),
			Title:       draft.Title,
			Description: draft.Description,
			Severity:    normalizeSeverity(string(draft.Severity)),
			ReportedAt:  c.config.Clock.Now(),
		},
	}, nil
}

// Complete adds a pending submission to the collection and closes the form.
// It is a no-op returning false when the form that produced the submission
// has since been closed or replaced.
func (c *Controller) Complete(s Submission) bool {
	if c.form == nil || c.form.session != s.Session || !c.form.submitting {
		recordStaleCompletion()
		slog.Debug("stale submission dropped", "session", s.Session, "incident_id", s.Incident.ID)
		return false
	}

	if err := c.AddIncident(s.Incident); err != nil {
		slog.Error("failed to add incident", "incident_id", s.Incident.ID, "error", err)
		c.form.submitting = false
		return false
	}
	return true
}

// AddIncident prepends the record to the collection and closes the form.
func (c *Controller) AddIncident(rec domain.Incident) error {
	if _, exists := c.ids[rec.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}

	c.items = append([]domain.Incident{rec}, c.items...)
	c.ids[rec.ID] = struct{}{}
	c.CloseForm(CloseSubmitted)

	recordIncidentReported(rec.Severity)
	slog.Info("incident reported",
		"incident_id", rec.ID,
		"severity", rec.Severity,
		"title", rec.Title,
	)

	c.publish()
	return nil
}

// Shutdown closes the form unconditionally and releases the scroll lock.
func (c *Controller) Shutdown() {
	c.CloseForm(CloseTeardown)
}

func (c *Controller) nextID() string {
	var id string
	for attempt := 0; attempt < 8; attempt++ {
		id = c.config.NewID()
		if _, exists := c.ids[id]; !exists {
			return id
		}
	}
	// The generator keeps colliding; derive a unique id from the last one.
	for n := len(c.items) + 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, exists := c.ids[candidate]; !exists {
			return candidate
		}
	}
}

func (c *Controller) publish() {
	c.version++
	summary := incidents.Summarize(c.items)
	c.snapshot.Store(&Snapshot{
		Version:   c.version,
		UpdatedAt: c.config.Clock.Now(),
		Incidents: append([]domain.Incident(nil), c.items...),
		Filter:    c.filter,
		Sort:      c.order,
		Summary:   summary,
	})
	recordCollection(summary.BySeverity)
}
