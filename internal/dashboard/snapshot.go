package dashboard

import (
	"time"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/incidents"
)

// Snapshot is an immutable copy of the dashboard state, safe to read from any goroutine.
type Snapshot struct {
	Version   uint64
	UpdatedAt time.Time
	Incidents []domain.Incident
	Filter    domain.SeverityFilter
	Sort      domain.SortOrder
	Summary   incidents.Summary
}

// View projects the snapshot's incidents under the given criteria.
func (s *Snapshot) View(filter domain.SeverityFilter, order domain.SortOrder) []domain.Incident {
	return incidents.DeriveView(s.Incidents, filter, order)
}

// SnapshotSource provides the latest published snapshot.
type SnapshotSource interface {
	Snapshot() *Snapshot
}
