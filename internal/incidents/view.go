package incidents

import (
	"sort"

	"github.com/bissquit/safety-dashboard/internal/domain"
)

// DeriveView filters all by severity and sorts the result by report date.
// The input slice is never modified. Incidents with equal timestamps keep
// their relative input order.
func DeriveView(all []domain.Incident, filter domain.SeverityFilter, order domain.SortOrder) []domain.Incident {
	view := make([]domain.Incident, 0, len(all))
	for _, inc := range all {
		if filter.Matches(inc.Severity) {
			view = append(view, inc)
		}
	}

	oldestFirst := order == domain.SortOldest
	sort.SliceStable(view, func(i, j int) bool {
		t1 := view[i].ReportedAt
		t2 := view[j].ReportedAt
		if oldestFirst {
			return t1.Before(t2)
		}
		return t1.After(t2)
	})

	return view
}

// Find returns the incident with the given id.
func Find(all []domain.Incident, id string) (domain.Incident, error) {
	for _, inc := range all {
		if inc.ID == id {
			return inc, nil
		}
	}
	return domain.Incident{}, ErrIncidentNotFound
}
