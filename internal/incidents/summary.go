package incidents

import (
	"time"

	"github.com/bissquit/safety-dashboard/internal/domain"
)

// Summary holds statistics computed over the whole canonical collection.
type Summary struct {
	Total          int                     `json:"total"`
	High           int                     `json:"high"`
	BySeverity     map[domain.Severity]int `json:"by_severity"`
	LastReportedAt *time.Time              `json:"last_reported_at"`
}

// Summarize computes statistics for all incidents. LastReportedAt is nil for an empty collection.
func Summarize(all []domain.Incident) Summary {
	s := Summary{
		Total:      len(all),
		BySeverity: make(map[domain.Severity]int, len(domain.Severities)),
	}
	for _, sev := range domain.Severities {
		s.BySeverity[sev] = 0
	}

	for _, inc := range all {
		s.BySeverity[inc.Severity]++
		if s.LastReportedAt == nil || inc.ReportedAt.After(*s.LastReportedAt) {
			t := inc.ReportedAt
			s.LastReportedAt = &t
		}
	}
	s.High = s.BySeverity[domain.SeverityHigh]

	return s
}
