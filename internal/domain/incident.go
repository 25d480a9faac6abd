package domain

import "time"

// Severity represents the severity level of an incident.
type Severity string

// Severity levels.
const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Severities lists every severity level from least to most severe.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

// IsValid checks if the severity is one of the known levels.
func (s Severity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// Rank orders severities: Low < Medium < High. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// Incident is a single reported AI safety issue.
type Incident struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	ReportedAt  time.Time `json:"reported_at"`
}

// Draft holds the user-editable fields of an incident that has not been submitted yet.
type Draft struct {
	Title       string
	Description string
	Severity    Severity
}

// SeverityFilter restricts the incident view to one severity. FilterAll keeps everything.
type SeverityFilter string

// FilterAll is the sentinel filter that matches every severity.
const FilterAll SeverityFilter = "All"

// SeverityFilters lists every filter value in display order.
var SeverityFilters = []SeverityFilter{
	FilterAll,
	SeverityFilter(SeverityLow),
	SeverityFilter(SeverityMedium),
	SeverityFilter(SeverityHigh),
}

// IsValid checks if the filter is FilterAll or a known severity.
func (f SeverityFilter) IsValid() bool {
	return f == FilterAll || Severity(f).IsValid()
}

// Matches reports whether an incident with the given severity passes the filter.
func (f SeverityFilter) Matches(s Severity) bool {
	return f == FilterAll || Severity(f) == s
}

// SortOrder controls the display order of incidents by report date.
type SortOrder string

// Sort orders.
const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// IsValid checks if the sort order is known.
func (o SortOrder) IsValid() bool {
	return o == SortNewest || o == SortOldest
}

// Toggle returns the opposite sort order.
func (o SortOrder) Toggle() SortOrder {
	if o == SortOldest {
		return SortNewest
	}
	return SortOldest
}
