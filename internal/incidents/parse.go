package incidents

import (
	"fmt"
	"strings"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanonicalCase turns user input such as "high" or " MEDIUM " into "High" / "Medium".
// A new Caser is built per call because cases.Caser is not safe for concurrent use.
func CanonicalCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s)))
}

// ParseSeverity converts free-form input into a Severity.
func ParseSeverity(s string) (domain.Severity, error) {
	sev := domain.Severity(CanonicalCase(s))
	if !sev.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
	}
	return sev, nil
}

// ParseFilter converts free-form input into a SeverityFilter. Empty input means FilterAll.
func ParseFilter(s string) (domain.SeverityFilter, error) {
	if strings.TrimSpace(s) == "" {
		return domain.FilterAll, nil
	}
	f := domain.SeverityFilter(CanonicalCase(s))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
	return f, nil
}

// ParseSortOrder converts free-form input into a SortOrder. Empty input means SortNewest.
func ParseSortOrder(s string) (domain.SortOrder, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return domain.SortNewest, nil
	}
	o := domain.SortOrder(s)
	if !o.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, s)
	}
	return o, nil
}
