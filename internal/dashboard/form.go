package dashboard

import (
	"strings"
	"time"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/incidents"
)

// Form holds the state of one opening of the new-incident form.
// A Form is created by Controller.OpenForm and discarded on close.
type Form struct {
	session    uint64
	openedAt   time.Time
	draft      domain.Draft
	errors     incidents.FieldErrors
	submitting bool
}

func newForm(session uint64, openedAt time.Time, defaultSeverity domain.Severity) *Form {
	return &Form{
		session:  session,
		openedAt: openedAt,
		draft:    domain.Draft{Severity: defaultSeverity},
		errors:   make(incidents.FieldErrors),
	}
}

// Session identifies this opening of the form. Every OpenForm call gets a new one.
func (f *Form) Session() uint64 { return f.session }

// OpenedAt is the time the form was opened.
func (f *Form) OpenedAt() time.Time { return f.openedAt }

// Draft returns the current field values.
func (f *Form) Draft() domain.Draft { return f.draft }

// Submitting reports whether a valid submission is waiting to complete.
// Inputs, cancel and submit are disabled in this state.
func (f *Form) Submitting() bool { return f.submitting }

// Error returns the message for a field, or "" if the field has no error.
func (f *Form) Error(field string) string { return f.errors[field] }

// Errors returns a copy of the current field errors.
func (f *Form) Errors() incidents.FieldErrors {
	out := make(incidents.FieldErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// SetField updates one draft field and clears its error.
// It returns false when the field is unknown or the form is submitting.
func (f *Form) SetField(field, value string) bool {
	if f.submitting {
		return false
	}

	switch field {
	case incidents.FieldTitle:
		f.draft.Title = value
	case incidents.FieldDescription:
		f.draft.Description = value
	case incidents.FieldSeverity:
		f.draft.Severity = normalizeSeverity(value)
	default:
		return false
	}

	delete(f.errors, field)
	return true
}

// normalizeSeverity maps input such as " high " to a known level. Unknown
// input is kept trimmed so validation can report it.
func normalizeSeverity(value string) domain.Severity {
	if sev, err := incidents.ParseSeverity(value); err == nil {
		return sev
	}
	return domain.Severity(strings.TrimSpace(value))
}
