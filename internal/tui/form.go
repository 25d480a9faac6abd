package tui

import (
	"strings"

	"github.com/bissquit/safety-dashboard/internal/dashboard"
	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/incidents"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formFocus int

const (
	focusTitle formFocus = iota
	focusDescription
	focusSeverity
	focusSubmit
	focusCancel
	focusCount
)

// formView renders the incident form held by the controller. The controller
// owns the draft; the widgets here only mirror it.
type formView struct {
	title       textinput.Model
	description textarea.Model
	spinner     spinner.Model
	severity    int
	focus       formFocus
	width       int
}

func newFormView(form *dashboard.Form, screenWidth int) formView {
	inner := modalWidth(screenWidth) - 4

	ti := textinput.New()
	ti.Placeholder = "Brief title of the incident"
	ti.Prompt = "› "
	ti.CharLimit = 200
	ti.Width = inner - 4

	ta := textarea.New()
	ta.Placeholder = "Detailed description of what happened (at least 10 characters)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(inner)
	ta.SetHeight(4)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorFocused)

	f := formView{
		title:       ti,
		description: ta,
		spinner:     sp,
		width:       screenWidth,
	}
	for i, s := range domain.Severities {
		if s == form.Draft().Severity {
			f.severity = i
		}
	}
	f.title.Focus()
	return f
}

func (f *formView) setFocus(focus formFocus) tea.Cmd {
	f.focus = (focus + focusCount) % focusCount
	f.title.Blur()
	f.description.Blur()

	switch f.focus {
	case focusTitle:
		return f.title.Focus()
	case focusDescription:
		return f.description.Focus()
	}
	return nil
}

// focusFirstError moves focus to the first field that failed validation.
func (f *formView) focusFirstError(errs incidents.FieldErrors) tea.Cmd {
	switch {
	case errs.Has(incidents.FieldTitle):
		return f.setFocus(focusTitle)
	case errs.Has(incidents.FieldDescription):
		return f.setFocus(focusDescription)
	case errs.Has(incidents.FieldSeverity):
		return f.setFocus(focusSeverity)
	}
	return nil
}

func (f *formView) selectedSeverity() domain.Severity {
	return domain.Severities[f.severity]
}

// shiftSeverity moves the picker by delta, clamped to the known levels.
func (f *formView) shiftSeverity(delta int) {
	f.severity = min(max(f.severity+delta, 0), len(domain.Severities)-1)
}

func (f formView) view(form *dashboard.Form) string {
	var b strings.Builder

	b.WriteString(labelStyle.Render("Title"))
	b.WriteString("\n")
	b.WriteString(f.title.View())
	b.WriteString(fieldError(form, incidents.FieldTitle))

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Description"))
	b.WriteString("\n")
	b.WriteString(f.description.View())
	b.WriteString(fieldError(form, incidents.FieldDescription))

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Severity"))
	b.WriteString("\n")
	b.WriteString(f.severityPicker(form.Submitting()))
	b.WriteString(fieldError(form, incidents.FieldSeverity))

	b.WriteString("\n\n")
	if form.Submitting() {
		b.WriteString(f.spinner.View() + " Submitting…")
		b.WriteString("\n")
		b.WriteString(buttonDisabledStyle.Render("Submit") + "  " + buttonDisabledStyle.Render("Cancel"))
	} else {
		b.WriteString(f.button("Submit", focusSubmit) + "  " + f.button("Cancel", focusCancel))
	}

	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("tab next · ←/→ severity · ctrl+s submit · esc close"))

	return renderModalBox(f.width, "Report New Incident", b.String())
}

func (f formView) severityPicker(disabled bool) string {
	parts := make([]string, 0, len(domain.Severities))
	for i, s := range domain.Severities {
		label := string(s)
		style := chipStyle
		if i == f.severity {
			label = severityIcon(s) + " " + label
			style = chipActiveStyle.Background(severityColor(s)).Foreground(lipgloss.Color("16"))
		}
		parts = append(parts, style.Render(label))
	}

	row := strings.Join(parts, " ")
	if disabled {
		return mutedStyle.Render(row)
	}
	if f.focus == focusSeverity {
		return lipgloss.NewStyle().Foreground(colorFocused).Render("◂ ") + row +
			lipgloss.NewStyle().Foreground(colorFocused).Render(" ▸")
	}
	return "  " + row
}

func (f formView) button(label string, focus formFocus) string {
	if f.focus == focus {
		return buttonFocusedStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

func fieldError(form *dashboard.Form, field string) string {
	msg := form.Error(field)
	if msg == "" {
		return ""
	}
	return "\n" + errorStyle.Render("✗ "+msg)
}
