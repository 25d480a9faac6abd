// Package report renders the incident view for non-interactive output.
package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/incidents"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Format is an output format of the renderer.
type Format string

// Output formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ErrUnknownFormat is returned for formats the renderer has no template for.
var ErrUnknownFormat = errors.New("unknown report format")

// DefaultDateFormat is used when Renderer is created with an empty layout.
const DefaultDateFormat = "Jan 2, 2006, 03:04 PM"

// Report is the data passed to templates.
type Report struct {
	Filter      domain.SeverityFilter `json:"severity"`
	Sort        domain.SortOrder      `json:"sort"`
	Summary     incidents.Summary     `json:"summary"`
	Incidents   []domain.Incident     `json:"incidents"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Renderer renders reports from embedded templates.
type Renderer struct {
	templates  map[Format]*template.Template
	dateFormat string
}

// NewRenderer creates a renderer and loads all templates.
func NewRenderer(dateFormat string) (*Renderer, error) {
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}

	funcMap := template.FuncMap{
		"title":         titleCase,
		"upper":         strings.ToUpper,
		"formatTime":    func(t time.Time) string { return t.Format(dateFormat) },
		"formatDate":    formatDate,
		"severityEmoji": severityEmoji,
		"filterLabel":   filterLabel,
		"plural":        plural,
		"isAll":         func(f domain.SeverityFilter) bool { return f == domain.FilterAll },
	}

	r := &Renderer{
		templates:  make(map[Format]*template.Template),
		dateFormat: dateFormat,
	}

	for _, format := range []Format{FormatText, FormatMarkdown} {
		filename := fmt.Sprintf("templates/%s.tmpl", format)

		content, err := templatesFS.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", filename, err)
		}

		tmpl, err := template.New(string(format)).Funcs(funcMap).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", format, err)
		}

		r.templates[format] = tmpl
	}

	return r, nil
}

// ParseFormat validates a format name. Empty input means FormatText.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatText, nil
	case FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Render renders the report in the requested format.
func (r *Renderer) Render(format Format, rep Report) (string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode report: %w", err)
		}
		return string(data), nil
	}

	tmpl, ok := r.templates[format]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, rep); err != nil {
		return "", fmt.Errorf("execute template %s: %w", format, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// Template functions

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format("Jan 2, 2006")
}

func severityEmoji(s domain.Severity) string {
	switch s {
	case domain.SeverityLow:
		return "🔵"
	case domain.SeverityMedium:
		return "🟡"
	case domain.SeverityHigh:
		return "🔴"
	default:
		return "⚪"
	}
}

func filterLabel(f domain.SeverityFilter) string {
	if f == domain.FilterAll {
		return "All Incidents"
	}
	return string(f)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
