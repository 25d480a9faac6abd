package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/incidents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(filter domain.SeverityFilter) Report {
	all := []domain.Incident{
		{
			ID:          "1",
			Title:       "Biased Recommendation Algorithm",
			Description: "Algorithm consistently favored certain demographics.",
			Severity:    domain.SeverityMedium,
			ReportedAt:  time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:          "2",
			Title:       "LLM Hallucination in Critical Info",
			Description: "LLM provided incorrect safety procedure information.",
			Severity:    domain.SeverityHigh,
			ReportedAt:  time.Date(2025, 4, 1, 14, 30, 0, 0, time.UTC),
		},
	}
	return Report{
		Filter:      filter,
		Sort:        domain.SortNewest,
		Summary:     incidents.Summarize(all),
		Incidents:   incidents.DeriveView(all, filter, domain.SortNewest),
		GeneratedAt: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Len(t, r.templates, 2)
	assert.Equal(t, DefaultDateFormat, r.dateFormat)
}

func TestRenderer_RenderText(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)

	body, err := r.Render(FormatText, sampleReport(domain.FilterAll))
	require.NoError(t, err)

	assert.Contains(t, body, "Total: 2   High: 1   Last Reported: Apr 1, 2025")
	assert.Contains(t, body, "Filter: All Incidents   Sort: Newest first")
	assert.Contains(t, body, "Showing 2 incidents\n")
	assert.Contains(t, body, "[HIGH] LLM Hallucination in Critical Info")
	assert.Contains(t, body, "Reported: Apr 1, 2025, 02:30 PM")
	assert.Less(t,
		strings.Index(body, "LLM Hallucination"),
		strings.Index(body, "Biased Recommendation"),
		"newest incident must come first")
}

func TestRenderer_RenderText_Filtered(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)

	body, err := r.Render(FormatText, sampleReport(domain.SeverityFilter(domain.SeverityHigh)))
	require.NoError(t, err)

	assert.Contains(t, body, "Showing 1 incident with High severity")
	assert.NotContains(t, body, "Biased Recommendation")
}

func TestRenderer_RenderText_Empty(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)

	body, err := r.Render(FormatText, sampleReport(domain.SeverityFilter(domain.SeverityLow)))
	require.NoError(t, err)

	assert.Contains(t, body, "No incidents found. Clear the Low filter to see all incidents.")
	// Summary is computed over the whole collection, not the empty view.
	assert.Contains(t, body, "Total: 2")
}

func TestRenderer_RenderMarkdown(t *testing.T) {
	r, err := NewRenderer("2006-01-02 15:04")
	require.NoError(t, err)

	body, err := r.Render(FormatMarkdown, sampleReport(domain.FilterAll))
	require.NoError(t, err)

	assert.Contains(t, body, "# AI Safety Incidents")
	assert.Contains(t, body, "| 2 | 1 | Apr 1, 2025 |")
	assert.Contains(t, body, "## 🔴 LLM Hallucination in Critical Info")
	assert.Contains(t, body, "- **Reported:** 2025-04-01 14:30")
	assert.Contains(t, body, "- **ID:** `1`")
}

func TestRenderer_RenderJSON(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)

	body, err := r.Render(FormatJSON, sampleReport(domain.FilterAll))
	require.NoError(t, err)

	var decoded struct {
		Severity  string            `json:"severity"`
		Sort      string            `json:"sort"`
		Incidents []domain.Incident `json:"incidents"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Equal(t, "All", decoded.Severity)
	assert.Equal(t, "newest", decoded.Sort)
	require.Len(t, decoded.Incidents, 2)
	assert.Equal(t, "2", decoded.Incidents[0].ID)
}

func TestRenderer_EmptyCollection(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)

	body, err := r.Render(FormatText, Report{
		Filter:  domain.FilterAll,
		Sort:    domain.SortOldest,
		Summary: incidents.Summarize(nil),
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Last Reported: None")
	assert.Contains(t, body, "Sort: Oldest first")
	assert.Contains(t, body, "No incidents found.")
	assert.NotContains(t, body, "Clear the")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"Markdown", FormatMarkdown, false},
		{" json ", FormatJSON, false},
		{"html", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	r, err := NewRenderer("")
	require.NoError(t, err)
	_, err = r.Render(Format("html"), Report{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
