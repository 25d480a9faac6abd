package tui

import (
	"fmt"
	"strings"

	"github.com/bissquit/safety-dashboard/internal/dashboard"
	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// listView renders the derived incident view into a scrollable viewport.
type listView struct {
	viewport   viewport.Model
	expanded   *dashboard.ExpandSet
	selected   int
	items      []domain.Incident
	rowStarts  []int // first content line of each row
	dateFormat string
	width      int
}

func newListView(dateFormat string) listView {
	return listView{
		viewport:   viewport.New(0, 0),
		expanded:   dashboard.NewExpandSet(),
		dateFormat: dateFormat,
	}
}

// setItems replaces the rows and re-renders the viewport content.
func (l *listView) setItems(items []domain.Incident) {
	l.items = items
	if l.selected >= len(items) {
		l.selected = max(len(items)-1, 0)
	}
	l.render()
}

func (l *listView) resize(width, height int) {
	l.width = width
	l.viewport.Width = width
	l.viewport.Height = max(height, 1)
	l.render()
}

func (l *listView) selectedIncident() (domain.Incident, bool) {
	if l.selected < 0 || l.selected >= len(l.items) {
		return domain.Incident{}, false
	}
	return l.items[l.selected], true
}

func (l *listView) move(delta int) {
	if len(l.items) == 0 {
		return
	}
	l.selected = min(max(l.selected+delta, 0), len(l.items)-1)
	l.render()
	l.ensureVisible()
}

// toggle flips the details of the selected row.
func (l *listView) toggle() {
	inc, ok := l.selectedIncident()
	if !ok {
		return
	}
	l.expanded.Toggle(inc.ID)
	l.render()
	l.ensureVisible()
}

// rowAt maps a viewport-relative line to a row index. Lines past the end
// of the content belong to no row.
func (l *listView) rowAt(line int) (int, bool) {
	line += l.viewport.YOffset
	if line < 0 || line >= l.viewport.TotalLineCount() {
		return 0, false
	}
	for i := len(l.rowStarts) - 1; i >= 0; i-- {
		if line >= l.rowStarts[i] {
			return i, true
		}
	}
	return 0, false
}

func (l *listView) ensureVisible() {
	if len(l.rowStarts) == 0 {
		return
	}
	start := l.rowStarts[l.selected]
	end := l.viewport.TotalLineCount() - 1
	if l.selected+1 < len(l.rowStarts) {
		end = l.rowStarts[l.selected+1] - 1
	}

	switch {
	case start < l.viewport.YOffset:
		l.viewport.SetYOffset(start)
	case end >= l.viewport.YOffset+l.viewport.Height:
		l.viewport.SetYOffset(min(start, end-l.viewport.Height+1))
	}
}

func (l *listView) render() {
	l.rowStarts = make([]int, 0, len(l.items))
	if len(l.items) == 0 {
		l.viewport.SetContent("")
		return
	}

	var lines []string
	for i, inc := range l.items {
		l.rowStarts = append(l.rowStarts, len(lines))
		lines = append(lines, strings.Split(l.renderRow(i, inc), "\n")...)
	}
	l.viewport.SetContent(strings.Join(lines, "\n"))
}

func (l *listView) renderRow(i int, inc domain.Incident) string {
	expanded := l.expanded.Expanded(inc.ID)

	toggle := "[+] Details"
	if expanded {
		toggle = "[-] Hide"
	}
	meta := severityBadge(inc.Severity) + "  " +
		mutedStyle.Render(inc.ReportedAt.Format(l.dateFormat)) + "  " +
		mutedStyle.Render(toggle)

	titleWidth := max(l.width-lipgloss.Width(meta)-6, 10)
	title := severityIcon(inc.Severity) + " " + lipgloss.NewStyle().Bold(true).MaxWidth(titleWidth).Render(inc.Title)
	pad := max(l.width-lipgloss.Width(title)-lipgloss.Width(meta)-3, 1)
	line := title + strings.Repeat(" ", pad) + meta

	var b strings.Builder
	if i == l.selected {
		b.WriteString(rowSelectedStyle.Render(line))
	} else {
		b.WriteString(rowStyle.Render(line))
	}

	if expanded {
		body := detailStyle.Width(max(l.width-2, 10)).Render(inc.Description)
		info := detailStyle.Render(mutedStyle.Render(fmt.Sprintf("ID: %s · Reported: %s",
			inc.ID, inc.ReportedAt.Format(l.dateFormat))))
		b.WriteString("\n" + body + "\n" + info)
	}
	b.WriteString("\n")

	return b.String()
}
