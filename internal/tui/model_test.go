package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bissquit/safety-dashboard/internal/dashboard"
	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/incidents"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var specialKeys = map[string]tea.KeyType{
	"esc":       tea.KeyEsc,
	"enter":     tea.KeyEnter,
	"tab":       tea.KeyTab,
	"shift+tab": tea.KeyShiftTab,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"down":      tea.KeyDown,
	"up":        tea.KeyUp,
	"ctrl+s":    tea.KeyCtrlS,
	"ctrl+w":    tea.KeyCtrlW,
	"ctrl+c":    tea.KeyCtrlC,
}

func key(s string) tea.KeyMsg {
	if t, ok := specialKeys[s]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = update(t, m, key(k))
	}
	return m
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func testSeed() []domain.Incident {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Incident{
		{ID: "1", Title: "Biased Recommendation Algorithm", Description: "Favoured certain demographics.", Severity: domain.SeverityMedium, ReportedAt: base.Add(14 * 24 * time.Hour)},
		{ID: "2", Title: "LLM Hallucination", Description: "Incorrect safety procedure information.", Severity: domain.SeverityHigh, ReportedAt: base.Add(31 * 24 * time.Hour)},
		{ID: "3", Title: "Minor Data Leak", Description: "Non-sensitive user metadata exposed.", Severity: domain.SeverityMedium, ReportedAt: base.Add(-1 * 24 * time.Hour)},
	}
}

func newTestModel(t *testing.T, seed []domain.Incident) (Model, *dashboard.Controller) {
	t.Helper()
	n := 0
	ctrl := dashboard.NewController(seed, dashboard.Config{
		DefaultSeverity: domain.SeverityMedium,
		Clock:           incidents.ClockFunc(func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }),
		NewID: func() string {
			n++
			return fmt.Sprintf("new-%d", n)
		},
	})
	m := New(ctrl, Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, ctrl
}

func fillValidForm(t *testing.T, m Model) Model {
	t.Helper()
	m = press(t, m, "n", "Prompt injection", "tab", "Model ignored its system prompt.", "tab", "right")
	return m
}

func TestModel_SubmitRoundTrip(t *testing.T) {
	m, ctrl := newTestModel(t, testSeed())

	m = fillValidForm(t, m)
	require.True(t, ctrl.FormOpen())
	assert.True(t, ctrl.ScrollLocked())

	draft := ctrl.Form().Draft()
	assert.Equal(t, "Prompt injection", draft.Title)
	assert.Equal(t, "Model ignored its system prompt.", draft.Description)
	assert.Equal(t, domain.SeverityHigh, draft.Severity)

	m, cmd := update(t, m, key("ctrl+s"))
	require.NotNil(t, cmd)
	require.NotNil(t, m.pending)
	assert.True(t, ctrl.Form().Submitting())
	assert.Contains(t, m.View(), "Submitting")

	// Inputs and dismissal are disabled until the submission completes.
	m = press(t, m, "esc", "ctrl+w", "x")
	assert.True(t, ctrl.FormOpen())
	assert.Equal(t, "Prompt injection", ctrl.Form().Draft().Title)
	m, _ = update(t, m, click(0, 0))
	assert.True(t, ctrl.FormOpen())

	m, _ = update(t, m, submitDoneMsg{submission: *m.pending})

	assert.False(t, ctrl.FormOpen())
	assert.False(t, ctrl.ScrollLocked())
	assert.Nil(t, m.form)
	assert.Nil(t, m.pending)

	all := ctrl.Incidents()
	require.Len(t, all, 4)
	assert.Equal(t, "new-1", all[0].ID)
	assert.Equal(t, "Prompt injection", all[0].Title)
	assert.Equal(t, domain.SeverityHigh, all[0].Severity)

	selected, ok := m.list.selectedIncident()
	require.True(t, ok)
	assert.Equal(t, "new-1", selected.ID)
	assert.Contains(t, m.View(), "Showing 4 incidents")
}

func TestModel_SubmitWithDelayReturnsTick(t *testing.T) {
	m, ctrl := newTestModel(t, testSeed())
	m.opts.SubmitDelay = time.Hour

	m = fillValidForm(t, m)
	m, cmd := update(t, m, key("ctrl+s"))

	require.NotNil(t, cmd)
	assert.True(t, ctrl.Form().Submitting())
	assert.Len(t, ctrl.Incidents(), 3)
}

func TestModel_InvalidSubmitShowsErrors(t *testing.T) {
	m, ctrl := newTestModel(t, testSeed())

	m = press(t, m, "n", "tab", "short")
	m, _ = update(t, m, key("ctrl+s"))

	require.True(t, ctrl.FormOpen())
	form := ctrl.Form()
	assert.False(t, form.Submitting())
	assert.Equal(t, "Title is required", form.Error(incidents.FieldTitle))
	assert.Equal(t, "Description should be at least 10 characters", form.Error(incidents.FieldDescription))
	assert.Equal(t, focusTitle, m.form.focus)
	assert.Nil(t, m.pending)

	view := m.View()
	assert.Contains(t, view, "Title is required")
	assert.Contains(t, view, "Description should be at least 10 characters")

	// Editing a field clears only its error.
	m = press(t, m, "T")
	assert.Empty(t, ctrl.Form().Error(incidents.FieldTitle))
	assert.NotEmpty(t, ctrl.Form().Error(incidents.FieldDescription))
	assert.Len(t, ctrl.Incidents(), 3)
}

func TestModel_CloseReleasesScrollLock(t *testing.T) {
	tests := []struct {
		name  string
		close tea.Msg
	}{
		{"escape", key("esc")},
		{"cancel shortcut", key("ctrl+w")},
		{"backdrop click", click(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ctrl := newTestModel(t, testSeed())

			m = press(t, m, "n", "draft title")
			require.True(t, ctrl.ScrollLocked())

			m, _ = update(t, m, tt.close)

			assert.False(t, ctrl.FormOpen())
			assert.False(t, ctrl.ScrollLocked())
			assert.Nil(t, m.form)

			// The draft is discarded: a reopened form starts empty.
			press(t, m, "n")
			assert.Empty(t, ctrl.Form().Draft().Title)
		})
	}
}

func TestModel_CancelButton(t *testing.T) {
	m, ctrl := newTestModel(t, testSeed())

	m = press(t, m, "n", "tab", "tab", "tab", "tab")
	require.Equal(t, focusCancel, m.form.focus)

	m = press(t, m, "enter")
	assert.False(t, ctrl.FormOpen())
	assert.Nil(t, m.form)
}

func TestModel_ClickInsideModalKeepsFormOpen(t *testing.T) {
	m, ctrl := newTestModel(t, testSeed())

	m = press(t, m, "n")
	_, _ = update(t, m, click(50, 20))

	assert.True(t, ctrl.FormOpen())
}

func TestModel_TeardownMakesCompletionStale(t *testing.T) {
	m, ctrl := newTestModel(t, testSeed())

	m = fillValidForm(t, m)
	m, _ = update(t, m, key("ctrl+s"))
	require.NotNil(t, m.pending)
	submission := *m.pending

	m, cmd := update(t, m, key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.False(t, ctrl.FormOpen())
	assert.False(t, ctrl.ScrollLocked())

	_, _ = update(t, m, submitDoneMsg{submission: submission})
	assert.Len(t, ctrl.Incidents(), 3)
}

func TestModel_FilterAndSort(t *testing.T) {
	m, ctrl := newTestModel(t, testSeed())

	m = press(t, m, "h")
	assert.Equal(t, domain.SeverityFilter(domain.SeverityHigh), ctrl.Filter())
	require.Len(t, m.list.items, 1)
	assert.Equal(t, "2", m.list.items[0].ID)
	assert.Contains(t, m.View(), "Showing 1 incident with High severity")

	m = press(t, m, "l")
	assert.Empty(t, m.list.items)
	view := m.View()
	assert.Contains(t, view, "No incidents found.")
	assert.Contains(t, view, "Press c to clear filters")
	// Summary stays computed over the whole collection.
	assert.Contains(t, view, "Total Incidents")

	m = press(t, m, "c")
	assert.Equal(t, domain.FilterAll, ctrl.Filter())
	assert.Len(t, m.list.items, 3)
	assert.Equal(t, "2", m.list.items[0].ID)

	m = press(t, m, "s")
	assert.Equal(t, domain.SortOldest, ctrl.SortOrder())
	assert.Equal(t, "3", m.list.items[0].ID)

	m = press(t, m, "N")
	assert.Equal(t, domain.SortNewest, ctrl.SortOrder())
	assert.Equal(t, "2", m.list.items[0].ID)
}

func TestModel_ExpandTogglesAreIndependent(t *testing.T) {
	m, _ := newTestModel(t, testSeed())

	m = press(t, m, "enter")
	assert.True(t, m.list.expanded.Expanded("2"))
	assert.False(t, m.list.expanded.Expanded("1"))
	assert.Contains(t, m.View(), "Incorrect safety procedure information.")
	assert.Contains(t, m.View(), "ID: 2")

	m = press(t, m, "j", " ")
	assert.True(t, m.list.expanded.Expanded("2"))
	assert.True(t, m.list.expanded.Expanded("1"))

	m = press(t, m, "k", "enter")
	assert.False(t, m.list.expanded.Expanded("2"))
	assert.True(t, m.list.expanded.Expanded("1"))

	// Expansion survives re-filtering.
	m = press(t, m, "m", "a")
	assert.True(t, m.list.expanded.Expanded("1"))
}

func TestModel_ClickTogglesRowUnderPointer(t *testing.T) {
	m, _ := newTestModel(t, testSeed())
	require.Len(t, m.list.items, 3)

	// Empty space below a short list toggles nothing.
	below := m.listTop + m.list.viewport.TotalLineCount() + 2
	require.Less(t, below, m.listTop+m.list.viewport.Height)
	m, _ = update(t, m, click(10, below))
	assert.Zero(t, m.list.expanded.Len())

	last := m.list.items[2]
	m, _ = update(t, m, click(10, m.listTop+m.list.rowStarts[2]))
	assert.True(t, m.list.expanded.Expanded(last.ID))
	assert.Equal(t, 1, m.list.expanded.Len())
}

func TestModel_EmptyCollection(t *testing.T) {
	m, _ := newTestModel(t, nil)

	view := m.View()
	assert.Contains(t, view, "None")
	assert.Contains(t, view, "No incidents found.")
	assert.NotContains(t, view, "Showing")
	assert.NotContains(t, view, "clear filters")
}

func TestModel_ScrollLockedWhileFormOpen(t *testing.T) {
	seed := make([]domain.Incident, 0, 30)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 30 {
		seed = append(seed, domain.Incident{
			ID:          fmt.Sprintf("%d", i+1),
			Title:       fmt.Sprintf("Incident %d", i+1),
			Description: "Something went wrong in production.",
			Severity:    domain.SeverityLow,
			ReportedAt:  base.Add(time.Duration(i) * time.Hour),
		})
	}
	m, _ := newTestModel(t, seed)
	wheel := tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown}

	m = press(t, m, "n")
	m, _ = update(t, m, wheel)
	assert.Equal(t, 0, m.list.viewport.YOffset)

	m = press(t, m, "esc")
	m, _ = update(t, m, wheel)
	assert.Positive(t, m.list.viewport.YOffset)
}

func TestModel_SelectionStaysVisible(t *testing.T) {
	seed := make([]domain.Incident, 0, 30)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 30 {
		seed = append(seed, domain.Incident{
			ID:          fmt.Sprintf("%d", i+1),
			Title:       fmt.Sprintf("Incident %d", i+1),
			Description: "Something went wrong in production.",
			Severity:    domain.SeverityMedium,
			ReportedAt:  base.Add(time.Duration(i) * time.Hour),
		})
	}
	m, _ := newTestModel(t, seed)

	for range 29 {
		m = press(t, m, "j")
	}
	assert.Equal(t, 29, m.list.selected)
	start := m.list.rowStarts[29]
	assert.GreaterOrEqual(t, start, m.list.viewport.YOffset)
	assert.Less(t, start, m.list.viewport.YOffset+m.list.viewport.Height)
}

func TestModel_IntroBanner(t *testing.T) {
	ctrl := dashboard.NewController(testSeed(), dashboard.DefaultConfig())
	m := New(ctrl, Options{IntroDelay: 300 * time.Millisecond})

	assert.NotNil(t, m.Init())
	assert.NotContains(t, m.View(), "Monitor, filter and report")

	m, _ = update(t, m, introMsg{})
	assert.Contains(t, m.View(), "Monitor, filter and report")

	immediate := New(ctrl, Options{})
	assert.Nil(t, immediate.Init())
	assert.Contains(t, immediate.View(), "Monitor, filter and report")
}

func TestModel_Quit(t *testing.T) {
	m, ctrl := newTestModel(t, testSeed())

	m = press(t, m, "n")
	m, _ = update(t, m, key("esc"))
	_, cmd := update(t, m, key("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, ctrl.ScrollLocked())
}

func TestShowingLine(t *testing.T) {
	assert.Equal(t, "Showing 5 incidents", showingLine(5, domain.FilterAll))
	assert.Equal(t, "Showing 1 incident with High severity", showingLine(1, domain.SeverityFilter(domain.SeverityHigh)))
}

func TestOverlayCenter(t *testing.T) {
	bg := strings.Join([]string{"..........", "..........", "..........", ".........."}, "\n")

	out := overlayCenter(bg, "ab\ncd", 10, 4)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "....ab....", xansi.Strip(lines[1])[:10])
	assert.Equal(t, "....cd", xansi.Strip(lines[2])[:6])

	r := centeredRect("ab\ncd", 10, 4)
	assert.Equal(t, rect{x: 4, y: 1, w: 2, h: 2}, r)
	assert.True(t, r.contains(5, 2))
	assert.False(t, r.contains(0, 0))
}
