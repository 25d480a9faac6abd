// Package tui is the interactive terminal dashboard.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bissquit/safety-dashboard/internal/dashboard"
	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/incidents"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configure the model.
type Options struct {
	SubmitDelay time.Duration
	IntroDelay  time.Duration
	DateFormat  string

	// MouseEnabled turns on mouse reporting: wheel scrolling, row clicks and
	// closing the form by clicking outside it.
	MouseEnabled bool
}

type introMsg struct{}

// submitDoneMsg fires when the artificial submission delay has elapsed.
type submitDoneMsg struct {
	submission dashboard.Submission
}

// Model is the root bubbletea model.
type Model struct {
	ctrl *dashboard.Controller
	opts Options

	width  int
	height int

	intro   bool
	list    listView
	form    *formView
	pending *dashboard.Submission
	// listTop is the screen row where the list viewport starts.
	listTop int
}

// New creates the model. The controller must not be used by anything else
// while the program runs.
func New(ctrl *dashboard.Controller, opts Options) Model {
	if opts.DateFormat == "" {
		opts.DateFormat = "Jan 2, 2006, 03:04 PM"
	}

	m := Model{
		ctrl:   ctrl,
		opts:   opts,
		width:  80,
		height: 24,
		intro:  opts.IntroDelay <= 0,
		list:   newListView(opts.DateFormat),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.intro {
		return nil
	}
	return tea.Tick(m.opts.IntroDelay, func(time.Time) tea.Msg { return introMsg{} })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form.width = msg.Width
		}
		m.refresh()
		return m, nil

	case introMsg:
		m.intro = true
		m.refresh()
		return m, nil

	case submitDoneMsg:
		return m.completeSubmission(msg.submission)

	case spinner.TickMsg:
		if m.form == nil || m.pending == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.form.spinner, cmd = m.form.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.form != nil {
			return m.handleFormKey(msg)
		}
		return m.handleListKey(msg)
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.ctrl.Shutdown()
	m.form = nil
	m.pending = nil
	return m, tea.Quit
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "n":
		return m.openForm()
	case "a":
		m.setFilter(domain.FilterAll)
	case "l":
		m.setFilter(domain.SeverityFilter(domain.SeverityLow))
	case "m":
		m.setFilter(domain.SeverityFilter(domain.SeverityMedium))
	case "h":
		m.setFilter(domain.SeverityFilter(domain.SeverityHigh))
	case "c":
		if m.ctrl.Filter() != domain.FilterAll {
			m.ctrl.ClearFilter()
			m.list.selected = 0
			m.refresh()
		}
	case "s":
		m.setSort(m.ctrl.SortOrder().Toggle())
	case "N":
		m.setSort(domain.SortNewest)
	case "O":
		m.setSort(domain.SortOldest)
	case "j", "down":
		m.list.move(1)
	case "k", "up":
		m.list.move(-1)
	case "enter", " ", "space":
		m.list.toggle()
	case "pgdown":
		m.scroll(m.list.viewport.Height)
	case "pgup":
		m.scroll(-m.list.viewport.Height)
	case "g", "home":
		m.list.selected = 0
		m.list.render()
		m.list.viewport.GotoTop()
	case "G", "end":
		m.list.selected = max(len(m.list.items)-1, 0)
		m.list.render()
		m.list.viewport.GotoBottom()
	}
	return m, nil
}

func (m *Model) setFilter(f domain.SeverityFilter) {
	if err := m.ctrl.SetSeverityFilter(f); err != nil {
		slog.Warn("filter rejected", "filter", f, "error", err)
		return
	}
	m.list.selected = 0
	m.list.viewport.GotoTop()
	m.refresh()
}

func (m *Model) setSort(o domain.SortOrder) {
	if err := m.ctrl.SetSortOrder(o); err != nil {
		slog.Warn("sort order rejected", "sort", o, "error", err)
		return
	}
	m.refresh()
	m.list.ensureVisible()
}

// scroll moves the list viewport unless the form holds the scroll lock.
func (m *Model) scroll(lines int) {
	if m.ctrl.ScrollLocked() {
		return
	}
	if lines < 0 {
		m.list.viewport.ScrollUp(-lines)
	} else {
		m.list.viewport.ScrollDown(lines)
	}
}

func (m Model) openForm() (tea.Model, tea.Cmd) {
	form := m.ctrl.OpenForm()
	fv := newFormView(form, m.width)
	m.form = &fv
	return m, textinput.Blink
}

func (m Model) closeForm(reason dashboard.CloseReason) (tea.Model, tea.Cmd) {
	if m.ctrl.CloseForm(reason) {
		m.form = nil
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.ctrl.Form()
	if form == nil {
		m.form = nil
		return m, nil
	}
	if form.Submitting() {
		// Everything but ctrl+c is disabled until the submission completes.
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m.closeForm(dashboard.CloseEscape)
	case "ctrl+w":
		return m.closeForm(dashboard.CloseCancel)
	case "ctrl+s":
		return m.submit()
	case "tab":
		return m, m.form.setFocus(m.form.focus + 1)
	case "shift+tab":
		return m, m.form.setFocus(m.form.focus - 1)
	}

	switch m.form.focus {
	case focusTitle:
		if msg.String() == "enter" {
			return m, m.form.setFocus(focusDescription)
		}
		var cmd tea.Cmd
		m.form.title, cmd = m.form.title.Update(msg)
		m.syncField(incidents.FieldTitle, m.form.title.Value(), form.Draft().Title)
		return m, cmd

	case focusDescription:
		var cmd tea.Cmd
		m.form.description, cmd = m.form.description.Update(msg)
		m.syncField(incidents.FieldDescription, m.form.description.Value(), form.Draft().Description)
		return m, cmd

	case focusSeverity:
		switch msg.String() {
		case "left", "h":
			m.form.shiftSeverity(-1)
		case "right", "l":
			m.form.shiftSeverity(1)
		case "enter":
			return m, m.form.setFocus(focusSubmit)
		default:
			return m, nil
		}
		m.syncField(incidents.FieldSeverity, string(m.form.selectedSeverity()), string(form.Draft().Severity))
		return m, nil

	case focusSubmit:
		if msg.String() == "enter" || msg.String() == " " {
			return m.submit()
		}
	case focusCancel:
		if msg.String() == "enter" || msg.String() == " " {
			return m.closeForm(dashboard.CloseCancel)
		}
	}
	return m, nil
}

// syncField pushes a widget value into the draft when it changed, which also
// clears that field's error.
func (m *Model) syncField(field, value, current string) {
	if value == current {
		return
	}
	if err := m.ctrl.SetField(field, value); err != nil {
		slog.Debug("form field not updated", "field", field, "error", err)
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	s, err := m.ctrl.Submit()
	if err != nil {
		var fieldErrs incidents.FieldErrors
		if errors.As(err, &fieldErrs) {
			return m, m.form.focusFirstError(fieldErrs)
		}
		slog.Warn("submit rejected", "error", err)
		return m, nil
	}

	m.pending = &s
	m.form.title.Blur()
	m.form.description.Blur()

	var done tea.Cmd = func() tea.Msg { return submitDoneMsg{submission: s} }
	if m.opts.SubmitDelay > 0 {
		done = tea.Tick(m.opts.SubmitDelay, func(time.Time) tea.Msg { return submitDoneMsg{submission: s} })
	}
	return m, tea.Batch(m.form.spinner.Tick, done)
}

func (m Model) completeSubmission(s dashboard.Submission) (tea.Model, tea.Cmd) {
	if m.pending != nil && m.pending.Session == s.Session {
		m.pending = nil
	}
	if !m.ctrl.Complete(s) {
		return m, nil
	}

	m.form = nil
	m.list.selected = 0
	m.refresh()
	for i, inc := range m.list.items {
		if inc.ID == s.Incident.ID {
			m.list.selected = i
			m.list.render()
			m.list.ensureVisible()
			break
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		box := m.form.view(m.ctrl.Form())
		if !centeredRect(box, m.width, m.height).contains(msg.X, msg.Y) {
			return m.closeForm(dashboard.CloseBackdrop)
		}
		return m, nil
	}

	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scroll(-3)
	case tea.MouseButtonWheelDown:
		m.scroll(3)
	case tea.MouseButtonLeft:
		line := msg.Y - m.listTop
		if line < 0 || line >= m.list.viewport.Height {
			return m, nil
		}
		if i, ok := m.list.rowAt(line); ok {
			m.list.selected = i
			m.list.toggle()
		}
	}
	return m, nil
}

// refresh re-derives the view from the controller and lays out the screen.
func (m *Model) refresh() {
	m.list.setItems(m.ctrl.View())

	top := m.headerView()
	footer := m.footerView()
	m.listTop = lipgloss.Height(top)
	m.list.resize(m.width, m.height-lipgloss.Height(top)-lipgloss.Height(footer))
}

// View implements tea.Model.
func (m Model) View() string {
	var body string
	if len(m.list.items) == 0 {
		body = lipgloss.NewStyle().Height(m.list.viewport.Height).Render(m.emptyView())
	} else {
		body = m.list.viewport.View()
	}
	screen := lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.footerView())

	if m.form == nil || m.ctrl.Form() == nil {
		return screen
	}
	return overlayCenter(dimBackground(screen), m.form.view(m.ctrl.Form()), m.width, m.height)
}

func (m Model) headerView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AI Safety Incident Dashboard"))
	b.WriteString("\n")
	if m.intro {
		b.WriteString(subtitleStyle.Render("Monitor, filter and report AI safety incidents."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.summaryView())
	b.WriteString("\n")
	b.WriteString(m.filterBarView())
	b.WriteString("\n")
	if n := len(m.list.items); n > 0 {
		b.WriteString(mutedStyle.Render(showingLine(n, m.ctrl.Filter())))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) summaryView() string {
	s := m.ctrl.Summary()
	last := "None"
	if s.LastReportedAt != nil {
		last = s.LastReportedAt.Format("Jan 2, 2006")
	}

	card := func(label, value string, color lipgloss.TerminalColor) string {
		return cardStyle.Render(mutedStyle.Render(label) + "\n" + cardValueStyle.Foreground(color).Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Incidents", fmt.Sprintf("%d", s.Total), colorAccent), " ",
		card("High Severity", fmt.Sprintf("%d", s.High), colorHigh), " ",
		card("Last Reported", last, colorMedium),
	)
}

func (m Model) filterBarView() string {
	chips := make([]string, 0, len(domain.SeverityFilters)+3)
	chips = append(chips, labelStyle.Render("Severity:"))
	for _, f := range domain.SeverityFilters {
		label := string(f)
		if f == domain.FilterAll {
			label = "All Incidents"
		}
		if f == m.ctrl.Filter() {
			chips = append(chips, chipActiveStyle.Render(label))
		} else {
			chips = append(chips, chipStyle.Render(label))
		}
	}

	chips = append(chips, "  "+labelStyle.Render("Sort:"))
	for _, o := range []domain.SortOrder{domain.SortNewest, domain.SortOldest} {
		label := "Newest"
		if o == domain.SortOldest {
			label = "Oldest"
		}
		if o == m.ctrl.SortOrder() {
			chips = append(chips, chipActiveStyle.Render(label))
		} else {
			chips = append(chips, chipStyle.Render(label))
		}
	}
	return strings.Join(chips, " ")
}

func (m Model) emptyView() string {
	lines := []string{"", mutedStyle.Render("  No incidents found.")}
	if m.ctrl.Filter() != domain.FilterAll {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  No %s severity incidents. Press c to clear filters.", m.ctrl.Filter())))
	} else {
		lines = append(lines, mutedStyle.Render("  Press n to report the first one."))
	}
	return strings.Join(lines, "\n")
}

func (m Model) footerView() string {
	help := "n new · a/l/m/h filter · s sort · j/k move · enter details · q quit"
	if m.form != nil {
		help = "form open · esc close"
	}
	return footerStyle.Render(help)
}

func showingLine(n int, f domain.SeverityFilter) string {
	noun := "incidents"
	if n == 1 {
		noun = "incident"
	}
	line := fmt.Sprintf("Showing %d %s", n, noun)
	if f != domain.FilterAll {
		line += fmt.Sprintf(" with %s severity", f)
	}
	return line
}
