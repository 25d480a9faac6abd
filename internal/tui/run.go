package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/safety-dashboard/internal/dashboard"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the dashboard in the alternate screen and blocks until the user
// quits or ctx is cancelled. The controller is shut down on every exit path.
func Run(ctx context.Context, ctrl *dashboard.Controller, opts Options, programOpts ...tea.ProgramOption) error {
	defer ctrl.Shutdown()

	options := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.MouseEnabled {
		options = append(options, tea.WithMouseCellMotion())
	}
	options = append(options, programOpts...)

	p := tea.NewProgram(New(ctrl, opts), options...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
