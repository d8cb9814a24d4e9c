package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/r14dd/matchsentinel/internal/api"
)

// Run starts the console and blocks until the analyst quits or ctx is cancelled.
func Run(ctx context.Context, services api.Services, opts ...Option) error {
	if services == nil {
		return fmt.Errorf("services are required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Best-effort terminal restore if the program exits abnormally.
	defer func() {
		_, _ = os.Stdout.Write([]byte("\033[?1049l")) // Exit alternate screen
		_, _ = os.Stdout.Write([]byte("\033[?25h"))   // Show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))      // Reset colors
	}()

	m := New(services, append(opts, WithContext(ctx))...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("console error: %w", err)
	}
	return nil
}
