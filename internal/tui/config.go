package tui

import (
	"context"
	"time"

	"github.com/r14dd/matchsentinel/internal/poll"
	"github.com/r14dd/matchsentinel/internal/storage"
	"github.com/r14dd/matchsentinel/internal/tui/themes"
)

// NotesStore persists the analyst's case notes.
type NotesStore interface {
	LoadNotes(ctx context.Context) (storage.CaseNotes, error)
	SetNote(ctx context.Context, caseID, text string) (storage.CaseNotes, error)
}

// Config holds TUI configuration.
type Config struct {
	Context         context.Context
	Notes           NotesStore
	Theme           themes.Theme
	Poll            poll.Options
	RefreshInterval time.Duration
	Width           int
	Height          int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Context:         context.Background(),
		Theme:           themes.Default,
		Poll:            poll.DefaultOptions(),
		RefreshInterval: 15 * time.Second,
		Width:           120,
		Height:          32,
	}
}

// WithContext sets the context every service call derives from.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.Context = ctx
	}
}

// WithNotes sets the case notes store.
func WithNotes(notes NotesStore) Option {
	return func(c *Config) {
		c.Notes = notes
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithPoll sets the polling budget for scenario runs.
func WithPoll(opts poll.Options) Option {
	return func(c *Config) {
		c.Poll = opts
	}
}

// WithRefreshInterval sets the auto-refresh period. Zero disables it.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Config) {
		c.RefreshInterval = d
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
