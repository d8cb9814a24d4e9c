// Package dashboard keeps the console's overview of flags, cases, notifications
// and the daily report current.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/model"
)

// WarningPartial is shown when a list read came back empty-handed.
const WarningPartial = "Some services did not respond"

// State is one complete dashboard read. A refresh replaces it wholesale.
type State struct {
	RefreshedAt   time.Time
	Date          time.Time
	Daily         *model.DailyStat
	Warning       string
	Flags         []model.Flag
	Cases         []model.CaseItem
	Notifications []model.NotificationItem
}

// Partial reports whether any list read failed.
func (s State) Partial() bool {
	return s.Warning != ""
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Refresher) {
		r.now = now
	}
}

// WithDate pins the report date instead of using today.
func WithDate(date time.Time) Option {
	return func(r *Refresher) {
		r.date = date
	}
}

// Refresher reads the dashboard from the services.
type Refresher struct {
	services  api.Services
	now       func() time.Time
	date      time.Time
	state     State
	listeners []func(State)
	mu        sync.Mutex
}

// New creates a Refresher with an empty state.
func New(services api.Services, opts ...Option) *Refresher {
	r := &Refresher{
		services: services,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnRefresh registers fn to receive every new state.
func (r *Refresher) OnRefresh(fn func(State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// State returns the most recent refresh.
func (r *Refresher) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Refresh issues the four reads concurrently and replaces the state once all of
// them have answered. Absent lists become empty.
func (r *Refresher) Refresh(ctx context.Context) State {
	date := r.date
	if date.IsZero() {
		date = r.now()
	}

	var (
		flags         *model.Page[model.Flag]
		cases         *model.Page[model.CaseItem]
		notifications *model.Page[model.NotificationItem]
		daily         *model.Page[model.DailyStat]
		flagsOK       bool
		casesOK       bool
		notifyOK      bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		flags, flagsOK = r.services.ListFlags(gctx)
		return nil
	})
	g.Go(func() error {
		cases, casesOK = r.services.ListCases(gctx, api.CaseFilter{})
		return nil
	})
	g.Go(func() error {
		notifications, notifyOK = r.services.ListNotifications(gctx)
		return nil
	})
	g.Go(func() error {
		daily, _ = r.services.DailyReport(gctx, date)
		return nil
	})
	_ = g.Wait()

	next := State{
		RefreshedAt:   r.now(),
		Date:          date,
		Flags:         flags.Items(),
		Cases:         cases.Items(),
		Notifications: notifications.Items(),
	}
	if stat, ok := daily.First(); ok {
		next.Daily = &stat
	}
	if !flagsOK || !casesOK || !notifyOK {
		next.Warning = WarningPartial
		slog.Warn("Dashboard refresh incomplete",
			"flags", flagsOK,
			"cases", casesOK,
			"notifications", notifyOK)
	} else {
		slog.Debug("Dashboard refreshed",
			"flags", len(next.Flags),
			"cases", len(next.Cases),
			"notifications", len(next.Notifications))
	}

	r.mu.Lock()
	r.state = next
	listeners := r.listeners
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// AutoRefresh calls fn every interval until ctx is done. A non-positive interval
// disables it.
func AutoRefresh(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			fn(ctx)
		}
	}
}
