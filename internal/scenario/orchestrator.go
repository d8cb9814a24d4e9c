// Package scenario drives a simulated transaction through the asynchronous
// pipeline, polling each downstream service until its record appears.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/poll"
)

// ErrRunInProgress is returned when Run is called while another run is in flight.
var ErrRunInProgress = errors.New("scenario run already in progress")

// RefreshFunc re-reads the dashboard once a run completes.
type RefreshFunc func(ctx context.Context)

// Observer receives a snapshot after every state change.
type Observer func(State)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPollOptions sets the attempt budget and interval used by every stage.
func WithPollOptions(opts poll.Options) Option {
	return func(o *Orchestrator) {
		o.pollOpts = opts
	}
}

// WithRefresh sets the dashboard refresh triggered at the end of a run.
func WithRefresh(fn RefreshFunc) Option {
	return func(o *Orchestrator) {
		o.refresh = fn
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// Orchestrator runs one scenario at a time.
type Orchestrator struct {
	services   api.Services
	refresh    RefreshFunc
	now        func() time.Time
	cancel     context.CancelFunc
	observers  []Observer
	state      State
	pollOpts   poll.Options
	generation uint64
	mu         sync.Mutex
	// notifyMu keeps snapshots reaching observers in generation order.
	notifyMu sync.Mutex
}

// New creates an idle Orchestrator.
func New(services api.Services, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		services: services,
		pollOpts: poll.DefaultOptions(),
		now:      time.Now,
		state:    idleState(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Subscribe registers an observer. Observers are called synchronously from the
// goroutine executing Run or Reset, must not block, and must not call Run or Reset.
// Once Reset has published its idle snapshot, no snapshot of the cancelled run
// follows it.
func (o *Orchestrator) Subscribe(fn Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// State returns a snapshot of the current run.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Reset discards the current run and returns to idle. An in-flight run is
// cancelled and its remaining updates are dropped.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.generation++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.state = idleState()
	o.state.Run = o.generation
	snapshot, observers := o.state.clone(), o.observers
	o.mu.Unlock()

	o.publish(snapshot, observers)
}

// Run submits draft and drives it through every stage. It returns the final
// state; the error is non-nil only when submission failed.
func (o *Orchestrator) Run(ctx context.Context, draft model.TransactionDraft) (State, error) {
	o.mu.Lock()
	if o.state.Running() {
		snapshot := o.state.clone()
		o.mu.Unlock()
		return snapshot, ErrRunInProgress
	}
	o.generation++
	gen := o.generation
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.state = idleState()
	o.state.Run = gen
	o.state.Draft = draft
	o.mu.Unlock()
	defer cancel()

	req := draft.Coerce(o.now())
	o.update(gen, func(s *State) {
		s.transition(PhaseSubmitting)
		s.Request = &req
		s.StartedAt = o.now()
	})

	txn, err := o.services.CreateTransaction(ctx, req)
	if err != nil {
		err = fmt.Errorf("submit transaction: %w", err)
		slog.Warn("Scenario submission failed", "error", err)
		o.update(gen, func(s *State) {
			s.transition(PhaseError)
			s.Err = err
			s.FinishedAt = o.now()
		})
		return o.State(), err
	}

	slog.Info("Scenario transaction created", "transaction_id", txn.ID)
	o.update(gen, func(s *State) {
		s.transition(PhasePolling)
		s.Transaction = txn
	})

	o.runStages(ctx, gen, txn.ID)

	if o.refresh != nil && ctx.Err() == nil {
		o.refresh(ctx)
		o.update(gen, func(s *State) { s.Refreshed = true })
	}

	o.update(gen, func(s *State) {
		s.transition(PhaseComplete)
		s.FinishedAt = o.now()
	})
	return o.State(), nil
}

// runStages polls AI, flags, case and notifications in that order. A stage that
// finds nothing does not stop the ones after it.
func (o *Orchestrator) runStages(ctx context.Context, gen uint64, transactionID string) {
	if decision, ok := runStage(ctx, o, gen, StageAI,
		func(ctx context.Context) (*model.AiDecision, bool) {
			return o.services.GetAIDecision(ctx, transactionID)
		},
		poll.Present[*model.AiDecision],
	); ok {
		o.update(gen, func(s *State) { s.AIDecision = decision })
	}

	if flags, ok := runStage(ctx, o, gen, StageFlags,
		func(ctx context.Context) ([]model.Flag, bool) {
			page, ok := o.services.ListFlags(ctx)
			if !ok {
				return nil, false
			}
			return model.FlagsForTransaction(page.Content, transactionID), true
		},
		poll.NonEmpty[model.Flag],
	); ok {
		o.update(gen, func(s *State) { s.Flags = flags })
	}

	c, caseFound := runStage(ctx, o, gen, StageCase,
		func(ctx context.Context) (model.CaseItem, bool) {
			page, ok := o.services.ListCases(ctx, api.CaseFilter{TransactionID: transactionID})
			if !ok {
				return model.CaseItem{}, false
			}
			return page.First()
		},
		poll.Present[model.CaseItem],
	)
	if caseFound {
		o.update(gen, func(s *State) { s.Case = &c })
	}

	if !caseFound {
		o.update(gen, func(s *State) { s.setStage(StageNotifications, StatusSkipped, 0) })
		return
	}

	if items, ok := runStage(ctx, o, gen, StageNotifications,
		func(ctx context.Context) ([]model.NotificationItem, bool) {
			page, ok := o.services.ListNotifications(ctx)
			if !ok {
				return nil, false
			}
			return model.NotificationsForCase(page.Content, c.ID), true
		},
		poll.NonEmpty[model.NotificationItem],
	); ok {
		o.update(gen, func(s *State) { s.Notifications = items })
	}
}

func runStage[T any](ctx context.Context, o *Orchestrator, gen uint64, stage Stage, produce poll.Producer[T], ready poll.Ready[T]) (T, bool) {
	o.update(gen, func(s *State) { s.setStage(stage, StatusRunning, 0) })

	opts := o.pollOpts.Named("scenario." + string(stage))
	opts.OnAttempt = func(attempt int, _ bool) {
		o.update(gen, func(s *State) { s.setStage(stage, StatusRunning, attempt) })
	}

	value, ok := poll.Poll(ctx, produce, ready, opts)

	status := StatusFound
	if !ok {
		status = StatusTimeout
	}
	o.update(gen, func(s *State) { s.setStage(stage, status, 0) })
	slog.Info("Scenario stage finished", "stage", stage, "status", status)

	return value, ok
}

// update applies fn to the state of run gen and notifies observers. Updates from
// a run that has since been reset are dropped.
func (o *Orchestrator) update(gen uint64, fn func(*State)) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	fn(&o.state)
	snapshot, observers := o.state.clone(), o.observers
	o.mu.Unlock()

	o.publish(snapshot, observers)
}

// publish delivers s unless a newer run or a reset has superseded it while the
// lock was released.
func (o *Orchestrator) publish(s State, observers []Observer) {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	stale := s.Run != o.generation
	o.mu.Unlock()
	if stale {
		return
	}

	for _, fn := range observers {
		fn(s)
	}
}
