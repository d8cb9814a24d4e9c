// Package hydrate reconstructs the cross-service record set for one transaction
// from a single known flag, case, or notification.
package hydrate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/poll"
)

// SeedKind names the record a detail view was hydrated from.
type SeedKind string

// Seed kinds.
const (
	SeedFlag         SeedKind = "flag"
	SeedCase         SeedKind = "case"
	SeedNotification SeedKind = "notification"
)

// TransactionSnapshot is the transaction as seen through whichever record carried
// its fields. Only ID is guaranteed.
type TransactionSnapshot struct {
	OccurredAt time.Time
	ID         string
	AccountID  string
	Currency   string
	Country    string
	Merchant   string
	Amount     decimal.Decimal
}

// Detail is the consolidated view of one transaction and its case.
type Detail struct {
	AIDecision    *model.AiDecision
	Case          *model.CaseItem
	Seed          SeedKind
	Transaction   TransactionSnapshot
	Flags         []model.Flag
	Notifications []model.NotificationItem
}

// State is the hydrator's current view. It is replaced wholesale by every call.
type State struct {
	Detail  *Detail
	Err     error
	Loading bool
}

// Option configures a Hydrator.
type Option func(*Hydrator)

// WithCaseWait polls the case-by-transaction lookup instead of reading it once.
// Use it when the case may not have been created yet.
func WithCaseWait(opts poll.Options) Option {
	return func(h *Hydrator) {
		h.caseWait = opts
	}
}

// Hydrator joins records across services using only their id fields.
type Hydrator struct {
	services   api.Services
	state      State
	caseWait   poll.Options
	generation uint64
	mu         sync.Mutex
}

// New creates a Hydrator.
func New(services api.Services, opts ...Option) *Hydrator {
	h := &Hydrator{
		services: services,
		caseWait: poll.Once(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// State returns the current view.
func (h *Hydrator) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// FromFlag hydrates starting at a flag. A non-empty caseID skips the case lookup
// by transaction id.
func (h *Hydrator) FromFlag(ctx context.Context, flag model.Flag, caseID string) (Detail, error) {
	return h.run(func() (Detail, error) {
		detail := Detail{
			Seed:        SeedFlag,
			Transaction: snapshotFromFlag(flag),
		}

		detail.AIDecision, detail.Flags = h.readTransaction(ctx, flag.TransactionID)

		if caseID != "" {
			if c, ok := h.services.GetCase(ctx, caseID); ok {
				if c.TransactionID == flag.TransactionID {
					detail.Case = c
				} else {
					slog.Warn("Ignoring case for a different transaction",
						"case_id", caseID,
						"case_transaction_id", c.TransactionID,
						"flag_transaction_id", flag.TransactionID)
				}
			}
		} else {
			detail.Case = h.caseForTransaction(ctx, flag.TransactionID)
		}

		if detail.Case != nil {
			detail.Notifications = h.readNotifications(ctx, detail.Case.ID)
		}
		return detail, nil
	})
}

// FromCase hydrates starting at a case. The case is re-read by id so the view
// carries its latest status.
func (h *Hydrator) FromCase(ctx context.Context, c model.CaseItem) (Detail, error) {
	return h.run(func() (Detail, error) {
		var fresh *model.CaseItem

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if got, ok := h.services.GetCase(gctx, c.ID); ok {
				fresh = got
			}
			return nil
		})
		var detail Detail
		g.Go(func() error {
			detail = h.caseDetail(gctx, c)
			return nil
		})
		_ = g.Wait()

		if fresh != nil && fresh.TransactionID == c.TransactionID {
			detail.Case = fresh
		}
		return detail, nil
	})
}

// FromCaseID hydrates a case known only by its id, reading it exactly once.
func (h *Hydrator) FromCaseID(ctx context.Context, id string) (Detail, error) {
	return h.run(func() (Detail, error) {
		c, ok := h.services.GetCase(ctx, id)
		if !ok {
			return Detail{}, fmt.Errorf("%w: case %s", common.ErrNotFound, id)
		}
		return h.caseDetail(ctx, *c), nil
	})
}

// FromNotification hydrates starting at a notification. The notification only
// knows its case id, so the case is read first; if it cannot be found the call
// fails with common.ErrReferentialGap and nothing else is fetched.
func (h *Hydrator) FromNotification(ctx context.Context, n model.NotificationItem) (Detail, error) {
	return h.run(func() (Detail, error) {
		c, ok := h.services.GetCase(ctx, n.CaseID)
		if !ok {
			return Detail{}, fmt.Errorf("%w: case %s", common.ErrReferentialGap, n.CaseID)
		}

		detail := h.caseDetail(ctx, *c)
		detail.Seed = SeedNotification
		return detail, nil
	})
}

// caseDetail reads everything joined to a known case.
func (h *Hydrator) caseDetail(ctx context.Context, c model.CaseItem) Detail {
	detail := Detail{
		Seed: SeedCase,
		Case: &c,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detail.AIDecision, detail.Flags = h.readTransaction(gctx, c.TransactionID)
		return nil
	})
	g.Go(func() error {
		detail.Notifications = h.readNotifications(gctx, c.ID)
		return nil
	})
	_ = g.Wait()

	detail.Transaction = snapshotFromCase(c, detail.AIDecision, detail.Flags)
	return detail
}

// readTransaction fetches the AI decision and the transaction's flags concurrently.
func (h *Hydrator) readTransaction(ctx context.Context, transactionID string) (*model.AiDecision, []model.Flag) {
	var (
		decision *model.AiDecision
		flags    []model.Flag
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if got, ok := h.services.GetAIDecision(gctx, transactionID); ok && got.TransactionID == transactionID {
			decision = got
		}
		return nil
	})
	g.Go(func() error {
		if page, ok := h.services.ListFlags(gctx); ok {
			flags = model.FlagsForTransaction(page.Content, transactionID)
		}
		return nil
	})
	_ = g.Wait()

	return decision, flags
}

// caseForTransaction takes the first case the service lists for the transaction.
// The service does not guarantee one case per transaction; when it returns more,
// whichever comes first wins.
func (h *Hydrator) caseForTransaction(ctx context.Context, transactionID string) *model.CaseItem {
	produce := func(ctx context.Context) (model.CaseItem, bool) {
		page, ok := h.services.ListCases(ctx, api.CaseFilter{TransactionID: transactionID})
		if !ok {
			return model.CaseItem{}, false
		}
		for _, c := range page.Content {
			if c.TransactionID == transactionID {
				return c, true
			}
		}
		return model.CaseItem{}, false
	}

	c, ok := poll.Poll(ctx, produce, poll.Present[model.CaseItem], h.caseWait.Named("hydrate.case"))
	if !ok {
		return nil
	}
	return &c
}

func (h *Hydrator) readNotifications(ctx context.Context, caseID string) []model.NotificationItem {
	page, ok := h.services.ListNotifications(ctx)
	if !ok {
		return nil
	}
	return model.NotificationsForCase(page.Content, caseID)
}

// run replaces the current view with the outcome of fn. A call that finishes
// after a newer one has started does not overwrite the newer view.
func (h *Hydrator) run(fn func() (Detail, error)) (Detail, error) {
	h.mu.Lock()
	h.generation++
	gen := h.generation
	h.state = State{Loading: true}
	h.mu.Unlock()

	detail, err := fn()

	h.mu.Lock()
	defer h.mu.Unlock()
	if gen == h.generation {
		if err != nil {
			h.state = State{Err: err}
		} else {
			d := detail
			h.state = State{Detail: &d}
		}
	}
	return detail, err
}

func snapshotFromFlag(f model.Flag) TransactionSnapshot {
	return TransactionSnapshot{
		ID:         f.TransactionID,
		AccountID:  f.AccountID,
		Amount:     f.Amount,
		Currency:   f.Currency,
		Country:    f.Country,
		Merchant:   f.Merchant,
		OccurredAt: f.OccurredAt,
	}
}

func snapshotFromCase(c model.CaseItem, decision *model.AiDecision, flags []model.Flag) TransactionSnapshot {
	switch {
	case decision != nil:
		return TransactionSnapshot{
			ID:         decision.TransactionID,
			AccountID:  decision.AccountID,
			Amount:     decision.Amount,
			Currency:   decision.Currency,
			Country:    decision.Country,
			Merchant:   decision.Merchant,
			OccurredAt: decision.OccurredAt,
		}
	case len(flags) > 0:
		return snapshotFromFlag(flags[0])
	default:
		return TransactionSnapshot{ID: c.TransactionID, AccountID: c.AccountID}
	}
}
