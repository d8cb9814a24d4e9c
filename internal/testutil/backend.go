package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/model"
)

// Backend is an in-memory stand-in for the MatchSentinel services. Records can be
// added while a test is polling against it.
type Backend struct {
	decisions     map[string]model.AiDecision
	daily         *model.DailyStat
	flags         []model.Flag
	cases         []model.CaseItem
	notifications []model.NotificationItem
	mu            sync.Mutex
}

// NewBackend creates an empty backend.
func NewBackend() *Backend {
	return &Backend{decisions: make(map[string]model.AiDecision)}
}

// AddFlags appends flags in the given order.
func (b *Backend) AddFlags(flags ...model.Flag) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flags = append(b.flags, flags...)
}

// AddCases appends cases in the given order.
func (b *Backend) AddCases(cases ...model.CaseItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cases = append(b.cases, cases...)
}

// AddNotifications appends notifications in the given order.
func (b *Backend) AddNotifications(items ...model.NotificationItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifications = append(b.notifications, items...)
}

// AddDecision stores the AI decision for its transaction.
func (b *Backend) AddDecision(d model.AiDecision) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.decisions[d.TransactionID] = d
}

// SetDaily sets the stat returned for every date.
func (b *Backend) SetDaily(stat model.DailyStat) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.daily = &stat
}

// Services returns a mock whose reads are served from the backend. Individual
// functions may be replaced afterwards.
func (b *Backend) Services() *api.MockServices {
	m := api.NewMockServices()

	m.ListFlagsFn = func(_ context.Context) (*model.Page[model.Flag], bool) {
		b.mu.Lock()
		defer b.mu.Unlock()
		return page(b.flags), true
	}
	m.ListCasesFn = func(_ context.Context, filter api.CaseFilter) (*model.Page[model.CaseItem], bool) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var out []model.CaseItem
		for _, c := range b.cases {
			if filter.TransactionID != "" && c.TransactionID != filter.TransactionID {
				continue
			}
			if filter.Status != "" && c.Status != filter.Status {
				continue
			}
			if filter.AccountID != "" && c.AccountID != filter.AccountID {
				continue
			}
			if filter.AnalystID != "" && c.Analyst() != filter.AnalystID {
				continue
			}
			out = append(out, c)
		}
		return page(out), true
	}
	m.GetCaseFn = func(_ context.Context, id string) (*model.CaseItem, bool) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, c := range b.cases {
			if c.ID == id {
				c := c
				return &c, true
			}
		}
		return nil, false
	}
	m.ListNotificationsFn = func(_ context.Context) (*model.Page[model.NotificationItem], bool) {
		b.mu.Lock()
		defer b.mu.Unlock()
		return page(b.notifications), true
	}
	m.GetAIDecisionFn = func(_ context.Context, transactionID string) (*model.AiDecision, bool) {
		b.mu.Lock()
		defer b.mu.Unlock()
		d, ok := b.decisions[transactionID]
		if !ok {
			return nil, false
		}
		return &d, true
	}
	m.DailyReportFn = func(_ context.Context, _ time.Time) (*model.Page[model.DailyStat], bool) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.daily == nil {
			return nil, false
		}
		return page([]model.DailyStat{*b.daily}), true
	}

	return m
}

func page[T any](items []T) *model.Page[T] {
	content := make([]T, len(items))
	copy(content, items)
	return &model.Page[T]{
		Content:       content,
		TotalElements: int64(len(content)),
		TotalPages:    1,
	}
}

// Flag builds a flag for a transaction.
func Flag(id, transactionID string, risk float64, reasons ...string) model.Flag {
	return model.Flag{
		ID:            id,
		TransactionID: transactionID,
		AccountID:     "11111111-1111-1111-1111-111111111111",
		Amount:        decimal.NewFromInt(15000),
		Currency:      "USD",
		Country:       "IR",
		Merchant:      "Test Merchant",
		RiskScore:     risk,
		Reasons:       reasons,
		CreatedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Case builds an open case for a transaction.
func Case(id, transactionID string) model.CaseItem {
	return model.CaseItem{
		ID:            id,
		TransactionID: transactionID,
		AccountID:     "11111111-1111-1111-1111-111111111111",
		Status:        model.CaseStatusOpen,
		RiskScore:     0.8,
		CreatedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Notification builds a sent email notification for a case.
func Notification(id, caseID string) model.NotificationItem {
	return model.NotificationItem{
		ID:        id,
		CaseID:    caseID,
		EventType: "CASE_CREATED",
		Channel:   model.ChannelEmail,
		Status:    model.NotificationSent,
		Recipient: "risk-ops@example.com",
	}
}

// Decision builds an AI decision for a transaction.
func Decision(id, transactionID string, risk float64) model.AiDecision {
	return model.AiDecision{
		ID:            id,
		TransactionID: transactionID,
		AccountID:     "11111111-1111-1111-1111-111111111111",
		Amount:        decimal.NewFromInt(15000),
		Currency:      "USD",
		Country:       "IR",
		Merchant:      "Test Merchant",
		RiskScore:     risk,
		ModelVersion:  "rules-v1",
	}
}
