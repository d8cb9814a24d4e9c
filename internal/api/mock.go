package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/r14dd/matchsentinel/internal/model"
)

// MockServices is a Services implementation for tests. Unset functions behave as
// an empty backend: reads are absent and writes echo their input.
type MockServices struct {
	CreateTransactionFn func(ctx context.Context, req model.CreateTransactionRequest) (*model.Transaction, error)
	ListFlagsFn         func(ctx context.Context) (*model.Page[model.Flag], bool)
	ListCasesFn         func(ctx context.Context, filter CaseFilter) (*model.Page[model.CaseItem], bool)
	GetCaseFn           func(ctx context.Context, id string) (*model.CaseItem, bool)
	UpdateCaseStatusFn  func(ctx context.Context, id string, status model.CaseStatus) (*model.CaseItem, error)
	AssignCaseFn        func(ctx context.Context, id string, analystID *string) (*model.CaseItem, error)
	ListNotificationsFn func(ctx context.Context) (*model.Page[model.NotificationItem], bool)
	DailyReportFn       func(ctx context.Context, date time.Time) (*model.Page[model.DailyStat], bool)
	WeeklyRollupFn      func(ctx context.Context, date time.Time) (*model.Rollup, bool)
	MonthlyRollupFn     func(ctx context.Context, month time.Time) (*model.Rollup, bool)
	GetAIDecisionFn     func(ctx context.Context, transactionID string) (*model.AiDecision, bool)

	calls map[string]int
	mu    sync.Mutex
}

// NewMockServices creates an empty mock backend.
func NewMockServices() *MockServices {
	return &MockServices{calls: make(map[string]int)}
}

// Calls returns how many times the named method was invoked.
func (m *MockServices) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockServices) track(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// CreateTransaction implements Services.
func (m *MockServices) CreateTransaction(ctx context.Context, req model.CreateTransactionRequest) (*model.Transaction, error) {
	m.track("CreateTransaction")
	if m.CreateTransactionFn != nil {
		return m.CreateTransactionFn(ctx, req)
	}
	return &model.Transaction{
		ID:         uuid.NewString(),
		AccountID:  req.AccountID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Country:    req.Country,
		Merchant:   req.Merchant,
		OccurredAt: req.OccurredAt,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ListFlags implements Services.
func (m *MockServices) ListFlags(ctx context.Context) (*model.Page[model.Flag], bool) {
	m.track("ListFlags")
	if m.ListFlagsFn != nil {
		return m.ListFlagsFn(ctx)
	}
	return nil, false
}

// ListCases implements Services.
func (m *MockServices) ListCases(ctx context.Context, filter CaseFilter) (*model.Page[model.CaseItem], bool) {
	m.track("ListCases")
	if m.ListCasesFn != nil {
		return m.ListCasesFn(ctx, filter)
	}
	return nil, false
}

// GetCase implements Services.
func (m *MockServices) GetCase(ctx context.Context, id string) (*model.CaseItem, bool) {
	m.track("GetCase")
	if m.GetCaseFn != nil {
		return m.GetCaseFn(ctx, id)
	}
	return nil, false
}

// UpdateCaseStatus implements Services.
func (m *MockServices) UpdateCaseStatus(ctx context.Context, id string, status model.CaseStatus) (*model.CaseItem, error) {
	m.track("UpdateCaseStatus")
	if m.UpdateCaseStatusFn != nil {
		return m.UpdateCaseStatusFn(ctx, id, status)
	}
	return &model.CaseItem{ID: id, Status: status, UpdatedAt: time.Now().UTC()}, nil
}

// AssignCase implements Services.
func (m *MockServices) AssignCase(ctx context.Context, id string, analystID *string) (*model.CaseItem, error) {
	m.track("AssignCase")
	if m.AssignCaseFn != nil {
		return m.AssignCaseFn(ctx, id, analystID)
	}
	return &model.CaseItem{ID: id, AssignedAnalystID: analystID, UpdatedAt: time.Now().UTC()}, nil
}

// ListNotifications implements Services.
func (m *MockServices) ListNotifications(ctx context.Context) (*model.Page[model.NotificationItem], bool) {
	m.track("ListNotifications")
	if m.ListNotificationsFn != nil {
		return m.ListNotificationsFn(ctx)
	}
	return nil, false
}

// DailyReport implements Services.
func (m *MockServices) DailyReport(ctx context.Context, date time.Time) (*model.Page[model.DailyStat], bool) {
	m.track("DailyReport")
	if m.DailyReportFn != nil {
		return m.DailyReportFn(ctx, date)
	}
	return nil, false
}

// WeeklyRollup implements Services.
func (m *MockServices) WeeklyRollup(ctx context.Context, date time.Time) (*model.Rollup, bool) {
	m.track("WeeklyRollup")
	if m.WeeklyRollupFn != nil {
		return m.WeeklyRollupFn(ctx, date)
	}
	return nil, false
}

// MonthlyRollup implements Services.
func (m *MockServices) MonthlyRollup(ctx context.Context, month time.Time) (*model.Rollup, bool) {
	m.track("MonthlyRollup")
	if m.MonthlyRollupFn != nil {
		return m.MonthlyRollupFn(ctx, month)
	}
	return nil, false
}

// GetAIDecision implements Services.
func (m *MockServices) GetAIDecision(ctx context.Context, transactionID string) (*model.AiDecision, bool) {
	m.track("GetAIDecision")
	if m.GetAIDecisionFn != nil {
		return m.GetAIDecisionFn(ctx, transactionID)
	}
	return nil, false
}
