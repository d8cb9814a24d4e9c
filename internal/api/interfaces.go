// Package api provides typed access to the MatchSentinel backend services.
package api

import (
	"context"
	"time"

	"github.com/r14dd/matchsentinel/internal/model"
)

// CaseFilter narrows GET /api/cases server-side. Empty fields are omitted.
type CaseFilter struct {
	Status        model.CaseStatus
	AnalystID     string
	TransactionID string
	AccountID     string
}

// Services is every backend call the console makes. Reads return false when the
// record is absent or the service could not be reached; writes return an error.
type Services interface {
	// Transaction service
	CreateTransaction(ctx context.Context, req model.CreateTransactionRequest) (*model.Transaction, error)

	// Rule engine
	ListFlags(ctx context.Context) (*model.Page[model.Flag], bool)

	// Case service
	ListCases(ctx context.Context, filter CaseFilter) (*model.Page[model.CaseItem], bool)
	GetCase(ctx context.Context, id string) (*model.CaseItem, bool)
	UpdateCaseStatus(ctx context.Context, id string, status model.CaseStatus) (*model.CaseItem, error)
	AssignCase(ctx context.Context, id string, analystID *string) (*model.CaseItem, error)

	// Notification service
	ListNotifications(ctx context.Context) (*model.Page[model.NotificationItem], bool)

	// Reporting service
	DailyReport(ctx context.Context, date time.Time) (*model.Page[model.DailyStat], bool)
	WeeklyRollup(ctx context.Context, date time.Time) (*model.Rollup, bool)
	MonthlyRollup(ctx context.Context, month time.Time) (*model.Rollup, bool)

	// AI service
	GetAIDecision(ctx context.Context, transactionID string) (*model.AiDecision, bool)
}
