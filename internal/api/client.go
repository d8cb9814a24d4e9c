package api

import (
	"context"
	"net/url"
	"time"

	"github.com/r14dd/matchsentinel/internal/config"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/transport"
)

// Client implements Services over HTTP.
type Client struct {
	http     *transport.Client
	services config.Services
}

// NewClient creates a Client for the given service base URLs.
func NewClient(httpClient *transport.Client, services config.Services) *Client {
	return &Client{
		http:     httpClient,
		services: services,
	}
}

// CreateTransaction submits a new transaction.
func (c *Client) CreateTransaction(ctx context.Context, req model.CreateTransactionRequest) (*model.Transaction, error) {
	return transport.Post[model.Transaction](ctx, c.http, c.services.Transactions+"/api/transactions", req)
}

// ListFlags returns the rule engine's flag page.
func (c *Client) ListFlags(ctx context.Context) (*model.Page[model.Flag], bool) {
	return transport.Get[model.Page[model.Flag]](ctx, c.http, c.services.RuleEngine+"/api/flags")
}

// ListCases returns cases, filtered server-side.
func (c *Client) ListCases(ctx context.Context, filter CaseFilter) (*model.Page[model.CaseItem], bool) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.AnalystID != "" {
		q.Set("analystId", filter.AnalystID)
	}
	if filter.TransactionID != "" {
		q.Set("transactionId", filter.TransactionID)
	}
	if filter.AccountID != "" {
		q.Set("accountId", filter.AccountID)
	}

	endpoint := c.services.Cases + "/api/cases"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	return transport.Get[model.Page[model.CaseItem]](ctx, c.http, endpoint)
}

// GetCase fetches one case by id.
func (c *Client) GetCase(ctx context.Context, id string) (*model.CaseItem, bool) {
	return transport.Get[model.CaseItem](ctx, c.http, c.caseURL(id))
}

// UpdateCaseStatus moves a case to a new workflow status.
func (c *Client) UpdateCaseStatus(ctx context.Context, id string, status model.CaseStatus) (*model.CaseItem, error) {
	return transport.Patch[model.CaseItem](ctx, c.http, c.caseURL(id)+"/status", model.UpdateCaseStatusRequest{Status: status})
}

// AssignCase sets or clears (nil analystID) the case's analyst.
func (c *Client) AssignCase(ctx context.Context, id string, analystID *string) (*model.CaseItem, error) {
	return transport.Patch[model.CaseItem](ctx, c.http, c.caseURL(id)+"/assign", model.AssignCaseRequest{AnalystID: analystID})
}

// ListNotifications returns the notification page.
func (c *Client) ListNotifications(ctx context.Context) (*model.Page[model.NotificationItem], bool) {
	return transport.Get[model.Page[model.NotificationItem]](ctx, c.http, c.services.Notifications+"/api/notifications")
}

// DailyReport returns the stats page for one day; the first element is the day's aggregate.
func (c *Client) DailyReport(ctx context.Context, date time.Time) (*model.Page[model.DailyStat], bool) {
	q := url.Values{"date": {date.Format(model.DateLayout)}}
	return transport.Get[model.Page[model.DailyStat]](ctx, c.http, c.services.Reporting+"/api/reports/daily?"+q.Encode())
}

// WeeklyRollup aggregates the week containing date.
func (c *Client) WeeklyRollup(ctx context.Context, date time.Time) (*model.Rollup, bool) {
	q := url.Values{"date": {date.Format(model.DateLayout)}}
	return transport.Get[model.Rollup](ctx, c.http, c.services.Reporting+"/api/reports/daily/rollups/weekly?"+q.Encode())
}

// MonthlyRollup aggregates the month containing month.
func (c *Client) MonthlyRollup(ctx context.Context, month time.Time) (*model.Rollup, bool) {
	q := url.Values{"month": {month.Format(model.MonthLayout)}}
	return transport.Get[model.Rollup](ctx, c.http, c.services.Reporting+"/api/reports/daily/rollups/monthly?"+q.Encode())
}

// GetAIDecision looks up the AI decision for a transaction.
func (c *Client) GetAIDecision(ctx context.Context, transactionID string) (*model.AiDecision, bool) {
	q := url.Values{"transactionId": {transactionID}}
	return transport.Get[model.AiDecision](ctx, c.http, c.services.AI+"/api/ai/decisions?"+q.Encode())
}

func (c *Client) caseURL(id string) string {
	return c.services.Cases + "/api/cases/" + url.PathEscape(id)
}
