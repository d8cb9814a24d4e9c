package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r14dd/matchsentinel/internal/config"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/transport"
)

// newBackend serves every service from one test server.
func newBackend(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewClient(transport.New(transport.Options{Timeout: 2 * time.Second}), config.Services{
		Transactions:  srv.URL,
		RuleEngine:    srv.URL,
		Cases:         srv.URL,
		Notifications: srv.URL,
		Reporting:     srv.URL,
		AI:            srv.URL,
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_CreateTransaction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transactions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		assert.NoError(t, dec.Decode(&body))
		assert.Equal(t, "USD", body["currency"])
		assert.Equal(t, "15000", body["amount"].(json.Number).String())
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"t-1","accountId":"a-1","amount":15000,"currency":"USD","country":"IR","merchant":"Test Merchant","occurredAt":"2025-01-01T00:00:00Z","createdAt":"2025-01-01T00:00:01Z"}`)
	})
	c := newBackend(t, mux)

	req := model.DefaultDraft().Coerce(time.Now())
	txn, err := c.CreateTransaction(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "t-1", txn.ID)
	assert.Equal(t, "15000", txn.Amount.String())
}

func TestClient_ListCasesEncodesFilter(t *testing.T) {
	var query string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cases", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		writeJSON(t, w, model.Page[model.CaseItem]{
			Content:       []model.CaseItem{{ID: "c-1", TransactionID: "t-1", Status: model.CaseStatusOpen}},
			TotalElements: 1,
			TotalPages:    1,
		})
	})
	c := newBackend(t, mux)

	page, ok := c.ListCases(context.Background(), CaseFilter{TransactionID: "t-1", Status: model.CaseStatusOpen})

	require.True(t, ok)
	first, ok := page.First()
	require.True(t, ok)
	assert.Equal(t, "c-1", first.ID)
	assert.Equal(t, "status=OPEN&transactionId=t-1", query)
}

func TestClient_GetAIDecisionAbsentOn404(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ai/decisions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "t-9", r.URL.Query().Get("transactionId"))
		w.WriteHeader(http.StatusNotFound)
	})
	c := newBackend(t, mux)

	decision, ok := c.GetAIDecision(context.Background(), "t-9")

	assert.False(t, ok)
	assert.Nil(t, decision)
}

func TestClient_CaseMutations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/cases/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var body model.UpdateCaseStatusRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(t, w, model.CaseItem{ID: r.PathValue("id"), Status: body.Status})
	})
	mux.HandleFunc("PATCH /api/cases/{id}/assign", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if string(raw) == `{"analystId":null}` {
			writeJSON(t, w, model.CaseItem{ID: r.PathValue("id")})
			return
		}
		var body model.AssignCaseRequest
		assert.NoError(t, json.Unmarshal(raw, &body))
		writeJSON(t, w, model.CaseItem{ID: r.PathValue("id"), AssignedAnalystID: body.AnalystID})
	})
	c := newBackend(t, mux)
	ctx := context.Background()

	updated, err := c.UpdateCaseStatus(ctx, "c-1", model.CaseStatusUnderReview)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusUnderReview, updated.Status)

	analyst := "analyst-7"
	assigned, err := c.AssignCase(ctx, "c-1", &analyst)
	require.NoError(t, err)
	assert.Equal(t, "analyst-7", assigned.Analyst())

	cleared, err := c.AssignCase(ctx, "c-1", nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.Analyst())
}

func TestClient_UpdateCaseStatusFailureCarriesEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/cases/{id}/status", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "case not found", http.StatusNotFound)
	})
	c := newBackend(t, mux)

	_, err := c.UpdateCaseStatus(context.Background(), "missing", model.CaseStatusApproved)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/api/cases/missing/status")
	assert.Contains(t, err.Error(), "404")
}

func TestClient_Reports(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/reports/daily", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-02-03", r.URL.Query().Get("date"))
		writeJSON(t, w, model.Page[model.DailyStat]{Content: []model.DailyStat{{StatDate: "2025-02-03", TotalTransactions: 12}}})
	})
	mux.HandleFunc("GET /api/reports/daily/rollups/monthly", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-02", r.URL.Query().Get("month"))
		writeJSON(t, w, model.Rollup{StartDate: "2025-02-01", EndDate: "2025-02-28", CasesCreated: 4})
	})
	c := newBackend(t, mux)
	day := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

	page, ok := c.DailyReport(context.Background(), day)
	require.True(t, ok)
	stat, ok := page.First()
	require.True(t, ok)
	assert.Equal(t, int64(12), stat.TotalTransactions)

	rollup, ok := c.MonthlyRollup(context.Background(), day)
	require.True(t, ok)
	assert.Equal(t, int64(4), rollup.CasesCreated)

	_, ok = c.WeeklyRollup(context.Background(), day)
	assert.False(t, ok)
}
