package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionDraft_Coerce(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		name           string
		draft          TransactionDraft
		wantAmount     string
		wantOccurredAt time.Time
	}{
		{
			name:           "default draft occurs now",
			draft:          DefaultDraft(),
			wantAmount:     "15000",
			wantOccurredAt: now,
		},
		{
			name: "rfc3339 timestamp kept",
			draft: TransactionDraft{
				Amount:     "12.50",
				OccurredAt: "2025-01-02T03:04:05Z",
			},
			wantAmount:     "12.5",
			wantOccurredAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			name: "garbage amount and timestamp",
			draft: TransactionDraft{
				Amount:     "lots",
				OccurredAt: "yesterday-ish",
			},
			wantAmount:     "0",
			wantOccurredAt: now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.draft.Coerce(now)
			assert.Equal(t, tt.wantAmount, req.Amount.String())
			assert.True(t, tt.wantOccurredAt.Equal(req.OccurredAt), "got %v", req.OccurredAt)
		})
	}
}

func TestTransactionDraft_CoerceNormalizesCodes(t *testing.T) {
	req := TransactionDraft{Currency: " usd ", Country: "ir", Merchant: "  Shop "}.Coerce(time.Now())
	assert.Equal(t, "USD", req.Currency)
	assert.Equal(t, "IR", req.Country)
	assert.Equal(t, "Shop", req.Merchant)
}

func TestTransactionDraft_Validate(t *testing.T) {
	require.NoError(t, DefaultDraft().Validate())

	err := TransactionDraft{AccountID: "nope", Amount: "-1", Currency: "US", Country: "IRN"}.Validate()
	require.ErrorIs(t, err, ErrInvalidDraft)
	assert.Contains(t, err.Error(), "accountId must be a UUID")
	assert.Contains(t, err.Error(), "amount must be positive")
	assert.Contains(t, err.Error(), "currency")
	assert.Contains(t, err.Error(), "country")
	assert.Contains(t, err.Error(), "merchant is required")
}

func TestParseCaseStatus(t *testing.T) {
	status, err := ParseCaseStatus(" under_review ")
	require.NoError(t, err)
	assert.Equal(t, CaseStatusUnderReview, status)

	_, err = ParseCaseStatus("CLOSED")
	assert.Error(t, err)
}

func TestPage_FirstAndItems(t *testing.T) {
	var nilPage *Page[Flag]
	assert.Nil(t, nilPage.Items())
	_, ok := nilPage.First()
	assert.False(t, ok)

	page := &Page[Flag]{Content: []Flag{{ID: "a"}, {ID: "b"}}}
	first, ok := page.First()
	require.True(t, ok)
	assert.Equal(t, "a", first.ID)
}

func TestJoinHelpers(t *testing.T) {
	flags := []Flag{{ID: "1", TransactionID: "t1"}, {ID: "2", TransactionID: "t2"}, {ID: "3", TransactionID: "t1"}}
	got := FlagsForTransaction(flags, "t1")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	notes := []NotificationItem{{ID: "n1", CaseID: "c2"}, {ID: "n2", CaseID: "c1"}}
	assert.Empty(t, NotificationsForCase(notes, "c3"))
	assert.Len(t, NotificationsForCase(notes, "c1"), 1)
}
