package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/model"
)

func sampleFlags() []model.Flag {
	return []model.Flag{
		{ID: "f1", TransactionID: "t1", Merchant: "Corner Shop", Country: "US", Amount: decimal.NewFromInt(40), RiskScore: 0.2, Reasons: []string{"NEW_DEVICE"}},
		{ID: "f2", TransactionID: "t2", Merchant: "Test Merchant", Country: "IR", Amount: decimal.NewFromInt(15000), RiskScore: 0.9, Reasons: []string{"HIGH_AMOUNT", "HIGH_RISK_COUNTRY"}},
		{ID: "f3", TransactionID: "t3", Merchant: "Airline", Country: "NG", Amount: decimal.NewFromInt(1200), RiskScore: 0.5, Reasons: []string{"HIGH_RISK_COUNTRY"}},
		{ID: "f4", TransactionID: "t2", Merchant: "Test Merchant", Country: "IR", Amount: decimal.NewFromInt(15000), RiskScore: 0.7, Reasons: []string{"VELOCITY"}},
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func flagID(f model.Flag) string { return f.ID }

func TestFlags(t *testing.T) {
	tests := []struct {
		name     string
		criteria FlagCriteria
		want     []string
	}{
		{name: "no criteria keeps everything", want: []string{"f1", "f2", "f3", "f4"}},
		{name: "query is case-insensitive", criteria: FlagCriteria{Query: "test MERCHANT"}, want: []string{"f2", "f4"}},
		{name: "query matches reasons", criteria: FlagCriteria{Query: "risk_country"}, want: []string{"f2", "f3"}},
		{name: "query matches stringified amount", criteria: FlagCriteria{Query: "15000"}, want: []string{"f2", "f4"}},
		{name: "min risk excludes strictly below", criteria: FlagCriteria{MinRisk: 0.5}, want: []string{"f2", "f3", "f4"}},
		{name: "criteria compose with AND", criteria: FlagCriteria{Query: "ir", MinRisk: 0.8}, want: []string{"f2"}},
		{name: "nothing matches", criteria: FlagCriteria{Query: "zzz"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Flags(sampleFlags(), tt.criteria), flagID))
		})
	}
}

func TestFlags_IsPureAndDeterministic(t *testing.T) {
	in := sampleFlags()
	snapshot := sampleFlags()
	criteria := FlagCriteria{Query: "t2", MinRisk: 0.1}

	first := Flags(in, criteria)
	second := Flags(in, criteria)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, in)
}

func TestCases(t *testing.T) {
	analyst := "analyst-7"
	cases := []model.CaseItem{
		{ID: "c1", TransactionID: "t1", Status: model.CaseStatusOpen, RiskScore: 0.4},
		{ID: "c2", TransactionID: "t2", Status: model.CaseStatusUnderReview, RiskScore: 0.9, AssignedAnalystID: &analyst},
		{ID: "c3", TransactionID: "t3", Status: model.CaseStatusOpen, RiskScore: 0.95, Reasons: []string{"VELOCITY"}},
	}
	caseID := func(c model.CaseItem) string { return c.ID }

	assert.Equal(t, []string{"c1", "c3"}, ids(Cases(cases, CaseCriteria{Status: "OPEN"}), caseID))
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids(Cases(cases, CaseCriteria{Status: All}), caseID))
	assert.Equal(t, []string{"c3"}, ids(Cases(cases, CaseCriteria{Status: "OPEN", MinRisk: 0.5}), caseID))
	assert.Equal(t, []string{"c2"}, ids(Cases(cases, CaseCriteria{Query: "ANALYST-7"}), caseID))
	assert.Equal(t, []string{"c3"}, ids(Cases(cases, CaseCriteria{Query: "velocity"}), caseID))
}

func TestNotifications(t *testing.T) {
	items := []model.NotificationItem{
		{ID: "n1", CaseID: "c1", Channel: model.ChannelEmail, Status: model.NotificationSent, Recipient: "ops@example.com"},
		{ID: "n2", CaseID: "c1", Channel: model.ChannelSMS, Status: model.NotificationFailed, Recipient: "+15550100"},
		{ID: "n3", CaseID: "c2", Channel: model.ChannelEmail, Status: model.NotificationPending, EventType: "CASE_CREATED"},
	}
	notificationID := func(n model.NotificationItem) string { return n.ID }

	assert.Equal(t, []string{"n1", "n3"}, ids(Notifications(items, NotificationCriteria{Channel: "EMAIL"}), notificationID))
	assert.Equal(t, []string{"n2"}, ids(Notifications(items, NotificationCriteria{Status: "FAILED", Channel: All}), notificationID))
	assert.Equal(t, []string{"n3"}, ids(Notifications(items, NotificationCriteria{Query: "case_created"}), notificationID))
	assert.Equal(t, []string{"n1", "n2"}, ids(Notifications(items, NotificationCriteria{Query: "c1"}), notificationID))
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		wantSuggest string
		wantErr     bool
	}{
		{name: "empty is all", input: "", want: All},
		{name: "all lowercase", input: "all", want: All},
		{name: "case-insensitive", input: "under_review", want: "UNDER_REVIEW"},
		{name: "typo suggests", input: "APROVED", wantErr: true, wantSuggest: "did you mean APPROVED?"},
		{name: "far off has no suggestion", input: "SOMETHING_ELSE", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChoice(tt.input, CaseStatusChoices())
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrInvalidInput)
				if tt.wantSuggest != "" {
					assert.Contains(t, err.Error(), tt.wantSuggest)
				} else {
					assert.NotContains(t, err.Error(), "did you mean")
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
