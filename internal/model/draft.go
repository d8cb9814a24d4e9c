package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidDraft is returned by TransactionDraft.Validate.
var ErrInvalidDraft = errors.New("invalid transaction draft")

var (
	currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
	countryPattern  = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

// occurredAtLayouts are tried in order when coercing OccurredAt.
var occurredAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

// TransactionDraft is raw operator input for a scenario run, as typed.
type TransactionDraft struct {
	AccountID  string
	Amount     string
	Currency   string
	Country    string
	Merchant   string
	OccurredAt string
}

// DefaultDraft returns the sample transaction used to exercise the pipeline: a large
// amount from a high-risk country, which the rule engine is expected to flag.
func DefaultDraft() TransactionDraft {
	return TransactionDraft{
		AccountID: "11111111-1111-1111-1111-111111111111",
		Amount:    "15000",
		Currency:  "USD",
		Country:   "IR",
		Merchant:  "Test Merchant",
	}
}

// Coerce converts the draft into a request body. An unparsable amount becomes
// zero and is left for the transaction service to reject; an empty or unparsable
// OccurredAt becomes now.
func (d TransactionDraft) Coerce(now time.Time) CreateTransactionRequest {
	amount, err := decimal.NewFromString(strings.TrimSpace(d.Amount))
	if err != nil {
		amount = decimal.Zero
	}

	return CreateTransactionRequest{
		AccountID:  strings.TrimSpace(d.AccountID),
		Amount:     amount,
		Currency:   strings.ToUpper(strings.TrimSpace(d.Currency)),
		Country:    strings.ToUpper(strings.TrimSpace(d.Country)),
		Merchant:   strings.TrimSpace(d.Merchant),
		OccurredAt: parseOccurredAt(d.OccurredAt, now),
	}
}

func parseOccurredAt(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.UTC()
	}
	for _, layout := range occurredAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.UTC()
		}
	}
	return now.UTC()
}

// Validate reports the problems the transaction service would reject the draft for.
// It is advisory: the scenario runner submits whatever it is given.
func (d TransactionDraft) Validate() error {
	var problems []string

	if _, err := uuid.Parse(strings.TrimSpace(d.AccountID)); err != nil {
		problems = append(problems, "accountId must be a UUID")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(d.Amount))
	if err != nil {
		problems = append(problems, "amount must be numeric")
	} else if !amount.IsPositive() {
		problems = append(problems, "amount must be positive")
	}
	if !currencyPattern.MatchString(strings.TrimSpace(d.Currency)) {
		problems = append(problems, "currency must be a 3-letter ISO code")
	}
	if !countryPattern.MatchString(strings.TrimSpace(d.Country)) {
		problems = append(problems, "country must be a 2-letter ISO code")
	}
	if strings.TrimSpace(d.Merchant) == "" {
		problems = append(problems, "merchant is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDraft, strings.Join(problems, "; "))
	}
	return nil
}
