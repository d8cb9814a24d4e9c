package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Flag is a suspicion record produced by the rule engine for one transaction.
type Flag struct {
	OccurredAt    time.Time       `json:"occurredAt"`
	CreatedAt     time.Time       `json:"createdAt"`
	ID            string          `json:"id"`
	TransactionID string          `json:"transactionId"`
	AccountID     string          `json:"accountId"`
	Currency      string          `json:"currency"`
	Country       string          `json:"country"`
	Merchant      string          `json:"merchant"`
	Reasons       []string        `json:"reasons"`
	Amount        decimal.Decimal `json:"amount"`
	RiskScore     float64         `json:"riskScore"`
}

// FlagsForTransaction returns the flags whose TransactionID matches, in input order.
func FlagsForTransaction(flags []Flag, transactionID string) []Flag {
	var out []Flag
	for _, f := range flags {
		if f.TransactionID == transactionID {
			out = append(out, f)
		}
	}
	return out
}
