package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The services bind amounts to BigDecimal and expect JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Transaction is the persisted record returned by the transaction service.
type Transaction struct {
	OccurredAt time.Time       `json:"occurredAt"`
	CreatedAt  time.Time       `json:"createdAt"`
	ID         string          `json:"id"`
	AccountID  string          `json:"accountId"`
	Currency   string          `json:"currency"`
	Country    string          `json:"country"`
	Merchant   string          `json:"merchant"`
	Amount     decimal.Decimal `json:"amount"`
}

// CreateTransactionRequest is the body of POST /api/transactions.
type CreateTransactionRequest struct {
	OccurredAt time.Time       `json:"occurredAt"`
	AccountID  string          `json:"accountId"`
	Currency   string          `json:"currency"`
	Country    string          `json:"country"`
	Merchant   string          `json:"merchant"`
	Amount     decimal.Decimal `json:"amount"`
}
