package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AiDecision is the AI service's score for one transaction.
type AiDecision struct {
	OccurredAt    time.Time       `json:"occurredAt"`
	CreatedAt     time.Time       `json:"createdAt"`
	ID            string          `json:"id"`
	TransactionID string          `json:"transactionId"`
	AccountID     string          `json:"accountId"`
	Currency      string          `json:"currency"`
	Country       string          `json:"country"`
	Merchant      string          `json:"merchant"`
	ModelVersion  string          `json:"modelVersion"`
	Reasons       []string        `json:"reasons"`
	Amount        decimal.Decimal `json:"amount"`
	RiskScore     float64         `json:"riskScore"`
}
