package model

import (
	"fmt"
	"strings"
	"time"
)

// CaseStatus is the analyst workflow status of a case.
type CaseStatus string

const (
	// CaseStatusOpen is the status of a freshly created case.
	CaseStatusOpen CaseStatus = "OPEN"
	// CaseStatusUnderReview means an analyst is working the case.
	CaseStatusUnderReview CaseStatus = "UNDER_REVIEW"
	// CaseStatusApproved closes the case as legitimate.
	CaseStatusApproved CaseStatus = "APPROVED"
	// CaseStatusRejected closes the case as fraudulent.
	CaseStatusRejected CaseStatus = "REJECTED"
)

// CaseStatuses lists every status in workflow order.
var CaseStatuses = []CaseStatus{
	CaseStatusOpen,
	CaseStatusUnderReview,
	CaseStatusApproved,
	CaseStatusRejected,
}

// ParseCaseStatus accepts a status case-insensitively.
func ParseCaseStatus(s string) (CaseStatus, error) {
	want := CaseStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, status := range CaseStatuses {
		if status == want {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown case status %q", s)
}

// CaseItem is an investigation opened for one transaction.
type CaseItem struct {
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	AssignedAnalystID *string    `json:"assignedAnalystId,omitempty"`
	ID                string     `json:"id"`
	TransactionID     string     `json:"transactionId"`
	AccountID         string     `json:"accountId"`
	Status            CaseStatus `json:"status"`
	Reasons           []string   `json:"reasons"`
	RiskScore         float64    `json:"riskScore"`
}

// Analyst returns the assigned analyst id or "" when unassigned.
func (c CaseItem) Analyst() string {
	if c.AssignedAnalystID == nil {
		return ""
	}
	return *c.AssignedAnalystID
}

// UpdateCaseStatusRequest is the body of PATCH /api/cases/{id}/status.
type UpdateCaseStatusRequest struct {
	Status CaseStatus `json:"status"`
}

// AssignCaseRequest is the body of PATCH /api/cases/{id}/assign. A nil analyst
// clears the assignment.
type AssignCaseRequest struct {
	AnalystID *string `json:"analystId"`
}
