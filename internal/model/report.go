package model

import "time"

// DateLayout is the wire format of calendar dates used by the reporting service.
const DateLayout = "2006-01-02"

// MonthLayout is the wire format of calendar months.
const MonthLayout = "2006-01"

// DailyStat is the reporting service's aggregate for one day.
type DailyStat struct {
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	ID                  string    `json:"id"`
	StatDate            string    `json:"statDate"`
	TotalTransactions   int64     `json:"totalTransactions"`
	FlaggedTransactions int64     `json:"flaggedTransactions"`
	CasesCreated        int64     `json:"casesCreated"`
	NotificationsSent   int64     `json:"notificationsSent"`
}

// Rollup aggregates daily stats over a week or a month.
type Rollup struct {
	StartDate           string `json:"startDate"`
	EndDate             string `json:"endDate"`
	TotalTransactions   int64  `json:"totalTransactions"`
	FlaggedTransactions int64  `json:"flaggedTransactions"`
	CasesCreated        int64  `json:"casesCreated"`
	NotificationsSent   int64  `json:"notificationsSent"`
}
