package model

import "time"

// Notification channels.
const (
	ChannelEmail = "EMAIL"
	ChannelSMS   = "SMS"
)

// Notification delivery statuses.
const (
	NotificationPending = "PENDING"
	NotificationSent    = "SENT"
	NotificationFailed  = "FAILED"
)

// NotificationItem is a message dispatched for a case.
type NotificationItem struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	CaseID    string    `json:"caseId"`
	EventType string    `json:"eventType"`
	Channel   string    `json:"channel"`
	Status    string    `json:"status"`
	Recipient string    `json:"recipient"`
	Payload   string    `json:"payload"`
}

// NotificationsForCase returns the notifications whose CaseID matches, in input order.
func NotificationsForCase(items []NotificationItem, caseID string) []NotificationItem {
	var out []NotificationItem
	for _, n := range items {
		if n.CaseID == caseID {
			out = append(out, n)
		}
	}
	return out
}
