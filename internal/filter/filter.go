// Package filter narrows already-loaded collections. Every function is pure: the
// input slice is never modified and survivors keep their relative order.
package filter

import (
	"strings"

	"github.com/r14dd/matchsentinel/internal/model"
)

// All disables a structured filter.
const All = "ALL"

// FlagCriteria narrows a flag list.
type FlagCriteria struct {
	Query   string
	MinRisk float64
}

// CaseCriteria narrows a case list.
type CaseCriteria struct {
	Query   string
	Status  string
	MinRisk float64
}

// NotificationCriteria narrows a notification list.
type NotificationCriteria struct {
	Query   string
	Status  string
	Channel string
}

// Flags returns the flags matching every criterion.
func Flags(in []model.Flag, c FlagCriteria) []model.Flag {
	return keep(in, func(f model.Flag) bool {
		return matchesQuery(c.Query, flagText(f)) && meetsRisk(f.RiskScore, c.MinRisk)
	})
}

// Cases returns the cases matching every criterion.
func Cases(in []model.CaseItem, c CaseCriteria) []model.CaseItem {
	return keep(in, func(item model.CaseItem) bool {
		return matchesQuery(c.Query, caseText(item)) &&
			matchesChoice(c.Status, string(item.Status)) &&
			meetsRisk(item.RiskScore, c.MinRisk)
	})
}

// Notifications returns the notifications matching every criterion.
func Notifications(in []model.NotificationItem, c NotificationCriteria) []model.NotificationItem {
	return keep(in, func(n model.NotificationItem) bool {
		return matchesQuery(c.Query, notificationText(n)) &&
			matchesChoice(c.Status, n.Status) &&
			matchesChoice(c.Channel, n.Channel)
	})
}

func keep[T any](in []T, pred func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, item := range in {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

func matchesQuery(query, haystack string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), query)
}

// meetsRisk drops scores strictly below a non-zero threshold.
func meetsRisk(score, min float64) bool {
	return min == 0 || score >= min
}

func matchesChoice(selected, value string) bool {
	if selected == "" || selected == All {
		return true
	}
	return selected == value
}

func flagText(f model.Flag) string {
	fields := []string{f.ID, f.TransactionID, f.AccountID, f.Merchant, f.Country, f.Currency, f.Amount.String()}
	return strings.Join(append(fields, f.Reasons...), " ")
}

func caseText(c model.CaseItem) string {
	fields := []string{c.ID, c.TransactionID, c.AccountID, string(c.Status), c.Analyst()}
	return strings.Join(append(fields, c.Reasons...), " ")
}

func notificationText(n model.NotificationItem) string {
	return strings.Join([]string{n.ID, n.CaseID, n.EventType, n.Channel, n.Status, n.Recipient}, " ")
}
