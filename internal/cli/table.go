package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/r14dd/matchsentinel/internal/model"
)

const timeLayout = "2006-01-02 15:04"

func newTable(w io.Writer, headers ...string) (*tabwriter.Writer, error) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
		rules[i] = strings.Repeat("─", len(h))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(styled, "\t")); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, strings.Join(rules, "\t")); err != nil {
		return nil, fmt.Errorf("failed to write separator: %w", err)
	}
	return tw, nil
}

func writeEmpty(w io.Writer, what string) error {
	_, err := fmt.Fprintln(w, SubtleStyle.Render("No "+what+"."))
	return err
}

// WriteFlags renders flags as a table.
func WriteFlags(w io.Writer, flags []model.Flag) error {
	if len(flags) == 0 {
		return writeEmpty(w, "flags")
	}

	tw, err := newTable(w, "ID", "Transaction", "Amount", "Country", "Merchant", "Risk", "Reasons")
	if err != nil {
		return err
	}
	for _, f := range flags {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\t%s\t%s\n",
			f.ID,
			f.TransactionID,
			f.Amount.String(), f.Currency,
			f.Country,
			f.Merchant,
			FormatRisk(f.RiskScore),
			strings.Join(f.Reasons, ", ")); err != nil {
			return fmt.Errorf("failed to write flag row: %w", err)
		}
	}
	return tw.Flush()
}

// WriteCases renders cases as a table. Cases with a local note are marked.
func WriteCases(w io.Writer, cases []model.CaseItem, notes map[string]string) error {
	if len(cases) == 0 {
		return writeEmpty(w, "cases")
	}

	tw, err := newTable(w, "ID", "Transaction", "Status", "Analyst", "Risk", "Created", "Note")
	if err != nil {
		return err
	}
	for _, c := range cases {
		analyst := c.Analyst()
		if analyst == "" {
			analyst = "-"
		}
		note := ""
		if _, ok := notes[c.ID]; ok {
			note = "✎"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			c.TransactionID,
			FormatCaseStatus(c.Status),
			analyst,
			FormatRisk(c.RiskScore),
			formatTime(c.CreatedAt),
			note); err != nil {
			return fmt.Errorf("failed to write case row: %w", err)
		}
	}
	return tw.Flush()
}

// WriteNotifications renders notifications as a table.
func WriteNotifications(w io.Writer, items []model.NotificationItem) error {
	if len(items) == 0 {
		return writeEmpty(w, "notifications")
	}

	tw, err := newTable(w, "ID", "Case", "Event", "Channel", "Status", "Recipient", "Created")
	if err != nil {
		return err
	}
	for _, n := range items {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			n.ID,
			n.CaseID,
			n.EventType,
			n.Channel,
			formatNotificationStatus(n.Status),
			n.Recipient,
			formatTime(n.CreatedAt)); err != nil {
			return fmt.Errorf("failed to write notification row: %w", err)
		}
	}
	return tw.Flush()
}

// WriteNotes renders the local case notes sorted by case id.
func WriteNotes(w io.Writer, ids []string, notes map[string]string) error {
	if len(ids) == 0 {
		return writeEmpty(w, "notes")
	}

	tw, err := newTable(w, "Case", "Note")
	if err != nil {
		return err
	}
	for _, id := range ids {
		first, _, _ := strings.Cut(notes[id], "\n")
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", id, first); err != nil {
			return fmt.Errorf("failed to write note row: %w", err)
		}
	}
	return tw.Flush()
}

func formatNotificationStatus(status string) string {
	switch status {
	case model.NotificationSent:
		return SuccessStyle.Render(status)
	case model.NotificationFailed:
		return ErrorStyle.Render(status)
	default:
		return WarningStyle.Render(status)
	}
}
