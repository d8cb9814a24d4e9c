package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/r14dd/matchsentinel/internal/dashboard"
	"github.com/r14dd/matchsentinel/internal/hydrate"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/scenario"
)

// NotYetAvailable is shown for records a poll did not observe.
const NotYetAvailable = "not yet available"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type section struct {
	b strings.Builder
}

func (s *section) line(label, value string) {
	fmt.Fprintf(&s.b, "  %-14s %s\n", label+":", value)
}

func (s *section) text(value string) {
	fmt.Fprintf(&s.b, "  %s\n", value)
}

func (s *section) String() string {
	return strings.TrimRight(s.b.String(), "\n")
}

// RenderAIDecision renders one AI decision, or a placeholder when absent.
func RenderAIDecision(d *model.AiDecision) string {
	var s section
	if d == nil {
		s.text(SubtleStyle.Render(NotYetAvailable))
		return s.String()
	}
	s.line("Risk", FormatRisk(d.RiskScore))
	s.line("Model", orDash(d.ModelVersion))
	s.line("Reasons", orDash(strings.Join(d.Reasons, ", ")))
	s.line("Decided", formatTime(d.CreatedAt))
	return s.String()
}

// RenderDetail renders a hydrated detail view with the analyst's note.
func RenderDetail(d *hydrate.Detail, note string) string {
	var out []string

	var txn section
	txn.line("ID", d.Transaction.ID)
	txn.line("Account", orDash(d.Transaction.AccountID))
	if d.Transaction.Currency != "" {
		txn.line("Amount", d.Transaction.Amount.String()+" "+d.Transaction.Currency)
	}
	txn.line("Country", orDash(d.Transaction.Country))
	txn.line("Merchant", orDash(d.Transaction.Merchant))
	txn.line("Occurred", formatTime(d.Transaction.OccurredAt))
	out = append(out, RenderBox("Transaction (from "+string(d.Seed)+")", txn.String()))

	out = append(out, RenderBox("AI decision", RenderAIDecision(d.AIDecision)))

	var flags section
	if len(d.Flags) == 0 {
		flags.text(SubtleStyle.Render("no flags"))
	}
	for _, f := range d.Flags {
		flags.text(fmt.Sprintf("%s  %s  %s", f.ID, FormatRisk(f.RiskScore), strings.Join(f.Reasons, ", ")))
	}
	out = append(out, RenderBox(fmt.Sprintf("Flags (%d)", len(d.Flags)), flags.String()))

	var c section
	if d.Case == nil {
		c.text(SubtleStyle.Render("no case"))
	} else {
		c.line("ID", d.Case.ID)
		c.line("Status", FormatCaseStatus(d.Case.Status))
		c.line("Analyst", orDash(d.Case.Analyst()))
		c.line("Risk", FormatRisk(d.Case.RiskScore))
		c.line("Reasons", orDash(strings.Join(d.Case.Reasons, ", ")))
		c.line("Updated", formatTime(d.Case.UpdatedAt))
	}
	out = append(out, RenderBox("Case", c.String()))

	var n section
	if len(d.Notifications) == 0 {
		n.text(SubtleStyle.Render("no notifications"))
	}
	for _, item := range d.Notifications {
		n.text(fmt.Sprintf("%s  %s via %s to %s: %s",
			item.ID, item.EventType, item.Channel, item.Recipient, formatNotificationStatus(item.Status)))
	}
	out = append(out, RenderBox(fmt.Sprintf("Notifications (%d)", len(d.Notifications)), n.String()))

	if note != "" {
		out = append(out, RenderBox("Note", note))
	}

	return strings.Join(out, "\n")
}

// RenderDaily renders one day's aggregate.
func RenderDaily(stat *model.DailyStat) string {
	var s section
	if stat == nil {
		s.text(SubtleStyle.Render("no report for this day"))
		return s.String()
	}
	s.line("Transactions", fmt.Sprint(stat.TotalTransactions))
	s.line("Flagged", fmt.Sprint(stat.FlaggedTransactions))
	s.line("Cases", fmt.Sprint(stat.CasesCreated))
	s.line("Notified", fmt.Sprint(stat.NotificationsSent))
	return s.String()
}

// RenderRollup renders a weekly or monthly rollup.
func RenderRollup(r *model.Rollup) string {
	var s section
	s.line("Period", r.StartDate+" → "+r.EndDate)
	s.line("Transactions", fmt.Sprint(r.TotalTransactions))
	s.line("Flagged", fmt.Sprint(r.FlaggedTransactions))
	s.line("Cases", fmt.Sprint(r.CasesCreated))
	s.line("Notified", fmt.Sprint(r.NotificationsSent))
	return s.String()
}

// RenderDashboard renders a refresh result.
func RenderDashboard(state dashboard.State) string {
	out := []string{
		RenderBox("Daily report "+state.Date.Format(model.DateLayout), RenderDaily(state.Daily)),
	}

	open := 0
	for _, c := range state.Cases {
		if c.Status == model.CaseStatusOpen {
			open++
		}
	}
	var counts section
	counts.line("Flags", fmt.Sprint(len(state.Flags)))
	counts.line("Cases", fmt.Sprintf("%d (%d open)", len(state.Cases), open))
	counts.line("Notifications", fmt.Sprint(len(state.Notifications)))
	counts.line("Refreshed", formatTime(state.RefreshedAt))
	out = append(out, RenderBox("Pipeline", counts.String()))

	if state.Warning != "" {
		out = append(out, FormatWarning(state.Warning))
	}
	return strings.Join(out, "\n")
}

// FormatStage renders one stage line of a scenario trace.
func FormatStage(p scenario.StageProgress) string {
	label := fmt.Sprintf("%-14s", p.Stage)
	switch p.Status {
	case scenario.StatusFound:
		return SuccessStyle.Render(fmt.Sprintf("%s %s found after %d attempt(s)", SuccessIcon, label, p.Attempts))
	case scenario.StatusTimeout:
		return WarningStyle.Render(fmt.Sprintf("%s %s %s after %d attempt(s)", WarningIcon, label, NotYetAvailable, p.Attempts))
	case scenario.StatusSkipped:
		return SubtleStyle.Render(fmt.Sprintf("%s %s skipped, no case", SkippedIcon, label))
	case scenario.StatusRunning:
		return InfoStyle.Render(fmt.Sprintf("%s %s polling (attempt %d)", RunningIcon, label, p.Attempts))
	default:
		return SubtleStyle.Render(fmt.Sprintf("%s %s pending", PendingIcon, label))
	}
}

// RenderScenario renders the outcome of a scenario run.
func RenderScenario(state scenario.State) string {
	var s section
	if state.Transaction != nil {
		s.line("Transaction", state.Transaction.ID)
	}
	phases := make([]string, len(state.History))
	for i, p := range state.History {
		phases[i] = string(p)
	}
	s.line("Phases", strings.Join(phases, " → "))

	if state.Err != nil {
		s.text(FormatError(state.Err.Error()))
		return RenderBox("Scenario failed", s.String())
	}

	for _, p := range state.Stages {
		s.text(FormatStage(p))
	}
	if state.AIDecision != nil {
		s.line("AI risk", FormatRisk(state.AIDecision.RiskScore))
	}
	if state.Case != nil {
		s.line("Case", state.Case.ID+" "+FormatCaseStatus(state.Case.Status))
	}
	s.line("Flags", fmt.Sprint(len(state.Flags)))
	s.line("Notifications", fmt.Sprint(len(state.Notifications)))
	return RenderBox("Scenario "+string(state.Phase), s.String())
}
