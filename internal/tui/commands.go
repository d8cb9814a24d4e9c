package tui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/scenario"
)

// refresh re-reads the dashboard.
func (m Model) refresh() tea.Cmd {
	ctx, refresher := m.ctx, m.refresher
	return func() tea.Msg {
		return refreshedMsg{state: refresher.Refresh(ctx)}
	}
}

// scheduleRefresh arms the next auto-refresh tick.
func (m Model) scheduleRefresh() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return autoRefreshMsg(t)
	})
}

// loadNotes reads the case notes snapshot.
func (m Model) loadNotes() tea.Cmd {
	if m.notes == nil {
		return nil
	}
	ctx, notes := m.ctx, m.notes
	return func() tea.Msg {
		loaded, err := notes.LoadNotes(ctx)
		return notesLoadedMsg{notes: loaded, err: err}
	}
}

// hydrateFlag opens the detail view from a flag.
func (m Model) hydrateFlag(f model.Flag) tea.Cmd {
	ctx, h := m.ctx, m.hydrator
	return func() tea.Msg {
		if _, err := h.FromFlag(ctx, f, ""); err != nil {
			slog.Debug("Flag hydration failed", "flag_id", f.ID, "error", err)
		}
		return detailMsg{state: h.State()}
	}
}

// hydrateCase opens the detail view from a case.
func (m Model) hydrateCase(c model.CaseItem) tea.Cmd {
	ctx, h := m.ctx, m.hydrator
	return func() tea.Msg {
		if _, err := h.FromCase(ctx, c); err != nil {
			slog.Debug("Case hydration failed", "case_id", c.ID, "error", err)
		}
		return detailMsg{state: h.State()}
	}
}

// hydrateNotification opens the detail view from a notification.
func (m Model) hydrateNotification(n model.NotificationItem) tea.Cmd {
	ctx, h := m.ctx, m.hydrator
	return func() tea.Msg {
		if _, err := h.FromNotification(ctx, n); err != nil {
			slog.Debug("Notification hydration failed", "notification_id", n.ID, "error", err)
		}
		return detailMsg{state: h.State()}
	}
}

// updateCaseStatus moves a case through the workflow.
func (m Model) updateCaseStatus(caseID string, status model.CaseStatus) tea.Cmd {
	ctx, services := m.ctx, m.services
	return func() tea.Msg {
		updated, err := services.UpdateCaseStatus(ctx, caseID, status)
		return caseUpdatedMsg{updated: updated, err: err}
	}
}

// saveNote stores the note for a case.
func (m Model) saveNote(caseID, text string) tea.Cmd {
	if m.notes == nil {
		return nil
	}
	ctx, notes := m.ctx, m.notes
	return func() tea.Msg {
		saved, err := notes.SetNote(ctx, caseID, text)
		return noteSavedMsg{notes: saved, err: err}
	}
}

// runScenario drives a draft through the pipeline.
func (m Model) runScenario(draft model.TransactionDraft) tea.Cmd {
	ctx, o := m.ctx, m.orchestrator
	return func() tea.Msg {
		state, err := o.Run(ctx, draft)
		return scenarioDoneMsg{state: state, err: err}
	}
}

// waitForScenario delivers the next live snapshot of a run.
func waitForScenario(updates <-chan scenario.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return scenarioUpdateMsg{state: s}
	}
}

// drainScenario discards snapshots left over from earlier runs.
func drainScenario(updates <-chan scenario.State) {
	for {
		select {
		case <-updates:
		default:
			return
		}
	}
}
