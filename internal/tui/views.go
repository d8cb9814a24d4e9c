package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/r14dd/matchsentinel/internal/cli"
	"github.com/r14dd/matchsentinel/internal/filter"
	"github.com/r14dd/matchsentinel/internal/scenario"
)

// chromeHeight is the number of lines taken by header, filter bar and footer.
const chromeHeight = 8

func (m *Model) resize() {
	h := m.height - chromeHeight
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)
	m.table.SetWidth(m.width)
	m.help.Width = m.width
}

func columnsFor(tab Tab) []table.Column {
	switch tab {
	case TabCases:
		return []table.Column{
			{Title: "ID", Width: 12},
			{Title: "Transaction", Width: 12},
			{Title: "Status", Width: 13},
			{Title: "Analyst", Width: 12},
			{Title: "Risk", Width: 5},
			{Title: "Note", Width: 4},
		}
	case TabNotifications:
		return []table.Column{
			{Title: "ID", Width: 12},
			{Title: "Case", Width: 12},
			{Title: "Event", Width: 18},
			{Title: "Channel", Width: 7},
			{Title: "Status", Width: 8},
			{Title: "Recipient", Width: 24},
		}
	default:
		return []table.Column{
			{Title: "ID", Width: 12},
			{Title: "Transaction", Width: 12},
			{Title: "Amount", Width: 16},
			{Title: "Country", Width: 7},
			{Title: "Risk", Width: 5},
			{Title: "Reasons", Width: 32},
		}
	}
}

// rebuildTable reapplies the filters to the dashboard lists and refills the table.
func (m *Model) rebuildTable() {
	m.visibleFlags = filter.Flags(m.dashboard.Flags, m.flagCriteria)
	m.visibleCases = filter.Cases(m.dashboard.Cases, m.caseCriteria)
	m.visibleNotifs = filter.Notifications(m.dashboard.Notifications, m.notifyCriteria)

	var rows []table.Row
	switch m.tab {
	case TabFlags:
		for _, f := range m.visibleFlags {
			rows = append(rows, table.Row{
				f.ID,
				f.TransactionID,
				f.Amount.String() + " " + f.Currency,
				f.Country,
				fmt.Sprintf("%.2f", f.RiskScore),
				strings.Join(f.Reasons, ", "),
			})
		}
	case TabCases:
		for _, c := range m.visibleCases {
			note := ""
			if _, ok := m.caseNotes[c.ID]; ok {
				note = "✎"
			}
			rows = append(rows, table.Row{
				c.ID,
				c.TransactionID,
				string(c.Status),
				c.Analyst(),
				fmt.Sprintf("%.2f", c.RiskScore),
				note,
			})
		}
	case TabNotifications:
		for _, n := range m.visibleNotifs {
			rows = append(rows, table.Row{n.ID, n.CaseID, n.EventType, n.Channel, n.Status, n.Recipient})
		}
	}

	// Rows must be cleared before the column count changes.
	m.table.SetRows(nil)
	m.table.SetColumns(columnsFor(m.tab))
	m.table.SetRows(rows)
	// An empty table leaves the cursor at -1.
	if c := m.table.Cursor(); c < 0 {
		m.table.SetCursor(0)
	} else if c >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.mode {
	case ModeDetail, ModeNote:
		body = m.renderDetail()
	case ModeScenarioForm:
		body = m.renderForm()
	case ModeScenario:
		body = m.renderScenario()
	default:
		body = lipgloss.JoinVertical(lipgloss.Left, m.renderFilters(), m.table.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render(cli.SentinelIcon + "  MatchSentinel")

	counts := map[Tab]int{
		TabFlags:         len(m.visibleFlags),
		TabCases:         len(m.visibleCases),
		TabNotifications: len(m.visibleNotifs),
	}
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := fmt.Sprintf("%s (%d)", t, counts[t])
		if t == m.tab {
			parts = append(parts, m.theme.ActiveTab.Render(label))
		} else {
			parts = append(parts, m.theme.Tab.Render(label))
		}
	}

	var refreshed string
	switch {
	case m.refreshing:
		refreshed = m.spinner.View() + " refreshing"
	case !m.dashboard.RefreshedAt.IsZero():
		refreshed = m.theme.Subtitle.Render("refreshed " + m.dashboard.RefreshedAt.Format("15:04:05"))
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", strings.Join(parts, " "), "  ", refreshed)
	if d := m.dashboard.Daily; d != nil {
		line += "\n" + m.theme.Subtitle.Render(fmt.Sprintf(
			"today: %d transactions, %d flagged, %d cases, %d notified",
			d.TotalTransactions, d.FlaggedTransactions, d.CasesCreated, d.NotificationsSent))
	}
	if m.dashboard.Warning != "" {
		line += "\n" + m.theme.StatusWarning.Render(cli.WarningIcon+" "+m.dashboard.Warning)
	}
	return line
}

func (m Model) renderFilters() string {
	if m.mode == ModeSearch {
		return m.search.View()
	}

	var parts []string
	if q := m.search.Value(); q != "" {
		parts = append(parts, "search: "+q)
	}
	switch m.tab {
	case TabFlags:
		parts = append(parts, fmt.Sprintf("min risk: %.1f", m.flagCriteria.MinRisk))
	case TabCases:
		parts = append(parts,
			fmt.Sprintf("min risk: %.1f", m.caseCriteria.MinRisk),
			"status: "+m.caseCriteria.Status)
	case TabNotifications:
		parts = append(parts,
			"status: "+m.notifyCriteria.Status,
			"channel: "+m.notifyCriteria.Channel)
	}
	return m.theme.Subtitle.Render(strings.Join(parts, "  "))
}

func (m Model) renderDetail() string {
	switch {
	case m.detail.Loading:
		return m.spinner.View() + " loading detail"
	case m.detail.Err != nil:
		return m.theme.StatusError.Render(cli.ErrorIcon + " " + m.detail.Err.Error())
	case m.detail.Detail == nil:
		return m.theme.StatusPending.Render("nothing selected")
	}

	d := m.detail.Detail
	note := ""
	if d.Case != nil {
		note = m.caseNotes[d.Case.ID]
	}
	out := cli.RenderDetail(d, note)
	if m.mode == ModeNote {
		out += "\n" + m.noteInput.View()
	}
	return out
}

func (m Model) renderForm() string {
	lines := []string{m.theme.Title.Render("Run scenario")}
	for _, in := range m.form {
		lines = append(lines, in.View())
	}
	lines = append(lines, m.theme.Subtitle.Render("enter submit · tab next field · esc cancel"))
	return strings.Join(lines, "\n")
}

func (m Model) renderScenario() string {
	s := m.scenario
	if s.Phase == scenario.PhaseComplete || s.Phase == scenario.PhaseError {
		out := cli.RenderScenario(s)
		if s.Case != nil {
			out += "\n" + m.theme.Subtitle.Render("enter open case · s run again · esc back")
		}
		return out
	}

	lines := []string{fmt.Sprintf("%s %s", m.spinner.View(), m.theme.Title.Render("Scenario "+string(s.Phase)))}
	if s.Transaction != nil {
		lines = append(lines, "transaction "+s.Transaction.ID)
	}
	for _, p := range s.Stages {
		lines = append(lines, cli.FormatStage(p))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	var lines []string
	if m.lastError != nil {
		lines = append(lines, m.theme.StatusError.Render(cli.ErrorIcon+" "+m.lastError.Error()))
	} else if m.status != "" {
		lines = append(lines, m.theme.StatusInfo.Render(m.status))
	}
	lines = append(lines, m.help.View(m.keymap))
	return strings.Join(lines, "\n")
}
