package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/poll"
	"github.com/r14dd/matchsentinel/internal/scenario"
	"github.com/r14dd/matchsentinel/internal/storage"
	"github.com/r14dd/matchsentinel/internal/testutil"
)

var fastPoll = poll.Options{MaxAttempts: 3, Interval: time.Millisecond}

func seededBackend() *testutil.Backend {
	b := testutil.NewBackend()
	b.AddFlags(
		testutil.Flag("f1", "t1", 0.9, "HIGH_AMOUNT"),
		testutil.Flag("f2", "t2", 0.3, "NEW_MERCHANT"),
	)
	b.AddCases(testutil.Case("c1", "t1"))
	b.AddNotifications(testutil.Notification("n1", "c1"))
	b.AddDecision(testutil.Decision("d1", "t1", 0.91))
	return b
}

func newTestModel(t *testing.T, services api.Services, opts ...Option) Model {
	t.Helper()
	base := []Option{WithRefreshInterval(0), WithPoll(fastPoll)}
	return New(services, append(base, opts...)...)
}

// collect runs cmd and flattens batches into the messages they produce.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// apply feeds every message produced by cmd back into the model.
func apply(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		m, _ = send(t, m, msg)
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func refreshed(t *testing.T, m Model) Model {
	t.Helper()
	return apply(t, m, m.refresh())
}

func TestModel_RefreshPopulatesTable(t *testing.T) {
	m := newTestModel(t, seededBackend().Services())
	assert.True(t, m.refreshing)

	m = refreshed(t, m)

	assert.False(t, m.refreshing)
	assert.Len(t, m.visibleFlags, 2)
	assert.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "f1", m.table.Rows()[0][0])

	view := m.View()
	assert.Contains(t, view, "Flags (2)")
	assert.Contains(t, view, "Cases (1)")
	assert.Contains(t, view, "HIGH_AMOUNT")
}

func TestModel_CursorStaysInRange(t *testing.T) {
	m := newTestModel(t, seededBackend().Services())
	require.Empty(t, m.table.Rows())

	m = refreshed(t, m)
	require.Len(t, m.table.Rows(), 2)
	assert.Equal(t, 0, m.table.Cursor())
	assert.Equal(t, "f1", m.table.SelectedRow()[0])

	m.table.SetCursor(1)
	m.tab = TabCases
	m.rebuildTable()
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, 0, m.table.Cursor())
	assert.Equal(t, "c1", m.table.SelectedRow()[0])
}

func TestModel_PartialRefreshShowsWarning(t *testing.T) {
	services := seededBackend().Services()
	services.ListNotificationsFn = nil

	m := refreshed(t, newTestModel(t, services))

	assert.True(t, m.dashboard.Partial())
	assert.Empty(t, m.dashboard.Notifications)
	assert.Contains(t, m.View(), m.dashboard.Warning)
}

func TestModel_SearchFiltersEveryList(t *testing.T) {
	m := refreshed(t, newTestModel(t, seededBackend().Services()))

	m, _ = send(t, m, keyRunes("/"))
	require.Equal(t, ModeSearch, m.mode)

	m, _ = send(t, m, keyRunes("new_merch"))
	assert.Equal(t, "new_merch", m.flagCriteria.Query)
	require.Len(t, m.visibleFlags, 1)
	assert.Equal(t, "f2", m.visibleFlags[0].ID)
	assert.Empty(t, m.visibleCases)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, m.mode)
	assert.Contains(t, m.View(), "search: new_merch")
}

func TestModel_RiskAndStatusFilters(t *testing.T) {
	m := refreshed(t, newTestModel(t, seededBackend().Services()))

	for range 5 {
		m, _ = send(t, m, keyRunes("+"))
	}
	assert.InDelta(t, 0.5, m.flagCriteria.MinRisk, 1e-9)
	require.Len(t, m.visibleFlags, 1)
	assert.Equal(t, "f1", m.visibleFlags[0].ID)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, TabCases, m.tab)

	m, _ = send(t, m, keyRunes("f"))
	assert.Equal(t, string(model.CaseStatusOpen), m.caseCriteria.Status)
	assert.Len(t, m.visibleCases, 1)

	m, _ = send(t, m, keyRunes("f"))
	assert.Equal(t, string(model.CaseStatusUnderReview), m.caseCriteria.Status)
	assert.Empty(t, m.visibleCases)
	assert.Empty(t, m.table.Rows())
}

func TestModel_TabsCycle(t *testing.T) {
	m := refreshed(t, newTestModel(t, seededBackend().Services()))

	tests := []struct {
		msg  tea.KeyMsg
		want Tab
		rows int
	}{
		{tea.KeyMsg{Type: tea.KeyTab}, TabCases, 1},
		{tea.KeyMsg{Type: tea.KeyTab}, TabNotifications, 1},
		{tea.KeyMsg{Type: tea.KeyTab}, TabFlags, 2},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, TabNotifications, 1},
	}
	for _, tt := range tests {
		m, _ = send(t, m, tt.msg)
		assert.Equal(t, tt.want, m.tab)
		assert.Len(t, m.table.Rows(), tt.rows)
		assert.Len(t, m.table.Columns(), 6)
	}
}

func TestModel_OpenFlagHydratesDetail(t *testing.T) {
	m := refreshed(t, newTestModel(t, seededBackend().Services()))

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeDetail, m.mode)
	assert.True(t, m.detail.Loading)

	m = apply(t, m, cmd)
	require.NotNil(t, m.detail.Detail)
	d := m.detail.Detail
	assert.Equal(t, "t1", d.Transaction.ID)
	require.NotNil(t, d.Case)
	assert.Equal(t, "c1", d.Case.ID)
	require.NotNil(t, d.AIDecision)
	assert.Len(t, d.Notifications, 1)
	assert.Contains(t, m.View(), "Transaction (from flag)")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, m.mode)
}

func openCase(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = apply(t, m, cmd)
	require.NotNil(t, m.detail.Detail)
	require.NotNil(t, m.detail.Detail.Case)
	return m
}

func TestModel_NoteSavedAndMarked(t *testing.T) {
	store := testutil.SetupNotesStore(t, nil)
	m := newTestModel(t, seededBackend().Services(), WithNotes(store))
	m = apply(t, m, m.loadNotes())
	m = openCase(t, refreshed(t, m))

	m, _ = send(t, m, keyRunes("n"))
	require.Equal(t, ModeNote, m.mode)

	m, _ = send(t, m, keyRunes("called customer"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeDetail, m.mode)

	m = apply(t, m, cmd)
	assert.Equal(t, "Note saved", m.status)
	assert.Equal(t, "called customer", m.caseNotes["c1"])
	assert.Contains(t, m.View(), "called customer")

	saved, err := store.LoadNotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, storage.CaseNotes{"c1": "called customer"}, saved)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, TabCases, m.tab)
	assert.Equal(t, "✎", m.table.Rows()[0][5])
}

func TestModel_CaseStatusUpdate(t *testing.T) {
	services := seededBackend().Services()
	m := openCase(t, refreshed(t, newTestModel(t, services)))

	m, cmd := send(t, m, keyRunes("3"))
	require.NotNil(t, cmd)
	assert.Contains(t, m.status, "APPROVED")

	m, cmd = send(t, m, collect(cmd)[0])
	assert.Equal(t, "Case c1 is now APPROVED", m.status)
	assert.NoError(t, m.lastError)
	assert.True(t, m.refreshing)
	assert.Equal(t, 1, services.Calls("UpdateCaseStatus"))

	m = apply(t, m, cmd)
	assert.False(t, m.refreshing)
	require.NotNil(t, m.detail.Detail)
	assert.Equal(t, "t1", m.detail.Detail.Transaction.ID)
}

func TestModel_CaseStatusUpdateFailure(t *testing.T) {
	services := seededBackend().Services()
	services.UpdateCaseStatusFn = func(_ context.Context, id string, _ model.CaseStatus) (*model.CaseItem, error) {
		return nil, assert.AnError
	}
	m := openCase(t, refreshed(t, newTestModel(t, services)))

	m, cmd := send(t, m, keyRunes("4"))
	m = apply(t, m, cmd)

	assert.ErrorIs(t, m.lastError, assert.AnError)
	assert.Contains(t, m.View(), assert.AnError.Error())
}

func TestModel_ScenarioRunsToCompletion(t *testing.T) {
	b := seededBackend()
	services := b.Services()
	services.CreateTransactionFn = func(_ context.Context, req model.CreateTransactionRequest) (*model.Transaction, error) {
		b.AddDecision(testutil.Decision("d9", "t9", 0.95))
		b.AddFlags(testutil.Flag("f9", "t9", 0.95, "SANCTIONED_COUNTRY"))
		b.AddCases(testutil.Case("c9", "t9"))
		b.AddNotifications(testutil.Notification("n9", "c9"))
		return &model.Transaction{ID: "t9", AccountID: req.AccountID, Amount: req.Amount, Currency: req.Currency}, nil
	}
	m := refreshed(t, newTestModel(t, services))

	m, _ = send(t, m, keyRunes("s"))
	require.Equal(t, ModeScenarioForm, m.mode)
	assert.Contains(t, m.View(), "Run scenario")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeScenario, m.mode)
	assert.True(t, m.scenarioActive)

	m = apply(t, m, cmd)

	assert.False(t, m.scenarioActive)
	assert.Equal(t, scenario.PhaseComplete, m.scenario.Phase)
	assert.Equal(t, "Scenario complete", m.status)
	require.NotNil(t, m.scenario.Case)
	assert.Equal(t, "c9", m.scenario.Case.ID)
	assert.Len(t, m.visibleFlags, 3)
	assert.Contains(t, m.View(), "Scenario complete")

	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeDetail, m.mode)
	m = apply(t, m, cmd)
	require.NotNil(t, m.detail.Detail)
	assert.Equal(t, "t9", m.detail.Detail.Transaction.ID)
}

func TestModel_SecondScenarioIgnoresEarlierSnapshots(t *testing.T) {
	b := seededBackend()
	services := b.Services()
	services.CreateTransactionFn = func(_ context.Context, req model.CreateTransactionRequest) (*model.Transaction, error) {
		return &model.Transaction{ID: "t9", AccountID: req.AccountID, Amount: req.Amount, Currency: req.Currency}, nil
	}
	m := refreshed(t, newTestModel(t, services))

	m, _ = send(t, m, keyRunes("s"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = apply(t, m, cmd)
	require.Equal(t, scenario.PhaseComplete, m.scenario.Phase)
	first := m.scenario
	require.NotEmpty(t, m.scenarioUpdates)

	m, _ = send(t, m, keyRunes("s"))
	require.Equal(t, ModeScenarioForm, m.mode)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.scenarioActive)
	assert.Empty(t, m.scenarioUpdates)
	assert.Equal(t, scenario.PhaseSubmitting, m.scenario.Phase)

	// A snapshot of the first run already in flight to the model.
	m, _ = send(t, m, scenarioUpdateMsg{state: first})
	assert.Equal(t, scenario.PhaseSubmitting, m.scenario.Phase)

	m, _ = send(t, m, scenarioUpdateMsg{state: scenario.State{Phase: scenario.PhaseIdle, Run: first.Run + 1}})
	assert.Equal(t, scenario.PhaseSubmitting, m.scenario.Phase)

	next := scenario.State{Phase: scenario.PhasePolling, Run: first.Run + 2}
	m, _ = send(t, m, scenarioUpdateMsg{state: next})
	assert.Equal(t, scenario.PhasePolling, m.scenario.Phase)
}

func TestModel_ScenarioFormRejectsInvalidDraft(t *testing.T) {
	services := seededBackend().Services()
	m := newTestModel(t, services)

	m, _ = send(t, m, keyRunes("s"))
	m.form[0].SetValue("")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, ModeScenarioForm, m.mode)
	assert.Error(t, m.lastError)
	assert.Zero(t, services.Calls("CreateTransaction"))
}

func TestModel_AutoRefreshSkippedWhileRefreshing(t *testing.T) {
	services := seededBackend().Services()
	m := newTestModel(t, services)

	_, cmd := send(t, m, autoRefreshMsg(time.Now()))
	assert.Nil(t, cmd)

	m.refreshing = false
	m, cmd = send(t, m, autoRefreshMsg(time.Now()))
	require.NotNil(t, cmd)
	assert.True(t, m.refreshing)
}

func TestModel_QuitRendersNothing(t *testing.T) {
	m := newTestModel(t, api.NewMockServices())

	m, cmd := send(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}
