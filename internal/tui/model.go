// Package tui implements the interactive analyst console.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/dashboard"
	"github.com/r14dd/matchsentinel/internal/filter"
	"github.com/r14dd/matchsentinel/internal/hydrate"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/scenario"
	"github.com/r14dd/matchsentinel/internal/storage"
	"github.com/r14dd/matchsentinel/internal/tui/themes"
)

// Mode is what the console is currently showing.
type Mode int

// Modes.
const (
	ModeList Mode = iota
	ModeSearch
	ModeDetail
	ModeNote
	ModeScenarioForm
	ModeScenario
)

// Tab selects the list shown in ModeList.
type Tab int

// Tabs.
const (
	TabFlags Tab = iota
	TabCases
	TabNotifications
)

var tabs = []Tab{TabFlags, TabCases, TabNotifications}

func (t Tab) String() string {
	switch t {
	case TabFlags:
		return "Flags"
	case TabCases:
		return "Cases"
	case TabNotifications:
		return "Notifications"
	default:
		return "?"
	}
}

// riskStep is how far +/- move the minimum risk filter.
const riskStep = 0.1

// scenarioUpdateBuffer holds live snapshots until the UI drains them.
const scenarioUpdateBuffer = 256

var formLabels = []string{"Account", "Amount", "Currency", "Country", "Merchant", "Occurred at"}

// Model holds the console state.
type Model struct {
	ctx             context.Context
	lastError       error
	services        api.Services
	notes           NotesStore
	refresher       *dashboard.Refresher
	hydrator        *hydrate.Hydrator
	orchestrator    *scenario.Orchestrator
	scenarioUpdates chan scenario.State
	caseNotes       storage.CaseNotes
	status          string
	theme           themes.Theme
	keymap          KeyMap
	help            help.Model
	spinner         spinner.Model
	search          textinput.Model
	noteInput       textinput.Model
	table           table.Model
	form            []textinput.Model
	dashboard       dashboard.State
	detail          hydrate.State
	scenario        scenario.State
	flagCriteria    filter.FlagCriteria
	caseCriteria    filter.CaseCriteria
	notifyCriteria  filter.NotificationCriteria
	visibleFlags    []model.Flag
	visibleCases    []model.CaseItem
	visibleNotifs   []model.NotificationItem
	refreshInterval time.Duration
	width           int
	height          int
	formFocus       int
	finishedRun     uint64
	tab             Tab
	mode            Mode
	refreshing      bool
	scenarioActive  bool
	awaitingUpdate  bool
	quitting        bool
}

// New creates the console model over services.
func New(services api.Services, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	refresher := dashboard.New(services)
	updates := make(chan scenario.State, scenarioUpdateBuffer)
	orchestrator := scenario.New(services,
		scenario.WithPollOptions(cfg.Poll),
		scenario.WithRefresh(func(ctx context.Context) { refresher.Refresh(ctx) }),
	)
	orchestrator.Subscribe(func(s scenario.State) {
		select {
		case updates <- s:
		default:
		}
	})

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search ids, reasons, merchants"

	noteInput := textinput.New()
	noteInput.Prompt = "note: "
	noteInput.CharLimit = 2000

	s := spinner.New(spinner.WithSpinner(spinner.Dot))

	t := table.New(table.WithFocused(true))
	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.Header
	styles.Selected = cfg.Theme.Selected
	t.SetStyles(styles)

	m := Model{
		ctx:             cfg.Context,
		services:        services,
		notes:           cfg.Notes,
		refresher:       refresher,
		hydrator:        hydrate.New(services),
		orchestrator:    orchestrator,
		scenarioUpdates: updates,
		caseNotes:       make(storage.CaseNotes),
		theme:           cfg.Theme,
		keymap:          DefaultKeyMap(),
		help:            help.New(),
		spinner:         s,
		search:          search,
		noteInput:       noteInput,
		table:           t,
		form:            newForm(model.DefaultDraft()),
		scenario:        orchestrator.State(),
		caseCriteria:    filter.CaseCriteria{Status: filter.All},
		notifyCriteria:  filter.NotificationCriteria{Status: filter.All, Channel: filter.All},
		refreshInterval: cfg.RefreshInterval,
		width:           cfg.Width,
		height:          cfg.Height,
		refreshing:      true,
	}
	m.resize()
	m.rebuildTable()
	return m
}

func newForm(draft model.TransactionDraft) []textinput.Model {
	values := []string{draft.AccountID, draft.Amount, draft.Currency, draft.Country, draft.Merchant, draft.OccurredAt}
	form := make([]textinput.Model, len(formLabels))
	for i, label := range formLabels {
		in := textinput.New()
		in.Prompt = fmt.Sprintf("%-12s ", label+":")
		in.SetValue(values[i])
		form[i] = in
	}
	form[len(form)-1].Placeholder = "empty means now"
	form[0].Focus()
	return form
}

func (m Model) draft() model.TransactionDraft {
	return model.TransactionDraft{
		AccountID:  m.form[0].Value(),
		Amount:     m.form[1].Value(),
		Currency:   m.form[2].Value(),
		Country:    m.form[3].Value(),
		Merchant:   m.form[4].Value(),
		OccurredAt: m.form[5].Value(),
	}
}

// Init starts the first refresh, the notes load and the auto-refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(),
		m.loadNotes(),
		m.scheduleRefresh(),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshedMsg:
		m.dashboard = msg.state
		m.refreshing = false
		m.rebuildTable()
		return m, nil

	case autoRefreshMsg:
		cmds := []tea.Cmd{m.scheduleRefresh()}
		if !m.refreshing {
			m.refreshing = true
			cmds = append(cmds, m.refresh())
		}
		return m, tea.Batch(cmds...)

	case notesLoadedMsg:
		if msg.err != nil {
			m.lastError = fmt.Errorf("load notes: %w", msg.err)
			return m, nil
		}
		m.caseNotes = msg.notes
		m.rebuildTable()
		return m, nil

	case detailMsg:
		m.detail = msg.state
		return m, nil

	case caseUpdatedMsg:
		return m.handleCaseUpdated(msg)

	case noteSavedMsg:
		if msg.err != nil {
			m.lastError = fmt.Errorf("save note: %w", msg.err)
			return m, nil
		}
		m.caseNotes = msg.notes
		m.status = "Note saved"
		m.rebuildTable()
		return m, nil

	case scenarioUpdateMsg:
		m.awaitingUpdate = false
		// Idle snapshots come from resets; older runs have already finished.
		if !m.scenarioActive || msg.state.Phase == scenario.PhaseIdle || msg.state.Run <= m.finishedRun {
			return m, nil
		}
		m.scenario = msg.state
		m.awaitingUpdate = true
		return m, waitForScenario(m.scenarioUpdates)

	case scenarioDoneMsg:
		m.scenarioActive = false
		m.scenario = msg.state
		m.finishedRun = max(m.finishedRun, msg.state.Run)
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.dashboard = m.refresher.State()
		m.rebuildTable()
		m.status = "Scenario complete"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeNote:
		return m.handleNoteKey(msg)
	case ModeScenarioForm:
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.mode {
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeScenario:
		return m.handleScenarioKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.NextTab):
		m.switchTab(1)
	case key.Matches(msg, m.keymap.PrevTab):
		m.switchTab(-1)
	case key.Matches(msg, m.keymap.Search):
		m.mode = ModeSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keymap.RaiseRisk):
		m.bumpRisk(riskStep)
	case key.Matches(msg, m.keymap.LowerRisk):
		m.bumpRisk(-riskStep)
	case key.Matches(msg, m.keymap.CycleStatus):
		m.cycleStatus()
	case key.Matches(msg, m.keymap.CycleChan):
		if m.tab == TabNotifications {
			m.notifyCriteria.Channel = next(m.notifyCriteria.Channel, filter.ChannelChoices())
			m.rebuildTable()
		}
	case key.Matches(msg, m.keymap.Refresh):
		m.refreshing = true
		return m, m.refresh()
	case key.Matches(msg, m.keymap.Scenario):
		m.mode = m.scenarioMode()
	case key.Matches(msg, m.keymap.Open):
		return m.openSelected()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.search.Blur()
		m.mode = ModeList
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	query := m.search.Value()
	m.flagCriteria.Query = query
	m.caseCriteria.Query = query
	m.notifyCriteria.Query = query
	m.rebuildTable()
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	detail := m.detail.Detail

	switch {
	case key.Matches(msg, m.keymap.Back):
		m.mode = ModeList
		return m, nil
	case key.Matches(msg, m.keymap.EditNote):
		if detail == nil || detail.Case == nil {
			m.status = "No case to annotate"
			return m, nil
		}
		m.mode = ModeNote
		m.noteInput.SetValue(m.caseNotes[detail.Case.ID])
		return m, m.noteInput.Focus()
	}

	status, ok := m.statusForKey(msg)
	if !ok {
		return m, nil
	}
	if detail == nil || detail.Case == nil {
		m.status = "No case to update"
		return m, nil
	}
	m.status = fmt.Sprintf("Setting %s to %s...", detail.Case.ID, status)
	return m, m.updateCaseStatus(detail.Case.ID, status)
}

func (m Model) statusForKey(msg tea.KeyMsg) (model.CaseStatus, bool) {
	switch {
	case key.Matches(msg, m.keymap.MarkOpen):
		return model.CaseStatusOpen, true
	case key.Matches(msg, m.keymap.MarkReview):
		return model.CaseStatusUnderReview, true
	case key.Matches(msg, m.keymap.MarkApprove):
		return model.CaseStatusApproved, true
	case key.Matches(msg, m.keymap.MarkReject):
		return model.CaseStatusRejected, true
	default:
		return "", false
	}
}

func (m Model) handleNoteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.noteInput.Blur()
		m.mode = ModeDetail
		return m, nil
	case tea.KeyEnter:
		m.noteInput.Blur()
		m.mode = ModeDetail
		if m.detail.Detail == nil || m.detail.Detail.Case == nil {
			return m, nil
		}
		return m, m.saveNote(m.detail.Detail.Case.ID, m.noteInput.Value())
	}

	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.focusField(m.formFocus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.focusField(m.formFocus - 1)
	case tea.KeyEnter:
		draft := m.draft()
		if err := draft.Validate(); err != nil {
			m.lastError = err
			return m, nil
		}
		m.lastError = nil
		drainScenario(m.scenarioUpdates)
		m.mode = ModeScenario
		m.scenarioActive = true
		m.scenario = scenario.State{Phase: scenario.PhaseSubmitting, Draft: draft}
		cmds := []tea.Cmd{m.runScenario(draft)}
		if !m.awaitingUpdate {
			// At most one reader on the update channel.
			m.awaitingUpdate = true
			cmds = append(cmds, waitForScenario(m.scenarioUpdates))
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	return m, cmd
}

func (m *Model) focusField(i int) tea.Cmd {
	n := len(m.form)
	i = ((i % n) + n) % n
	m.form[m.formFocus].Blur()
	m.formFocus = i
	return m.form[i].Focus()
}

func (m Model) handleScenarioKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Back):
		if !m.scenarioActive {
			m.orchestrator.Reset()
			m.scenario = m.orchestrator.State()
		}
		m.mode = ModeList
	case key.Matches(msg, m.keymap.Scenario):
		if !m.scenarioActive {
			m.mode = ModeScenarioForm
		}
	case key.Matches(msg, m.keymap.Open):
		if m.scenario.Case != nil {
			m.mode = ModeDetail
			return m, m.hydrateCase(*m.scenario.Case)
		}
	}
	return m, nil
}

// scenarioMode returns to a run still in flight, otherwise opens the form.
func (m Model) scenarioMode() Mode {
	if m.scenarioActive {
		return ModeScenario
	}
	return ModeScenarioForm
}

func (m Model) openSelected() (tea.Model, tea.Cmd) {
	i := m.table.Cursor()
	switch m.tab {
	case TabFlags:
		if i < 0 || i >= len(m.visibleFlags) {
			return m, nil
		}
		m.mode = ModeDetail
		m.detail = hydrate.State{Loading: true}
		return m, m.hydrateFlag(m.visibleFlags[i])
	case TabCases:
		if i < 0 || i >= len(m.visibleCases) {
			return m, nil
		}
		m.mode = ModeDetail
		m.detail = hydrate.State{Loading: true}
		return m, m.hydrateCase(m.visibleCases[i])
	case TabNotifications:
		if i < 0 || i >= len(m.visibleNotifs) {
			return m, nil
		}
		m.mode = ModeDetail
		m.detail = hydrate.State{Loading: true}
		return m, m.hydrateNotification(m.visibleNotifs[i])
	}
	return m, nil
}

func (m Model) handleCaseUpdated(msg caseUpdatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.lastError = msg.err
		if endpoint := common.Endpoint(msg.err); endpoint != "" {
			m.status = "Update failed at " + endpoint
		}
		return m, nil
	}
	m.lastError = nil
	m.status = fmt.Sprintf("Case %s is now %s", msg.updated.ID, msg.updated.Status)

	seed := *msg.updated
	if d := m.detail.Detail; d != nil && d.Case != nil && d.Case.ID == seed.ID && seed.TransactionID == "" {
		seed.TransactionID = d.Case.TransactionID
	}
	m.refreshing = true
	return m, tea.Batch(m.hydrateCase(seed), m.refresh())
}

func (m *Model) switchTab(delta int) {
	n := len(tabs)
	m.tab = tabs[((int(m.tab)+delta)%n+n)%n]
	m.table.SetCursor(0)
	m.rebuildTable()
}

func (m *Model) bumpRisk(delta float64) {
	switch m.tab {
	case TabFlags:
		m.flagCriteria.MinRisk = clampRisk(m.flagCriteria.MinRisk + delta)
	case TabCases:
		m.caseCriteria.MinRisk = clampRisk(m.caseCriteria.MinRisk + delta)
	default:
		return
	}
	m.rebuildTable()
}

func (m *Model) cycleStatus() {
	switch m.tab {
	case TabCases:
		m.caseCriteria.Status = next(m.caseCriteria.Status, filter.CaseStatusChoices())
	case TabNotifications:
		m.notifyCriteria.Status = next(m.notifyCriteria.Status, filter.NotificationStatusChoices())
	default:
		return
	}
	m.rebuildTable()
}

// next cycles ALL → choices[0] → ... → ALL.
func next(current string, choices []string) string {
	for i, c := range choices {
		if c == current {
			if i+1 < len(choices) {
				return choices[i+1]
			}
			return filter.All
		}
	}
	return choices[0]
}

func clampRisk(v float64) float64 {
	// Round to the step so repeated bumps don't drift.
	v = float64(int(v/riskStep+0.5)) * riskStep
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
