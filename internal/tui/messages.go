package tui

import (
	"time"

	"github.com/r14dd/matchsentinel/internal/dashboard"
	"github.com/r14dd/matchsentinel/internal/hydrate"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/scenario"
	"github.com/r14dd/matchsentinel/internal/storage"
)

// Data loading messages.
type refreshedMsg struct {
	state dashboard.State
}

type autoRefreshMsg time.Time

type notesLoadedMsg struct {
	err   error
	notes storage.CaseNotes
}

// Detail messages.
type detailMsg struct {
	state hydrate.State
}

type caseUpdatedMsg struct {
	err     error
	updated *model.CaseItem
}

type noteSavedMsg struct {
	err   error
	notes storage.CaseNotes
}

// Scenario messages.
type scenarioUpdateMsg struct {
	state scenario.State
}

type scenarioDoneMsg struct {
	err   error
	state scenario.State
}
