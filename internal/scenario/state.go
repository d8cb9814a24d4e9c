package scenario

import (
	"time"

	"github.com/r14dd/matchsentinel/internal/model"
)

// Phase is the orchestrator's position in idle → submitting → polling →
// complete | error.
type Phase string

// Phases.
const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhasePolling    Phase = "polling"
	PhaseComplete   Phase = "complete"
	PhaseError      Phase = "error"
)

// Stage is one bounded-polling step of the pipeline.
type Stage string

// Stages in the order they run.
const (
	StageAI            Stage = "ai"
	StageFlags         Stage = "flags"
	StageCase          Stage = "case"
	StageNotifications Stage = "notifications"
)

// Stages lists every stage in run order.
var Stages = []Stage{StageAI, StageFlags, StageCase, StageNotifications}

// StageStatus is the outcome of a stage so far.
type StageStatus string

// Stage statuses. Timeout means the record was not observed within the poll
// budget, which is not a failure.
const (
	StatusPending StageStatus = "pending"
	StatusRunning StageStatus = "running"
	StatusFound   StageStatus = "found"
	StatusTimeout StageStatus = "timeout"
	StatusSkipped StageStatus = "skipped"
)

// StageProgress tracks one stage.
type StageProgress struct {
	Stage    Stage
	Status   StageStatus
	Attempts int
}

// State is the single aggregate describing one scenario run. Stage results are
// only meaningful once Phase has reached polling.
type State struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	Err           error
	Request       *model.CreateTransactionRequest
	Transaction   *model.Transaction
	AIDecision    *model.AiDecision
	Case          *model.CaseItem
	Phase         Phase
	Draft         model.TransactionDraft
	History       []Phase
	Stages        []StageProgress
	Flags         []model.Flag
	Notifications []model.NotificationItem
	Refreshed     bool
	// Run numbers each run; a reset also takes a new number.
	Run uint64
}

func idleState() State {
	stages := make([]StageProgress, len(Stages))
	for i, s := range Stages {
		stages[i] = StageProgress{Stage: s, Status: StatusPending}
	}
	return State{
		Phase:   PhaseIdle,
		History: []Phase{PhaseIdle},
		Stages:  stages,
	}
}

// Stage returns the progress of one stage.
func (s State) Stage(stage Stage) StageProgress {
	for _, p := range s.Stages {
		if p.Stage == stage {
			return p
		}
	}
	return StageProgress{Stage: stage, Status: StatusPending}
}

// Running reports whether a run is in flight.
func (s State) Running() bool {
	return s.Phase == PhaseSubmitting || s.Phase == PhasePolling
}

// Visited reports whether the run has passed through phase.
func (s State) Visited(phase Phase) bool {
	for _, p := range s.History {
		if p == phase {
			return true
		}
	}
	return false
}

func (s *State) transition(to Phase) {
	s.Phase = to
	s.History = append(s.History, to)
}

func (s *State) setStage(stage Stage, status StageStatus, attempts int) {
	for i := range s.Stages {
		if s.Stages[i].Stage == stage {
			s.Stages[i].Status = status
			if attempts > 0 {
				s.Stages[i].Attempts = attempts
			}
			return
		}
	}
}

// clone copies the slices the orchestrator mutates in place so a snapshot stays
// stable after it is handed out.
func (s State) clone() State {
	s.History = append([]Phase(nil), s.History...)
	s.Stages = append([]StageProgress(nil), s.Stages...)
	return s
}
