package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/r14dd/matchsentinel/internal/scenario"
)

// StageProgress draws a progress bar over the polling stages of a scenario run.
// Register Observe with the orchestrator.
type StageProgress struct {
	writer      io.Writer
	bar         *progressbar.ProgressBar
	maxAttempts int
	finished    bool
	mu          sync.Mutex
}

// NewStageProgress creates a progress display writing to w.
func NewStageProgress(w io.Writer, maxAttempts int) *StageProgress {
	return &StageProgress{writer: w, maxAttempts: maxAttempts}
}

// Observe updates the bar from a scenario snapshot.
func (p *StageProgress) Observe(state scenario.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished || !state.Visited(scenario.PhasePolling) {
		return
	}
	if p.bar == nil {
		p.initBar()
	}

	done := 0
	for _, stage := range state.Stages {
		switch stage.Status {
		case scenario.StatusFound, scenario.StatusTimeout, scenario.StatusSkipped:
			done++
		case scenario.StatusRunning:
			p.bar.Describe(fmt.Sprintf("[cyan][bold]Polling %s[reset] (attempt %d/%d)",
				stage.Stage, stage.Attempts, p.maxAttempts))
		}
	}
	if err := p.bar.Set(done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}

	if state.Phase == scenario.PhaseComplete {
		p.finished = true
		if err := p.bar.Finish(); err != nil {
			slog.Warn("Failed to finish progress bar", "error", err)
		}
	}
}

func (p *StageProgress) initBar() {
	p.bar = progressbar.NewOptions(len(scenario.Stages),
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][bold]Waiting for pipeline...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
