package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/cli"
	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/poll"
	"github.com/r14dd/matchsentinel/internal/scenario"
)

func scenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Exercise the fraud pipeline end to end",
	}

	// Subcommands
	cmd.AddCommand(scenarioRunCmd())

	return cmd
}

func scenarioRunCmd() *cobra.Command {
	draft := model.DefaultDraft()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a transaction and follow it through the pipeline",
		Long: `Submit a transaction, then poll for its AI decision, flags, case and
notifications in that order. Each stage gets the configured number of attempts;
a stage that never answers is reported as not yet available and the run still
completes.

The defaults describe a large transfer from a high-risk country, which the rule
engine is expected to flag.`,
		RunE: runScenario,
	}

	cmd.Flags().String("account", draft.AccountID, "Account id (UUID)")
	cmd.Flags().String("amount", draft.Amount, "Amount")
	cmd.Flags().String("currency", draft.Currency, "ISO currency code")
	cmd.Flags().String("country", draft.Country, "ISO country code")
	cmd.Flags().String("merchant", draft.Merchant, "Merchant name")
	cmd.Flags().String("occurred-at", "", "When it happened (RFC 3339, default now)")
	cmd.Flags().Bool("no-validate", false, "Submit the draft even if it looks invalid")

	return cmd
}

func runScenario(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	var draft model.TransactionDraft
	draft.AccountID, _ = flags.GetString("account")
	draft.Amount, _ = flags.GetString("amount")
	draft.Currency, _ = flags.GetString("currency")
	draft.Country, _ = flags.GetString("country")
	draft.Merchant, _ = flags.GetString("merchant")
	draft.OccurredAt, _ = flags.GetString("occurred-at")
	noValidate, _ := flags.GetBool("no-validate")

	if !noValidate {
		if err := draft.Validate(); err != nil {
			return common.NewUserError("Transaction draft rejected", err)
		}
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Scenario")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	return runScenarioTrace(ctx, cmd.OutOrStdout(), newServices(appConfig), appConfig.Poll, draft)
}

// runScenarioTrace runs one scenario with a live progress bar and prints the trace.
func runScenarioTrace(ctx context.Context, w io.Writer, services api.Services, pollOpts poll.Options, draft model.TransactionDraft) error {
	progress := cli.NewStageProgress(w, pollOpts.MaxAttempts)
	orchestrator := scenario.New(services, scenario.WithPollOptions(pollOpts))
	orchestrator.Subscribe(progress.Observe)

	if _, err := fmt.Fprintln(w, cli.FormatTitle("Running scenario")); err != nil {
		return err
	}

	state, err := orchestrator.Run(ctx, draft)
	if _, werr := fmt.Fprintln(w, cli.RenderScenario(state)); werr != nil {
		return werr
	}
	if err != nil {
		var mutationErr *common.MutationError
		if errors.As(err, &mutationErr) {
			return mutationError("Transaction submission", err)
		}
		return err
	}
	return nil
}
