package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/cli"
	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/model"
)

func caseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Work a single case",
		Long:  `Move a case through review or change who it is assigned to.`,
	}

	// Subcommands
	cmd.AddCommand(caseStatusCmd())
	cmd.AddCommand(caseAssignCmd())

	return cmd
}

func caseStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <case-id> <status>",
		Short: "Set a case's status",
		Long: `Set a case's status to OPEN, UNDER_REVIEW, APPROVED or REJECTED.

The update is sent once. If the case service refuses it, the failing endpoint is
reported and nothing is retried.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseCaseStatus(args[1])
			if err != nil {
				return fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
			}
			return setCaseStatus(cmd.Context(), cmd.OutOrStdout(), newServices(appConfig), args[0], status)
		},
	}
}

func setCaseStatus(ctx context.Context, w io.Writer, services api.Services, caseID string, status model.CaseStatus) error {
	updated, err := services.UpdateCaseStatus(ctx, caseID, status)
	if err != nil {
		return mutationError("Status update", err)
	}

	slog.Info("Case status updated", "case_id", updated.ID, "status", updated.Status)
	_, err = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Case %s is now %s", updated.ID, cli.FormatCaseStatus(updated.Status))))
	return err
}

func caseAssignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <case-id> [analyst-id]",
		Short: "Assign a case to an analyst",
		Long:  `Assign a case to an analyst, or remove the assignment with --clear.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runCaseAssign,
	}

	cmd.Flags().Bool("clear", false, "Remove the current assignment")

	return cmd
}

func runCaseAssign(cmd *cobra.Command, args []string) error {
	unassign, _ := cmd.Flags().GetBool("clear")

	var analystID *string
	switch {
	case unassign && len(args) == 2:
		return fmt.Errorf("%w: give an analyst id or --clear, not both", common.ErrInvalidInput)
	case unassign:
		analystID = nil
	case len(args) == 2 && strings.TrimSpace(args[1]) != "":
		id := strings.TrimSpace(args[1])
		analystID = &id
	default:
		return fmt.Errorf("%w: an analyst id or --clear is required", common.ErrInvalidInput)
	}

	return assignCase(cmd.Context(), cmd.OutOrStdout(), newServices(appConfig), args[0], analystID)
}

func assignCase(ctx context.Context, w io.Writer, services api.Services, caseID string, analystID *string) error {
	updated, err := services.AssignCase(ctx, caseID, analystID)
	if err != nil {
		return mutationError("Assignment", err)
	}

	msg := fmt.Sprintf("Case %s is unassigned", updated.ID)
	if analyst := updated.Analyst(); analyst != "" {
		msg = fmt.Sprintf("Case %s is assigned to %s", updated.ID, analyst)
	}
	slog.Info("Case assignment updated", "case_id", updated.ID, "analyst_id", updated.Analyst())
	_, err = fmt.Fprintln(w, cli.FormatSuccess(msg))
	return err
}
