package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/cli"
)

func aiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ai <transaction-id>",
		Short: "Show the AI decision for a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showAIDecision(cmd.Context(), cmd.OutOrStdout(), newServices(appConfig), args[0])
		},
	}
}

func showAIDecision(ctx context.Context, w io.Writer, services api.Services, transactionID string) error {
	decision, ok := services.GetAIDecision(ctx, transactionID)
	if !ok {
		_, err := fmt.Fprintln(w, cli.FormatInfo("AI decision "+cli.NotYetAvailable))
		return err
	}
	_, err := fmt.Fprintln(w, cli.RenderBox("AI decision for "+transactionID, cli.RenderAIDecision(decision)))
	return err
}
