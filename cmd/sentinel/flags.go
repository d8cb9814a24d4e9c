package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/cli"
	"github.com/r14dd/matchsentinel/internal/filter"
)

func flagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "List rule engine flags",
		Long: `List the flags raised by the rule engine.

--search matches ids, account, merchant, country, currency, amount and reasons.
--min-risk hides flags scored below the threshold.`,
		RunE: runFlags,
	}

	cmd.Flags().String("search", "", "Case-insensitive text search")
	cmd.Flags().Float64("min-risk", 0, "Minimum risk score (0-1)")

	return cmd
}

func runFlags(cmd *cobra.Command, _ []string) error {
	search, _ := cmd.Flags().GetString("search")
	minRisk, _ := cmd.Flags().GetFloat64("min-risk")

	if err := validateRisk(minRisk); err != nil {
		return err
	}

	criteria := filter.FlagCriteria{Query: search, MinRisk: minRisk}
	return listFlags(cmd.Context(), cmd.OutOrStdout(), newServices(appConfig), criteria)
}

func listFlags(ctx context.Context, w io.Writer, services api.Services, criteria filter.FlagCriteria) error {
	page, ok := services.ListFlags(ctx)
	if !ok {
		_, err := fmt.Fprintln(w, cli.FormatWarning("Rule engine did not respond"))
		return err
	}
	return cli.WriteFlags(w, filter.Flags(page.Content, criteria))
}

func validateRisk(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("--min-risk must be between 0 and 1, got %g", v)
	}
	return nil
}
