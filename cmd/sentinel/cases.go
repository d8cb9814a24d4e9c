package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/cli"
	"github.com/r14dd/matchsentinel/internal/filter"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/storage"
)

func casesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List cases",
		Long: `List cases from the case service.

--transaction, --account and --analyst narrow the request server-side. --search,
--status and --min-risk are applied locally. Cases with a note are marked.`,
		RunE: runCases,
	}

	cmd.Flags().String("search", "", "Case-insensitive text search")
	cmd.Flags().String("status", filter.All, "Status (OPEN, UNDER_REVIEW, APPROVED, REJECTED, ALL)")
	cmd.Flags().Float64("min-risk", 0, "Minimum risk score (0-1)")
	cmd.Flags().String("transaction", "", "Only cases for this transaction id")
	cmd.Flags().String("account", "", "Only cases for this account id")
	cmd.Flags().String("analyst", "", "Only cases assigned to this analyst")

	return cmd
}

func runCases(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	search, _ := flags.GetString("search")
	statusFlag, _ := flags.GetString("status")
	minRisk, _ := flags.GetFloat64("min-risk")
	transactionID, _ := flags.GetString("transaction")
	accountID, _ := flags.GetString("account")
	analystID, _ := flags.GetString("analyst")

	status, err := filter.ParseChoice(statusFlag, filter.CaseStatusChoices())
	if err != nil {
		return err
	}
	if err := validateRisk(minRisk); err != nil {
		return err
	}

	notes := storage.CaseNotes{}
	store, err := initStorage(ctx, appConfig)
	if err != nil {
		slog.Warn("Case notes unavailable", "error", err)
	} else {
		defer closeStorage(store)
		if notes, err = store.LoadNotes(ctx); err != nil {
			slog.Warn("Failed to load case notes", "error", err)
		}
	}

	query := api.CaseFilter{
		TransactionID: transactionID,
		AccountID:     accountID,
		AnalystID:     analystID,
	}
	criteria := filter.CaseCriteria{Query: search, Status: status, MinRisk: minRisk}
	return listCases(ctx, cmd.OutOrStdout(), newServices(appConfig), query, criteria, notes)
}

func listCases(ctx context.Context, w io.Writer, services api.Services, query api.CaseFilter, criteria filter.CaseCriteria, notes storage.CaseNotes) error {
	if criteria.Status != "" && criteria.Status != filter.All {
		query.Status = model.CaseStatus(criteria.Status)
	}

	page, ok := services.ListCases(ctx, query)
	if !ok {
		_, err := fmt.Fprintln(w, cli.FormatWarning("Case service did not respond"))
		return err
	}
	return cli.WriteCases(w, filter.Cases(page.Content, criteria), notes)
}
