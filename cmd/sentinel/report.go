package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/cli"
	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/model"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show reporting service aggregates",
	}

	// Subcommands
	cmd.AddCommand(reportDailyCmd())
	cmd.AddCommand(reportWeeklyCmd())
	cmd.AddCommand(reportMonthlyCmd())

	return cmd
}

func reportDailyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show one day's aggregate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dateFlag, _ := cmd.Flags().GetString("date")
			date, err := parseDate(dateFlag, time.Now())
			if err != nil {
				return err
			}
			return showDaily(cmd.Context(), cmd.OutOrStdout(), newServices(appConfig), date)
		},
	}
	cmd.Flags().String("date", "", "Report date (YYYY-MM-DD, default today)")
	return cmd
}

func reportWeeklyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Show the rollup for the week containing a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dateFlag, _ := cmd.Flags().GetString("date")
			date, err := parseDate(dateFlag, time.Now())
			if err != nil {
				return err
			}
			services := newServices(appConfig)
			return showRollup(cmd.OutOrStdout(), "Week of "+date.Format(model.DateLayout), func() (*model.Rollup, bool) {
				return services.WeeklyRollup(cmd.Context(), date)
			})
		},
	}
	cmd.Flags().String("date", "", "Any day in the week (YYYY-MM-DD, default today)")
	return cmd
}

func reportMonthlyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Show the rollup for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			monthFlag, _ := cmd.Flags().GetString("month")
			month, err := parseMonth(monthFlag, time.Now())
			if err != nil {
				return err
			}
			services := newServices(appConfig)
			return showRollup(cmd.OutOrStdout(), month.Format(model.MonthLayout), func() (*model.Rollup, bool) {
				return services.MonthlyRollup(cmd.Context(), month)
			})
		},
	}
	cmd.Flags().String("month", "", "Month (YYYY-MM, default this month)")
	return cmd
}

func showDaily(ctx context.Context, w io.Writer, services api.Services, date time.Time) error {
	title := "Daily report " + date.Format(model.DateLayout)

	page, ok := services.DailyReport(ctx, date)
	if !ok || len(page.Content) == 0 {
		_, err := fmt.Fprintln(w, cli.RenderBox(title, cli.RenderDaily(nil)))
		return err
	}
	_, err := fmt.Fprintln(w, cli.RenderBox(title, cli.RenderDaily(&page.Content[0])))
	return err
}

func showRollup(w io.Writer, title string, read func() (*model.Rollup, bool)) error {
	rollup, ok := read()
	if !ok {
		_, err := fmt.Fprintln(w, cli.FormatWarning("Reporting service did not respond"))
		return err
	}
	_, err := fmt.Fprintln(w, cli.RenderBox(title, cli.RenderRollup(rollup)))
	return err
}

func parseMonth(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	}
	month, err := time.ParseInLocation(model.MonthLayout, value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q must be YYYY-MM", common.ErrInvalidInput, value)
	}
	return month, nil
}
