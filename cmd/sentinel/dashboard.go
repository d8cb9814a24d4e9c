package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/cli"
	"github.com/r14dd/matchsentinel/internal/dashboard"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show today's pipeline at a glance",
		Long: `Read the flags, cases, notifications and daily report once and print a summary.

With --watch the summary is re-read on the configured refresh interval until
interrupted.`,
		RunE: runDashboard,
	}

	cmd.Flags().String("date", "", "Report date (YYYY-MM-DD, default today)")
	cmd.Flags().Bool("watch", false, "Keep refreshing until interrupted")

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	dateFlag, _ := cmd.Flags().GetString("date")
	watch, _ := cmd.Flags().GetBool("watch")

	date, err := parseDate(dateFlag, time.Now())
	if err != nil {
		return err
	}

	interval := time.Duration(0)
	if watch {
		interval = appConfig.Refresh.Interval
		if interval <= 0 {
			return fmt.Errorf("--watch needs a positive refresh.interval")
		}
	}

	return showDashboard(cmd.Context(), cmd.OutOrStdout(), newServices(appConfig), date, interval)
}

// showDashboard prints one refresh, then keeps printing every interval while it is
// positive and ctx is live.
func showDashboard(ctx context.Context, w io.Writer, services api.Services, date time.Time, interval time.Duration) error {
	refresher := dashboard.New(services, dashboard.WithDate(date))

	var writeErr error
	show := func(ctx context.Context) {
		state := refresher.Refresh(ctx)
		if _, err := fmt.Fprintln(w, cli.RenderDashboard(state)); err != nil && writeErr == nil {
			writeErr = err
		}
	}

	show(ctx)
	if interval > 0 {
		dashboard.AutoRefresh(ctx, interval, show)
	}
	return writeErr
}
