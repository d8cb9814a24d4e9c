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

func notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notifs"},
		Short:   "List dispatched notifications",
		RunE:    runNotifications,
	}

	cmd.Flags().String("search", "", "Case-insensitive text search")
	cmd.Flags().String("status", filter.All, "Delivery status (PENDING, SENT, FAILED, ALL)")
	cmd.Flags().String("channel", filter.All, "Channel (EMAIL, SMS, ALL)")

	return cmd
}

func runNotifications(cmd *cobra.Command, _ []string) error {
	search, _ := cmd.Flags().GetString("search")
	statusFlag, _ := cmd.Flags().GetString("status")
	channelFlag, _ := cmd.Flags().GetString("channel")

	status, err := filter.ParseChoice(statusFlag, filter.NotificationStatusChoices())
	if err != nil {
		return err
	}
	channel, err := filter.ParseChoice(channelFlag, filter.ChannelChoices())
	if err != nil {
		return err
	}

	criteria := filter.NotificationCriteria{Query: search, Status: status, Channel: channel}
	return listNotifications(cmd.Context(), cmd.OutOrStdout(), newServices(appConfig), criteria)
}

func listNotifications(ctx context.Context, w io.Writer, services api.Services, criteria filter.NotificationCriteria) error {
	page, ok := services.ListNotifications(ctx)
	if !ok {
		_, err := fmt.Fprintln(w, cli.FormatWarning("Notification service did not respond"))
		return err
	}
	return cli.WriteNotifications(w, filter.Notifications(page.Content, criteria))
}
