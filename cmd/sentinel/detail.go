package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/cli"
	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/hydrate"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/storage"
)

// detailSeed names the record a detail view starts from.
type detailSeed struct {
	kind   hydrate.SeedKind
	id     string
	caseID string
}

func detailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detail",
		Short: "Show everything known about one transaction",
		Long: `Join a flag, case or notification with the transaction's AI decision, flags,
case and notifications, and print the result with your note for the case.

Exactly one of --flag, --case or --notification is required. With --flag, --case-id
uses that case instead of looking one up by transaction.`,
		RunE: runDetail,
	}

	cmd.Flags().String("flag", "", "Start from this flag id")
	cmd.Flags().String("case", "", "Start from this case id")
	cmd.Flags().String("notification", "", "Start from this notification id")
	cmd.Flags().String("case-id", "", "Case to attach when starting from a flag")
	cmd.MarkFlagsMutuallyExclusive("flag", "case", "notification")
	cmd.MarkFlagsOneRequired("flag", "case", "notification")

	return cmd
}

func runDetail(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	flagID, _ := cmd.Flags().GetString("flag")
	caseID, _ := cmd.Flags().GetString("case")
	notificationID, _ := cmd.Flags().GetString("notification")
	attachCase, _ := cmd.Flags().GetString("case-id")

	var seed detailSeed
	switch {
	case flagID != "":
		seed = detailSeed{kind: hydrate.SeedFlag, id: flagID, caseID: attachCase}
	case caseID != "":
		seed = detailSeed{kind: hydrate.SeedCase, id: caseID}
	default:
		seed = detailSeed{kind: hydrate.SeedNotification, id: notificationID}
	}

	notes := storage.CaseNotes{}
	if store, err := initStorage(ctx, appConfig); err != nil {
		slog.Warn("Case notes unavailable", "error", err)
	} else {
		defer closeStorage(store)
		if loaded, err := store.LoadNotes(ctx); err == nil {
			notes = loaded
		}
	}

	return showDetail(ctx, cmd.OutOrStdout(), newServices(appConfig), seed, notes)
}

func showDetail(ctx context.Context, w io.Writer, services api.Services, seed detailSeed, notes storage.CaseNotes) error {
	detail, err := hydrateSeed(ctx, hydrate.New(services), services, seed)
	if err != nil {
		return err
	}

	note := ""
	if detail.Case != nil {
		note = notes[detail.Case.ID]
	}
	_, err = fmt.Fprintln(w, cli.RenderDetail(&detail, note))
	return err
}

func hydrateSeed(ctx context.Context, h *hydrate.Hydrator, services api.Services, seed detailSeed) (hydrate.Detail, error) {
	switch seed.kind {
	case hydrate.SeedFlag:
		page, ok := services.ListFlags(ctx)
		if !ok {
			return hydrate.Detail{}, fmt.Errorf("rule engine did not respond")
		}
		for _, f := range page.Content {
			if f.ID == seed.id {
				return h.FromFlag(ctx, f, seed.caseID)
			}
		}
		return hydrate.Detail{}, fmt.Errorf("%w: flag %s", common.ErrNotFound, seed.id)

	case hydrate.SeedCase:
		return h.FromCaseID(ctx, seed.id)

	default:
		page, ok := services.ListNotifications(ctx)
		if !ok {
			return hydrate.Detail{}, fmt.Errorf("notification service did not respond")
		}
		n, found := findNotification(page.Content, seed.id)
		if !found {
			return hydrate.Detail{}, fmt.Errorf("%w: notification %s", common.ErrNotFound, seed.id)
		}
		return h.FromNotification(ctx, n)
	}
}

func findNotification(items []model.NotificationItem, id string) (model.NotificationItem, bool) {
	for _, n := range items {
		if n.ID == id {
			return n, true
		}
	}
	return model.NotificationItem{}, false
}
