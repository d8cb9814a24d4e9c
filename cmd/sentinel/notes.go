package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/r14dd/matchsentinel/internal/cli"
	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/storage"
)

func notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage your private case notes",
		Long: `Case notes live only on this machine, in the local console database.
They are never sent to the case service.`,
	}

	// Subcommands
	cmd.AddCommand(notesListCmd())
	cmd.AddCommand(notesGetCmd())
	cmd.AddCommand(notesSetCmd())
	cmd.AddCommand(notesDeleteCmd())

	return cmd
}

// withNotes opens the notes store for the duration of fn.
func withNotes(cmd *cobra.Command, fn func(ctx context.Context, store *storage.SQLiteStorage) error) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx, appConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)
	return fn(ctx, store)
}

func notesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cases that have a note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withNotes(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				return listNotes(ctx, cmd.OutOrStdout(), store)
			})
		},
	}
}

func notesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <case-id>",
		Short: "Print the note for a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNotes(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				return getNote(ctx, cmd.OutOrStdout(), store, args[0])
			})
		},
	}
}

func notesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <case-id> [text...]",
		Short: "Write the note for a case",
		Long: `Write the note for a case, replacing any previous note. Without text
arguments the note is read from standard input. An empty note deletes it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			if len(args) == 1 {
				var err error
				if text, err = cli.ReadAll(cmd.Context(), cmd.InOrStdin()); err != nil {
					return fmt.Errorf("failed to read note: %w", err)
				}
			}
			return withNotes(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				return setNote(ctx, cmd.OutOrStdout(), store, args[0], text)
			})
		},
	}
}

func notesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <case-id>",
		Aliases: []string{"rm"},
		Short:   "Delete the note for a case",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNotes(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				if _, err := store.DeleteNote(ctx, args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Note deleted for case "+args[0]))
				return err
			})
		},
	}
}

func listNotes(ctx context.Context, w io.Writer, store *storage.SQLiteStorage) error {
	notes, err := store.LoadNotes(ctx)
	if err != nil {
		return err
	}
	return cli.WriteNotes(w, notes.IDs(), notes)
}

func getNote(ctx context.Context, w io.Writer, store *storage.SQLiteStorage, caseID string) error {
	notes, err := store.LoadNotes(ctx)
	if err != nil {
		return err
	}
	note, ok := notes[caseID]
	if !ok {
		return fmt.Errorf("%w: no note for case %s", common.ErrNotFound, caseID)
	}
	_, err = fmt.Fprintln(w, note)
	return err
}

func setNote(ctx context.Context, w io.Writer, store *storage.SQLiteStorage, caseID, text string) error {
	if _, err := store.SetNote(ctx, caseID, text); err != nil {
		return err
	}
	msg := "Note saved for case " + caseID
	if strings.TrimSpace(text) == "" {
		msg = "Note deleted for case " + caseID
	}
	_, err := fmt.Fprintln(w, cli.FormatSuccess(msg))
	return err
}
