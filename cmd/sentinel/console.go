package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/tui"
	"github.com/r14dd/matchsentinel/internal/tui/themes"
)

func consoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the interactive analyst console",
		Long: `Open the full-screen analyst console.

Browse flags, cases and notifications with live filters, open any record to see
the whole transaction, update case status, keep notes, and run scenarios while
the dashboard refreshes in the background.

Logs go to --log-file while the console owns the terminal.`,
		RunE: runConsole,
	}

	cmd.Flags().String("theme", "default", "Color theme ("+strings.Join(themes.Names(), ", ")+")")
	cmd.Flags().String("log-file", "", "Write logs here while the console runs (default: discard)")

	_ = viper.BindPFlag("console.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runConsole(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	themeName := viper.GetString("console.theme")
	theme, ok := themes.ByName(themeName)
	if !ok {
		return fmt.Errorf("%w: unknown theme %q (available: %s)",
			common.ErrInvalidInput, themeName, strings.Join(themes.Names(), ", "))
	}

	logFile, _ := cmd.Flags().GetString("log-file")
	closeLog, err := redirectLogs(logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := []tui.Option{
		tui.WithTheme(theme),
		tui.WithPoll(appConfig.Poll),
		tui.WithRefreshInterval(appConfig.Refresh.Interval),
	}

	store, err := initStorage(ctx, appConfig)
	if err != nil {
		slog.Warn("Case notes unavailable", "error", err)
	} else {
		defer closeStorage(store)
		opts = append(opts, tui.WithNotes(store))
	}

	return tui.Run(ctx, newServices(appConfig), opts...)
}

// redirectLogs sends the global logger to path, or discards logs when path is
// empty, so log lines never tear the console's screen.
func redirectLogs(path string) (func(), error) {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return nil, err
	}
	format := viper.GetString("logging.format")

	if path == "" {
		if err := common.SetupLoggerTo(io.Discard, level, format); err != nil {
			return nil, err
		}
		return func() { _ = common.SetupLogger(level, format) }, nil
	}

	path = filepath.Clean(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if err := common.SetupLoggerTo(f, level, format); err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() {
		_ = common.SetupLogger(level, format)
		_ = f.Close()
	}, nil
}
