package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/config"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/storage"
	"github.com/r14dd/matchsentinel/internal/transport"
)

// newServices builds the service gateway from configuration. Tests replace it.
var newServices = func(cfg *config.Config) api.Services {
	httpClient := transport.New(transport.Options{
		Token:   cfg.Auth.Token,
		Timeout: cfg.HTTP.Timeout,
	})
	return api.NewClient(httpClient, cfg.Services)
}

// initStorage opens the local notes database and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	dbPath := cfg.Storage.Path
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		closeStorage(store)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func closeStorage(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		slog.Error("failed to close storage", "error", err)
	}
}

// parseDate parses a YYYY-MM-DD flag value; empty means today.
func parseDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now, nil
	}
	date, err := time.ParseInLocation(model.DateLayout, value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", common.ErrInvalidInput, value)
	}
	return date, nil
}

// mutationError turns a failed write into an operator-facing error naming the
// endpoint that refused it.
func mutationError(action string, err error) error {
	if endpoint := common.Endpoint(err); endpoint != "" {
		return common.NewUserError(fmt.Sprintf("%s failed at %s", action, endpoint), err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
