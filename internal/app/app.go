// Package app wires a board store to the storage backend selected by
// configuration.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/taskdesk/internal/config"
	"github.com/rpggio/taskdesk/internal/domain/activity"
	"github.com/rpggio/taskdesk/internal/domain/board"
	"github.com/rpggio/taskdesk/internal/filestore"
	"github.com/rpggio/taskdesk/internal/memory"
	"github.com/rpggio/taskdesk/internal/repository"
	"github.com/rpggio/taskdesk/internal/sqlite"
)

// App holds the services built from a configuration.
type App struct {
	Store    *board.Store
	Activity *activity.Service
	Logger   *slog.Logger

	close func() error
}

// Open builds the backend named in cfg.Storage and loads the board from it.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	slot, activities, closeFn, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	activitySvc := activity.NewService(activities, logger)
	store, err := board.NewStore(ctx, slot, activitySvc, logger)
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("loading board: %w", err)
	}

	logger.Debug("storage opened", "backend", cfg.Backend, "path", cfg.Path)
	return &App{
		Store:    store,
		Activity: activitySvc,
		Logger:   logger,
		close:    closeFn,
	}, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

func openBackend(cfg config.StorageConfig) (repository.SlotRepository, repository.ActivityRepository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewSlot(), memory.NewActivityRepository(), noop, nil

	case config.BackendFile:
		slot, err := filestore.NewSlot(cfg.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return slot, memory.NewActivityRepository(), noop, nil

	case config.BackendSQLite:
		if err := ensureDBDir(cfg.Path); err != nil {
			return nil, nil, nil, fmt.Errorf("preparing database path: %w", err)
		}
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return sqlite.NewSlotRepository(db), sqlite.NewActivityRepository(db), db.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// NewLogger builds a text logger writing to w at the named level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLogLevel(level),
	}))
}

// ParseLogLevel maps debug, warn and error to their slog levels and
// anything else to info.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
