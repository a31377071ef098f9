package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rpggio/taskdesk/internal/config"
	"github.com/rpggio/taskdesk/internal/domain/board"
	"github.com/spf13/cobra"
)

const watchDebounce = 200 * time.Millisecond

func (c *cli) watchCmd() *cobra.Command {
	var render bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reprint the report whenever another process changes the board",
		Long: `watch follows the sqlite database or file store on disk and prints the
Markdown report each time it changes. It stops on interrupt.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		dir, prefix, err := watchTarget(c.cfg.Storage)
		if err != nil {
			return err
		}

		show := func() error {
			report := c.store().ExportMarkdown()
			if render {
				rendered, err := renderMarkdown(report, c.store().Theme())
				if err != nil {
					return err
				}
				report = rendered
			}
			fmt.Fprintln(c.out, report)
			return nil
		}
		if err := show(); err != nil {
			return err
		}

		return watchFiles(cmd.Context(), dir, prefix, watchDebounce, func() error {
			if err := c.store().Load(cmd.Context()); err != nil {
				return err
			}
			return show()
		})
	})
	cmd.Flags().BoolVar(&render, "render", false, "render for the terminal instead of printing raw Markdown")
	return cmd
}

// watchTarget returns the directory to watch and the file name prefix of
// the files that hold the board for a storage configuration.
func watchTarget(cfg config.StorageConfig) (dir, prefix string, err error) {
	switch cfg.Backend {
	case config.BackendFile:
		return cfg.Path, board.StorageKey + ".json", nil
	case config.BackendSQLite:
		if cfg.Path == ":memory:" {
			break
		}
		// The prefix also covers the -wal and -journal companions.
		return filepath.Dir(cfg.Path), filepath.Base(cfg.Path), nil
	}
	return "", "", fmt.Errorf("cannot watch %s storage at %q", cfg.Backend, cfg.Path)
}

// watchFiles calls onChange once writes to files in dir whose names start
// with prefix have settled for debounce. It returns when ctx is done.
func watchFiles(ctx context.Context, dir, prefix string, debounce time.Duration, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.HasPrefix(filepath.Base(event.Name), prefix) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", dir, err)
		case <-timer.C:
			if err := onChange(); err != nil {
				return err
			}
		}
	}
}
