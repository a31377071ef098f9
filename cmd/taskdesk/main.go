// Command taskdesk manages a task board and its notes from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rpggio/taskdesk/internal/app"
	"github.com/rpggio/taskdesk/internal/config"
	"github.com/rpggio/taskdesk/internal/domain/board"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// cli carries state shared by every subcommand for one invocation.
type cli struct {
	out    io.Writer
	errOut io.Writer

	backend string
	path    string
	verbose bool

	cfg    config.Config
	app    *app.App
	styles styles
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "taskdesk",
		Short: "Plan learning tasks and file AI suggestions",
		Long: `taskdesk keeps a board of tasks and notes in a local store.

Storage and logging come from the file named by TASKDESK_CONFIG_PATH and
TASKDESK_* environment variables; --backend and --path override them.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.backend, "backend", "", "storage backend: sqlite, file or memory")
	flags.StringVar(&c.path, "path", "", "database file (sqlite) or directory (file)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		c.tasksCmd(),
		c.addCmd(),
		c.editCmd(),
		c.doneCmd(),
		c.rmCmd(),
		c.nextCmd(),
		c.focusCmd(),
		c.notesCmd(),
		c.noteCmd(),
		c.unnoteCmd(),
		c.sourcesCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.themeCmd(),
		c.projectCmd(),
		c.filtersCmd(),
		c.activityCmd(),
		c.watchCmd(),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.backend != "" {
		cfg.Storage.Backend = c.backend
	}
	if c.path != "" {
		cfg.Storage.Path = c.path
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	logger := app.NewLogger(c.errOut, cfg.Log.Level)
	a, err := app.Open(cmd.Context(), cfg.Storage, logger)
	if err != nil {
		return err
	}
	c.app = a
	c.styles = newStyles(c.out, a.Store.Theme())
	return nil
}

// run wraps a command body so the store is closed however it exits.
func (c *cli) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if cerr := c.close(); err == nil {
			err = cerr
		}
		return err
	}
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func (c *cli) store() *board.Store {
	return c.app.Store
}

// resolveTaskID accepts a full task ID or a unique prefix of one.
func (c *cli) resolveTaskID(ref string) (string, error) {
	var matches []string
	for _, t := range c.store().ListTasks() {
		if t.ID == ref {
			return ref, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no task matches %q", board.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveNoteID accepts a full note ID or a unique prefix of one.
func (c *cli) resolveNoteID(ref string) (string, error) {
	var matches []string
	for _, n := range c.store().ListNotes() {
		if n.ID == ref {
			return ref, nil
		}
		if strings.HasPrefix(n.ID, ref) {
			matches = append(matches, n.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no note matches %q", board.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("note prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}
