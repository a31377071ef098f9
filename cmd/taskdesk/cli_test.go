package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rpggio/taskdesk/internal/app"
	"github.com/rpggio/taskdesk/internal/config"
	"github.com/rpggio/taskdesk/internal/domain/board"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TASKDESK_CONFIG_PATH",
		"TASKDESK_STORAGE_BACKEND",
		"TASKDESK_STORAGE_PATH",
		"TASKDESK_TRANSPORT",
		"TASKDESK_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

// runCLI executes one taskdesk invocation against the given storage.
func runCLI(t *testing.T, storage config.StorageConfig, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--backend", storage.Backend, "--path", storage.Path}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, storage config.StorageConfig, args ...string) string {
	t.Helper()
	out, err := runCLI(t, storage, args...)
	require.NoError(t, err, "taskdesk %s", strings.Join(args, " "))
	return out
}

func fileStorage(t *testing.T) config.StorageConfig {
	t.Helper()
	isolateEnv(t)
	return config.StorageConfig{Backend: config.BackendFile, Path: filepath.Join(t.TempDir(), "board")}
}

// snapshot reads the board a previous invocation persisted.
func snapshot(t *testing.T, storage config.StorageConfig) board.Document {
	t.Helper()
	a, err := app.Open(context.Background(), storage, nil)
	require.NoError(t, err)
	defer a.Close()
	return a.Store.Snapshot()
}

func TestCLI_TaskLifecycle(t *testing.T) {
	storage := fileStorage(t)

	out := mustRun(t, storage, "add", "Learn", "select", "--priority", "high", "--estimate", "30")
	require.Contains(t, out, "[ ]")
	require.Contains(t, out, "Learn select")
	require.Contains(t, out, "high")

	doc := snapshot(t, storage)
	require.Len(t, doc.Tasks, 1)
	task := doc.Tasks[0]
	require.Equal(t, 30.0, task.EstimateMin)

	// A unique prefix is enough to address a task.
	out = mustRun(t, storage, "done", task.ID[:6])
	require.Contains(t, out, "[x]")

	out = mustRun(t, storage, "tasks", "--status", "done")
	require.Contains(t, out, "Learn select")
	out = mustRun(t, storage, "tasks", "--status", "todo")
	require.Contains(t, out, "No tasks.")

	mustRun(t, storage, "edit", task.ID, "--status", "doing", "--spent", "12.5")
	edited := snapshot(t, storage).Tasks[0]
	require.Equal(t, board.StatusDoing, edited.Status)
	require.Equal(t, 12.5, edited.SpentMin)
	require.Equal(t, "Learn select", edited.Title)
	require.Equal(t, board.PriorityHigh, edited.Priority)

	out = mustRun(t, storage, "next", task.ID, "read", "the", "docs", "of", "select")
	require.Contains(t, out, "下一步：read the docs of select")

	out = mustRun(t, storage, "focus")
	require.Contains(t, out, "Learn select")

	mustRun(t, storage, "rm", task.ID)
	require.Empty(t, snapshot(t, storage).Tasks)
}

func TestCLI_Errors(t *testing.T) {
	storage := fileStorage(t)

	_, err := runCLI(t, storage, "add", "   ")
	require.ErrorIs(t, err, board.ErrValidation)

	_, err = runCLI(t, storage, "done", "t_missing")
	require.ErrorIs(t, err, board.ErrNotFound)

	mustRun(t, storage, "add", "Keep")
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{oops"), 0o600))
	_, err = runCLI(t, storage, "import", bad)
	require.ErrorIs(t, err, board.ErrFormat)
	require.Len(t, snapshot(t, storage).Tasks, 1)

	_, err = runCLI(t, config.StorageConfig{Backend: "tape", Path: "x"}, "tasks")
	require.ErrorContains(t, err, "invalid storage backend")
}

func TestCLI_NotesAreUnlinkedWhenTaskRemoved(t *testing.T) {
	storage := fileStorage(t)

	mustRun(t, storage, "add", "Generics")
	taskID := snapshot(t, storage).Tasks[0].ID

	out := mustRun(t, storage, "note", "try", "constraints", "--source", "Gemini", "--task", taskID)
	require.Contains(t, out, "Gemini")
	require.Contains(t, out, "→ Generics")

	out = mustRun(t, storage, "notes", "--task", taskID)
	require.Contains(t, out, "try constraints")

	mustRun(t, storage, "rm", taskID)
	out = mustRun(t, storage, "notes")
	require.Contains(t, out, "unfiled")
	require.Contains(t, out, "try constraints")

	noteID := snapshot(t, storage).Notes[0].ID
	mustRun(t, storage, "unnote", noteID)
	out = mustRun(t, storage, "notes")
	require.Contains(t, out, "No notes.")
}

func TestCLI_ExportImport(t *testing.T) {
	storage := fileStorage(t)
	mustRun(t, storage, "project", "--title", "Sprint", "--goal", "ship it")
	mustRun(t, storage, "add", "Alpha", "--desc", "line one")
	mustRun(t, storage, "note", "remember", "this")

	exported := filepath.Join(t.TempDir(), "board.json")
	out := mustRun(t, storage, "export", "json", "-o", exported)
	require.Contains(t, out, "wrote "+exported)

	md := mustRun(t, storage, "export", "md")
	require.True(t, strings.HasPrefix(md, "# Sprint\n"))
	require.Contains(t, md, "> 目标：ship it")
	require.Contains(t, md, "**Alpha**")

	rendered := mustRun(t, storage, "export", "md", "--render")
	require.Contains(t, rendered, "Alpha")
	require.NotEqual(t, md, rendered)

	other := config.StorageConfig{Backend: config.BackendFile, Path: filepath.Join(t.TempDir(), "other")}
	out = mustRun(t, other, "import", exported)
	require.Contains(t, out, "imported 1 tasks and 1 notes")

	require.Equal(t, snapshot(t, storage).Tasks, snapshot(t, other).Tasks)
	require.Equal(t, "Sprint", snapshot(t, other).Project.Title)
}

func TestCLI_Preferences(t *testing.T) {
	storage := fileStorage(t)

	require.Equal(t, "dark\n", mustRun(t, storage, "theme"))
	require.Equal(t, "light\n", mustRun(t, storage, "theme", "light"))
	require.Equal(t, "dark\n", mustRun(t, storage, "theme", "Light"))

	out := mustRun(t, storage, "sources", "add", "Claude")
	require.Contains(t, out, "Claude")
	mustRun(t, storage, "sources", "add", "CLAUDE")
	require.Equal(t, []string{"Claude"}, snapshot(t, storage).UI.CustomSources)
	out = mustRun(t, storage, "sources", "rm", "claude")
	require.Contains(t, out, "none")

	mustRun(t, storage, "add", "Alpha", "--priority", "low")
	mustRun(t, storage, "add", "Beta", "--priority", "high")
	out = mustRun(t, storage, "filters", "--priority", "high")
	require.Equal(t, "status=all priority=high q=\"\"\n", out)

	out = mustRun(t, storage, "tasks", "--stored")
	require.Contains(t, out, "Beta")
	require.NotContains(t, out, "Alpha")
}

func TestCLI_ActivityWithSQLite(t *testing.T) {
	isolateEnv(t)
	storage := config.StorageConfig{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "board.db")}

	mustRun(t, storage, "add", "Tracked")
	taskID := snapshot(t, storage).Tasks[0].ID
	mustRun(t, storage, "done", taskID)
	mustRun(t, storage, "note", "unrelated")

	out := mustRun(t, storage, "activity")
	require.Contains(t, out, "task_created")
	require.Contains(t, out, "task_toggled")
	require.Contains(t, out, "note_created")

	out = mustRun(t, storage, "activity", "--task", taskID, "-n", "1")
	require.Contains(t, out, "task_toggled")
	require.NotContains(t, out, "task_created")
}

func TestWatchTarget(t *testing.T) {
	dir, prefix, err := watchTarget(config.StorageConfig{Backend: config.BackendFile, Path: "/data/board"})
	require.NoError(t, err)
	require.Equal(t, "/data/board", dir)
	require.Equal(t, "ecc_store_v1.json", prefix)

	dir, prefix, err = watchTarget(config.StorageConfig{Backend: config.BackendSQLite, Path: "/data/taskdesk.db"})
	require.NoError(t, err)
	require.Equal(t, "/data", dir)
	require.Equal(t, "taskdesk.db", prefix)

	_, _, err = watchTarget(config.StorageConfig{Backend: config.BackendSQLite, Path: ":memory:"})
	require.Error(t, err)
	_, _, err = watchTarget(config.StorageConfig{Backend: config.BackendMemory})
	require.Error(t, err)
}

func TestWatchFiles_ReportsSettledChanges(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, dir, "board", 20*time.Millisecond, func() error {
			changes <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "board.json"), []byte("{}"), 0o600))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
