package functional_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func newStdioSession(t *testing.T, extraEnv ...string) *sdkmcp.ClientSession {
	t.Helper()

	// Build with: go build -o bin/taskdesk-server ./cmd/server
	binaryPath := "./bin/taskdesk-server"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/taskdesk-server"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("Server binary not found. Build ./cmd/server into bin/taskdesk-server first.")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = append(os.Environ(),
		"TASKDESK_CONFIG_PATH=",
		"TASKDESK_TRANSPORT=stdio",
		"TASKDESK_STORAGE_BACKEND=memory",
	)
	cmd.Env = append(cmd.Env, extraEnv...)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect: %v", err)
	}

	t.Cleanup(func() {
		session.Close()
		cancel()
	})
	return session
}

func TestStdioFunctional_TaskRoundTrip(t *testing.T) {
	session := newStdioSession(t)

	var created taskPayload
	require.NoError(t, json.Unmarshal(callTool(t, session, "add_task", map[string]any{"title": "Over stdio"}), &created))
	require.Equal(t, "todo", created.Task.Status)

	var toggled taskPayload
	require.NoError(t, json.Unmarshal(callTool(t, session, "toggle_task", map[string]any{"id": created.Task.ID}), &toggled))
	require.Equal(t, "done", toggled.Task.Status)

	var listed struct {
		Tasks []struct {
			ID string `json:"id"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(callTool(t, session, "list_tasks", map[string]any{"status": "done"}), &listed))
	require.Len(t, listed.Tasks, 1)
	require.Equal(t, created.Task.ID, listed.Tasks[0].ID)
}

func TestStdioFunctional_FileBackendPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "board")
	env := []string{"TASKDESK_STORAGE_BACKEND=file", "TASKDESK_STORAGE_PATH=" + dir}

	first := newStdioSession(t, env...)
	callTool(t, first, "add_note", map[string]any{"content": "survives restarts"})
	require.NoError(t, first.Close())

	_, err := os.Stat(filepath.Join(dir, "ecc_store_v1.json"))
	require.NoError(t, err)

	second := newStdioSession(t, env...)
	var notes struct {
		Notes []struct {
			Content string `json:"content"`
		} `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(callTool(t, second, "list_notes", nil), &notes))
	require.Len(t, notes.Notes, 1)
	require.Equal(t, "survives restarts", notes.Notes[0].Content)
}
