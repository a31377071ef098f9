package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/taskdesk/internal/domain/activity"
	"github.com/rpggio/taskdesk/internal/domain/board"
	"github.com/rpggio/taskdesk/internal/memory"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	session *sdkmcp.ClientSession
	store   *board.Store
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	ctx := context.Background()

	activitySvc := activity.NewService(memory.NewActivityRepository(), nil)
	store, err := board.NewStore(ctx, memory.NewSlot(), activitySvc, nil)
	require.NoError(t, err)

	server := NewServer(Config{Board: store, Activity: activitySvc, TransportMode: "stdio"})
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return &testClient{session: session, store: store}
}

func (c *testClient) call(t *testing.T, name string, args map[string]any, out any) {
	t.Helper()
	result := c.rawCall(t, name, args)
	require.False(t, result.IsError, "tool %s returned error: %s", name, resultText(result))
	require.NoError(t, json.Unmarshal([]byte(resultText(result)), out))
}

func (c *testClient) callError(t *testing.T, name string, args map[string]any) string {
	t.Helper()
	result := c.rawCall(t, name, args)
	require.True(t, result.IsError, "tool %s should have failed", name)
	return resultText(result)
}

func (c *testClient) rawCall(t *testing.T, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	result, err := c.session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return result
}

func resultText(result *sdkmcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func TestTools_TaskLifecycle(t *testing.T) {
	c := newTestClient(t)

	var created taskResponse
	c.call(t, "add_task", map[string]any{"title": "  Learn channels ", "priority": "high", "estimate_min": 45}, &created)
	require.Equal(t, "Learn channels", created.Task.Title)
	require.Equal(t, board.PriorityHigh, created.Task.Priority)
	require.Equal(t, board.StatusTodo, created.Task.Status)
	require.Equal(t, 45.0, created.Task.EstimateMin)
	id := created.Task.ID

	var updated taskResponse
	c.call(t, "update_task", map[string]any{"id": id, "status": "doing", "priority": "urgent", "spent_min": -5}, &updated)
	require.Equal(t, board.StatusDoing, updated.Task.Status)
	require.Equal(t, board.PriorityHigh, updated.Task.Priority)
	require.Zero(t, updated.Task.SpentMin)

	var stepped taskResponse
	c.call(t, "append_next_step", map[string]any{"id": id, "step": "write a pipeline"}, &stepped)
	require.Equal(t, "下一步：write a pipeline", stepped.Task.Desc)

	var toggled taskResponse
	c.call(t, "toggle_task", map[string]any{"id": id}, &toggled)
	require.Equal(t, board.StatusDone, toggled.Task.Status)

	var fetched taskResponse
	c.call(t, "get_task", map[string]any{"id": id}, &fetched)
	require.Equal(t, toggled.Task, fetched.Task)

	var removed removedResponse
	c.call(t, "remove_task", map[string]any{"id": id}, &removed)
	require.True(t, removed.Removed)

	msg := c.callError(t, "get_task", map[string]any{"id": id})
	require.Contains(t, msg, "NOT_FOUND")
}

func TestTools_ListTasksFilters(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.store.AddTask(ctx, board.TaskInput{Title: "Read the Go memory model", Priority: "low"})
	require.NoError(t, err)
	_, err = c.store.AddTask(ctx, board.TaskInput{Title: "Benchmark maps", Desc: "compare MEMORY use", Priority: "high"})
	require.NoError(t, err)
	_, err = c.store.AddTask(ctx, board.TaskInput{Title: "Ship", Status: "done"})
	require.NoError(t, err)

	var byText tasksResponse
	c.call(t, "list_tasks", map[string]any{"q": "memory"}, &byText)
	require.Len(t, byText.Tasks, 2)

	var byPriority tasksResponse
	c.call(t, "list_tasks", map[string]any{"priority": "high"}, &byPriority)
	require.Len(t, byPriority.Tasks, 1)
	require.Equal(t, "Benchmark maps", byPriority.Tasks[0].Title)

	var filters filtersResponse
	c.call(t, "set_filters", map[string]any{"status": "done"}, &filters)
	require.Equal(t, board.Filters{Status: "done", Priority: board.FilterAll}, filters.Filters)

	var stored tasksResponse
	c.call(t, "list_tasks", map[string]any{"stored": true}, &stored)
	require.Len(t, stored.Tasks, 1)
	require.Equal(t, "Ship", stored.Tasks[0].Title)

	var overview BoardResponse
	c.call(t, "get_board", nil, &overview)
	require.Equal(t, StatusCounts{Todo: 2, Done: 1}, overview.Counts)
	require.Len(t, overview.Tasks, 1)
	require.NotNil(t, overview.Focus)
	require.Equal(t, "Benchmark maps", overview.Focus.Title)
	require.Equal(t, board.DefaultProjectTitle, overview.Project.Title)
}

func TestTools_NotesSurviveTaskRemoval(t *testing.T) {
	c := newTestClient(t)

	var task taskResponse
	c.call(t, "add_task", map[string]any{"title": "Study generics"}, &task)

	var note noteResponse
	c.call(t, "add_note", map[string]any{"content": "try type sets", "source": "Grok", "task_id": task.Task.ID}, &note)
	require.Equal(t, "Grok", note.Note.Source)
	require.NotNil(t, note.Note.TaskID)

	var linked notesResponse
	c.call(t, "list_notes", map[string]any{"task_id": task.Task.ID}, &linked)
	require.Len(t, linked.Notes, 1)

	var removed removedResponse
	c.call(t, "remove_task", map[string]any{"id": task.Task.ID}, &removed)

	var all notesResponse
	c.call(t, "list_notes", nil, &all)
	require.Len(t, all.Notes, 1)
	require.Nil(t, all.Notes[0].TaskID)
	require.Equal(t, "try type sets", all.Notes[0].Content)

	c.call(t, "remove_note", map[string]any{"id": note.Note.ID}, &removed)
	c.call(t, "list_notes", nil, &all)
	require.Empty(t, all.Notes)
}

func TestTools_ErrorCodes(t *testing.T) {
	c := newTestClient(t)

	require.Contains(t, c.callError(t, "add_task", map[string]any{"title": "   "}), "VALIDATION")
	require.Contains(t, c.callError(t, "add_note", map[string]any{"content": ""}), "VALIDATION")
	require.Contains(t, c.callError(t, "import_json", map[string]any{"json": "{not json"}), "FORMAT")
	require.Contains(t, c.callError(t, "import_json", map[string]any{"json": "null"}), "FORMAT")
	require.Contains(t, c.callError(t, "toggle_task", map[string]any{"id": "t_missing"}), "NOT_FOUND")
	require.Contains(t, c.callError(t, "remove_note", map[string]any{"id": "n_missing"}), "NOT_FOUND")
}

func TestTools_ExportImportRoundTrip(t *testing.T) {
	c := newTestClient(t)

	var task taskResponse
	c.call(t, "add_task", map[string]any{"title": "Portable", "estimate_min": 12.5}, &task)
	var note noteResponse
	c.call(t, "add_note", map[string]any{"content": "keep me", "task_id": task.Task.ID}, &note)
	var project projectResponse
	c.call(t, "set_project", map[string]any{"title": "Go sprint", "goal": "finish the book"}, &project)
	require.Equal(t, board.Project{Title: "Go sprint", Goal: "finish the book"}, project.Project)

	var exported exportJSONResponse
	c.call(t, "export_json", nil, &exported)
	require.Contains(t, exported.JSON, `"exportedAt"`)

	other := newTestClient(t)
	var imported importResponse
	other.call(t, "import_json", map[string]any{"json": exported.JSON}, &imported)
	require.Equal(t, importResponse{Tasks: 1, Notes: 1}, imported)

	got, ok := other.store.GetTask(task.Task.ID)
	require.True(t, ok)
	require.Equal(t, 12.5, got.EstimateMin)
	require.Equal(t, "Go sprint", other.store.Project().Title)

	var md markdownResponse
	other.call(t, "export_markdown", nil, &md)
	require.True(t, strings.HasPrefix(md.Markdown, "# Go sprint"))
	require.Contains(t, md.Markdown, "**Portable**")
}

func TestTools_PreferencesAndSources(t *testing.T) {
	c := newTestClient(t)

	var theme themeResponse
	c.call(t, "set_theme", map[string]any{"theme": "light"}, &theme)
	require.Equal(t, board.ThemeLight, theme.Theme)
	c.call(t, "set_theme", map[string]any{"theme": "LIGHT"}, &theme)
	require.Equal(t, board.ThemeDark, theme.Theme)

	var sources sourcesResponse
	c.call(t, "add_source", map[string]any{"name": "Claude"}, &sources)
	c.call(t, "add_source", map[string]any{"name": "claude"}, &sources)
	c.call(t, "add_source", map[string]any{"name": "Kimi"}, &sources)
	require.Equal(t, []string{"Kimi", "Claude"}, sources.Custom)
	require.Equal(t, board.BuiltinSources, sources.Builtin)

	c.call(t, "remove_source", map[string]any{"name": "CLAUDE"}, &sources)
	require.Equal(t, []string{"Kimi"}, sources.Custom)

	c.call(t, "list_sources", nil, &sources)
	require.Equal(t, []string{"Kimi"}, sources.Custom)
}

func TestTools_RecentActivity(t *testing.T) {
	c := newTestClient(t)

	var task taskResponse
	c.call(t, "add_task", map[string]any{"title": "Tracked"}, &task)
	c.call(t, "toggle_task", map[string]any{"id": task.Task.ID}, &task)
	var note noteResponse
	c.call(t, "add_note", map[string]any{"content": "untracked task"}, &note)

	var all activityResponse
	c.call(t, "recent_activity", nil, &all)
	require.Len(t, all.Entries, 3)
	require.Equal(t, string(activity.TypeNoteCreated), all.Entries[0].Type)

	var forTask activityResponse
	c.call(t, "recent_activity", map[string]any{"subject_id": task.Task.ID}, &forTask)
	require.Len(t, forTask.Entries, 2)

	var limited activityResponse
	c.call(t, "recent_activity", map[string]any{"type": "task_created", "limit": 1}, &limited)
	require.Len(t, limited.Entries, 1)
	require.Equal(t, task.Task.ID, limited.Entries[0].SubjectID)
}

func TestResources_ReportAndGuide(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.store.AddTask(ctx, board.TaskInput{Title: "Visible in report"})
	require.NoError(t, err)

	report, err := c.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: reportURI})
	require.NoError(t, err)
	require.Len(t, report.Contents, 1)
	require.Equal(t, c.store.ExportMarkdown(), report.Contents[0].Text)

	guide, err := c.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "taskdesk://guide"})
	require.NoError(t, err)
	require.Contains(t, guide.Contents[0].Text, "# taskdesk guide")
}

func TestMapError(t *testing.T) {
	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(errors.New("disk full")))

	for sentinel, code := range map[error]string{
		board.ErrNotFound:        "NOT_FOUND",
		board.ErrValidation:      "VALIDATION",
		board.ErrFormat:          "FORMAT",
		activity.ErrInvalidInput: "VALIDATION",
	} {
		apiErr := MapError(fmt.Errorf("%w: wrapped", sentinel))
		require.NotNil(t, apiErr)
		require.Equal(t, code, apiErr.Code)
	}

	plain := errors.New("saving document: disk full")
	require.Same(t, plain, toolError(plain))
}

func TestTokenAuthMiddleware(t *testing.T) {
	ctx := context.Background()
	next := func(context.Context, string, sdkmcp.Request) (sdkmcp.Result, error) {
		return &sdkmcp.CallToolResult{}, nil
	}
	handler := tokenAuthMiddleware("s3cret")(next)

	withHeader := func(value string) *sdkmcp.CallToolRequest {
		header := http.Header{}
		if value != "" {
			header.Set("Authorization", value)
		}
		return &sdkmcp.CallToolRequest{Extra: &sdkmcp.RequestExtra{Header: header}}
	}

	_, err := handler(ctx, "tools/call", withHeader("Bearer s3cret"))
	require.NoError(t, err)

	_, err = handler(ctx, "tools/call", withHeader("Bearer wrong"))
	require.ErrorContains(t, err, "invalid bearer token")

	_, err = handler(ctx, "tools/call", withHeader(""))
	require.ErrorContains(t, err, "missing bearer token")

	_, err = handler(ctx, "initialize", withHeader(""))
	require.NoError(t, err)
}
