package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/taskdesk/internal/domain/activity"
	"github.com/rpggio/taskdesk/internal/domain/board"
)

func registerTools(server *sdkmcp.Server, b BoardService, act ActivityService) {
	// Orientation
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_board",
		Description: "Get the board overview: project, preferences, status counts, the focus task and the tasks matching the saved filters",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyParams) (*sdkmcp.CallToolResult, BoardResponse, error) {
		return nil, boardOverview(b), nil
	})

	// Tasks
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks newest first, optionally filtered by status, priority and text",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in listTasksParams) (*sdkmcp.CallToolResult, tasksResponse, error) {
		if in.Stored {
			return nil, tasksResponse{Tasks: b.FilteredTasks()}, nil
		}
		tasks := board.FilterTasks(b.ListTasks(), board.Filters{
			Status:   in.Status,
			Priority: in.Priority,
			Q:        in.Query,
		})
		return nil, tasksResponse{Tasks: tasks}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_task",
		Description: "Get a task by ID",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, taskResponse, error) {
		task, ok := b.GetTask(in.ID)
		if !ok {
			return nil, taskResponse{}, toolError(fmt.Errorf("%w: task %s", board.ErrNotFound, in.ID))
		}
		return nil, taskResponse{Task: task}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_task",
		Description: "Create a task at the top of the list",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in addTaskParams) (*sdkmcp.CallToolResult, taskResponse, error) {
		task, err := b.AddTask(ctx, board.TaskInput{
			Title:       in.Title,
			Desc:        in.Desc,
			Priority:    in.Priority,
			Status:      in.Status,
			EstimateMin: in.EstimateMin,
			SpentMin:    in.SpentMin,
		})
		if err != nil {
			return nil, taskResponse{}, toolError(err)
		}
		return nil, taskResponse{Task: task}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_task",
		Description: "Update the given fields of a task; omitted fields are left unchanged",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in updateTaskParams) (*sdkmcp.CallToolResult, taskResponse, error) {
		task, err := b.UpdateTask(ctx, in.ID, board.TaskPatch{
			Title:       in.Title,
			Desc:        in.Desc,
			Priority:    in.Priority,
			Status:      in.Status,
			EstimateMin: in.EstimateMin,
			SpentMin:    in.SpentMin,
		})
		if err != nil {
			return nil, taskResponse{}, toolError(err)
		}
		return nil, taskResponse{Task: task}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_task",
		Description: "Mark a task done, or reopen it as todo when it is already done",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, taskResponse, error) {
		task, err := b.ToggleDone(ctx, in.ID)
		if err != nil {
			return nil, taskResponse{}, toolError(err)
		}
		return nil, taskResponse{Task: task}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_task",
		Description: "Delete a task; notes linked to it are kept and unlinked",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, removedResponse, error) {
		if err := b.RemoveTask(ctx, in.ID); err != nil {
			return nil, removedResponse{}, toolError(err)
		}
		return nil, removedResponse{ID: in.ID, Removed: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "append_next_step",
		Description: "Append a next-step line to a task description",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in nextStepParams) (*sdkmcp.CallToolResult, taskResponse, error) {
		task, err := b.AppendNextStep(ctx, in.ID, in.Step)
		if err != nil {
			return nil, taskResponse{}, toolError(err)
		}
		return nil, taskResponse{Task: task}, nil
	})

	// Notes
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_notes",
		Description: "List notes newest first, optionally only those linked to a task",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in listNotesParams) (*sdkmcp.CallToolResult, notesResponse, error) {
		notes := b.ListNotes()
		if in.TaskID != "" {
			linked := make([]board.Note, 0, len(notes))
			for _, n := range notes {
				if n.TaskID != nil && *n.TaskID == in.TaskID {
					linked = append(linked, n)
				}
			}
			notes = linked
		}
		return nil, notesResponse{Notes: notes}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_note",
		Description: "Record a note, optionally linked to a task",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in addNoteParams) (*sdkmcp.CallToolResult, noteResponse, error) {
		note, err := b.AddNote(ctx, board.NoteInput{
			TaskID:  in.TaskID,
			Source:  in.Source,
			Content: in.Content,
		})
		if err != nil {
			return nil, noteResponse{}, toolError(err)
		}
		return nil, noteResponse{Note: note}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_note",
		Description: "Delete a note",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, removedResponse, error) {
		if err := b.RemoveNote(ctx, in.ID); err != nil {
			return nil, removedResponse{}, toolError(err)
		}
		return nil, removedResponse{ID: in.ID, Removed: true}, nil
	})

	// Preferences
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_theme",
		Description: "Set the color theme; anything other than light selects dark",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in setThemeParams) (*sdkmcp.CallToolResult, themeResponse, error) {
		if err := b.SetTheme(ctx, in.Theme); err != nil {
			return nil, themeResponse{}, toolError(err)
		}
		return nil, themeResponse{Theme: b.Theme()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_filters",
		Description: "Save task filters on the board; omitted fields are left unchanged",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in setFiltersParams) (*sdkmcp.CallToolResult, filtersResponse, error) {
		filters, err := b.SetFilters(ctx, board.FiltersPatch{
			Status:   in.Status,
			Priority: in.Priority,
			Q:        in.Query,
		})
		if err != nil {
			return nil, filtersResponse{}, toolError(err)
		}
		return nil, filtersResponse{Filters: filters}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_project",
		Description: "Set the board title and goal",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in setProjectParams) (*sdkmcp.CallToolResult, projectResponse, error) {
		project, err := b.SetProject(ctx, board.ProjectPatch{Title: in.Title, Goal: in.Goal})
		if err != nil {
			return nil, projectResponse{}, toolError(err)
		}
		return nil, projectResponse{Project: project}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_sources",
		Description: "List built-in and custom note sources",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyParams) (*sdkmcp.CallToolResult, sourcesResponse, error) {
		return nil, sources(b), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_source",
		Description: "Add a custom note source; duplicates are ignored regardless of case",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in sourceParams) (*sdkmcp.CallToolResult, sourcesResponse, error) {
		if err := b.AddCustomSource(ctx, in.Name); err != nil {
			return nil, sourcesResponse{}, toolError(err)
		}
		return nil, sources(b), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_source",
		Description: "Remove a custom note source, ignoring case",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in sourceParams) (*sdkmcp.CallToolResult, sourcesResponse, error) {
		if err := b.RemoveCustomSource(ctx, in.Name); err != nil {
			return nil, sourcesResponse{}, toolError(err)
		}
		return nil, sources(b), nil
	})

	// Import/Export
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_json",
		Description: "Export the whole board as a portable JSON document",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyParams) (*sdkmcp.CallToolResult, exportJSONResponse, error) {
		text, err := b.ExportJSON()
		if err != nil {
			return nil, exportJSONResponse{}, toolError(err)
		}
		return nil, exportJSONResponse{JSON: text}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "import_json",
		Description: "Replace the whole board with an exported JSON document",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in importParams) (*sdkmcp.CallToolResult, importResponse, error) {
		if err := b.ImportJSON(ctx, in.JSON); err != nil {
			return nil, importResponse{}, toolError(err)
		}
		return nil, importResponse{Tasks: len(b.ListTasks()), Notes: len(b.ListNotes())}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_markdown",
		Description: "Render the board as a Markdown report grouped by status",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyParams) (*sdkmcp.CallToolResult, markdownResponse, error) {
		return nil, markdownResponse{Markdown: b.ExportMarkdown()}, nil
	})

	// History
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recent_activity",
		Description: "Get recent board changes, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in recentActivityParams) (*sdkmcp.CallToolResult, activityResponse, error) {
		resp := activityResponse{Entries: []ActivityResponse{}}
		if act == nil {
			return nil, resp, nil
		}

		opts := activity.ListActivityOptions{Limit: in.Limit}
		if subject := strings.TrimSpace(in.SubjectID); subject != "" {
			opts.SubjectID = &subject
		}
		if in.Type != "" {
			kind := activity.ActivityType(in.Type)
			opts.ActivityType = &kind
		}

		entries, err := act.GetRecentActivity(ctx, opts)
		if err != nil {
			return nil, activityResponse{}, toolError(err)
		}
		for _, e := range entries {
			resp.Entries = append(resp.Entries, toActivityResponse(e))
		}
		return nil, resp, nil
	})
}

func boardOverview(b BoardService) BoardResponse {
	var counts StatusCounts
	for _, t := range b.ListTasks() {
		switch t.Status {
		case board.StatusTodo:
			counts.Todo++
		case board.StatusDoing:
			counts.Doing++
		case board.StatusDone:
			counts.Done++
		}
	}

	resp := BoardResponse{
		Project: b.Project(),
		Theme:   b.Theme(),
		Filters: b.Filters(),
		Counts:  counts,
		Tasks:   b.FilteredTasks(),
		Notes:   len(b.ListNotes()),
		Sources: b.Sources(),
	}
	if focus, ok := b.NextFocusTask(); ok {
		resp.Focus = &focus
	}
	return resp
}

func sources(b BoardService) sourcesResponse {
	return sourcesResponse{
		Builtin: append([]string{}, board.BuiltinSources...),
		Custom:  b.GetCustomSources(),
	}
}
