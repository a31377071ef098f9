package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `taskdesk keeps one board of tasks and notes for a learner working with AI assistants.

Core concepts:
- Task: title, description, priority (low|medium|high), status (todo|doing|done), estimated and spent minutes.
- Note: a suggestion captured from a source (ChatGPT, DeepSeek, ...) and optionally linked to a task. Removing a task keeps its notes and unlinks them.
- Preferences: theme, saved task filters and custom note sources.

Default workflow:
1) Orient: call get_board. It returns counts, the focus task (first unfinished) and the filtered task list.
2) Plan: add_task, update_task, append_next_step. toggle_task flips between done and todo.
3) Capture: add_note with the assistant name as source and task_id when the note belongs to a task.
4) Report: export_markdown or read taskdesk://report. export_json / import_json move the whole board.

Errors carry a code: VALIDATION (empty title or content), NOT_FOUND (unknown id), FORMAT (unreadable import).

Docs:
- taskdesk://guide
- taskdesk://report (live Markdown report)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "taskdesk://guide",
		Name:        "guide",
		Title:       "taskdesk guide",
		Description: "How the board is organised and how the tools fit together.",
		Content: `# taskdesk guide

## Tasks

- New tasks go to the top of the list. Title is required; priority defaults to ` + "`medium`" + `, status to ` + "`todo`" + `.
- ` + "`update_task`" + ` changes only the fields you pass. Unknown priority or status values are ignored, not rejected.
- Minutes are never negative; negative values are stored as 0.
- ` + "`append_next_step`" + ` adds a line ` + "`下一步：…`" + ` to the description, separated by a blank line.

## Notes

- Content is required. Source defaults to ` + "`ChatGPT`" + `.
- Notes are listed newest first.
- A note keeps its text when its task is removed; only the link is cleared.

## Sources

- Built-in: ChatGPT, DeepSeek, Grok, Gemini, 豆包.
- Custom sources are unique regardless of case, newest first, at most 20.

## Filters

` + "`set_filters`" + ` saves status, priority and text filters on the board. ` + "`all`" + ` disables a status or priority filter. ` + "`get_board`" + ` and ` + "`list_tasks`" + ` with ` + "`stored: true`" + ` apply them.

## Import and export

- ` + "`export_json`" + ` returns the full document with an ` + "`exportedAt`" + ` timestamp.
- ` + "`import_json`" + ` replaces everything. Malformed fields fall back to defaults; text that is not JSON fails with FORMAT and changes nothing.
- ` + "`export_markdown`" + ` groups tasks by status and lists notes with their linked task.
`,
	},
}

const reportURI = "taskdesk://report"

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			return markdownResult(req, doc.URI, doc.Content), nil
		})
	}
}

// registerReportResource exposes the Markdown report, rendered on each read.
func registerReportResource(server *sdkmcp.Server, b BoardService) {
	server.AddResource(&sdkmcp.Resource{
		URI:         reportURI,
		Name:        "report",
		Title:       "Board report",
		Description: "Current tasks grouped by status, followed by archived notes.",
		MIMEType:    "text/markdown",
	}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		return markdownResult(req, reportURI, b.ExportMarkdown()), nil
	})
}

func markdownResult(req *sdkmcp.ReadResourceRequest, uri, text string) *sdkmcp.ReadResourceResult {
	if req != nil && req.Params != nil && req.Params.URI != "" {
		uri = req.Params.URI
	}
	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     text,
		}},
	}
}
