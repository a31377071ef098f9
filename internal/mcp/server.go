package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/taskdesk/internal/domain/activity"
	"github.com/rpggio/taskdesk/internal/domain/board"
)

// BoardService defines the board operations exposed over MCP.
type BoardService interface {
	Project() board.Project
	SetProject(ctx context.Context, patch board.ProjectPatch) (board.Project, error)
	Theme() board.Theme
	SetTheme(ctx context.Context, theme string) error
	Filters() board.Filters
	SetFilters(ctx context.Context, patch board.FiltersPatch) (board.Filters, error)
	GetCustomSources() []string
	Sources() []string
	AddCustomSource(ctx context.Context, name string) error
	RemoveCustomSource(ctx context.Context, name string) error

	ListTasks() []board.Task
	FilteredTasks() []board.Task
	GetTask(id string) (board.Task, bool)
	NextFocusTask() (board.Task, bool)
	AddTask(ctx context.Context, in board.TaskInput) (board.Task, error)
	UpdateTask(ctx context.Context, id string, patch board.TaskPatch) (board.Task, error)
	AppendNextStep(ctx context.Context, id, step string) (board.Task, error)
	ToggleDone(ctx context.Context, id string) (board.Task, error)
	RemoveTask(ctx context.Context, id string) error

	ListNotes() []board.Note
	AddNote(ctx context.Context, in board.NoteInput) (board.Note, error)
	RemoveNote(ctx context.Context, id string) error

	ExportJSON() (string, error)
	ImportJSON(ctx context.Context, text string) error
	ExportMarkdown() string
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Config contains server configuration.
type Config struct {
	Board         BoardService
	Activity      ActivityService
	TransportMode string // "stdio" or "http"
	AuthToken     string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "taskdesk",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)
	registerReportResource(server, cfg.Board)

	// Stdio is local only; HTTP checks the bearer token when one is configured.
	if cfg.TransportMode != "stdio" && cfg.AuthToken != "" {
		server.AddReceivingMiddleware(tokenAuthMiddleware(cfg.AuthToken))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Board, cfg.Activity)

	return server
}
