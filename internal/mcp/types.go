package mcp

import (
	"time"

	"github.com/rpggio/taskdesk/internal/domain/activity"
	"github.com/rpggio/taskdesk/internal/domain/board"
)

type emptyParams struct{}

type idParams struct {
	ID string `json:"id" jsonschema:"Task or note ID"`
}

type listTasksParams struct {
	Status   string `json:"status,omitempty" jsonschema:"Filter by status: todo, doing, done or all"`
	Priority string `json:"priority,omitempty" jsonschema:"Filter by priority: low, medium, high or all"`
	Query    string `json:"q,omitempty" jsonschema:"Case-insensitive text matched against title and description"`
	Stored   bool   `json:"stored,omitempty" jsonschema:"Apply the filters saved on the board instead of the arguments"`
}

type addTaskParams struct {
	Title       string  `json:"title" jsonschema:"Task title"`
	Desc        string  `json:"desc,omitempty" jsonschema:"Task description"`
	Priority    string  `json:"priority,omitempty" jsonschema:"low, medium or high (default medium)"`
	Status      string  `json:"status,omitempty" jsonschema:"todo, doing or done (default todo)"`
	EstimateMin float64 `json:"estimate_min,omitempty" jsonschema:"Estimated minutes"`
	SpentMin    float64 `json:"spent_min,omitempty" jsonschema:"Minutes already spent"`
}

type updateTaskParams struct {
	ID          string   `json:"id" jsonschema:"Task ID to update"`
	Title       *string  `json:"title,omitempty" jsonschema:"New title"`
	Desc        *string  `json:"desc,omitempty" jsonschema:"New description"`
	Priority    *string  `json:"priority,omitempty" jsonschema:"New priority; unknown values are ignored"`
	Status      *string  `json:"status,omitempty" jsonschema:"New status; unknown values are ignored"`
	EstimateMin *float64 `json:"estimate_min,omitempty" jsonschema:"New estimate in minutes"`
	SpentMin    *float64 `json:"spent_min,omitempty" jsonschema:"New spent minutes"`
}

type nextStepParams struct {
	ID   string `json:"id" jsonschema:"Task ID"`
	Step string `json:"step" jsonschema:"Next step to append to the description"`
}

type listNotesParams struct {
	TaskID string `json:"task_id,omitempty" jsonschema:"Only notes linked to this task"`
}

type addNoteParams struct {
	Content string `json:"content" jsonschema:"Note text"`
	Source  string `json:"source,omitempty" jsonschema:"Where the note came from (default ChatGPT)"`
	TaskID  string `json:"task_id,omitempty" jsonschema:"Task to link the note to"`
}

type setThemeParams struct {
	Theme string `json:"theme" jsonschema:"light or dark"`
}

type setFiltersParams struct {
	Status   *string `json:"status,omitempty" jsonschema:"Status filter or all"`
	Priority *string `json:"priority,omitempty" jsonschema:"Priority filter or all"`
	Query    *string `json:"q,omitempty" jsonschema:"Text filter"`
}

type setProjectParams struct {
	Title *string `json:"title,omitempty" jsonschema:"Board title"`
	Goal  *string `json:"goal,omitempty" jsonschema:"Board goal"`
}

type sourceParams struct {
	Name string `json:"name" jsonschema:"Source name"`
}

type importParams struct {
	JSON string `json:"json" jsonschema:"Document text produced by export_json"`
}

type recentActivityParams struct {
	SubjectID string `json:"subject_id,omitempty" jsonschema:"Only entries about this task or note"`
	Type      string `json:"type,omitempty" jsonschema:"Only entries of this activity type"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of entries (default 50)"`
}

// BoardResponse is the orientation view returned by get_board.
type BoardResponse struct {
	Project board.Project `json:"project"`
	Theme   board.Theme   `json:"theme"`
	Filters board.Filters `json:"filters"`
	Counts  StatusCounts  `json:"counts"`
	Focus   *board.Task   `json:"focus,omitempty"`
	Tasks   []board.Task  `json:"tasks"`
	Notes   int           `json:"notes"`
	Sources []string      `json:"sources"`
}

// StatusCounts tallies tasks per status.
type StatusCounts struct {
	Todo  int `json:"todo"`
	Doing int `json:"doing"`
	Done  int `json:"done"`
}

type taskResponse struct {
	Task board.Task `json:"task"`
}

type tasksResponse struct {
	Tasks []board.Task `json:"tasks"`
}

type noteResponse struct {
	Note board.Note `json:"note"`
}

type notesResponse struct {
	Notes []board.Note `json:"notes"`
}

type removedResponse struct {
	ID      string `json:"id"`
	Removed bool   `json:"removed"`
}

type themeResponse struct {
	Theme board.Theme `json:"theme"`
}

type filtersResponse struct {
	Filters board.Filters `json:"filters"`
}

type projectResponse struct {
	Project board.Project `json:"project"`
}

type sourcesResponse struct {
	Builtin []string `json:"builtin"`
	Custom  []string `json:"custom"`
}

type exportJSONResponse struct {
	JSON string `json:"json"`
}

type importResponse struct {
	Tasks int `json:"tasks"`
	Notes int `json:"notes"`
}

type markdownResponse struct {
	Markdown string `json:"markdown"`
}

// ActivityResponse is an activity entry with an RFC 3339 timestamp.
type ActivityResponse struct {
	ID        int64  `json:"id"`
	SubjectID string `json:"subject_id,omitempty"`
	Type      string `json:"type"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

type activityResponse struct {
	Entries []ActivityResponse `json:"entries"`
}

func toActivityResponse(e activity.ActivityEntry) ActivityResponse {
	resp := ActivityResponse{
		ID:        e.ID,
		Type:      string(e.ActivityType),
		Summary:   e.Summary,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.SubjectID != nil {
		resp.SubjectID = *e.SubjectID
	}
	return resp
}
