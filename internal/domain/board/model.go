package board

// SchemaVersion is the document schema marker written by this package.
const SchemaVersion = 1

// DefaultProjectTitle is used when a document carries no project title.
const DefaultProjectTitle = "AI 学习任务指挥台"

// DefaultSource is the note source used when none is given.
const DefaultSource = "ChatGPT"

// MaxCustomSources caps the custom source list.
const MaxCustomSources = 20

// BuiltinSources are the note sources offered before any custom source.
var BuiltinSources = []string{"ChatGPT", "DeepSeek", "Grok", "Gemini", "豆包"}

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Status is the workflow state of a task
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Theme is the UI color scheme preference
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// FilterAll disables a status or priority filter.
const FilterAll = "all"

// Document is the full persisted state of a board.
type Document struct {
	Version   int     `json:"version"`
	UpdatedAt int64   `json:"updatedAt"`
	Project   Project `json:"project"`
	Tasks     []Task  `json:"tasks"`
	Notes     []Note  `json:"notes"`
	UI        UI      `json:"ui"`
}

// Project holds board-level metadata.
type Project struct {
	Title string `json:"title"`
	Goal  string `json:"goal"`
}

// Task is a unit of work. Timestamps are milliseconds since the Unix epoch.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Desc        string   `json:"desc"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	EstimateMin float64  `json:"estimateMin"`
	SpentMin    float64  `json:"spentMin"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// Note is a freeform annotation. TaskID is a weak reference to a Task.
type Note struct {
	ID        string  `json:"id"`
	TaskID    *string `json:"taskId"`
	Source    string  `json:"source"`
	Content   string  `json:"content"`
	CreatedAt int64   `json:"createdAt"`
}

// UI holds presentation preferences persisted with the document.
type UI struct {
	Theme         Theme    `json:"theme"`
	Filters       Filters  `json:"filters"`
	CustomSources []string `json:"customSources"`
}

// Filters narrow the task list shown to the user.
type Filters struct {
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Q        string `json:"q"`
}

// DefaultDocument returns a fresh document with every field at its default.
func DefaultDocument() Document {
	return Document{
		Version: SchemaVersion,
		Project: Project{Title: DefaultProjectTitle},
		Tasks:   []Task{},
		Notes:   []Note{},
		UI: UI{
			Theme:         ThemeDark,
			Filters:       Filters{Status: FilterAll, Priority: FilterAll},
			CustomSources: []string{},
		},
	}
}

// ParsePriority maps any value to a valid priority, defaulting to medium.
func ParsePriority(v any) Priority {
	s, _ := v.(string)
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	default:
		return PriorityMedium
	}
}

// ParseStatus maps any value to a valid status, defaulting to todo.
func ParseStatus(v any) Status {
	s, _ := v.(string)
	switch st := Status(s); st {
	case StatusTodo, StatusDoing, StatusDone:
		return st
	default:
		return StatusTodo
	}
}

// ParseTheme returns light only for the exact literal "light".
func ParseTheme(v any) Theme {
	if s, ok := v.(string); ok && Theme(s) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

func validPriority(s string) bool {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func validStatus(s string) bool {
	switch Status(s) {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

func (d Document) clone() Document {
	out := d
	out.Tasks = append([]Task{}, d.Tasks...)
	out.Notes = make([]Note, len(d.Notes))
	for i, n := range d.Notes {
		out.Notes[i] = n.clone()
	}
	out.UI.CustomSources = append([]string{}, d.UI.CustomSources...)
	return out
}

func (n Note) clone() Note {
	if n.TaskID != nil {
		id := *n.TaskID
		n.TaskID = &id
	}
	return n
}
