package activity

import "time"

// ActivityType represents the type of board mutation
type ActivityType string

const (
	TypeTaskCreated        ActivityType = "task_created"
	TypeTaskUpdated        ActivityType = "task_updated"
	TypeTaskToggled        ActivityType = "task_toggled"
	TypeTaskRemoved        ActivityType = "task_removed"
	TypeNoteCreated        ActivityType = "note_created"
	TypeNoteRemoved        ActivityType = "note_removed"
	TypeProjectUpdated     ActivityType = "project_updated"
	TypePreferencesChanged ActivityType = "preferences_changed"
	TypeDocumentImported   ActivityType = "document_imported"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	SubjectID    *string      `json:"subject_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
