package board

import "time"

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.norm.now = now
		}
	}
}

// TaskInput describes a task creation request.
type TaskInput struct {
	Title       string
	Desc        string
	Priority    string
	Status      string
	EstimateMin float64
	SpentMin    float64
}

// TaskPatch describes a partial task update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Desc        *string
	Priority    *string
	Status      *string
	EstimateMin *float64
	SpentMin    *float64
}

// NoteInput describes a note creation request. An empty TaskID leaves the
// note unlinked.
type NoteInput struct {
	TaskID  string
	Source  string
	Content string
}

// FiltersPatch describes a partial filter update.
type FiltersPatch struct {
	Status   *string
	Priority *string
	Q        *string
}

// ProjectPatch describes a partial project metadata update.
type ProjectPatch struct {
	Title *string
	Goal  *string
}
