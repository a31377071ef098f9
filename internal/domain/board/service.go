package board

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/rpggio/taskdesk/internal/domain/activity"
)

// Store owns a board document and writes it through to a Slot after every
// mutation. Each public method runs validate, mutate and persist as one
// unit; a mutex serializes callers.
type Store struct {
	mu         sync.Mutex
	doc        Document
	slot       Slot
	activities ActivityRepository
	logger     *slog.Logger
	norm       normalizer
}

// NewStore creates a store and loads its document from slot. activities
// may be nil.
func NewStore(ctx context.Context, slot Slot, activities ActivityRepository, logger *slog.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{
		slot:       slot,
		activities: activities,
		logger:     logger,
		norm:       defaultNormalizer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory document with the normalized slot contents.
// Missing or unparsable data yields the default document; only a failing
// slot read is returned as an error.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.slot.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	var parsed any
	if ok {
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			s.logger.Warn("discarding unparsable document", "key", StorageKey, "error", err)
			parsed = nil
		}
	}
	s.doc = s.norm.document(parsed)
	s.logger.Debug("document loaded", "tasks", len(s.doc.Tasks), "notes", len(s.doc.Notes))
	return nil
}

// Save persists the whole document.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	s.doc.UpdatedAt = s.norm.millis()
	data, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := s.slot.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.clone()
}

// Project returns the board metadata.
func (s *Store) Project() Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Project
}

// SetProject updates the board title and goal.
func (s *Store) SetProject(ctx context.Context, patch ProjectPatch) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Title != nil {
		s.doc.Project.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Goal != nil {
		s.doc.Project.Goal = strings.TrimSpace(*patch.Goal)
	}
	if err := s.save(ctx); err != nil {
		return Project{}, err
	}
	s.logActivity(ctx, activity.TypeProjectUpdated, "", "updated project")
	return s.doc.Project, nil
}

// Theme returns the stored theme.
func (s *Store) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.UI.Theme
}

// SetTheme stores light for the exact literal "light" and dark otherwise.
func (s *Store) SetTheme(ctx context.Context, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.UI.Theme = ParseTheme(theme)
	if err := s.save(ctx); err != nil {
		return err
	}
	s.logActivity(ctx, activity.TypePreferencesChanged, "", "theme set to "+string(s.doc.UI.Theme))
	return nil
}

// Filters returns the stored task filters.
func (s *Store) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.UI.Filters
}

// SetFilters merges the non-nil fields of patch into the stored filters.
func (s *Store) SetFilters(ctx context.Context, patch FiltersPatch) (Filters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Status != nil {
		s.doc.UI.Filters.Status = *patch.Status
	}
	if patch.Priority != nil {
		s.doc.UI.Filters.Priority = *patch.Priority
	}
	if patch.Q != nil {
		s.doc.UI.Filters.Q = *patch.Q
	}
	if err := s.save(ctx); err != nil {
		return Filters{}, err
	}
	return s.doc.UI.Filters, nil
}

// GetCustomSources returns a copy of the custom note sources, most recent first.
func (s *Store) GetCustomSources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.doc.UI.CustomSources...)
}

// Sources returns the built-in sources followed by the custom ones.
func (s *Store) Sources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string{}, BuiltinSources...)
	return append(out, s.doc.UI.CustomSources...)
}

// AddCustomSource prepends name to the custom sources. Blank names and
// case-insensitive duplicates are ignored without saving.
func (s *Store) AddCustomSource(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" || containsFold(s.doc.UI.CustomSources, name) {
		return nil
	}

	list := append([]string{name}, s.doc.UI.CustomSources...)
	if len(list) > MaxCustomSources {
		list = list[:MaxCustomSources]
	}
	s.doc.UI.CustomSources = list
	if err := s.save(ctx); err != nil {
		return err
	}
	s.logActivity(ctx, activity.TypePreferencesChanged, "", "added source "+name)
	return nil
}

// RemoveCustomSource drops every custom source equal to name, ignoring case.
func (s *Store) RemoveCustomSource(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	kept := make([]string, 0, len(s.doc.UI.CustomSources))
	for _, existing := range s.doc.UI.CustomSources {
		if !strings.EqualFold(existing, name) {
			kept = append(kept, existing)
		}
	}
	s.doc.UI.CustomSources = kept
	if err := s.save(ctx); err != nil {
		return err
	}
	s.logActivity(ctx, activity.TypePreferencesChanged, "", "removed source "+name)
	return nil
}

// ListTasks returns the tasks in stored order.
func (s *Store) ListTasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task{}, s.doc.Tasks...)
}

// FilteredTasks returns the tasks matching the stored filters.
func (s *Store) FilteredTasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterTasks(s.doc.Tasks, s.doc.UI.Filters)
}

// GetTask returns the task with the given id.
func (s *Store) GetTask(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.taskIndex(id); i >= 0 {
		return s.doc.Tasks[i], true
	}
	return Task{}, false
}

// NextFocusTask returns the first task that is not done, falling back to
// the first task.
func (s *Store) NextFocusTask() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.doc.Tasks {
		if t.Status != StatusDone {
			return t, true
		}
	}
	if len(s.doc.Tasks) > 0 {
		return s.doc.Tasks[0], true
	}
	return Task{}, false
}

// AddTask creates a task at the front of the list.
func (s *Store) AddTask(ctx context.Context, in TaskInput) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.norm.millis()
	priority := in.Priority
	if priority == "" {
		priority = string(PriorityMedium)
	}
	status := in.Status
	if status == "" {
		status = string(StatusTodo)
	}

	task := Task{
		ID:          newTaskID(),
		Title:       strings.TrimSpace(in.Title),
		Desc:        strings.TrimSpace(in.Desc),
		Priority:    ParsePriority(priority),
		Status:      ParseStatus(status),
		EstimateMin: clampMinutes(in.EstimateMin),
		SpentMin:    clampMinutes(in.SpentMin),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Title == "" {
		return Task{}, fmt.Errorf("%w: task title must not be empty", ErrValidation)
	}

	s.doc.Tasks = append([]Task{task}, s.doc.Tasks...)
	if err := s.save(ctx); err != nil {
		return Task{}, err
	}
	s.logActivity(ctx, activity.TypeTaskCreated, task.ID, "created task "+task.Title)
	return task, nil
}

// UpdateTask applies the non-nil fields of patch. Invalid priority or
// status values are ignored. The patch is checked as a whole before it is
// committed, so a rejected update leaves the task unchanged.
func (s *Store) UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateTask(ctx, id, patch)
}

func (s *Store) updateTask(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	i := s.taskIndex(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}

	t := s.doc.Tasks[i]
	if patch.Title != nil {
		t.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Desc != nil {
		t.Desc = *patch.Desc
	}
	if patch.Priority != nil && validPriority(*patch.Priority) {
		t.Priority = Priority(*patch.Priority)
	}
	if patch.Status != nil && validStatus(*patch.Status) {
		t.Status = Status(*patch.Status)
	}
	if patch.EstimateMin != nil {
		t.EstimateMin = clampMinutes(*patch.EstimateMin)
	}
	if patch.SpentMin != nil {
		t.SpentMin = clampMinutes(*patch.SpentMin)
	}
	t.UpdatedAt = s.norm.millis()

	if t.Title == "" {
		return Task{}, fmt.Errorf("%w: task title must not be empty", ErrValidation)
	}

	s.doc.Tasks[i] = t
	if err := s.save(ctx); err != nil {
		return Task{}, err
	}
	s.logActivity(ctx, activity.TypeTaskUpdated, t.ID, "updated task "+t.Title)
	return t, nil
}

// AppendNextStep appends a "next step" line to the task description.
func (s *Store) AppendNextStep(ctx context.Context, id, step string) (Task, error) {
	step = strings.TrimSpace(step)
	if step == "" {
		return Task{}, fmt.Errorf("%w: next step must not be empty", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	desc := "下一步：" + step
	if prev := s.doc.Tasks[i].Desc; prev != "" {
		desc = prev + "\n\n" + desc
	}
	return s.updateTask(ctx, id, TaskPatch{Desc: &desc})
}

// ToggleDone moves a done task back to todo and any other task to done.
func (s *Store) ToggleDone(ctx context.Context, id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}

	t := &s.doc.Tasks[i]
	if t.Status == StatusDone {
		t.Status = StatusTodo
	} else {
		t.Status = StatusDone
	}
	t.UpdatedAt = s.norm.millis()

	if err := s.save(ctx); err != nil {
		return Task{}, err
	}
	s.logActivity(ctx, activity.TypeTaskToggled, t.ID, fmt.Sprintf("task %s is now %s", t.Title, t.Status))
	return *t, nil
}

// RemoveTask deletes a task and unlinks every note that referenced it.
func (s *Store) RemoveTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: task %s", ErrNotFound, id)
	}

	title := s.doc.Tasks[i].Title
	s.doc.Tasks = append(s.doc.Tasks[:i:i], s.doc.Tasks[i+1:]...)

	orphaned := 0
	for j := range s.doc.Notes {
		if n := &s.doc.Notes[j]; n.TaskID != nil && *n.TaskID == id {
			n.TaskID = nil
			orphaned++
		}
	}

	if err := s.save(ctx); err != nil {
		return err
	}
	s.logger.Debug("task removed", "task_id", id, "orphaned_notes", orphaned)
	s.logActivity(ctx, activity.TypeTaskRemoved, id, "removed task "+title)
	return nil
}

// ListNotes returns all notes, most recent first.
func (s *Store) ListNotes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedNotes(s.doc.Notes)
}

// AddNote records a note at the front of the list.
func (s *Store) AddNote(ctx context.Context, in NoteInput) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = DefaultSource
	}
	var taskID *string
	if in.TaskID != "" {
		id := in.TaskID
		taskID = &id
	}

	note := Note{
		ID:        newNoteID(),
		TaskID:    taskID,
		Source:    source,
		Content:   strings.TrimSpace(in.Content),
		CreatedAt: s.norm.millis(),
	}
	if note.Content == "" {
		return Note{}, fmt.Errorf("%w: note content must not be empty", ErrValidation)
	}

	s.doc.Notes = append([]Note{note}, s.doc.Notes...)
	if err := s.save(ctx); err != nil {
		return Note{}, err
	}
	s.logActivity(ctx, activity.TypeNoteCreated, note.ID, "added note from "+note.Source)
	return note.clone(), nil
}

// RemoveNote deletes a note.
func (s *Store) RemoveNote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := -1
	for j, n := range s.doc.Notes {
		if n.ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		return fmt.Errorf("%w: note %s", ErrNotFound, id)
	}

	s.doc.Notes = append(s.doc.Notes[:i:i], s.doc.Notes[i+1:]...)
	if err := s.save(ctx); err != nil {
		return err
	}
	s.logActivity(ctx, activity.TypeNoteRemoved, id, "removed note")
	return nil
}

func (s *Store) taskIndex(id string) int {
	for i, t := range s.doc.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) logActivity(ctx context.Context, kind activity.ActivityType, subjectID, summary string) {
	if s.activities == nil {
		return
	}
	entry := &activity.ActivityEntry{
		ActivityType: kind,
		Summary:      summary,
	}
	if subjectID != "" {
		entry.SubjectID = &subjectID
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "type", kind, "error", err)
	}
}

func sortedNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = n.clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

func clampMinutes(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, v)
}
