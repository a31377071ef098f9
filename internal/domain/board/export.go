package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/taskdesk/internal/domain/activity"
)

const isoMillis = "2006-01-02T15:04:05.000Z"

type exportedDocument struct {
	Document
	ExportedAt string `json:"exportedAt"`
}

// ExportJSON returns the document as indented JSON with an exportedAt
// timestamp. It does not modify the store.
func (s *Store) ExportJSON() (string, error) {
	s.mu.Lock()
	payload := exportedDocument{
		Document:   s.doc.clone(),
		ExportedAt: s.norm.now().UTC().Format(isoMillis),
	}
	s.mu.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("encoding export: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ImportJSON replaces the whole document with the normalized contents of
// text and persists it. Text that does not parse, or parses to an empty
// value, is rejected with ErrFormat and leaves the store untouched.
func (s *Store) ImportJSON(ctx context.Context, text string) error {
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if isEmptyValue(parsed) {
		return fmt.Errorf("%w: document is empty", ErrFormat)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = s.norm.document(parsed)
	if err := s.save(ctx); err != nil {
		return err
	}
	s.logActivity(ctx, activity.TypeDocumentImported, "",
		fmt.Sprintf("imported %d tasks and %d notes", len(s.doc.Tasks), len(s.doc.Notes)))
	return nil
}

func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	}
	return false
}

var markdownSections = []struct {
	status  Status
	heading string
}{
	{StatusTodo, "待办"},
	{StatusDoing, "进行中"},
	{StatusDone, "已完成"},
}

// ExportMarkdown renders a human-readable report of the board.
func (s *Store) ExportMarkdown() string {
	s.mu.Lock()
	doc := s.doc.clone()
	s.mu.Unlock()

	var lines []string
	title := doc.Project.Title
	if title == "" {
		title = DefaultProjectTitle
	}
	lines = append(lines, "# "+title)
	if doc.Project.Goal != "" {
		lines = append(lines, "\n> 目标："+doc.Project.Goal+"\n")
	}

	for _, section := range markdownSections {
		lines = append(lines, "\n## "+section.heading+"\n")
		var items []string
		for _, t := range doc.Tasks {
			if t.Status == section.status {
				items = append(items, markdownTask(t))
			}
		}
		if len(items) == 0 {
			lines = append(lines, "- （空）")
		} else {
			lines = append(lines, strings.Join(items, "\n"))
		}
	}

	lines = append(lines, "\n## AI 建议归档\n")
	notes := sortedNotes(doc.Notes)
	if len(notes) == 0 {
		lines = append(lines, "- （空）")
	}
	for _, n := range notes {
		target := "未归档"
		if n.TaskID != nil {
			for _, t := range doc.Tasks {
				if t.ID == *n.TaskID {
					target = "任务「" + t.Title + "」"
					break
				}
			}
		}
		created := time.UnixMilli(n.CreatedAt).Local().Format("2006/1/2 15:04:05")
		lines = append(lines, fmt.Sprintf("- **%s** → %s（%s）", n.Source, target, created))
		lines = append(lines, "  - "+nestLines(n.Content))
	}

	return strings.Join(lines, "\n")
}

func markdownTask(t Task) string {
	check := " "
	if t.Status == StatusDone {
		check = "x"
	}
	desc := "（无描述）"
	if t.Desc != "" {
		desc = nestLines(t.Desc)
	}
	return fmt.Sprintf("- [%s] **%s**（%s｜预估 %sm / 已花 %sm）\n  - %s",
		check, t.Title, priorityLabel(t.Priority), formatMinutes(t.EstimateMin), formatMinutes(t.SpentMin), desc)
}

func priorityLabel(p Priority) string {
	switch p {
	case PriorityHigh:
		return "🔥高"
	case PriorityLow:
		return "低"
	default:
		return "中"
	}
}

func nestLines(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  - ")
}

func formatMinutes(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
