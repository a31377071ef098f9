package board

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// normalizer coerces untrusted decoded JSON into valid board values.
// None of its methods fail; malformed input degrades to defaults.
type normalizer struct {
	now func() time.Time
}

var defaultNormalizer = normalizer{now: time.Now}

// NormalizeDocument converts any decoded JSON value into a valid Document.
func NormalizeDocument(raw any) Document {
	return defaultNormalizer.document(raw)
}

// NormalizeTask converts a decoded JSON value into a Task. It reports false
// when raw is not an object and the entry should be dropped.
func NormalizeTask(raw any) (Task, bool) {
	return defaultNormalizer.task(raw)
}

// NormalizeNote converts a decoded JSON value into a Note. It reports false
// when raw is not an object and the entry should be dropped.
func NormalizeNote(raw any) (Note, bool) {
	return defaultNormalizer.note(raw)
}

func (n normalizer) millis() int64 {
	return n.now().UnixMilli()
}

func (n normalizer) document(raw any) Document {
	doc := DefaultDocument()
	src, _ := raw.(map[string]any)

	if v, ok := finite(src["version"]); ok {
		doc.Version = int(v)
	}

	if proj, ok := src["project"].(map[string]any); ok {
		mergeString(proj, "title", &doc.Project.Title)
		mergeString(proj, "goal", &doc.Project.Goal)
	}

	if items, ok := src["tasks"].([]any); ok {
		doc.Tasks = make([]Task, 0, len(items))
		for _, item := range items {
			if t, ok := n.task(item); ok {
				doc.Tasks = append(doc.Tasks, t)
			}
		}
	}

	if items, ok := src["notes"].([]any); ok {
		doc.Notes = make([]Note, 0, len(items))
		for _, item := range items {
			if note, ok := n.note(item); ok {
				doc.Notes = append(doc.Notes, note)
			}
		}
	}

	if ui, ok := src["ui"].(map[string]any); ok {
		if theme, present := ui["theme"]; present {
			doc.UI.Theme = ParseTheme(theme)
		}
		if filters, ok := ui["filters"].(map[string]any); ok {
			mergeString(filters, "status", &doc.UI.Filters.Status)
			mergeString(filters, "priority", &doc.UI.Filters.Priority)
			mergeString(filters, "q", &doc.UI.Filters.Q)
		}
		if sources, ok := ui["customSources"].([]any); ok {
			names := make([]string, 0, len(sources))
			for _, s := range sources {
				if name, ok := sourceName(s); ok {
					names = append(names, name)
				}
			}
			doc.UI.CustomSources = dedupeSources(names)
		}
	}

	doc.UpdatedAt = n.millis()
	return doc
}

func (n normalizer) task(raw any) (Task, bool) {
	src, ok := raw.(map[string]any)
	if !ok {
		return Task{}, false
	}

	id, ok := src["id"].(string)
	if !ok {
		id = newTaskID()
	}
	title, _ := src["title"].(string)
	desc, _ := src["desc"].(string)

	return Task{
		ID:          id,
		Title:       title,
		Desc:        desc,
		Priority:    ParsePriority(src["priority"]),
		Status:      ParseStatus(src["status"]),
		EstimateMin: minutes(src["estimateMin"]),
		SpentMin:    minutes(src["spentMin"]),
		CreatedAt:   n.timestamp(src["createdAt"]),
		UpdatedAt:   n.timestamp(src["updatedAt"]),
	}, true
}

func (n normalizer) note(raw any) (Note, bool) {
	src, ok := raw.(map[string]any)
	if !ok {
		return Note{}, false
	}

	id, ok := src["id"].(string)
	if !ok {
		id = newNoteID()
	}

	source, _ := src["source"].(string)
	source = strings.TrimSpace(source)
	if source == "" {
		source = DefaultSource
	}

	var taskID *string
	if s, ok := src["taskId"].(string); ok {
		taskID = &s
	}
	content, _ := src["content"].(string)

	return Note{
		ID:        id,
		TaskID:    taskID,
		Source:    source,
		Content:   content,
		CreatedAt: n.timestamp(src["createdAt"]),
	}, true
}

func (n normalizer) timestamp(v any) int64 {
	if f, ok := finite(v); ok {
		return int64(f)
	}
	return n.millis()
}

// finite reports the numeric value of v when v is a finite number.
func finite(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func minutes(v any) float64 {
	f, ok := finite(v)
	if !ok {
		return 0
	}
	return math.Max(0, f)
}

func mergeString(src map[string]any, key string, dst *string) {
	if s, ok := src[key].(string); ok {
		*dst = s
	}
}

func sourceName(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		if x == 0 || math.IsNaN(x) {
			return "", false
		}
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// dedupeSources drops case-insensitive duplicates, keeping the first
// occurrence, and truncates to MaxCustomSources.
func dedupeSources(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if containsFold(out, name) {
			continue
		}
		out = append(out, name)
		if len(out) == MaxCustomSources {
			break
		}
	}
	return out
}

func containsFold(list []string, name string) bool {
	for _, existing := range list {
		if strings.EqualFold(existing, name) {
			return true
		}
	}
	return false
}

func newTaskID() string {
	return "t_" + uuid.NewString()
}

func newNoteID() string {
	return "n_" + uuid.NewString()
}
