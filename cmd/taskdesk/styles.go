package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/rpggio/taskdesk/internal/domain/board"
)

const shortIDLen = 10

var (
	colorAccent = lipgloss.Color("#8BC34A")
	colorDanger = lipgloss.Color("#e53935")
	colorWarn   = lipgloss.Color("#FFC107")
	colorInfo   = lipgloss.Color("#2196F3")

	darkMuted  = lipgloss.Color("#8a96a8")
	lightMuted = lipgloss.Color("#5c6b80")
)

// styles renders board values for the terminal. Colors are dropped
// automatically when the output is not a terminal.
type styles struct {
	heading lipgloss.Style
	muted   lipgloss.Style
	done    lipgloss.Style
	doing   lipgloss.Style
	high    lipgloss.Style
	medium  lipgloss.Style
	low     lipgloss.Style
}

func newStyles(out io.Writer, theme board.Theme) styles {
	r := lipgloss.NewRenderer(out)
	muted := darkMuted
	if theme == board.ThemeLight {
		muted = lightMuted
	}
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(colorAccent),
		muted:   r.NewStyle().Foreground(muted),
		done:    r.NewStyle().Foreground(colorAccent),
		doing:   r.NewStyle().Foreground(colorInfo),
		high:    r.NewStyle().Bold(true).Foreground(colorDanger),
		medium:  r.NewStyle().Foreground(colorWarn),
		low:     r.NewStyle().Foreground(muted),
	}
}

func (s styles) status(st board.Status) string {
	switch st {
	case board.StatusDone:
		return s.done.Render("[x]")
	case board.StatusDoing:
		return s.doing.Render("[~]")
	default:
		return "[ ]"
	}
}

func (s styles) priority(p board.Priority) string {
	switch p {
	case board.PriorityHigh:
		return s.high.Render("high")
	case board.PriorityLow:
		return s.low.Render("low")
	default:
		return s.medium.Render("medium")
	}
}

func (s styles) task(t board.Task) string {
	return fmt.Sprintf("%s %s  %s  %s %s",
		s.status(t.Status),
		s.muted.Render(shortID(t.ID)),
		t.Title,
		s.priority(t.Priority),
		s.muted.Render(formatMinutes(t.SpentMin)+"/"+formatMinutes(t.EstimateMin)),
	)
}

func (s styles) note(n board.Note, taskTitle string) string {
	link := s.muted.Render("unfiled")
	if n.TaskID != nil {
		link = "→ " + taskTitle
	}
	return fmt.Sprintf("%s  %s %s\n    %s", s.muted.Render(shortID(n.ID)), s.heading.Render(n.Source), link, n.Content)
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func formatMinutes(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "m"
}
