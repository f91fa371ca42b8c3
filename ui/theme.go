// Package ui holds the Rhodes Island palette shared by the CLI and the board.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rhodes-todo/app"
	"rhodes-todo/model"
)

const (
	IconOrder   = "▣"
	IconDone    = "✔"
	IconOpen    = "□"
	IconLocked  = "⊘"
	IconUrgent  = "!"
	IconPoints  = "◆"
	IconTrophy  = "★"
	IconWarn    = "⚠"
	IconError   = "✖"
	IconRepeat  = "↻"
	IconPenalty = "▼"
)

var (
	cPrimary = lipgloss.Color("39")  // rhodes blue
	cAccent  = lipgloss.Color("255") // white
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
	cRare    = lipgloss.Color("141") // purple
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent).Background(cPrimary).Padding(0, 1)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Rare  = lipgloss.NewStyle().Bold(true).Foreground(cRare)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Delta renders a signed points change, or "" for zero.
func Delta(d int) string {
	switch {
	case d > 0:
		return Good.Render(fmt.Sprintf("+%d", d))
	case d < 0:
		return Bad.Render(fmt.Sprintf("%d", d))
	}
	return ""
}

// Stars renders a gacha rarity as a row of stars.
func Stars(rarity int) string {
	s := strings.Repeat(IconTrophy, rarity)
	switch {
	case rarity >= app.RarityLegendary:
		return Gold.Render(s)
	case rarity >= app.RarityEpic:
		return Rare.Render(s)
	case rarity >= app.RarityRare:
		return H2.Render(s)
	}
	return Muted.Render(s)
}

// TaskMark returns the check mark for a task on day today.
func TaskMark(t model.Task, today model.Date) string {
	switch {
	case t.Completed:
		return Good.Render(IconDone)
	case !t.DueDate.IsZero() && t.DueDate.After(today):
		return Muted.Render(IconLocked)
	case !t.DueDate.IsZero() && t.DueDate.Before(today):
		return Bad.Render(IconOpen)
	}
	return IconOpen
}

// TaskLine renders one task row without its id.
func TaskLine(t model.Task, today model.Date, category string) string {
	var b strings.Builder
	b.WriteString(TaskMark(t, today))
	b.WriteString(" ")
	if t.Priority == model.PriorityUrgent {
		b.WriteString(Bad.Render(IconUrgent) + " ")
	}
	if t.Completed {
		b.WriteString(Muted.Render(t.Text))
	} else {
		b.WriteString(t.Text)
	}
	if t.Points > 0 {
		b.WriteString(" " + Gold.Render(fmt.Sprintf("%s%d", IconPoints, t.Points)))
	}
	if !t.DueDate.IsZero() {
		b.WriteString(" " + Muted.Render(string(t.DueDate)))
	}
	if category != "" {
		b.WriteString(" " + Key.Render("#"+category))
	}
	if t.IsRecurring() && !t.HasRecurred {
		b.WriteString(" " + Muted.Render(fmt.Sprintf("%s%dd x%d", IconRepeat, t.Frequency, t.RecurrenceLimit)))
	}
	if t.Penalized {
		b.WriteString(" " + Bad.Render(IconPenalty+"overdue"))
	}
	if n := len(t.Subtasks); n > 0 {
		done := 0
		for _, s := range t.Subtasks {
			if s.Completed {
				done++
			}
		}
		b.WriteString(" " + Muted.Render(fmt.Sprintf("[%d/%d]", done, n)))
	}
	return b.String()
}
