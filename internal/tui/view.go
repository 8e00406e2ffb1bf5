package tui

import (
	"fmt"
	"strings"

	"protanni/internal/model"
	"protanni/internal/optimistic"
	"protanni/internal/viewstate"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	var b strings.Builder
	b.WriteString(m.viewTabs())
	b.WriteString("\n")

	switch m.tab {
	case tabToday:
		b.WriteString(m.viewToday())
	case tabTasks:
		b.WriteString(m.viewFilter())
		b.WriteString(m.viewList(m.tasks, "No tasks here. Press a to add one."))
	case tabHabits:
		b.WriteString(m.viewList(m.habits, "No habits yet. Press a to add one."))
	case tabInbox:
		b.WriteString(m.viewFilter())
		b.WriteString(m.viewList(m.inbox, "Inbox zero."))
	case tabReview:
		b.WriteString(m.review.View())
	}
	b.WriteString("\n")

	if m.inputKind != inputNone {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.minibufferText != "" {
		b.WriteString(styleError().Render(m.minibufferText))
		b.WriteString("\n")
	}
	keys := m.keys
	keys.tab = m.tab
	b.WriteString(m.help.View(keys))
	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m appModel) viewTabs() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == m.tab {
			parts = append(parts, styleTabActive().Render(name))
		} else {
			parts = append(parts, styleTabInactive().Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m appModel) viewFilter() string {
	st := m.currentView()
	var label string
	if m.tab == tabTasks {
		label = "Area: " + areaLabel(st.Area)
	} else {
		label = "Showing: " + model.Label(st.CaptureStatus)
	}
	if st.Sync == viewstate.SyncLocal {
		label += " (local)"
	}
	return styleMuted().Render(label) + "\n"
}

func (m appModel) viewList(l interface{ View() string }, empty string) string {
	var n int
	switch m.tab {
	case tabTasks:
		n = len(m.tasks.Items())
	case tabHabits:
		n = len(m.habits.Items())
	case tabInbox:
		n = len(m.inbox.Items())
	}
	if n == 0 {
		return styleMuted().Render(empty) + "\n"
	}
	return l.View()
}

func (m appModel) viewToday() string {
	var b strings.Builder
	t, ok := m.lists.Today()
	if !ok {
		return styleMuted().Render("Loading…") + "\n"
	}
	title := "Today, " + t.Date
	if m.lists.TodayPending() {
		title += " " + stylePending().Render(m.spin.View())
	}
	b.WriteString(styleHeading().Render(title))
	b.WriteString("\n\n")

	b.WriteString("Mood  ")
	var current model.MoodLevel
	if t.Mood != nil {
		current = t.Mood.Mood
	}
	for _, l := range model.MoodLevels {
		label := fmt.Sprintf("%d %s", l.Score(), model.Label(l))
		if l == current {
			b.WriteString(styleSelected().Render("[" + label + "]"))
		} else {
			b.WriteString(styleMuted().Render(" " + label + " "))
		}
		b.WriteString(" ")
	}
	b.WriteString("\n\n")

	b.WriteString("Focus ")
	switch {
	case t.Focus.Text != "" && t.Focus.IsToday:
		b.WriteString(t.Focus.Text)
	case t.Focus.Text != "":
		b.WriteString(styleMuted().Render(t.Focus.Text + " (from an earlier day)"))
	default:
		b.WriteString(styleMuted().Render("not set, press e"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m appModel) viewFooter() string {
	totals := m.metrics.MutationTotals()
	return styleMuted().Render(fmt.Sprintf("saved %d  reverted %d  superseded %d",
		totals[optimistic.Committed], totals[optimistic.RolledBack], totals[optimistic.Stale]))
}
