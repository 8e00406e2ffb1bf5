package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// row is one line of a task, habit or capture list.
type row struct {
	id      string
	text    string
	meta    string
	done    bool
	pending bool
	// glyph is the spinner frame for pending rows, set on refresh.
	glyph string
}

func (r row) FilterValue() string { return r.text }

func (r row) Title() string { return r.text }

type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		normal:   lipgloss.NewStyle(),
		selected: styleSelected(),
	}
}

func (d rowDelegate) Height() int  { return 1 }
func (d rowDelegate) Spacing() int { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	r, ok := item.(row)
	if !ok || contentW < 4 {
		fmt.Fprint(w, "")
		return
	}

	mark := "[ ] "
	switch {
	case r.pending:
		mark = stylePending().Render(padGlyph(r.glyph)) + " "
	case r.done:
		mark = styleDone().Render("[x]") + " "
	}
	text := r.text
	if r.meta != "" {
		text += "  " + styleMuted().Render(r.meta)
	}
	line := mark + text

	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Truncate(line, contentW-1, "…")
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}
	fmt.Fprint(w, style.Render(line))
}

// padGlyph keeps the spinner the same width as a checkbox.
func padGlyph(g string) string {
	if g == "" {
		g = "…"
	}
	w := xansi.StringWidth(g)
	if w >= 3 {
		return g
	}
	return " " + g + strings.Repeat(" ", 2-w)
}

func newRowList(width, height int) list.Model {
	l := list.New(nil, newRowDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	return l
}
