package tui

import (
	"strings"
	"time"

	"protanni/internal/model"
	"protanni/internal/optimistic"
	"protanni/internal/viewstate"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if am, ok := next.(appModel); ok && am.storesChanged.Swap(false) {
		am.refreshRows()
		return am, cmd
	}
	return next, cmd
}

func (m appModel) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		bodyH := m.height - 5
		if bodyH < 3 {
			bodyH = 3
		}
		m.tasks.SetSize(m.width, bodyH)
		m.habits.SetSize(m.width, bodyH)
		m.inbox.SetSize(m.width, bodyH)
		m.review.Width, m.review.Height = m.width, bodyH
		m.help.Width = m.width
		m.input.Width = m.width - 4
		m.renderReview()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.anyPending() {
			m.refreshRows()
		}
		return m, cmd

	case settleTickMsg:
		if m.minibufferText != "" && time.Since(m.minibufferSetAt) > minibufferAutoClearAfter {
			m.minibufferText = ""
		}
		cmds := []tea.Cmd{tickSettle()}
		cmds = append(cmds,
			startSettle(m.ctx, m.lists.Tasks),
			startSettle(m.ctx, m.lists.Habits),
			startSettle(m.ctx, m.lists.Inbox),
			startSettle(m.ctx, m.lists.Mood),
			startSettle(m.ctx, m.lists.Focus),
		)
		return m, tea.Batch(cmds...)

	case mutationDoneMsg:
		outcome := msg.settle()
		if outcome == optimistic.RolledBack {
			m.showMinibuffer(msg.action + " failed; reverted")
		}
		// The lock is released even when the store did not change.
		m.refreshRows()
		return m, nil

	case settleDoneMsg:
		if !msg.finish() && msg.err != nil {
			m.log.Warn("reconcile failed", "list", msg.list, "err", msg.err)
		}
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.showMinibuffer("add " + msg.what + " failed: " + msg.err.Error())
		}
		return m, nil

	case reviewMsg:
		if msg.err != nil {
			m.reviewErr = msg.err.Error()
		} else {
			r := msg.review
			m.reviewData = &r
			m.reviewErr = ""
		}
		m.renderReview()
		return m, nil

	case tea.KeyMsg:
		if m.inputKind != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.lists.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.switchTab((m.tab + 1) % tab(len(tabNames)))
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab((m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames)))
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.tab {
	case tabToday:
		return m.updateToday(msg)
	case tabTasks:
		return m.updateTasks(msg)
	case tabHabits:
		return m.updateHabits(msg)
	case tabInbox:
		return m.updateInbox(msg)
	case tabReview:
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.loadReview()
		}
		var cmd tea.Cmd
		m.review, cmd = m.review.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) switchTab(t tab) {
	m.tab = t
	m.setView(m.currentView())
}

func (m appModel) updateToday(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Mood):
		level := model.ParseMood(msg.String())
		cmd := beginMutation(m.ctx, m.lists.Mood, m.lists.SetMood(level))
		return m, cmd
	case key.Matches(msg, m.keys.Focus):
		cur := ""
		if f, ok := m.lists.Focus.Store.Get(model.FocusID); ok {
			cur = f.Text
		}
		cmd := m.openInput(inputFocus, "What matters most today?", cur)
		return m, cmd
	case key.Matches(msg, m.keys.Refresh):
		m.lists.Mood.Settler.Request()
		m.lists.Focus.Settler.Request()
	}
	return m, nil
}

func (m appModel) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		if id, ok := selectedID(m.tasks); ok {
			cmd := beginMutation(m.ctx, m.lists.Tasks, m.lists.ToggleTask(id))
			return m, cmd
		}
	case key.Matches(msg, m.keys.Delete):
		if id, ok := selectedID(m.tasks); ok {
			cmd := beginMutation(m.ctx, m.lists.Tasks, m.lists.DeleteTask(id))
			return m, cmd
		}
	case key.Matches(msg, m.keys.Add):
		cmd := m.openInput(inputTask, "New task", "")
		return m, cmd
	case key.Matches(msg, m.keys.Area):
		st := m.currentView()
		st.CycleArea()
		m.setView(st)
		m.lists.Tasks.Settler.Request()
		m.showMinibuffer("Area: " + areaLabel(st.Area))
	case key.Matches(msg, m.keys.Sync):
		st := m.currentView()
		if st.Sync == viewstate.SyncURL {
			st.Sync = viewstate.SyncLocal
		} else {
			st.Sync = viewstate.SyncURL
		}
		m.setView(st)
		m.lists.Tasks.Settler.Request()
		m.lists.Inbox.Settler.Request()
		m.showMinibuffer("Filters: " + string(st.Sync))
	case key.Matches(msg, m.keys.Refresh):
		m.lists.Tasks.Settler.Request()
	default:
		var cmd tea.Cmd
		m.tasks, cmd = m.tasks.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateHabits(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		if id, ok := selectedID(m.habits); ok {
			cmd := beginMutation(m.ctx, m.lists.Habits, m.lists.ToggleHabit(id))
			return m, cmd
		}
	case key.Matches(msg, m.keys.Delete):
		if id, ok := selectedID(m.habits); ok {
			cmd := beginMutation(m.ctx, m.lists.Habits, m.lists.DeleteHabit(id))
			return m, cmd
		}
	case key.Matches(msg, m.keys.Add):
		cmd := m.openInput(inputHabit, "New daily habit", "")
		return m, cmd
	case key.Matches(msg, m.keys.Refresh):
		m.lists.Habits.Settler.Request()
	default:
		var cmd tea.Cmd
		m.habits, cmd = m.habits.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateInbox(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	status := model.CaptureStatus(m.currentView().CaptureStatus)
	switch {
	case key.Matches(msg, m.keys.Archive):
		if id, ok := selectedID(m.inbox); ok && status == model.CaptureInbox {
			cmd := beginMutation(m.ctx, m.lists.Inbox, m.lists.ArchiveCapture(id))
			return m, cmd
		}
	case key.Matches(msg, m.keys.Restore):
		if id, ok := selectedID(m.inbox); ok && status == model.CaptureArchived {
			cmd := beginMutation(m.ctx, m.lists.Inbox, m.lists.RestoreCapture(id))
			return m, cmd
		}
	case key.Matches(msg, m.keys.Convert):
		if id, ok := selectedID(m.inbox); ok && status == model.CaptureInbox {
			cmd := beginMutation(m.ctx, m.lists.Inbox, m.lists.ConvertCapture(id, nil))
			// Convert only locks the row; show its spinner right away.
			m.refreshRows()
			return m, cmd
		}
	case key.Matches(msg, m.keys.Add):
		cmd := m.openInput(inputCapture, "Capture", "")
		return m, cmd
	case key.Matches(msg, m.keys.Status):
		st := m.currentView()
		st.CaptureStatus = string(nextCaptureStatus(status))
		m.setView(st)
		m.lists.Inbox.Settler.Request()
		m.showMinibuffer("Showing " + st.CaptureStatus)
	case key.Matches(msg, m.keys.Refresh):
		m.lists.Inbox.Settler.Request()
	default:
		var cmd tea.Cmd
		m.inbox, cmd = m.inbox.Update(msg)
		return m, cmd
	}
	return m, nil
}

func nextCaptureStatus(s model.CaptureStatus) model.CaptureStatus {
	switch s {
	case model.CaptureInbox:
		return model.CaptureArchived
	case model.CaptureArchived:
		return model.CaptureProcessed
	}
	return model.CaptureInbox
}

func areaLabel(a string) string {
	if a == viewstate.All {
		return "All"
	}
	return model.Label(a)
}

func (m *appModel) openInput(kind inputKind, placeholder, value string) tea.Cmd {
	m.inputKind = kind
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		kind := m.inputKind
		text := strings.TrimSpace(m.input.Value())
		m.closeInput()
		cmd := m.submitInput(kind, text)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *appModel) closeInput() {
	m.inputKind = inputNone
	m.input.Blur()
	m.input.Reset()
}

// submitInput turns a prompt into a create call or a focus mutation. Creates
// are not optimistic: the row shows up with the next reconcile.
func (m *appModel) submitInput(kind inputKind, text string) tea.Cmd {
	if kind == inputFocus {
		return beginMutation(m.ctx, m.lists.Focus, m.lists.SetFocus(text))
	}
	if text == "" {
		return nil
	}
	client := m.lists.Client()
	ctx := m.ctx
	area := ""
	if st := m.currentView(); st.Area != viewstate.All {
		area = st.Area
	}
	switch kind {
	case inputTask:
		settler := m.lists.Tasks.Settler
		return func() tea.Msg {
			_, err := client.CreateTask(ctx, text, area)
			if err == nil {
				settler.Request()
			}
			return createdMsg{what: "task", err: err}
		}
	case inputHabit:
		settler := m.lists.Habits.Settler
		return func() tea.Msg {
			_, err := client.CreateHabit(ctx, text, "", model.FrequencyDaily)
			if err == nil {
				settler.Request()
			}
			return createdMsg{what: "habit", err: err}
		}
	case inputCapture:
		settler := m.lists.Inbox.Settler
		return func() tea.Msg {
			_, err := client.CreateCapture(ctx, text, model.CaptureNote)
			if err == nil {
				settler.Request()
			}
			return createdMsg{what: "capture", err: err}
		}
	}
	return nil
}
