package tui

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"protanni/internal/metrics"
	"protanni/internal/model"
	"protanni/internal/mutate"
	"protanni/internal/publish"
	"protanni/internal/viewstate"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type appModel struct {
	ctx     context.Context
	lists   *mutate.Lists
	view    *atomic.Pointer[viewstate.State]
	save    func(*viewstate.State) error
	metrics *metrics.Metrics
	log     *slog.Logger

	tab    tab
	width  int
	height int

	tasks  list.Model
	habits list.Model
	inbox  list.Model
	review viewport.Model

	reviewData *model.WeeklyReview
	reviewErr  string

	spin      spinner.Model
	input     textinput.Model
	inputKind inputKind
	keys      keyMap
	help      help.Model

	minibufferText  string
	minibufferSetAt time.Time

	// storesChanged is set by the list stores' change hooks and consumed by
	// Update, which rebuilds the rows once per message.
	storesChanged *atomic.Bool
}

type modelOpts struct {
	Save    func(*viewstate.State) error
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func newAppModel(ctx context.Context, lists *mutate.Lists, view *atomic.Pointer[viewstate.State], opts modelOpts) appModel {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Save == nil {
		opts.Save = func(*viewstate.State) error { return nil }
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(false)
	}

	in := textinput.New()
	in.CharLimit = 500
	in.Prompt = "> "

	m := appModel{
		ctx:     ctx,
		lists:   lists,
		view:    view,
		save:    opts.Save,
		metrics: opts.Metrics,
		log:     opts.Logger,
		tab:     parseTab(view.Load().Tab),
		width:   80,
		height:  24,
		tasks:   newRowList(80, 18),
		habits:  newRowList(80, 18),
		inbox:   newRowList(80, 18),
		review:  viewport.New(80, 18),
		spin:    spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		input:   in,
		keys:    newKeyMap(),
		help:    help.New(),

		storesChanged: &atomic.Bool{},
	}
	mark := func() { m.storesChanged.Store(true) }
	lists.Tasks.Store.OnChange(mark)
	lists.Habits.Store.OnChange(mark)
	lists.Inbox.Store.OnChange(mark)
	m.refreshRows()
	return m
}

func (m appModel) Init() tea.Cmd {
	m.lists.Tasks.Settler.Request()
	m.lists.Habits.Settler.Request()
	m.lists.Inbox.Settler.Request()
	m.lists.Mood.Settler.Request()
	m.lists.Focus.Settler.Request()
	return tea.Batch(m.spin.Tick, tickSettle(), m.loadReview())
}

func tickSettle() tea.Cmd {
	return tea.Tick(settleInterval, func(time.Time) tea.Msg { return settleTickMsg{} })
}

func (m *appModel) showMinibuffer(text string) {
	m.minibufferText = text
	m.minibufferSetAt = time.Now()
}

func (m *appModel) currentView() viewstate.State {
	return *m.view.Load()
}

// setView publishes a new filter state and persists it best-effort.
func (m *appModel) setView(st viewstate.State) {
	st.Tab = m.tab.String()
	m.view.Store(&st)
	if err := m.save(&st); err != nil {
		m.log.Warn("save view state", "err", err)
	}
}

// anyPending reports whether a spinner frame needs redrawing.
func (m *appModel) anyPending() bool {
	return m.lists.Tasks.Dispatcher.Inflight() > 0 ||
		m.lists.Habits.Dispatcher.Inflight() > 0 ||
		m.lists.Inbox.Dispatcher.Inflight() > 0 ||
		m.lists.TodayPending()
}

// refreshRows rebuilds the list rows from the optimistic stores.
func (m *appModel) refreshRows() {
	glyph := m.spin.View()

	tasks := m.lists.Tasks.Items()
	rows := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		meta := ""
		if t.Area != "" {
			meta = model.Label(t.Area)
		}
		rows = append(rows, row{id: t.ID, text: t.Title, meta: meta, done: t.Done(), pending: m.lists.Tasks.IsPending(t.ID), glyph: glyph})
	}
	setRows(&m.tasks, rows)

	habits := m.lists.Habits.Items()
	rows = make([]list.Item, 0, len(habits))
	for _, h := range habits {
		rows = append(rows, row{id: h.ID, text: h.Name, meta: model.Label(h.Frequency), done: h.DoneToday, pending: m.lists.Habits.IsPending(h.ID), glyph: glyph})
	}
	setRows(&m.habits, rows)

	captures := m.lists.Inbox.Items()
	rows = make([]list.Item, 0, len(captures))
	for _, c := range captures {
		rows = append(rows, row{id: c.ID, text: c.Content, meta: model.Label(c.Type), done: c.Status != model.CaptureInbox, pending: m.lists.Inbox.IsPending(c.ID), glyph: glyph})
	}
	setRows(&m.inbox, rows)
}

// setRows swaps rows in while keeping the cursor in range.
func setRows(l *list.Model, rows []list.Item) {
	idx := l.Index()
	l.SetItems(rows)
	if idx >= len(rows) {
		idx = len(rows) - 1
	}
	if idx >= 0 {
		l.Select(idx)
	}
}

func selectedID(l list.Model) (string, bool) {
	r, ok := l.SelectedItem().(row)
	if !ok {
		return "", false
	}
	return r.id, true
}

func (m appModel) loadReview() tea.Cmd {
	client := m.lists.Client()
	ctx := m.ctx
	return func() tea.Msg {
		r, err := client.WeeklyReview(ctx)
		return reviewMsg{review: r, err: err}
	}
}

func (m *appModel) renderReview() {
	switch {
	case m.reviewErr != "":
		m.review.SetContent(styleError().Render("Review: " + m.reviewErr))
	case m.reviewData == nil:
		m.review.SetContent(styleMuted().Render("Loading review…"))
	default:
		m.review.SetContent(renderMarkdown(publish.RenderReviewMarkdown(*m.reviewData), m.review.Width))
	}
}
