package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextTab  key.Binding
	PrevTab  key.Binding
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	Add      key.Binding
	Area     key.Binding
	Sync     key.Binding
	Archive  key.Binding
	Restore  key.Binding
	Convert  key.Binding
	Status   key.Binding
	Mood     key.Binding
	Focus    key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	tab      tab
	showFull bool
}

func newKeyMap() keyMap {
	return keyMap{
		NextTab: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev tab")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Area:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "area filter")),
		Sync:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "filter on server/locally")),
		Archive: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "archive")),
		Restore: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "restore")),
		Convert: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "to task")),
		Status:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "inbox/archived/processed")),
		Mood:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "mood")),
		Focus:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit focus")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp lists the bindings of the current tab.
func (k keyMap) ShortHelp() []key.Binding {
	switch k.tab {
	case tabToday:
		return []key.Binding{k.Mood, k.Focus, k.NextTab, k.Quit}
	case tabTasks:
		return []key.Binding{k.Toggle, k.Delete, k.Add, k.Area, k.NextTab, k.Quit}
	case tabHabits:
		return []key.Binding{k.Toggle, k.Delete, k.Add, k.NextTab, k.Quit}
	case tabInbox:
		return []key.Binding{k.Archive, k.Convert, k.Add, k.Status, k.NextTab, k.Quit}
	case tabReview:
		return []key.Binding{k.Refresh, k.NextTab, k.Quit}
	}
	return []key.Binding{k.NextTab, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Up, k.Down},
		{k.Toggle, k.Delete, k.Add, k.Area, k.Sync},
		{k.Archive, k.Restore, k.Convert, k.Status},
		{k.Mood, k.Focus, k.Refresh, k.Help, k.Quit},
	}
}
