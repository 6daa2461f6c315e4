package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the bindings of the interactive client
type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Refresh   key.Binding
	Search    key.Binding
	Cancel    key.Binding
	Request   key.Binding
	Accept    key.Binding
	Decline   key.Binding
	NextTab   key.Binding
	Member    key.Binding
	Mentor    key.Binding
	Admin     key.Binding
	Dashboard key.Binding
	Mentors   key.Binding
	Sessions  key.Binding
	Requests  key.Binding
	Users     key.Binding
	Profile   key.Binding
	Logout    key.Binding
	Toggle    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Request:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "request session")),
		Accept:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		Decline:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "decline")),
		NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next status")),
		Member:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "make member")),
		Mentor:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "make mentor")),
		Admin:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "make admin")),
		Dashboard: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboard")),
		Mentors:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mentors")),
		Sessions:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sessions")),
		Requests:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "requests")),
		Users:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "users")),
		Profile:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
		Logout:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sign out")),
		Toggle:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "sign in / register")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Logout, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Dashboard, k.Mentors, k.Sessions, k.Requests, k.Users, k.Profile},
		{k.Search, k.Cancel, k.Request, k.Accept, k.Decline, k.NextTab},
		{k.Member, k.Mentor, k.Admin},
		{k.Refresh, k.Logout, k.Help, k.Quit},
	}
}

// screenKeys are the action bindings shown under each screen
type screenKeys struct {
	bindings []key.Binding
}

func (s screenKeys) ShortHelp() []key.Binding { return s.bindings }

func (s screenKeys) FullHelp() [][]key.Binding { return [][]key.Binding{s.bindings} }
