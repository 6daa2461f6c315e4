// Package tui is the interactive terminal client. Every screen change
// goes through the route guard, so the TUI and the CLI commands enforce
// the same role rules.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/freementors/internal/app"
	"github.com/felixgeelhaar/freementors/internal/auth"
	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
)

// Model is the state of the interactive client
type Model struct {
	ctx context.Context
	app *app.App

	// Navigation
	state   auth.State
	path    string // screen being shown
	pending string // path requested while the session is verified
	from    string // destination to restore after signing in

	// Screen data
	mentors  *app.MentorBoard
	users    *app.UserAdmin
	sessions *app.SessionBoard
	overview *app.Overview
	tab      int

	// Sign-in
	form        *huh.Form
	creds       *app.Credentials
	reg         *app.Registration
	registering bool

	// UI state
	notice    app.Notice
	busy      bool
	searching bool
	width     int
	height    int
	quitting  bool

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	table   table.Model
	search  textinput.Model
	styles  Styles
}

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Muted       lipgloss.Style
	Border      lipgloss.Style
	Highlighted lipgloss.Style
	Tab         lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")),
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2),
		Highlighted: lipgloss.NewStyle().
			Background(lipgloss.Color("63")).
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(0, 1),
		Tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1),
	}
}

// NewModel creates the client model. start is the first destination;
// it is shown once the session has been resolved.
func NewModel(ctx context.Context, a *app.App, start string) Model {
	if start == "" {
		start = authz.PathRoot
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"

	return Model{
		ctx:      ctx,
		app:      a,
		state:    a.State(),
		pending:  start,
		mentors:  a.Mentors(),
		users:    a.Users(),
		sessions: a.Sessions(),
		creds:    &app.Credentials{},
		reg:      &app.Registration{},
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		table:    table.New(table.WithFocused(true), table.WithHeight(12)),
		search:   search,
		styles:   DefaultStyles(),
	}
}

// StateMsg carries a session snapshot published by the store
type StateMsg struct {
	State auth.State
}

type loadedMsg struct {
	path     string
	notice   app.Notice
	overview *app.Overview
}

type actionMsg struct {
	notice app.Notice
}

type loginMsg struct {
	outcome app.LoginOutcome
}

type registerMsg struct {
	notice app.Notice
	email  string
}

type logoutMsg struct {
	notice app.Notice
}

// Init initializes the TUI model (required by Bubble Tea)
func (m Model) Init() tea.Cmd {
	a := m.app
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return StateMsg{State: a.State()}
	})
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(5, msg.Height-12))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.path == authz.PathMentors && m.mentorRequestInFlight() {
			m.refreshTable()
		}
		return m, cmd

	case StateMsg:
		return m.applyState(msg.State)

	case loadedMsg:
		if msg.path != m.path {
			return m, nil
		}
		m.busy = false
		if msg.overview != nil {
			m.overview = msg.overview
		}
		if msg.notice.IsError() {
			m.notice = msg.notice
		}
		m.refreshTable()
		return m, nil

	case actionMsg:
		m.notice = msg.notice
		m.refreshTable()
		return m, nil

	case loginMsg:
		m.busy = false
		m.notice = msg.outcome.Notice
		if msg.outcome.Identity == nil {
			return m.showSignIn()
		}
		m.from = ""
		m.state = m.app.State()
		return m.navigate(msg.outcome.Target)

	case registerMsg:
		m.busy = false
		m.notice = msg.notice
		if msg.notice.IsError() {
			m.form = registrationForm(m.reg)
			return m, m.form.Init()
		}
		m.registering = false
		m.creds = &app.Credentials{Email: msg.email}
		m.form = loginForm(m.creds)
		return m, m.form.Init()

	case logoutMsg:
		m.busy = false
		m.notice = msg.notice
		m.from = ""
		m.overview = nil
		m.state = m.app.State()
		return m.navigate(authz.PathAuth)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

// applyState follows the session: a pending destination is retried once
// the session resolves, and a protected screen is left when the session
// ends underneath it.
func (m Model) applyState(s auth.State) (Model, tea.Cmd) {
	if s.Revision < m.state.Revision {
		return m, nil
	}
	m.state = s

	if m.pending != "" {
		return m.navigate(m.pending)
	}
	if m.path != "" && m.path != authz.PathAuth && m.path != authz.PathUnauthorized &&
		!s.Status.IsPending() && !s.IsAuthenticated() {
		return m.navigate(m.path)
	}
	return m, nil
}

// navigate runs the route guard for path and switches screens
func (m Model) navigate(path string) (Model, tea.Cmd) {
	outcome, err := m.app.Enter(path)
	m.state = m.app.State()

	switch outcome.Decision {
	case authz.DecisionWait:
		m.pending = path
		m.busy = true
		return m, nil

	case authz.DecisionNotFound:
		m.pending = ""
		m.busy = false
		m.notice = app.Failure(err)
		if m.path == "" {
			return m.navigate(authz.PathRoot)
		}
		return m, nil

	case authz.DecisionRedirectToLogin:
		m.pending = ""
		m.from = outcome.From
		m.notice = app.Info("Please sign in to continue")
		return m.showSignIn()

	case authz.DecisionRedirectToUnauthorized:
		m.pending = ""
		m.busy = false
		m.form = nil
		m.path = authz.PathUnauthorized
		m.notice = app.Failure(err)
		return m, nil
	}

	m.pending = ""
	if outcome.Target == authz.PathAuth {
		return m.showSignIn()
	}

	m.path = outcome.Target
	m.form = nil
	m.tab = 0
	m.searching = false
	m.search.SetValue("")
	m.search.Blur()
	cmd := m.load()
	return m, cmd
}

// load fetches the data of the current screen
func (m *Model) load() tea.Cmd {
	ctx, path := m.ctx, m.path

	var fetch func() tea.Msg
	switch path {
	case authz.PathMentors:
		board := m.mentors
		fetch = func() tea.Msg { return loadedMsg{path: path, notice: board.Load(ctx)} }
	case authz.PathAdmin:
		users := m.users
		fetch = func() tea.Msg { return loadedMsg{path: path, notice: users.Load(ctx, nil)} }
	case authz.PathSessions, authz.PathRequests:
		sessions := m.sessions
		fetch = func() tea.Msg { return loadedMsg{path: path, notice: sessions.Load(ctx)} }
	case authz.PathDashboard:
		a := m.app
		fetch = func() tea.Msg {
			view, notice := a.Overview(ctx)
			return loadedMsg{path: path, notice: notice, overview: view}
		}
	default:
		m.busy = false
		m.refreshTable()
		return nil
	}

	m.busy = true
	return fetch
}

func (m Model) showSignIn() (Model, tea.Cmd) {
	m.path = authz.PathAuth
	m.busy = false
	m.registering = false
	m.creds = &app.Credentials{Email: m.creds.Email}
	m.form = loginForm(m.creds)
	return m, m.form.Init()
}

func (m Model) toggleRegistration() (Model, tea.Cmd) {
	m.registering = !m.registering
	if m.registering {
		m.reg = &app.Registration{Email: m.creds.Email}
		m.form = registrationForm(m.reg)
	} else {
		m.creds = &app.Credentials{Email: m.reg.Email}
		m.form = loginForm(m.creds)
	}
	return m, m.form.Init()
}

// updateForm feeds msg to the sign-in form and submits it once complete
func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		m.busy = true
		a, ctx := m.app, m.ctx
		if m.registering {
			reg := *m.reg
			return m, func() tea.Msg {
				return registerMsg{notice: a.Register(ctx, reg), email: reg.Email}
			}
		}
		creds, from := *m.creds, m.from
		return m, func() tea.Msg {
			return loginMsg{outcome: a.Login(ctx, creds, from)}
		}
	case huh.StateAborted:
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.form != nil {
		if key.Matches(msg, m.keys.Toggle) {
			return m.toggleRegistration()
		}
		return m.updateForm(msg)
	}

	if m.searching {
		switch msg.Type {
		case tea.KeyEsc:
			m.searching = false
			m.search.SetValue("")
			m.search.Blur()
			m.refreshTable()
			return m, nil
		case tea.KeyEnter:
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.refreshTable()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.notice = app.Notice{}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.notice = app.Notice{}
		cmd := m.load()
		return m, cmd
	case key.Matches(msg, m.keys.Logout):
		if !m.state.IsAuthenticated() {
			return m, nil
		}
		m.busy = true
		a, ctx := m.app, m.ctx
		return m, func() tea.Msg { return logoutMsg{notice: a.Logout(ctx)} }
	case key.Matches(msg, m.keys.Dashboard):
		return m.navigate(authz.PathDashboard)
	case key.Matches(msg, m.keys.Mentors):
		return m.navigate(authz.PathMentors)
	case key.Matches(msg, m.keys.Sessions):
		return m.navigate(authz.PathSessions)
	case key.Matches(msg, m.keys.Requests):
		return m.navigate(authz.PathRequests)
	case key.Matches(msg, m.keys.Users):
		return m.navigate(authz.PathAdmin)
	case key.Matches(msg, m.keys.Profile):
		return m.navigate(authz.PathProfile)
	case key.Matches(msg, m.keys.Search) && m.hasTable():
		m.searching = true
		return m, m.search.Focus()
	}

	switch m.path {
	case authz.PathMentors:
		if key.Matches(msg, m.keys.Request) {
			return m.requestSelected()
		}
	case authz.PathRequests, authz.PathSessions:
		switch {
		case key.Matches(msg, m.keys.Accept):
			return m.respondSelected(domain.ActionAccept)
		case key.Matches(msg, m.keys.Decline):
			return m.respondSelected(domain.ActionDecline)
		case key.Matches(msg, m.keys.NextTab) && m.path == authz.PathSessions:
			m.tab = (m.tab + 1) % len(m.sessions.Tabs())
			m.refreshTable()
			return m, nil
		}
	case authz.PathAdmin:
		switch {
		case key.Matches(msg, m.keys.Member):
			return m.changeSelectedRole(domain.RoleMember)
		case key.Matches(msg, m.keys.Mentor):
			return m.changeSelectedRole(domain.RoleMentor)
		case key.Matches(msg, m.keys.Admin):
			return m.changeSelectedRole(domain.RoleAdministrator)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) requestSelected() (Model, tea.Cmd) {
	row := m.table.SelectedRow()
	if row == nil {
		return m, nil
	}
	name, email := row[0], row[1]
	board, ctx := m.mentors, m.ctx

	m.notice = app.Info(fmt.Sprintf("Requesting a session with %s", name))
	return m, func() tea.Msg {
		return actionMsg{notice: board.Request(ctx, email)}
	}
}

func (m Model) respondSelected(action domain.ResponseAction) (Model, tea.Cmd) {
	row := m.table.SelectedRow()
	if row == nil {
		return m, nil
	}
	id := row[0]
	sessions, ctx := m.sessions, m.ctx

	return m, func() tea.Msg {
		return actionMsg{notice: sessions.Respond(ctx, id, action)}
	}
}

func (m Model) changeSelectedRole(role domain.Role) (Model, tea.Cmd) {
	row := m.table.SelectedRow()
	if row == nil {
		return m, nil
	}
	email := row[1]
	users, ctx := m.users, m.ctx

	return m, func() tea.Msg {
		return actionMsg{notice: users.ChangeRole(ctx, email, role)}
	}
}

func (m Model) hasTable() bool {
	switch m.path {
	case authz.PathMentors, authz.PathAdmin, authz.PathSessions, authz.PathRequests:
		return true
	}
	return false
}

// refreshTable rebuilds the table of the current screen from the boards
func (m *Model) refreshTable() {
	query := strings.TrimSpace(m.search.Value())

	var (
		columns []table.Column
		rows    []table.Row
	)
	switch m.path {
	case authz.PathMentors:
		columns = []table.Column{
			{Title: "Name", Width: 22},
			{Title: "Email", Width: 28},
			{Title: "Expertise", Width: 26},
			{Title: "Occupation", Width: 18},
			{Title: "", Width: 14},
		}
		for _, mentor := range m.mentors.Filter(query, "") {
			rows = append(rows, table.Row{
				mentor.FullName(), mentor.Email, mentor.Expertise, mentor.Occupation,
				m.mentorStatus(mentor.Email),
			})
		}

	case authz.PathAdmin:
		columns = []table.Column{
			{Title: "Name", Width: 22},
			{Title: "Email", Width: 28},
			{Title: "Role", Width: 14},
		}
		for _, user := range m.users.Filter(query, nil) {
			rows = append(rows, table.Row{user.FullName(), user.Email, user.Role.Label()})
		}

	case authz.PathSessions, authz.PathRequests:
		counterpart := "Mentor"
		if m.sessions.Side() == domain.SessionRoleMentor {
			counterpart = "Mentee"
		}
		columns = []table.Column{
			{Title: "ID", Width: 8},
			{Title: counterpart, Width: 22},
			{Title: "Email", Width: 28},
			{Title: "Status", Width: 10},
			{Title: "Requested", Width: 20},
		}
		for _, s := range m.visibleSessions(query) {
			p := s.Mentor
			if m.sessions.Side() == domain.SessionRoleMentor {
				p = s.Mentee
			}
			name, email := "", ""
			if p != nil {
				name, email = p.Name(), p.Email
			}
			rows = append(rows, table.Row{s.ID, name, email, string(s.Status), s.CreatedAt})
		}
	}

	cursor := m.table.Cursor()
	// Rows wider than the new columns cannot be rendered, so clear them
	// before switching to a narrower screen.
	if len(columns) < len(m.table.Columns()) {
		m.table.SetRows(nil)
	}
	m.table.SetColumns(columns)
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(min(max(cursor, 0), len(rows)-1))
	}
}

// mentorRequestInFlight reports whether a mentor row shows the spinner
func (m Model) mentorRequestInFlight() bool {
	for _, mentor := range m.mentors.All() {
		if m.mentors.IsRequesting(mentor.Email) {
			return true
		}
	}
	return false
}

func (m Model) visibleSessions(query string) []domain.MentorshipSession {
	var sessions []domain.MentorshipSession
	if m.path == authz.PathRequests {
		sessions = m.sessions.Pending()
	} else {
		tabs := m.sessions.Tabs()
		sessions = m.sessions.WithStatus(tabs[m.tab%len(tabs)].Status)
	}
	if query == "" {
		return sessions
	}

	query = strings.ToLower(query)
	out := make([]domain.MentorshipSession, 0, len(sessions))
	for _, s := range sessions {
		for _, p := range []*domain.Participant{s.Mentor, s.Mentee} {
			if p != nil && (strings.Contains(strings.ToLower(p.Name()), query) ||
				strings.Contains(strings.ToLower(p.Email), query)) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func (m Model) mentorStatus(email string) string {
	switch {
	case m.mentors.IsRequesting(email):
		return m.spinner.View() + " Requesting"
	case m.mentors.IsRequested(email):
		return "Requested"
	}
	return ""
}

// Path returns the destination being shown
func (m Model) Path() string {
	return m.path
}

// Notice returns the message shown under the screen
func (m Model) Notice() app.Notice {
	return m.notice
}
