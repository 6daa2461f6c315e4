package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/freementors/internal/app"
	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
)

// View renders the TUI (required by Bubble Tea)
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch {
	case m.pending != "":
		b.WriteString(m.renderVerifying())
	case m.path == authz.PathAuth:
		b.WriteString(m.renderSignIn())
	case m.path == authz.PathDashboard:
		b.WriteString(m.renderDashboard())
	case m.path == authz.PathProfile:
		b.WriteString(m.renderProfile())
	case m.path == authz.PathUnauthorized:
		b.WriteString(m.renderUnauthorized())
	case m.hasTable():
		b.WriteString(m.renderTableScreen())
	default:
		b.WriteString(m.styles.Muted.Render("Nothing to show here."))
	}

	if line := m.renderNotice(); line != "" {
		b.WriteString("\n\n")
		b.WriteString(line)
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderHelpLine())
	return b.String()
}

// renderHeader shows the product name and who is signed in
func (m Model) renderHeader() string {
	title := m.styles.Title.Render("FreeMentors")

	who := m.styles.Muted.Render("not signed in")
	if id := m.state.Display(); id != nil {
		who = fmt.Sprintf("%s %s", id.FullName(), m.styles.Muted.Render("("+id.Role.Label()+")"))
		if !m.state.IsAuthenticated() {
			who += m.styles.Muted.Render(" verifying")
		}
	}

	var nav []string
	for _, d := range m.app.Router().Visible(m.state) {
		if d.Public {
			continue
		}
		style := m.styles.Tab
		if d.Path == m.path {
			style = m.styles.Highlighted
		}
		nav = append(nav, style.Render(d.Title))
	}

	header := title + "  " + who
	if len(nav) > 0 {
		header += "\n" + lipgloss.JoinHorizontal(lipgloss.Top, nav...)
	}
	return header
}

func (m Model) renderVerifying() string {
	msg := "Checking your session"
	if id := m.state.Display(); id != nil {
		msg = fmt.Sprintf("Signing in as %s", id.Email)
	}
	return m.spinner.View() + " " + m.styles.Status.Render(msg)
}

func (m Model) renderSignIn() string {
	if m.busy {
		return m.spinner.View() + " " + m.styles.Status.Render("Signing in")
	}
	if m.form == nil {
		return ""
	}
	hint := "ctrl+n: create an account"
	if m.registering {
		hint = "ctrl+n: back to sign in"
	}
	return m.form.View() + "\n" + m.styles.Muted.Render(hint)
}

func (m Model) renderDashboard() string {
	if m.busy || m.overview == nil {
		return m.spinner.View() + " " + m.styles.Muted.Render("Loading dashboard")
	}

	var b strings.Builder
	id := m.overview.Identity
	b.WriteString(m.styles.Status.Render(fmt.Sprintf("Welcome back, %s", id.FullName())))
	b.WriteString("\n\n")

	if len(m.overview.Tabs) > 0 {
		var stats []string
		for _, tab := range m.overview.Tabs {
			stats = append(stats, fmt.Sprintf("%-10s %d", tab.Label, tab.Count))
		}
		b.WriteString(m.styles.Border.Render(strings.Join(stats, "\n")))
		b.WriteString("\n\n")
	}

	b.WriteString(m.styles.Subtitle.Render("Where to next"))
	b.WriteString("\n")
	for _, d := range m.overview.Destinations {
		if d.Public || d.Path == authz.PathDashboard {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n", d.Title, m.styles.Muted.Render(d.Path)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderProfile() string {
	id := m.state.Identity
	if id == nil {
		return ""
	}

	rows := [][2]string{
		{"Name", id.FullName()},
		{"Email", id.Email},
		{"Role", id.Role.Label()},
		{"Occupation", id.Occupation},
		{"Expertise", id.Expertise},
		{"Address", id.Address},
		{"Bio", id.Bio},
	}
	var lines []string
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		lines = append(lines, m.styles.Subtitle.Render(fmt.Sprintf("%-11s", r[0]))+r[1])
	}
	return m.styles.Border.Render(strings.Join(lines, "\n"))
}

func (m Model) renderUnauthorized() string {
	home := m.app.Router().HomeRedirect(m.state, "")
	return m.styles.Error.Render("You do not have access to that page.") + "\n" +
		m.styles.Muted.Render("Your home is "+home)
}

func (m Model) renderTableScreen() string {
	var b strings.Builder

	title := map[string]string{
		authz.PathMentors:  "Mentors",
		authz.PathAdmin:    "User management",
		authz.PathSessions: "My sessions",
		authz.PathRequests: "Mentorship requests",
	}[m.path]
	b.WriteString(m.styles.Subtitle.Render(title))
	if m.busy {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n")

	if m.path == authz.PathSessions {
		b.WriteString(m.renderTabs())
		b.WriteString("\n")
	}
	if m.path == authz.PathAdmin {
		b.WriteString(m.renderRoleCounts())
		b.WriteString("\n")
	}
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	if len(m.table.Rows()) == 0 && !m.busy {
		b.WriteString(m.styles.Muted.Render(m.emptyText()))
		return b.String()
	}
	b.WriteString(m.table.View())
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := m.sessions.Tabs()
	parts := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		style := m.styles.Tab
		if i == m.tab%len(tabs) {
			style = m.styles.Highlighted
		}
		parts = append(parts, style.Render(fmt.Sprintf("%s (%d)", tab.Label, tab.Count)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderRoleCounts() string {
	counts := m.users.Counts()
	parts := make([]string, 0, len(domain.AllRoles()))
	for _, r := range domain.AllRoles() {
		parts = append(parts, fmt.Sprintf("%s %d", r.Label(), counts[r]))
	}
	return m.styles.Muted.Render(strings.Join(parts, " · "))
}

func (m Model) emptyText() string {
	if m.search.Value() != "" {
		return "Nothing matches your search."
	}
	switch m.path {
	case authz.PathMentors:
		return "No mentors are available yet."
	case authz.PathRequests:
		return "No pending mentorship requests."
	case authz.PathSessions:
		return "No mentorship sessions yet."
	}
	return "Nothing to show."
}

func (m Model) renderNotice() string {
	switch m.notice.Kind {
	case app.NoticeError:
		return m.styles.Error.Render(m.notice.Message)
	case app.NoticeSuccess:
		return m.styles.Success.Render(m.notice.Message)
	case app.NoticeInfo:
		return m.styles.Status.Render(m.notice.Message)
	}
	return ""
}

// renderHelpLine renders the key help at the bottom
func (m Model) renderHelpLine() string {
	if m.form != nil {
		return m.help.ShortHelpView([]key.Binding{m.keys.Toggle})
	}
	if m.help.ShowAll {
		return m.help.View(m.keys)
	}

	var actions []key.Binding
	switch m.path {
	case authz.PathMentors:
		actions = []key.Binding{m.keys.Request, m.keys.Search}
	case authz.PathRequests:
		actions = []key.Binding{m.keys.Accept, m.keys.Decline, m.keys.Search}
	case authz.PathSessions:
		actions = []key.Binding{m.keys.NextTab, m.keys.Search}
		if m.sessions.Side() == domain.SessionRoleMentor {
			actions = append(actions, m.keys.Accept, m.keys.Decline)
		}
	case authz.PathAdmin:
		actions = []key.Binding{m.keys.Member, m.keys.Mentor, m.keys.Admin, m.keys.Search}
	}
	actions = append(actions, m.keys.ShortHelp()...)
	return m.help.View(screenKeys{bindings: actions})
}
