package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/freementors/internal/app"
	"github.com/felixgeelhaar/freementors/internal/auth"
	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
	"github.com/felixgeelhaar/freementors/internal/log"
	"github.com/felixgeelhaar/freementors/internal/platform"
)

var (
	member = domain.Identity{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Role: domain.RoleMember}
	mentor = domain.Identity{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Role: domain.RoleMentor}
)

const (
	mentorsBody = `{"data":{"allUsers":[
		{"id":"7","firstName":"Grace","lastName":"Hopper","email":"grace@example.com","role":"MENTOR","expertise":"Compilers"},
		{"id":"8","firstName":"Barbara","lastName":"Liskov","email":"barbara@example.com","role":"MENTOR","expertise":"Type systems"}
	]}}`
	sessionsBody = `{"data":{"mySessions":[
		{"id":"1","status":"PENDING","mentee":{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}},
		{"id":"2","status":"ACCEPTED","mentee":{"firstName":"Alan","lastName":"Turing","email":"alan@example.com"}}
	]}}`
)

// fakeAPI answers GraphQL operations by name
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]string
	calls     map[string]int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OperationName string `json:"operationName"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.calls[body.OperationName]++
	response, ok := f.responses[body.OperationName]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(response))
}

func (f *fakeAPI) count(operation string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[operation]
}

type instantClock struct{}

func (instantClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func newTestApp(t *testing.T, responses map[string]string) (*app.App, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{responses: responses, calls: map[string]int{}}
	if api.responses == nil {
		api.responses = map[string]string{}
	}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	client := platform.NewClient(server.URL)
	client.Logger = log.Discard()
	store := auth.NewStore(client, auth.NewMemoryPersister(), auth.WithLogger(log.Discard()))

	a, err := app.New(app.Options{
		Store:  store,
		Client: client,
		Logger: log.Discard(),
		Clock:  instantClock{},
	})
	require.NoError(t, err)
	return a, api
}

func signIn(t *testing.T, a *app.App, identity domain.Identity) {
	t.Helper()
	require.NoError(t, a.Store().Login(context.Background(), "tok-"+string(identity.Role), identity))
}

// update feeds msg to m and runs the returned command once, feeding
// its message back. Form and text input commands are not run.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	model := next.(Model)
	if cmd == nil || model.form != nil || model.searching {
		return model
	}
	result := cmd()
	switch result.(type) {
	case nil, tea.BatchMsg, tea.QuitMsg:
		return model
	}
	next, _ = model.Update(result)
	return next.(Model)
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// started returns a model that resolved its first destination
func started(t *testing.T, a *app.App, start string) Model {
	t.Helper()
	return update(t, NewModel(context.Background(), a, start), StateMsg{State: a.State()})
}

func TestWaitsForSessionThenRedirectsToSignIn(t *testing.T) {
	a, _ := newTestApp(t, nil)

	m := started(t, a, authz.PathMentors)
	assert.Equal(t, authz.PathMentors, m.pending)
	assert.Contains(t, m.View(), "Checking your session")

	require.NoError(t, a.Initialize(context.Background()))
	m = update(t, m, StateMsg{State: a.State()})

	assert.Equal(t, authz.PathAuth, m.Path())
	assert.Empty(t, m.pending)
	assert.Equal(t, authz.PathMentors, m.from)
	assert.NotNil(t, m.form)
	assert.Equal(t, "Please sign in to continue", m.Notice().Message)
}

func TestSignInPageWaitsForStoredSession(t *testing.T) {
	a, api := newTestApp(t, map[string]string{"AllUsers": mentorsBody})

	m := started(t, a, authz.PathAuth)
	assert.Equal(t, authz.PathAuth, m.pending)
	assert.Nil(t, m.form, "no sign-in form while the session is checked")

	signIn(t, a, member)
	m = update(t, m, StateMsg{State: a.State()})

	assert.Equal(t, authz.PathMentors, m.Path())
	assert.Empty(t, m.pending)
	assert.Equal(t, 1, api.count("AllUsers"))
}

func TestRootGoesToRoleHome(t *testing.T) {
	a, api := newTestApp(t, map[string]string{"MySessions": sessionsBody})
	signIn(t, a, mentor)

	m := started(t, a, "")

	assert.Equal(t, authz.PathRequests, m.Path())
	assert.Equal(t, 1, api.count("MySessions"))
	assert.Len(t, m.table.Rows(), 1, "only pending requests are listed")
	assert.Equal(t, "1", m.table.Rows()[0][0])
}

func TestUnknownStartFallsBackToHome(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"AllUsers": mentorsBody})
	signIn(t, a, member)

	m := started(t, a, "/nowhere")

	assert.Equal(t, authz.PathMentors, m.Path())
	assert.True(t, m.Notice().IsError())
}

func TestLoginMessageLandsOnTarget(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"AllUsers": mentorsBody})
	require.NoError(t, a.Initialize(context.Background()))

	m := started(t, a, authz.PathMentors)
	require.Equal(t, authz.PathAuth, m.Path())

	signIn(t, a, member)
	identity := member
	m = update(t, m, loginMsg{outcome: app.LoginOutcome{
		Notice:   app.Success("Welcome, Ada Lovelace"),
		Target:   authz.PathMentors,
		Identity: &identity,
	}})

	assert.Equal(t, authz.PathMentors, m.Path())
	assert.Empty(t, m.from)
	assert.Nil(t, m.form)
	assert.Equal(t, "Welcome, Ada Lovelace", m.Notice().Message)
	assert.Len(t, m.table.Rows(), 2)
}

func TestFailedLoginShowsFormAgain(t *testing.T) {
	a, _ := newTestApp(t, nil)
	require.NoError(t, a.Initialize(context.Background()))
	m := started(t, a, authz.PathAuth)

	m.creds.Email = "ada@example.com"
	m = update(t, m, loginMsg{outcome: app.LoginOutcome{
		Notice: app.Notice{Kind: app.NoticeError, Message: "Invalid email or password"},
		Target: authz.PathAuth,
	}})

	assert.Equal(t, authz.PathAuth, m.Path())
	require.NotNil(t, m.form)
	assert.Equal(t, "ada@example.com", m.creds.Email)
	assert.Empty(t, m.creds.Password)
	assert.Contains(t, m.View(), "Invalid email or password")
}

func TestToggleRegistration(t *testing.T) {
	a, _ := newTestApp(t, nil)
	require.NoError(t, a.Initialize(context.Background()))
	m := started(t, a, authz.PathAuth)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.True(t, m.registering)
	assert.Contains(t, m.View(), "back to sign in")

	m = update(t, m, registerMsg{notice: app.Success("Registration successful. Please sign in."), email: "new@example.com"})
	assert.False(t, m.registering)
	assert.Equal(t, "new@example.com", m.creds.Email)
}

func TestMemberIsSentToUnauthorized(t *testing.T) {
	a, api := newTestApp(t, map[string]string{"AllUsers": mentorsBody})
	signIn(t, a, member)
	m := started(t, a, authz.PathMentors)

	m = update(t, m, keyPress('u'))

	assert.Equal(t, authz.PathUnauthorized, m.Path())
	assert.True(t, m.Notice().IsError())
	assert.Equal(t, 1, api.count("AllUsers"), "user list is never fetched")
	assert.Contains(t, m.View(), "You do not have access")
}

func TestRequestSelectedMentorKeepsServerMessage(t *testing.T) {
	a, api := newTestApp(t, map[string]string{
		"AllUsers":                 mentorsBody,
		"RequestMentorshipSession": `{"data":{"requestMentorshipSession":{"success":false,"message":"Mentor unavailable"}}}`,
	})
	signIn(t, a, member)
	m := started(t, a, authz.PathMentors)
	require.Len(t, m.table.Rows(), 2)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, 1, api.count("RequestMentorshipSession"))
	assert.Equal(t, "Mentor unavailable", m.Notice().Message)
	assert.True(t, m.Notice().IsError())
	assert.False(t, m.mentors.IsRequested("grace@example.com"))
}

func TestRequestSelectedMentorMarksRow(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{
		"AllUsers":                 mentorsBody,
		"RequestMentorshipSession": `{"data":{"requestMentorshipSession":{"success":true,"message":""}}}`,
	})
	signIn(t, a, member)
	m := started(t, a, authz.PathMentors)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "Mentorship session requested", m.Notice().Message)
	assert.Equal(t, "Requested", m.table.Rows()[0][4])
}

func TestSelectionSurvivesSpinnerTicks(t *testing.T) {
	a, api := newTestApp(t, map[string]string{
		"AllUsers":                 mentorsBody,
		"RequestMentorshipSession": `{"data":{"requestMentorshipSession":{"success":true,"message":""}}}`,
	})
	signIn(t, a, member)
	m := started(t, a, authz.PathMentors)
	require.Equal(t, 0, m.table.Cursor())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, m.table.Cursor())

	m = update(t, m, spinner.TickMsg{})
	m = update(t, m, spinner.TickMsg{})
	require.Equal(t, 1, m.table.Cursor())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, 1, api.count("RequestMentorshipSession"))
	assert.True(t, m.mentors.IsRequested("barbara@example.com"))
	assert.False(t, m.mentors.IsRequested("grace@example.com"))
	assert.Equal(t, "Requested", m.table.Rows()[1][4])
	assert.Equal(t, 1, m.table.Cursor())
}

func TestRefreshKeepsCursorInRange(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"AllUsers": mentorsBody})
	signIn(t, a, member)
	m := started(t, a, authz.PathMentors)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, m.table.Cursor())

	m = update(t, m, keyPress('/'))
	for _, r := range "grace" {
		m = update(t, m, keyPress(r))
	}
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, 0, m.table.Cursor())
	assert.Equal(t, "grace@example.com", m.table.SelectedRow()[1])
}

func TestSearchFiltersTable(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"AllUsers": mentorsBody})
	signIn(t, a, member)
	m := started(t, a, authz.PathMentors)

	m = update(t, m, keyPress('/'))
	require.True(t, m.searching)
	for _, r := range "liskov" {
		m = update(t, m, keyPress(r))
	}

	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "barbara@example.com", m.table.Rows()[0][1])

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.searching)
	assert.Len(t, m.table.Rows(), 2)
}

func TestSessionTabsCycle(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"MySessions": sessionsBody})
	signIn(t, a, mentor)
	m := started(t, a, authz.PathSessions)
	require.Len(t, m.table.Rows(), 2)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.tab)
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, string(domain.MentorshipPending), m.table.Rows()[0][3])
	assert.Contains(t, m.View(), "Pending (1)")
}

func TestAcceptRequest(t *testing.T) {
	a, api := newTestApp(t, map[string]string{
		"MySessions":                 sessionsBody,
		"RespondToMentorshipSession": `{"data":{"respondToMentorshipSession":{"success":true,"message":""}}}`,
	})
	signIn(t, a, mentor)
	m := started(t, a, authz.PathRequests)

	m = update(t, m, keyPress('a'))

	assert.Equal(t, 1, api.count("RespondToMentorshipSession"))
	assert.Equal(t, "Mentorship request accepted", m.Notice().Message)
}

func TestSessionEndRedirectsToSignIn(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"MySessions": sessionsBody})
	signIn(t, a, mentor)
	m := started(t, a, authz.PathSessions)

	require.NoError(t, a.Store().Logout(context.Background()))
	m = update(t, m, StateMsg{State: a.State()})

	assert.Equal(t, authz.PathAuth, m.Path())
	assert.Equal(t, authz.PathSessions, m.from)
}

func TestStaleStateIsIgnored(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"MySessions": sessionsBody})
	signIn(t, a, mentor)
	m := started(t, a, authz.PathSessions)

	m = update(t, m, StateMsg{State: auth.State{Status: auth.StatusUnauthenticated}})

	assert.Equal(t, authz.PathSessions, m.Path())
}

func TestLogoutKey(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"AllUsers": mentorsBody})
	signIn(t, a, member)
	m := started(t, a, authz.PathMentors)

	m = update(t, m, keyPress('o'))

	assert.Equal(t, authz.PathAuth, m.Path())
	assert.Empty(t, m.from)
	assert.Equal(t, "Signed out", m.Notice().Message)
	assert.False(t, a.State().IsAuthenticated())
}

func TestQuitKey(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"AllUsers": mentorsBody})
	signIn(t, a, member)
	m := started(t, a, authz.PathMentors)

	next, cmd := m.Update(keyPress('q'))
	require.NotNil(t, cmd)
	assert.True(t, next.(Model).quitting)
	assert.Empty(t, next.(Model).View())
}

func TestDashboardView(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"MySessions": sessionsBody})
	signIn(t, a, mentor)
	m := started(t, a, authz.PathDashboard)

	view := m.View()
	assert.Contains(t, view, "Welcome back, Grace Hopper")
	assert.Contains(t, view, "Mentorship requests")
	assert.False(t, strings.Contains(view, "User management"), "admin destinations are hidden")
}
