package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
	"github.com/felixgeelhaar/freementors/internal/security"
)

// Tab is one status tab of the sessions screen. A nil Status is "all".
type Tab struct {
	Label  string
	Status *domain.MentorshipStatus
	Count  int
}

// SessionBoard lists the user's mentorship sessions and lets mentors
// answer pending requests.
type SessionBoard struct {
	app *App

	mu         sync.Mutex
	side       domain.SessionRole
	sessions   []domain.MentorshipSession
	responding map[string]bool
}

// Sessions creates a sessions screen
func (a *App) Sessions() *SessionBoard {
	return &SessionBoard{app: a, responding: make(map[string]bool)}
}

// Load fetches sessions. Mentors see requests addressed to them,
// everyone else the requests they made.
func (b *SessionBoard) Load(ctx context.Context) Notice {
	identity, err := b.app.identity(authz.PathSessions)
	if err != nil {
		return Failure(err)
	}

	side := domain.SessionRoleFor(identity.Role)
	sessions, err := b.app.api().MySessions(ctx, &side)
	if err != nil {
		return Failure(err)
	}

	b.mu.Lock()
	b.side = side
	b.sessions = sessions
	b.mu.Unlock()
	return Notice{}
}

// Side returns which side of the sessions was loaded
func (b *SessionBoard) Side() domain.SessionRole {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.side
}

// All returns the loaded sessions
func (b *SessionBoard) All() []domain.MentorshipSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.MentorshipSession(nil), b.sessions...)
}

// WithStatus returns the sessions in status; nil means all
func (b *SessionBoard) WithStatus(status *domain.MentorshipStatus) []domain.MentorshipSession {
	all := b.All()
	if status == nil {
		return all
	}
	out := make([]domain.MentorshipSession, 0, len(all))
	for _, s := range all {
		if s.Status == *status {
			out = append(out, s)
		}
	}
	return out
}

// Pending returns the sessions still awaiting a response
func (b *SessionBoard) Pending() []domain.MentorshipSession {
	status := domain.MentorshipPending
	return b.WithStatus(&status)
}

// Tabs returns the "all" tab followed by one tab per status, with counts
func (b *SessionBoard) Tabs() []Tab {
	all := b.All()
	tabs := []Tab{{Label: "All", Count: len(all)}}
	for _, status := range domain.AllMentorshipStatuses() {
		count := 0
		for _, s := range all {
			if s.Status == status {
				count++
			}
		}
		tabs = append(tabs, Tab{Label: statusLabel(status), Status: &status, Count: count})
	}
	return tabs
}

func statusLabel(s domain.MentorshipStatus) string {
	lower := strings.ToLower(string(s))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// IsResponding reports whether a response to the session is in flight
func (b *SessionBoard) IsResponding(sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.responding[sessionID]
}

// Respond accepts or declines a pending request. On success the session
// is updated locally and the list is fetched again.
func (b *SessionBoard) Respond(ctx context.Context, sessionID string, action domain.ResponseAction) Notice {
	sessionID = strings.TrimSpace(sessionID)

	identity, err := b.app.require(authz.ServiceMentorDashboard, authz.PathRequests)
	if err != nil {
		return Failure(err)
	}
	if sessionID == "" {
		return Failure(fmerrors.NewFieldRequiredError("session id"))
	}
	if action != domain.ActionAccept && action != domain.ActionDecline {
		return Failure(fmerrors.NewInvalidValueError("action", fmt.Errorf("unknown action %q", action)))
	}

	b.mu.Lock()
	if b.responding[sessionID] {
		b.mu.Unlock()
		return Info("A response to this request is already in progress")
	}
	b.responding[sessionID] = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.responding, sessionID)
		b.mu.Unlock()
	}()

	result, err := b.app.api().RespondToMentorshipSession(ctx, action, sessionID)
	if err == nil {
		err = result.Err()
	}

	verb := "accepted"
	if action == domain.ActionDecline {
		verb = "declined"
	}

	notice := Failure(err)
	if err == nil {
		b.mu.Lock()
		for i := range b.sessions {
			if b.sessions[i].ID == sessionID {
				b.sessions[i].Status = action.ResultingStatus()
			}
		}
		b.mu.Unlock()

		message := result.Message
		if message == "" {
			message = fmt.Sprintf("Mentorship request %s", verb)
		}
		notice = Success(message)

		if reload := b.Load(ctx); reload.IsError() {
			b.app.logger.WithError(reload.Err).Warn("failed to refresh sessions after response")
		}
	}

	b.app.record(b.app.audit.LogMentorship(security.AuditMentorshipResponded,
		identity.Email, sessionID, strings.ToLower(string(action)), err == nil, notice.Message))
	return notice
}
