package app

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
	"github.com/felixgeelhaar/freementors/internal/security"
)

// MentorBoard is the mentor browsing screen: the mentor list, filters,
// and session requests with their "requesting" indicator.
type MentorBoard struct {
	app *App

	mu         sync.Mutex
	mentors    []domain.Identity
	requesting map[string]bool
	requested  map[string]bool
}

// Mentors creates a mentor board
func (a *App) Mentors() *MentorBoard {
	return &MentorBoard{
		app:        a,
		requesting: make(map[string]bool),
		requested:  make(map[string]bool),
	}
}

// Load fetches the mentor list
func (b *MentorBoard) Load(ctx context.Context) Notice {
	if _, err := b.app.require(authz.ServiceMentorsList, authz.PathMentors); err != nil {
		return Failure(err)
	}

	role := domain.RoleMentor
	mentors, err := b.app.api().AllUsers(ctx, &role)
	if err != nil {
		return Failure(err)
	}

	b.mu.Lock()
	b.mentors = mentors
	b.mu.Unlock()
	return Notice{}
}

// All returns the loaded mentors
func (b *MentorBoard) All() []domain.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Identity(nil), b.mentors...)
}

// Filter applies a free-text search and an expertise filter
func (b *MentorBoard) Filter(search, expertise string) []domain.Identity {
	return FilterMentors(b.All(), search, expertise)
}

// ExpertiseOptions lists the distinct expertise areas of the loaded mentors
func (b *MentorBoard) ExpertiseOptions() []string {
	return ExpertiseOptions(b.All())
}

// IsRequesting reports whether a request to the mentor is in progress
// or still inside its indicator delay.
func (b *MentorBoard) IsRequesting(email string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requesting[email]
}

// IsRequested reports whether a session with the mentor was requested
// successfully from this board.
func (b *MentorBoard) IsRequested(email string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requested[email]
}

// Request asks the mentor for a session.
//
// The mentor is marked as requested only when the server reports
// success; otherwise the server's message is returned unchanged. The
// requesting indicator stays on for RequestIndicatorDelay after the
// call returns, whatever the outcome.
func (b *MentorBoard) Request(ctx context.Context, mentorEmail string) Notice {
	mentorEmail = strings.TrimSpace(mentorEmail)

	identity, err := b.app.require(authz.ServiceSessionRequest, authz.PathMentors)
	if err != nil {
		return Failure(err)
	}
	if mentorEmail == "" {
		return Failure(fmerrors.NewFieldRequiredError("mentor email"))
	}

	b.mu.Lock()
	if b.requesting[mentorEmail] {
		b.mu.Unlock()
		return Info("A request to this mentor is already in progress")
	}
	b.requesting[mentorEmail] = true
	b.mu.Unlock()

	defer func() {
		select {
		case <-b.app.clock.After(RequestIndicatorDelay):
		case <-ctx.Done():
		}
		b.mu.Lock()
		delete(b.requesting, mentorEmail)
		b.mu.Unlock()
	}()

	result, err := b.app.api().RequestMentorshipSession(ctx, mentorEmail)
	if err == nil {
		err = result.Err()
	}

	notice := Failure(err)
	if err == nil {
		b.mu.Lock()
		b.requested[mentorEmail] = true
		b.mu.Unlock()

		message := result.Message
		if message == "" {
			message = "Mentorship session requested"
		}
		notice = Success(message)
	}

	b.app.record(b.app.audit.LogMentorship(security.AuditMentorshipRequested,
		identity.Email, mentorEmail, "request", err == nil, notice.Message))
	return notice
}

// FilterMentors keeps mentors matching search (name, email, expertise,
// occupation, bio) and whose expertise contains the expertise filter.
// Empty filters match everything.
func FilterMentors(mentors []domain.Identity, search, expertise string) []domain.Identity {
	search = strings.ToLower(strings.TrimSpace(search))
	expertise = strings.ToLower(strings.TrimSpace(expertise))

	out := make([]domain.Identity, 0, len(mentors))
	for _, m := range mentors {
		if search != "" && !m.Matches(search) && !strings.Contains(strings.ToLower(m.Bio), search) {
			continue
		}
		if expertise != "" && !strings.Contains(strings.ToLower(m.Expertise), expertise) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ExpertiseOptions splits comma-separated expertise fields into a sorted
// set of areas.
func ExpertiseOptions(mentors []domain.Identity) []string {
	seen := make(map[string]bool)
	var options []string
	for _, m := range mentors {
		for _, area := range strings.Split(m.Expertise, ",") {
			area = strings.TrimSpace(area)
			if area == "" || seen[strings.ToLower(area)] {
				continue
			}
			seen[strings.ToLower(area)] = true
			options = append(options, area)
		}
	}
	sort.Strings(options)
	return options
}
