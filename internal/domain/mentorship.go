package domain

import (
	"fmt"
	"strings"
)

// MentorshipStatus is the lifecycle state of a mentorship request.
type MentorshipStatus string

const (
	MentorshipPending   MentorshipStatus = "PENDING"
	MentorshipAccepted  MentorshipStatus = "ACCEPTED"
	MentorshipRejected  MentorshipStatus = "REJECTED"
	MentorshipCompleted MentorshipStatus = "COMPLETED"
)

// AllMentorshipStatuses lists statuses in tab order
func AllMentorshipStatuses() []MentorshipStatus {
	return []MentorshipStatus{MentorshipPending, MentorshipAccepted, MentorshipRejected, MentorshipCompleted}
}

// ParseMentorshipStatus parses a status case-insensitively.
// DECLINED is accepted as the server's spelling of REJECTED.
func ParseMentorshipStatus(value string) (MentorshipStatus, error) {
	s := MentorshipStatus(strings.ToUpper(strings.TrimSpace(value)))
	switch s {
	case MentorshipPending, MentorshipAccepted, MentorshipRejected, MentorshipCompleted:
		return s, nil
	case "DECLINED":
		return MentorshipRejected, nil
	default:
		return "", fmt.Errorf("invalid mentorship status %q: must be PENDING, ACCEPTED, REJECTED, or COMPLETED", value)
	}
}

// ResponseAction is a mentor's answer to a pending request.
type ResponseAction string

const (
	ActionAccept  ResponseAction = "ACCEPT"
	ActionDecline ResponseAction = "DECLINE"
)

// ParseResponseAction accepts accept/decline (and reject as an alias of decline).
func ParseResponseAction(value string) (ResponseAction, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(ActionAccept):
		return ActionAccept, nil
	case string(ActionDecline), "REJECT":
		return ActionDecline, nil
	default:
		return "", fmt.Errorf("invalid action %q: must be accept or decline", value)
	}
}

// ResultingStatus is the status a request moves to once the action succeeds.
func (a ResponseAction) ResultingStatus() MentorshipStatus {
	if a == ActionAccept {
		return MentorshipAccepted
	}
	return MentorshipRejected
}

// SessionRole selects which side of mentorship sessions to list.
type SessionRole string

const (
	SessionRoleMentor SessionRole = "MENTOR"
	SessionRoleMentee SessionRole = "MENTEE"
)

// SessionRoleFor picks the listing side for an account role:
// mentors see requests addressed to them, everyone else their own requests.
func SessionRoleFor(r Role) SessionRole {
	if r == RoleMentor {
		return SessionRoleMentor
	}
	return SessionRoleMentee
}

// Participant is the reduced profile embedded in a mentorship session.
type Participant struct {
	FirstName  string `json:"firstName" yaml:"first_name"`
	LastName   string `json:"lastName" yaml:"last_name"`
	Email      string `json:"email" yaml:"email"`
	Expertise  string `json:"expertise,omitempty" yaml:"expertise,omitempty"`
	Occupation string `json:"occupation,omitempty" yaml:"occupation,omitempty"`
}

// Name returns the participant's display name
func (p Participant) Name() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

// MentorshipSession is a request between a mentee and a mentor.
type MentorshipSession struct {
	ID        string           `json:"id" yaml:"id"`
	Status    MentorshipStatus `json:"status" yaml:"status"`
	CreatedAt string           `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	Questions string           `json:"questions,omitempty" yaml:"questions,omitempty"`
	Mentor    *Participant     `json:"mentor,omitempty" yaml:"mentor,omitempty"`
	Mentee    *Participant     `json:"mentee,omitempty" yaml:"mentee,omitempty"`
}

// IsPending reports whether the session still awaits a response
func (s MentorshipSession) IsPending() bool {
	return s.Status == MentorshipPending
}
