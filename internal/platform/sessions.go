package platform

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
)

const requestMentorshipSessionMutation = `
mutation RequestMentorshipSession($mentorEmail: String!) {
  requestMentorshipSession(mentorEmail: $mentorEmail) {
    success
    message
  }
}`

const respondToMentorshipSessionMutation = `
mutation RespondToMentorshipSession($action: String!, $sessionId: ID!) {
  respondToMentorshipSession(action: $action, sessionId: $sessionId) {
    success
    message
  }
}`

const mySessionsQuery = `
query MySessions($role: String) {
  mySessions(role: $role) {
    id
    status
    createdAt
    questions
    mentor {
      firstName
      lastName
      email
      expertise
      occupation
    }
    mentee {
      firstName
      lastName
      email
      expertise
      occupation
    }
  }
}`

// sessionRecord is a mentorship session as the API returns it
type sessionRecord struct {
	ID        string              `json:"id"`
	Status    string              `json:"status"`
	CreatedAt string              `json:"createdAt"`
	Questions string              `json:"questions"`
	Mentor    *domain.Participant `json:"mentor"`
	Mentee    *domain.Participant `json:"mentee"`
}

func (r sessionRecord) toSession() (domain.MentorshipSession, error) {
	status, err := domain.ParseMentorshipStatus(r.Status)
	if err != nil {
		return domain.MentorshipSession{}, fmerrors.NewMalformedResponseError(
			fmt.Sprintf("session %s has an unknown status", r.ID), err)
	}
	return domain.MentorshipSession{
		ID:        r.ID,
		Status:    status,
		CreatedAt: r.CreatedAt,
		Questions: r.Questions,
		Mentor:    r.Mentor,
		Mentee:    r.Mentee,
	}, nil
}

// RequestMentorshipSession asks the mentor with the given email for a session
func (c *Client) RequestMentorshipSession(ctx context.Context, mentorEmail string) (*Result, error) {
	if mentorEmail == "" {
		return nil, fmerrors.NewFieldRequiredError("mentor email")
	}

	var data struct {
		RequestMentorshipSession *Result `json:"requestMentorshipSession"`
	}
	vars := map[string]any{"mentorEmail": mentorEmail}
	if err := c.do(ctx, "RequestMentorshipSession", requestMentorshipSessionMutation, vars, &data); err != nil {
		return nil, err
	}
	if data.RequestMentorshipSession == nil {
		return nil, missingField("requestMentorshipSession")
	}
	return data.RequestMentorshipSession, nil
}

// RespondToMentorshipSession accepts or declines a pending request
func (c *Client) RespondToMentorshipSession(ctx context.Context, action domain.ResponseAction, sessionID string) (*Result, error) {
	if sessionID == "" {
		return nil, fmerrors.NewFieldRequiredError("session id")
	}

	var data struct {
		RespondToMentorshipSession *Result `json:"respondToMentorshipSession"`
	}
	vars := map[string]any{"action": string(action), "sessionId": sessionID}
	if err := c.do(ctx, "RespondToMentorshipSession", respondToMentorshipSessionMutation, vars, &data); err != nil {
		return nil, err
	}
	if data.RespondToMentorshipSession == nil {
		return nil, missingField("respondToMentorshipSession")
	}
	return data.RespondToMentorshipSession, nil
}

// MySessions lists the caller's mentorship sessions from one side.
// A nil role lets the server pick.
func (c *Client) MySessions(ctx context.Context, role *domain.SessionRole) ([]domain.MentorshipSession, error) {
	vars := map[string]any{}
	if role != nil {
		vars["role"] = string(*role)
	}

	var data struct {
		MySessions []sessionRecord `json:"mySessions"`
	}
	if err := c.do(ctx, "MySessions", mySessionsQuery, vars, &data); err != nil {
		return nil, err
	}

	sessions := make([]domain.MentorshipSession, 0, len(data.MySessions))
	for _, record := range data.MySessions {
		session, err := record.toSession()
		if err != nil {
			c.logger().WithError(err).Warn("skipping session record", "id", record.ID)
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}
