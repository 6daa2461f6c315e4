package security

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEventType represents the type of audit event
type AuditEventType string

const (
	// Session events
	AuditLogin          AuditEventType = "session.login"
	AuditLogout         AuditEventType = "session.logout"
	AuditSessionExpired AuditEventType = "session.expired"

	// Access events
	AuditAccessDenied AuditEventType = "access.denied"

	// Account events
	AuditRoleChanged AuditEventType = "account.role_changed"

	// Mentorship events
	AuditMentorshipRequested AuditEventType = "mentorship.requested"
	AuditMentorshipResponded AuditEventType = "mentorship.responded"
)

// AuditSeverity represents the severity level of an audit event
type AuditSeverity string

const (
	SeverityInfo    AuditSeverity = "info"
	SeverityWarning AuditSeverity = "warning"
	SeverityError   AuditSeverity = "error"
)

// AuditEvent is one line of the local activity log
type AuditEvent struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Type      AuditEventType    `json:"type"`
	Severity  AuditSeverity     `json:"severity"`
	Actor     string            `json:"actor"`
	Resource  string            `json:"resource,omitempty"`
	Action    string            `json:"action"`
	Result    string            `json:"result"`
	Details   map[string]string `json:"details,omitempty"`
}

// AuditLogger appends account activity to a JSON-lines file.
// A nil *AuditLogger is valid and discards every event.
type AuditLogger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewAuditLogger creates an audit logger writing to path
func NewAuditLogger(path string) (*AuditLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	return &AuditLogger{path: path, now: time.Now}, nil
}

// Path returns the audit log file
func (l *AuditLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Log appends an event, filling in ID and timestamp when unset
func (l *AuditLogger) Log(event *AuditEvent) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = l.now().UTC()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// LogLogin records a sign-in attempt
func (l *AuditLogger) LogLogin(email string, success bool, reason string) error {
	event := &AuditEvent{
		Type:     AuditLogin,
		Actor:    email,
		Action:   "login",
		Result:   result(success),
		Severity: SeverityInfo,
	}
	if !success {
		event.Severity = SeverityWarning
		event.Details = map[string]string{"reason": reason}
	}
	return l.Log(event)
}

// LogLogout records an explicit sign-out
func (l *AuditLogger) LogLogout(email string) error {
	return l.Log(&AuditEvent{
		Type:   AuditLogout,
		Actor:  email,
		Action: "logout",
		Result: result(true),
	})
}

// LogSessionExpired records a stored session the server no longer accepts
func (l *AuditLogger) LogSessionExpired(email string) error {
	return l.Log(&AuditEvent{
		Type:     AuditSessionExpired,
		Actor:    email,
		Action:   "verify",
		Result:   result(false),
		Severity: SeverityWarning,
	})
}

// LogAccessDenied records a guard refusal
func (l *AuditLogger) LogAccessDenied(actor, destination, decision string) error {
	return l.Log(&AuditEvent{
		Type:     AuditAccessDenied,
		Actor:    actor,
		Resource: destination,
		Action:   "navigate",
		Result:   decision,
		Severity: SeverityWarning,
	})
}

// LogRoleChanged records an administrator changing an account role
func (l *AuditLogger) LogRoleChanged(actor, target, role string, success bool, message string) error {
	return l.Log(&AuditEvent{
		Type:     AuditRoleChanged,
		Actor:    actor,
		Resource: target,
		Action:   "change_role",
		Result:   result(success),
		Details:  map[string]string{"role": role, "message": message},
	})
}

// LogMentorship records a session request or response
func (l *AuditLogger) LogMentorship(eventType AuditEventType, actor, resource, action string, success bool, message string) error {
	return l.Log(&AuditEvent{
		Type:     eventType,
		Actor:    actor,
		Resource: resource,
		Action:   action,
		Result:   result(success),
		Details:  map[string]string{"message": message},
	})
}

// Query reads the log and returns matching events, oldest first
func (l *AuditLogger) Query(filter AuditFilter) ([]*AuditEvent, error) {
	if l == nil {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return []*AuditEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	events := []*AuditEvent{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var event AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		if filter.Matches(&event) {
			events = append(events, &event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	// Limit keeps the most recent events
	if filter.Limit > 0 && len(events) > filter.Limit {
		events = events[len(events)-filter.Limit:]
	}

	return events, nil
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	Since     time.Time
	EventType AuditEventType
	Actor     string
	Limit     int
}

// Matches checks if an event matches the filter
func (f *AuditFilter) Matches(event *AuditEvent) bool {
	if !f.Since.IsZero() && event.Timestamp.Before(f.Since) {
		return false
	}
	if f.EventType != "" && event.Type != f.EventType {
		return false
	}
	if f.Actor != "" && event.Actor != f.Actor {
		return false
	}
	return true
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
