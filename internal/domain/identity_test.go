package domain

import (
	"testing"
)

func TestIdentityValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		wantErr bool
	}{
		{
			name: "valid member",
			id:   Identity{Email: "ada@example.com", Role: RoleMember},
		},
		{
			name:    "missing email",
			id:      Identity{Role: RoleMentor},
			wantErr: true,
		},
		{
			name:    "wire role is not canonical",
			id:      Identity{Email: "ada@example.com", Role: Role("ADMIN")},
			wantErr: true,
		},
		{
			name:    "missing role",
			id:      Identity{Email: "ada@example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIdentityFullName(t *testing.T) {
	id := Identity{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	if got := id.FullName(); got != "Ada Lovelace" {
		t.Errorf("FullName() = %q", got)
	}

	anonymous := Identity{Email: "anon@example.com"}
	if got := anonymous.FullName(); got != "anon@example.com" {
		t.Errorf("FullName() fallback = %q", got)
	}
}

func TestIdentityMatches(t *testing.T) {
	id := Identity{
		FirstName:  "Grace",
		LastName:   "Hopper",
		Email:      "grace@navy.mil",
		Expertise:  "Compilers",
		Occupation: "Rear Admiral",
	}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"grace", true},
		{"HOPPER", true},
		{"grace hopper", true},
		{"navy.mil", true},
		{"compil", true},
		{"admiral", true},
		{"kernel", false},
	}

	for _, tt := range tests {
		if got := id.Matches(tt.query); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestParseResponseAction(t *testing.T) {
	tests := []struct {
		value   string
		want    ResponseAction
		status  MentorshipStatus
		wantErr bool
	}{
		{value: "accept", want: ActionAccept, status: MentorshipAccepted},
		{value: "DECLINE", want: ActionDecline, status: MentorshipRejected},
		{value: "reject", want: ActionDecline, status: MentorshipRejected},
		{value: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseResponseAction(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseResponseAction(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if got != tt.want {
			t.Errorf("ParseResponseAction(%q) = %v, want %v", tt.value, got, tt.want)
		}
		if got.ResultingStatus() != tt.status {
			t.Errorf("ResultingStatus() = %v, want %v", got.ResultingStatus(), tt.status)
		}
	}
}

func TestSessionRoleFor(t *testing.T) {
	if SessionRoleFor(RoleMentor) != SessionRoleMentor {
		t.Error("mentors list the mentor side")
	}
	if SessionRoleFor(RoleMember) != SessionRoleMentee {
		t.Error("members list the mentee side")
	}
	if SessionRoleFor(RoleAdministrator) != SessionRoleMentee {
		t.Error("administrators list the mentee side")
	}
}

func TestParseMentorshipStatus(t *testing.T) {
	if s, err := ParseMentorshipStatus("pending"); err != nil || s != MentorshipPending {
		t.Errorf("ParseMentorshipStatus(pending) = %v, %v", s, err)
	}
	if _, err := ParseMentorshipStatus("done"); err == nil {
		t.Error("expected error for unknown status")
	}
}
