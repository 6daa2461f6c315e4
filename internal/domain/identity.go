package domain

import (
	"fmt"
	"strings"
)

// Identity is the profile of an authenticated account.
type Identity struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	FirstName  string `json:"firstName" yaml:"first_name"`
	LastName   string `json:"lastName" yaml:"last_name"`
	Email      string `json:"email" yaml:"email"`
	Role       Role   `json:"role" yaml:"role"`
	Bio        string `json:"bio,omitempty" yaml:"bio,omitempty"`
	Address    string `json:"address,omitempty" yaml:"address,omitempty"`
	Occupation string `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	Expertise  string `json:"expertise,omitempty" yaml:"expertise,omitempty"`
}

// Validate checks the fields an identity cannot exist without
func (i Identity) Validate() error {
	if strings.TrimSpace(i.Email) == "" {
		return fmt.Errorf("identity email cannot be empty")
	}
	return i.Role.Validate()
}

// FullName joins first and last name, falling back to the email.
func (i Identity) FullName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Email
	}
	return name
}

// String implements fmt.Stringer for text output
func (i Identity) String() string {
	return fmt.Sprintf("%s <%s> (%s)", i.FullName(), i.Email, i.Role.Label())
}

// Matches reports whether the identity matches a free-text search over
// name, email, expertise and occupation.
func (i Identity) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range []string{i.FirstName, i.LastName, i.FullName(), i.Email, i.Expertise, i.Occupation} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
