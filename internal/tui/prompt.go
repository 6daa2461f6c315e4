package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/freementors/internal/app"
	"github.com/felixgeelhaar/freementors/internal/domain"
)

// accessible switches huh to line-based prompts, which screen readers
// and dumb terminals handle
func accessible() bool {
	return os.Getenv("ACCESSIBLE") != "" || os.Getenv("TERM") == "dumb"
}

func run(form *huh.Form) error {
	if err := form.WithAccessible(accessible()).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// PromptCredentials asks for the fields of creds that are still empty
func PromptCredentials(creds *app.Credentials) error {
	if creds.Email != "" && creds.Password != "" {
		return nil
	}
	return run(loginForm(creds))
}

// PromptRegistration asks for the sign-up details
func PromptRegistration(reg *app.Registration) error {
	return run(registrationForm(reg))
}

// PromptForRole asks for one of the platform roles
func PromptForRole(message string, current domain.Role) (domain.Role, error) {
	role := current
	if err := run(roleForm(message, &role)); err != nil {
		return "", err
	}
	return role, nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	if err := run(huh.NewForm(huh.NewGroup(confirm))); err != nil {
		return false, err
	}
	return confirmed, nil
}

// PromptForSelect displays a selection prompt with multiple options
func PromptForSelect(message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}

	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt, opt)
	}

	var selected string
	selectField := huh.NewSelect[string]().
		Title(message).
		Options(huhOptions...).
		Value(&selected)

	if err := run(huh.NewForm(huh.NewGroup(selectField))); err != nil {
		return "", err
	}
	return selected, nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment.
// Prompts are disabled in CI environments or when stdin is not a terminal.
func ShouldPrompt() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}
