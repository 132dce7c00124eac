// Package assist translates natural language into shell commands and
// explains shell failures using a generative model. It consumes the shell
// facade only; it knows nothing about process management.
package assist

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no API key is available for the
// assistant backend.
var ErrNotConfigured = errors.New("assistant not configured: set GOOGLE_API_KEY")

// CommandResponse is the structured answer to a natural-language query.
type CommandResponse struct {
	// Command is the generated shell command.
	Command string `json:"command"`
	// Explanation is a brief description of what the command does.
	Explanation string `json:"explanation"`
	// DetailedExplanation covers options, examples and common use cases.
	DetailedExplanation string `json:"detailed_explanation"`
}

// Client answers natural-language queries about shell commands.
type Client interface {
	// GenerateCommand converts a natural-language query into a shell
	// command with two levels of explanation.
	GenerateCommand(ctx context.Context, query string) (*CommandResponse, error)

	// ExplainError explains a captured shell error message: one problem
	// line followed by bulleted fix steps.
	ExplainError(ctx context.Context, errorMessage string) (string, error)
}
