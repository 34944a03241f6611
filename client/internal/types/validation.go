package types

import (
	"context"
	"fmt"
	"net/http"

	"github.com/teamoptimus/voicebot/client/internal/shardqueue"
)

// ------------------------------
// Shared Interfaces
// ------------------------------

// Executor interface for dependency injection (used by async operations).
type Executor interface {
	Submit(context.Context, string, shardqueue.Job) error
}

// HTTPClient interface for dependency injection.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ------------------------------
// Validation helpers
// ------------------------------

// ValidateIDPresent rejects empty path identifiers before a request is built.
func ValidateIDPresent(id, field string) error {
	if id == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ValidateLanguage checks the declared language code shape: a two or three
// letter lowercase primary subtag, which is all the backend accepts.
func ValidateLanguage(code string) error {
	if len(code) < 2 || len(code) > 3 {
		return fmt.Errorf("language code %q must be 2-3 letters", code)
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return fmt.Errorf("language code %q must be lowercase letters", code)
		}
	}
	return nil
}

// ValidateCreateAssistant enforces the required form fields up front so a
// half-filled form never reaches the wire.
func ValidateCreateAssistant(req CreateAssistantRequest) error {
	if err := ValidateIDPresent(req.UserID, "user_id"); err != nil {
		return err
	}
	if req.Name == "" {
		return fmt.Errorf("assistant name is required")
	}
	if req.FirstMessage == "" {
		return fmt.Errorf("first_message is required")
	}
	if req.SystemPrompt == "" {
		return fmt.Errorf("system_prompt is required")
	}
	return nil
}
