// Package console holds the controllers behind the product's three views:
// the assistant dashboard, the voice test console, and the session-sentiment
// analysis table. Controllers are plain state holders; every fetch takes the
// caller's context, so cancelling it abandons the controller's in-flight
// work instead of leaving requests running past the view's lifetime.
package console

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/teamoptimus/voicebot/client"
	"github.com/teamoptimus/voicebot/session"
)

// ErrNoAssistant is returned by operations that need a selected assistant.
var ErrNoAssistant = errors.New("no assistant selected")

// ErrNotSignedIn is returned when a controller needs a resolved user.
var ErrNotSignedIn = errors.New("not signed in")

// FilterAssistants returns the subset whose name contains query
// case-insensitively. The empty query returns the input unchanged. O(n) per
// call with no memoization; assistant lists are expected to stay small.
func FilterAssistants(assistants []client.Assistant, query string) []client.Assistant {
	if query == "" {
		return assistants
	}
	needle := strings.ToLower(query)
	filtered := make([]client.Assistant, 0, len(assistants))
	for _, a := range assistants {
		if strings.Contains(strings.ToLower(a.Name), needle) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// AssistantForm carries the create form's fields. Defaults mirror the
// dashboard's initial selections.
type AssistantForm struct {
	Name          string
	FirstMessage  string
	SystemPrompt  string
	Provider      string
	Model         string
	VoiceProvider string
	VoiceModel    string
	Files         []client.AssistantFile
}

// DefaultAssistantForm returns a form pre-filled with the product defaults.
func DefaultAssistantForm() AssistantForm {
	return AssistantForm{
		Provider:      "groq",
		Model:         "meta-llama/llama-4-scout-17b-16e-instruct",
		VoiceProvider: "deepgram",
		VoiceModel:    "asteria",
	}
}

// AssistantPanel is the dashboard controller: it owns the assistant list,
// the text filter, the current selection, and the create flow.
type AssistantPanel struct {
	api *client.Client
	mgr *session.Manager

	mu         sync.Mutex
	assistants []client.Assistant
	selected   string
}

// NewAssistantPanel wires the controller to the SDK and the session manager.
func NewAssistantPanel(api *client.Client, mgr *session.Manager) *AssistantPanel {
	return &AssistantPanel{api: api, mgr: mgr}
}

// Load fetches the signed-in user's assistants from the backend API. The
// backend is the single listing path for every controller.
func (p *AssistantPanel) Load(ctx context.Context) error {
	snap := p.mgr.Current()
	if !snap.Authenticated() {
		return ErrNotSignedIn
	}

	assistants, err := p.api.ListAssistants(ctx, snap.User.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", snap.User.UserID).Msg("assistant list fetch failed")
		return err
	}

	p.mu.Lock()
	p.assistants = assistants
	p.mu.Unlock()
	return nil
}

// Assistants returns a copy of the current list.
func (p *AssistantPanel) Assistants() []client.Assistant {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]client.Assistant, len(p.assistants))
	copy(out, p.assistants)
	return out
}

// Filter applies the sidebar search to the in-memory list.
func (p *AssistantPanel) Filter(query string) []client.Assistant {
	return FilterAssistants(p.Assistants(), query)
}

// Select marks an assistant as the current one and returns its record.
func (p *AssistantPanel) Select(assistantID string) (*client.Assistant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.assistants {
		if p.assistants[i].AssistantID == assistantID {
			p.selected = assistantID
			a := p.assistants[i]
			return &a, nil
		}
	}
	return nil, ErrNoAssistant
}

// Selected returns the currently selected assistant, or nil.
func (p *AssistantPanel) Selected() *client.Assistant {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.assistants {
		if p.assistants[i].AssistantID == p.selected {
			a := p.assistants[i]
			return &a
		}
	}
	return nil
}

// Create validates the form, posts it, and re-fetches the full list before
// returning, so the list already reflects the new assistant when the create
// form closes. No optimistic local patch: the server list is authoritative.
func (p *AssistantPanel) Create(ctx context.Context, form AssistantForm) (*client.Assistant, error) {
	snap := p.mgr.Current()
	if !snap.Authenticated() {
		return nil, ErrNotSignedIn
	}

	created, err := p.api.CreateAssistant(ctx, client.CreateAssistantRequest{
		UserID:        snap.User.UserID,
		Name:          form.Name,
		FirstMessage:  form.FirstMessage,
		SystemPrompt:  form.SystemPrompt,
		Provider:      form.Provider,
		Model:         form.Model,
		VoiceProvider: form.VoiceProvider,
		VoiceModel:    form.VoiceModel,
		Files:         form.Files,
	})
	if err != nil {
		return nil, err
	}

	if err := p.Load(ctx); err != nil {
		// The assistant exists server-side; surface the stale-list condition
		// rather than pretending the refresh worked.
		return created, err
	}
	return created, nil
}
