package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	sdkerrors "github.com/teamoptimus/voicebot/client/internal/errors"
	"github.com/teamoptimus/voicebot/client/internal/types"
)

// ListSessions returns the session ids recorded for an assistant.
func ListSessions(ctx context.Context, httpClient *http.Client, baseURL, assistantID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(assistantID, "assistant_id"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/sessions/%s", baseURL, assistantID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, sdkerrors.NewNetworkError("list sessions", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp, "list sessions")
	}

	var wrapper types.ListSessionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("list sessions: decode response: %w", err)
	}
	return wrapper.Sessions, nil
}

// CreateSession registers a new chat session for an assistant.
func CreateSession(ctx context.Context, httpClient *http.Client, baseURL string, req types.CreateSessionRequest) (*types.CreateSessionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(req.AssistantID, "assistant_id"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(req.SessionID, "session_id"); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/sessions/create", baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, sdkerrors.NewNetworkError("create session", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp, "create session")
	}

	var created types.CreateSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("create session: decode response: %w", err)
	}
	return &created, nil
}
