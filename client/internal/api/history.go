package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	sdkerrors "github.com/teamoptimus/voicebot/client/internal/errors"
	"github.com/teamoptimus/voicebot/client/internal/types"
)

// GetHistory returns the stored turns for one chat session, oldest first.
func GetHistory(ctx context.Context, httpClient *http.Client, baseURL, assistantID, sessionID string) ([]types.ChatHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(assistantID, "assistant_id"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(sessionID, "session_id"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/history/%s/%s", baseURL, assistantID, sessionID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, sdkerrors.NewNetworkError("get history", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp, "get history")
	}

	var wrapper types.HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("get history: decode response: %w", err)
	}
	if wrapper.History == nil {
		return []types.ChatHistoryEntry{}, nil
	}
	return wrapper.History, nil
}
