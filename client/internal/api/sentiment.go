package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	sdkerrors "github.com/teamoptimus/voicebot/client/internal/errors"
	"github.com/teamoptimus/voicebot/client/internal/types"
)

// GetSentiment fetches the server-side sentiment aggregate for one session.
// Sessions with no history come back with a bare Sentiment string and a zero
// MessageCount; that is the backend's shape, not an error.
func GetSentiment(ctx context.Context, httpClient *http.Client, baseURL, assistantID, sessionID string) (*types.SessionSentiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(assistantID, "assistant_id"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(sessionID, "session_id"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/sentiment/%s/%s", baseURL, assistantID, sessionID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, sdkerrors.NewNetworkError("get sentiment", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp, "get sentiment")
	}

	var sentiment types.SessionSentiment
	if err := json.NewDecoder(resp.Body).Decode(&sentiment); err != nil {
		return nil, fmt.Errorf("get sentiment: decode response: %w", err)
	}
	return &sentiment, nil
}
