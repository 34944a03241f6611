package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	sdkerrors "github.com/teamoptimus/voicebot/client/internal/errors"
	"github.com/teamoptimus/voicebot/client/internal/job"
	"github.com/teamoptimus/voicebot/client/internal/types"
)

// Chat sends one text turn and waits for the assistant's reply.
func Chat(ctx context.Context, httpClient *http.Client, baseURL string, req types.ChatRequest) (*types.ChatTurn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(req.AssistantID, "assistant_id"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(req.SessionID, "session_id"); err != nil {
		return nil, err
	}
	if req.UserQuery == "" {
		return nil, fmt.Errorf("user_query is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/chat/%s/%s", baseURL, req.AssistantID, req.SessionID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, sdkerrors.NewNetworkError("chat", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp, "chat")
	}

	var turn types.ChatTurn
	if err := json.NewDecoder(resp.Body).Decode(&turn); err != nil {
		return nil, fmt.Errorf("chat: decode response: %w", err)
	}
	return &turn, nil
}

// SubmitChat enqueues a text turn through the sharded executor. Turns for the
// same session run FIFO and are retried with backoff on recoverable failures;
// the reply is delivered to onTurn when the request eventually completes.
func SubmitChat(ctx context.Context, exec types.Executor, httpClient *http.Client, baseURL string, req types.ChatRequest, onTurn func(*types.ChatTurn)) (*types.EnqueueAck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(req.AssistantID, "assistant_id"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(req.SessionID, "session_id"); err != nil {
		return nil, err
	}
	if req.UserQuery == "" {
		return nil, fmt.Errorf("user_query is required")
	}

	key := job.SessionKey(req.AssistantID, req.SessionID)
	chatJob := job.New(func(jobCtx context.Context) error {
		turn, err := Chat(jobCtx, httpClient, baseURL, req)
		if err != nil {
			return err
		}
		if onTurn != nil {
			onTurn(turn)
		}
		return nil
	})

	if err := exec.Submit(ctx, key, chatJob); err != nil {
		return nil, err
	}
	return &types.EnqueueAck{SessionKey: key, Status: "enqueued"}, nil
}
