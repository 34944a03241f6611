// Package client is the Go SDK for the VoiceBot assistant backend. It covers
// the full consumed surface: assistant CRUD, chat sessions, history, text and
// voice turns, and per-session sentiment aggregates.
package client

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/teamoptimus/voicebot/client/internal/api"
	"github.com/teamoptimus/voicebot/client/internal/job"
	"github.com/teamoptimus/voicebot/client/internal/shardqueue"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

type Client struct {
	baseURL string
	http    *http.Client
	exec    executor

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client with optional functional arguments.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}
	if c.exec == nil {
		c.exec = newDefaultExecutor()
	}

	return c
}

// Close stops the background executor (if any). Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	return nil
}

// AwaitTurns blocks until every previously submitted turn for the given chat
// session has been executed. It works by submitting a no-op job and waiting
// for it to run, thereby guaranteeing the session's FIFO queue has flushed.
// Callers use it to sequence a history re-fetch strictly after an upload.
func (c *Client) AwaitTurns(ctx context.Context, assistantID, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan struct{})
	j := job.New(func(context.Context) error {
		close(done)
		return nil
	})
	if err := c.exec.Submit(ctx, job.SessionKey(assistantID, sessionID), j); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// newDefaultExecutor constructs the shardqueue executor with sane defaults.
func newDefaultExecutor() *shardqueue.ShardExecutor {
	cfg := shardqueue.Config{Shards: 4, QueueSize: 1000}
	return shardqueue.NewShardExecutor(cfg)
}

// --------------------------------------------------------------------
// Assistant operations - delegated to internal/api
// --------------------------------------------------------------------

// ListAssistants retrieves every assistant owned by the user.
func (c *Client) ListAssistants(ctx context.Context, userID string) ([]Assistant, error) {
	return api.ListAssistants(ctx, c.http, c.baseURL, userID)
}

// GetAssistant retrieves a single assistant.
func (c *Client) GetAssistant(ctx context.Context, assistantID string) (*Assistant, error) {
	return api.GetAssistant(ctx, c.http, c.baseURL, assistantID)
}

// CreateAssistant posts the multipart creation form and returns the created
// record. Callers that maintain a local list should re-fetch it afterwards;
// the SDK never patches local state optimistically.
func (c *Client) CreateAssistant(ctx context.Context, req CreateAssistantRequest) (*Assistant, error) {
	return api.CreateAssistant(ctx, c.http, c.baseURL, req)
}

// --------------------------------------------------------------------
// Session and history operations
// --------------------------------------------------------------------

// ListSessions returns the session ids recorded for an assistant.
func (c *Client) ListSessions(ctx context.Context, assistantID string) ([]string, error) {
	return api.ListSessions(ctx, c.http, c.baseURL, assistantID)
}

// CreateSession registers a new chat session.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResponse, error) {
	return api.CreateSession(ctx, c.http, c.baseURL, req)
}

// GetHistory returns the stored turns for one chat session, oldest first.
func (c *Client) GetHistory(ctx context.Context, assistantID, sessionID string) ([]ChatHistoryEntry, error) {
	return api.GetHistory(ctx, c.http, c.baseURL, assistantID, sessionID)
}

// --------------------------------------------------------------------
// Turn operations (mixed sync/async)
// --------------------------------------------------------------------

// Chat sends one text turn synchronously and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatTurn, error) {
	return api.Chat(ctx, c.http, c.baseURL, req)
}

// SubmitChat enqueues a text turn through the sharded executor so turns for
// the same session stay FIFO and recoverable failures are retried. The reply
// reaches onTurn when the request eventually completes; use AwaitTurns to
// sequence anything that must happen after it.
func (c *Client) SubmitChat(ctx context.Context, req ChatRequest, onTurn func(*ChatTurn)) (*EnqueueAck, error) {
	return api.SubmitChat(ctx, c.exec, c.http, c.baseURL, req, onTurn)
}

// VoiceChat uploads one recorded audio turn synchronously and returns the
// transcription plus the assistant's reply.
func (c *Client) VoiceChat(ctx context.Context, assistantID, sessionID string, req VoiceChatRequest) (*VoiceTurn, error) {
	return api.VoiceChat(ctx, c.http, c.baseURL, assistantID, sessionID, req)
}

// --------------------------------------------------------------------
// Sentiment operations
// --------------------------------------------------------------------

// GetSentiment fetches the sentiment aggregate for one session.
func (c *Client) GetSentiment(ctx context.Context, assistantID, sessionID string) (*SessionSentiment, error) {
	return api.GetSentiment(ctx, c.http, c.baseURL, assistantID, sessionID)
}
