package types

// ListAssistantsResponse wraps GET /assistants/{user_id}.
type ListAssistantsResponse struct {
	Assistants []Assistant `json:"assistants"`
}

// ListSessionsResponse wraps GET /sessions/{assistant_id}.
type ListSessionsResponse struct {
	Sessions []string `json:"sessions"`
}

// CreateSessionResponse wraps POST /sessions/create.
type CreateSessionResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// HistoryResponse wraps GET /history/{assistant_id}/{session_id}.
type HistoryResponse struct {
	History []ChatHistoryEntry `json:"history"`
}

// EnqueueAck is returned by async write paths that only enqueue the job.
type EnqueueAck struct {
	SessionKey string `json:"sessionKey"`
	Status     string `json:"status"`
}
