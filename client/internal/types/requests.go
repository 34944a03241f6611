package types

import "io"

// AssistantFile is one document attached to an assistant at creation time.
// The SDK streams Content into the multipart body; it never buffers files.
type AssistantFile struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// CreateAssistantRequest is the multipart payload for POST /assistants/create.
type CreateAssistantRequest struct {
	UserID        string
	Name          string
	FirstMessage  string
	SystemPrompt  string
	Provider      string
	Model         string
	VoiceProvider string
	VoiceModel    string
	Files         []AssistantFile
}

// CreateSessionRequest is the payload for POST /sessions/create.
type CreateSessionRequest struct {
	AssistantID string `json:"assistant_id"`
	SessionID   string `json:"session_id"`
}

// ChatRequest is the payload for POST /chat/{assistant_id}/{session_id}.
type ChatRequest struct {
	AssistantID string `json:"assistant_id"`
	SessionID   string `json:"session_id"`
	UserQuery   string `json:"user_query"`
}

// VoiceChatRequest is the multipart payload for
// POST /voice-chat/{assistant_id}/{session_id}.
type VoiceChatRequest struct {
	// FileName is the name reported for the audio part, e.g. "recording.m4a".
	FileName    string
	ContentType string
	Audio       io.Reader
	// Language is the caller-declared BCP-47 primary subtag ("en", "hi", ...).
	Language string
}
