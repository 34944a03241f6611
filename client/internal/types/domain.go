package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Assistant is a configured voice/LLM agent owned by a user. The backend is
// the source of truth; the SDK only holds transient copies.
type Assistant struct {
	AssistantID   string    `json:"assistant_id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	VoiceProvider string    `json:"voice_provider"`
	VoiceModel    string    `json:"voice_model"`
	FirstMessage  string    `json:"first_message"`
	SystemPrompt  string    `json:"system_prompt"`
	FileURLs      []string  `json:"file_urls,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// ChatHistoryEntry is one stored turn of a chat session. Either side may be
// empty; the backend writes both for a completed turn.
type ChatHistoryEntry struct {
	ID          int64     `json:"id"`
	AssistantID string    `json:"assistant_id"`
	SessionID   string    `json:"session_id"`
	UserQuery   string    `json:"user_query,omitempty"`
	BotResponse string    `json:"bot_response,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionSentiment is the server-side sentiment aggregate for one session.
type SessionSentiment struct {
	AssistantID  string `json:"assistant_id"`
	SessionID    string `json:"session_id"`
	Sentiment    string `json:"sentiment"`
	MessageCount int    `json:"message_count"`
}

// ChatTurn is the backend's reply to a text chat turn.
type ChatTurn struct {
	Response    string `json:"response"`
	AssistantID string `json:"assistant_id"`
	SessionID   string `json:"session_id"`
}

// VoiceTurn is the backend's reply to an uploaded audio turn. Language is the
// detected language code when the server corrected the caller's declared one.
type VoiceTurn struct {
	Response      string `json:"response"`
	Transcription string `json:"transcription"`
	Language      string `json:"language,omitempty"`
}
