package client

import "github.com/teamoptimus/voicebot/client/internal/types"

// Public type aliases so SDK consumers can import only the client package.
type (
	// Requests
	CreateAssistantRequest = types.CreateAssistantRequest
	AssistantFile          = types.AssistantFile
	CreateSessionRequest   = types.CreateSessionRequest
	ChatRequest            = types.ChatRequest
	VoiceChatRequest       = types.VoiceChatRequest

	// Domain entities
	Assistant        = types.Assistant
	ChatHistoryEntry = types.ChatHistoryEntry
	SessionSentiment = types.SessionSentiment
	ChatTurn         = types.ChatTurn
	VoiceTurn        = types.VoiceTurn

	// Responses
	EnqueueAck            = types.EnqueueAck
	CreateSessionResponse = types.CreateSessionResponse
)
