package console

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/teamoptimus/voicebot/client"
)

// RecState is the voice console's capture state machine. There are exactly
// two states; StopRecording always returns the console to Idle, success or
// not.
type RecState int

const (
	Idle RecState = iota
	Recording
)

func (s RecState) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

// ErrAlreadyRecording is returned by StartRecording while capturing.
var ErrAlreadyRecording = errors.New("already recording")

// ErrNotRecording is returned by StopRecording while idle.
var ErrNotRecording = errors.New("not recording")

// DefaultLanguage is used until the caller declares or the server detects one.
const DefaultLanguage = "en"

// VoiceConsole drives the voice test view: pick an assistant, record a turn,
// upload it, read back the transcription and reply, and keep the session's
// history current. History refreshes are sequenced strictly after the upload
// response resolves.
type VoiceConsole struct {
	api      *client.Client
	recorder Recorder
	speaker  Speaker

	mu            sync.Mutex
	state         RecState
	assistantID   string
	sessionID     string
	language      string
	transcription string
	response      string
	history       []client.ChatHistoryEntry
}

// NewVoiceConsole wires the console to the SDK and its capture/synthesis
// environment.
func NewVoiceConsole(api *client.Client, recorder Recorder, speaker Speaker) *VoiceConsole {
	return &VoiceConsole{
		api:      api,
		recorder: recorder,
		speaker:  speaker,
		language: DefaultLanguage,
	}
}

// SelectAssistant switches the console to an assistant's session and loads
// that session's history.
func (v *VoiceConsole) SelectAssistant(ctx context.Context, assistantID, sessionID string) error {
	if assistantID == "" {
		return ErrNoAssistant
	}
	if sessionID == "" {
		sessionID = "1"
	}

	v.mu.Lock()
	v.assistantID = assistantID
	v.sessionID = sessionID
	v.transcription = ""
	v.response = ""
	v.mu.Unlock()

	return v.refreshHistory(ctx)
}

// SetLanguage declares the language code sent with the next turn.
func (v *VoiceConsole) SetLanguage(code string) error {
	if err := client.ValidateLanguage(code); err != nil {
		return err
	}
	v.mu.Lock()
	v.language = code
	v.mu.Unlock()
	return nil
}

// Language returns the declared or server-corrected language code.
func (v *VoiceConsole) Language() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.language
}

// State returns the capture state.
func (v *VoiceConsole) State() RecState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// StartRecording begins audio capture. An assistant must be selected first.
func (v *VoiceConsole) StartRecording() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.assistantID == "" {
		return ErrNoAssistant
	}
	if v.state == Recording {
		return ErrAlreadyRecording
	}
	if err := v.recorder.Start(); err != nil {
		return err
	}
	v.state = Recording
	v.transcription = ""
	v.response = ""
	return nil
}

// StopRecording ends capture, uploads the clip as one voice turn, adopts the
// server-detected language, refreshes history (strictly after the upload
// resolves), and hands the reply to the speaker. The console is Idle again
// when this returns, whatever happened.
func (v *VoiceConsole) StopRecording(ctx context.Context) (*client.VoiceTurn, error) {
	v.mu.Lock()
	if v.state != Recording {
		v.mu.Unlock()
		return nil, ErrNotRecording
	}
	v.state = Idle
	assistantID, sessionID, language := v.assistantID, v.sessionID, v.language
	v.mu.Unlock()

	clip, err := v.recorder.Stop()
	if err != nil {
		return nil, err
	}

	turn, err := v.api.VoiceChat(ctx, assistantID, sessionID, client.VoiceChatRequest{
		FileName:    clip.Name,
		ContentType: clip.ContentType,
		Audio:       clip.Data,
		Language:    language,
	})
	if err != nil {
		log.Warn().Err(err).Str("assistant_id", assistantID).Str("session_id", sessionID).Msg("voice turn failed")
		return nil, err
	}

	v.mu.Lock()
	v.transcription = turn.Transcription
	v.response = turn.Response
	if turn.Language != "" {
		v.language = turn.Language
	}
	language = v.language
	v.mu.Unlock()

	// History must reflect the turn that just completed, so the re-fetch is
	// sequenced after the upload response, never concurrent with it.
	if err := v.refreshHistory(ctx); err != nil {
		log.Warn().Err(err).Str("assistant_id", assistantID).Msg("history refresh after voice turn failed")
	}

	if v.speaker != nil && turn.Response != "" {
		if err := v.speaker.Speak(turn.Response, language); err != nil {
			log.Warn().Err(err).Str("language", language).Msg("speech synthesis failed")
		}
	}
	return turn, nil
}

// Transcription returns the last turn's recognized text.
func (v *VoiceConsole) Transcription() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.transcription
}

// Response returns the last turn's assistant reply.
func (v *VoiceConsole) Response() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.response
}

// History returns a copy of the loaded chat history.
func (v *VoiceConsole) History() []client.ChatHistoryEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]client.ChatHistoryEntry, len(v.history))
	copy(out, v.history)
	return out
}

func (v *VoiceConsole) refreshHistory(ctx context.Context) error {
	v.mu.Lock()
	assistantID, sessionID := v.assistantID, v.sessionID
	v.mu.Unlock()

	history, err := v.api.GetHistory(ctx, assistantID, sessionID)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.history = history
	v.mu.Unlock()
	return nil
}
