package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	sdkerrors "github.com/teamoptimus/voicebot/client/internal/errors"
	"github.com/teamoptimus/voicebot/client/internal/types"
)

// VoiceChat uploads one recorded audio turn and waits for the transcription
// and the assistant's reply. The audio travels as the "audio_file" multipart
// part with its declared content type; "language" rides alongside as a plain
// form field.
func VoiceChat(ctx context.Context, httpClient *http.Client, baseURL, assistantID, sessionID string, req types.VoiceChatRequest) (*types.VoiceTurn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(assistantID, "assistant_id"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(sessionID, "session_id"); err != nil {
		return nil, err
	}
	if req.Audio == nil {
		return nil, fmt.Errorf("audio_file is required")
	}
	if err := types.ValidateLanguage(req.Language); err != nil {
		return nil, err
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = "recording.m4a"
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "audio/m4a"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio_file"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, req.Audio); err != nil {
		return nil, fmt.Errorf("voice chat: copy audio: %w", err)
	}
	if err := mw.WriteField("language", req.Language); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/voice-chat/%s/%s", baseURL, assistantID, sessionID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, sdkerrors.NewNetworkError("voice chat", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp, "voice chat")
	}

	var turn types.VoiceTurn
	if err := json.NewDecoder(resp.Body).Decode(&turn); err != nil {
		return nil, fmt.Errorf("voice chat: decode response: %w", err)
	}
	return &turn, nil
}
