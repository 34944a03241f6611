package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	sdkerrors "github.com/teamoptimus/voicebot/client/internal/errors"
	"github.com/teamoptimus/voicebot/client/internal/types"
)

// ListAssistants retrieves every assistant owned by a user.
func ListAssistants(ctx context.Context, httpClient *http.Client, baseURL, userID string) ([]types.Assistant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(userID, "user_id"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/assistants/%s", baseURL, userID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, sdkerrors.NewNetworkError("list assistants", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp, "list assistants")
	}

	var wrapper types.ListAssistantsResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("list assistants: decode response: %w", err)
	}
	if wrapper.Assistants == nil {
		// The backend sends {"assistants": null} for users with no assistants.
		return []types.Assistant{}, nil
	}
	return wrapper.Assistants, nil
}

// GetAssistant retrieves a single assistant by ID.
func GetAssistant(ctx context.Context, httpClient *http.Client, baseURL, assistantID string) (*types.Assistant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(assistantID, "assistant_id"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/assistants/%s", baseURL, assistantID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, sdkerrors.NewNetworkError("get assistant", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp, "get assistant")
	}

	var assistant types.Assistant
	if err := json.NewDecoder(resp.Body).Decode(&assistant); err != nil {
		return nil, fmt.Errorf("get assistant: decode response: %w", err)
	}
	return &assistant, nil
}

// CreateAssistant posts the multipart creation form. Field names mirror the
// backend's form contract exactly; files are streamed one part per file under
// the repeated "files" key.
func CreateAssistant(ctx context.Context, httpClient *http.Client, baseURL string, req types.CreateAssistantRequest) (*types.Assistant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateCreateAssistant(req); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"user_id":        req.UserID,
		"name":           req.Name,
		"first_message":  req.FirstMessage,
		"system_prompt":  req.SystemPrompt,
		"provider":       req.Provider,
		"model":          req.Model,
		"voice_provider": req.VoiceProvider,
		"voice_model":    req.VoiceModel,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("create assistant: write field %s: %w", name, err)
		}
	}
	for _, f := range req.Files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("create assistant: add file %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("create assistant: copy file %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/assistants/create", baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, sdkerrors.NewNetworkError("create assistant", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, readError(resp, "create assistant")
	}

	var assistant types.Assistant
	if err := json.NewDecoder(resp.Body).Decode(&assistant); err != nil {
		return nil, fmt.Errorf("create assistant: decode response: %w", err)
	}
	return &assistant, nil
}
