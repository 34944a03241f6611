package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// UserRow mirrors the user relation. Column names are the product's, quirks
// included (lowercase userid, camelCase userType).
type UserRow struct {
	UserID      string `json:"userid"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	FullName    string `json:"fullname,omitempty"`
	UserType    string `json:"userType,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// AssistantRow mirrors the assistants relation for direct store reads.
type AssistantRow struct {
	AssistantID   string    `json:"assistant_id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	VoiceProvider string    `json:"voice_provider"`
	VoiceModel    string    `json:"voice_model"`
	FirstMessage  string    `json:"first_message"`
	SystemPrompt  string    `json:"system_prompt"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SessionRow is one (session_id, created_at) pair from chat_history.
type SessionRow struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserByID reads the profile row for an auth user id.
func (s *Store) UserByID(ctx context.Context, userID string) (*UserRow, error) {
	if userID == "" {
		return nil, fmt.Errorf("userid is required")
	}
	var rows []UserRow
	if err := s.selectRows(ctx, "/rest/v1/user", map[string]string{
		"select": "*",
		"userid": "eq." + userID,
		"limit":  "1",
	}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrRowNotFound
	}
	return &rows[0], nil
}

// InsertUser writes the profile row created right after sign-up.
func (s *Store) InsertUser(ctx context.Context, row UserRow) error {
	resp, err := s.rest.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(row).
		Post("/rest/v1/user")
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("insert user: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// AssistantsByUser reads the assistants relation with an equality filter on
// the owner. Console controllers list assistants through the backend API
// instead; this read exists for the session-store surface and diagnostics.
func (s *Store) AssistantsByUser(ctx context.Context, userID string) ([]AssistantRow, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	var rows []AssistantRow
	if err := s.selectRows(ctx, "/rest/v1/assistants", map[string]string{
		"select":  "*",
		"user_id": "eq." + userID,
	}, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentSessions reads the newest chat_history rows for an assistant and
// collapses them to distinct sessions, newest first. limit bounds the row
// scan, so at most limit distinct sessions come back.
func (s *Store) RecentSessions(ctx context.Context, assistantID string, limit int) ([]SessionRow, error) {
	if assistantID == "" {
		return nil, fmt.Errorf("assistant_id is required")
	}
	if limit <= 0 {
		limit = 10
	}
	var rows []SessionRow
	if err := s.selectRows(ctx, "/rest/v1/chat_history", map[string]string{
		"select":       "session_id,created_at",
		"assistant_id": "eq." + assistantID,
		"order":        "created_at.desc",
		"limit":        fmt.Sprintf("%d", limit),
	}, &rows); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	sessions := rows[:0]
	for _, row := range rows {
		if _, dup := seen[row.SessionID]; dup {
			continue
		}
		seen[row.SessionID] = struct{}{}
		sessions = append(sessions, row)
	}
	return sessions, nil
}

func (s *Store) selectRows(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return fmt.Errorf("select %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("select %s: status %d: %s", path, resp.StatusCode(), resp.String())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("select %s: decode: %w", path, err)
	}
	return nil
}
