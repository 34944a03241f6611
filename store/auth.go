package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Session is the token bundle issued by the auth endpoint. The client treats
// it as opaque apart from expiry bookkeeping and the owning user id.
type Session struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"-"`
	UserID       string    `json:"-"`
	Email        string    `json:"-"`
}

// Expired reports whether the session's access token has passed its expiry.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// AuthError is a failed auth request: bad credentials, duplicate sign-up,
// stale refresh token. Message carries the service's own description.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (status %d): %s", e.Status, e.Message)
}

// sessionEnvelope is the wire shape of a successful token response.
type sessionEnvelope struct {
	Session
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// authErrorBody covers the service's inconsistent error field naming.
type authErrorBody struct {
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (b authErrorBody) text() string {
	switch {
	case b.ErrorDescription != "":
		return b.ErrorDescription
	case b.Msg != "":
		return b.Msg
	case b.Message != "":
		return b.Message
	default:
		return "unknown auth failure"
	}
}

// SignInWithPassword exchanges email+password credentials for a session.
func (s *Store) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return s.tokenRequest(ctx, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignUp creates a new auth account. The service issues a session immediately
// when email confirmation is disabled, which is how the product runs.
func (s *Store) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return s.tokenRequest(ctx, "/auth/v1/signup", map[string]string{
		"email":    email,
		"password": password,
	})
}

// RefreshSession exchanges a refresh token for a fresh session.
func (s *Store) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	return s.tokenRequest(ctx, "/auth/v1/token?grant_type=refresh_token", map[string]string{
		"refresh_token": refreshToken,
	})
}

func (s *Store) tokenRequest(ctx context.Context, path string, body map[string]string) (*Session, error) {
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	if resp.IsError() {
		var eb authErrorBody
		_ = json.Unmarshal(resp.Body(), &eb)
		return nil, &AuthError{Status: resp.StatusCode(), Message: eb.text()}
	}

	var envelope sessionEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("auth response: decode: %w", err)
	}

	session := envelope.Session
	session.UserID = envelope.User.ID
	session.Email = envelope.User.Email
	if session.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(session.ExpiresIn) * time.Second)
	}
	return &session, nil
}
