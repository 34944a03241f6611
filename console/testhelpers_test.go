package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teamoptimus/voicebot/session"
	"github.com/teamoptimus/voicebot/store"
)

// authStub satisfies session.AuthStore with a fixed identity.
type authStub struct{}

func (authStub) SignInWithPassword(context.Context, string, string) (*store.Session, error) {
	return &store.Session{AccessToken: "at-1", RefreshToken: "rt-1", UserID: "u-1"}, nil
}

func (authStub) SignUp(context.Context, string, string) (*store.Session, error) {
	return &store.Session{AccessToken: "at-1", RefreshToken: "rt-1", UserID: "u-1"}, nil
}

func (authStub) RefreshSession(context.Context, string) (*store.Session, error) {
	return &store.Session{AccessToken: "at-2", RefreshToken: "rt-2", UserID: "u-1"}, nil
}

func (authStub) UserByID(_ context.Context, userID string) (*store.UserRow, error) {
	return &store.UserRow{UserID: userID, Email: "ada@example.com", Name: "Ada"}, nil
}

func (authStub) InsertUser(context.Context, store.UserRow) error { return nil }

func (authStub) SetToken(string) {}

// newSignedInManager returns a manager already resolved to the stub identity.
func newSignedInManager(t *testing.T) *session.Manager {
	t.Helper()
	m := session.NewManager(authStub{})
	t.Cleanup(m.Close)
	require.NoError(t, m.SignIn(context.Background(), "ada@example.com", "hunter2"))
	return m
}
