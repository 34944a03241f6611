package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamoptimus/voicebot/store"
)

// fakeAuth is an in-memory AuthStore. Function fields override behavior per
// test; nil fields use the happy-path defaults.
type fakeAuth struct {
	mu       sync.Mutex
	token    string
	inserted []store.UserRow

	signInFn   func(ctx context.Context, email, password string) (*store.Session, error)
	signUpFn   func(ctx context.Context, email, password string) (*store.Session, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*store.Session, error)
	userByIDFn func(ctx context.Context, userID string) (*store.UserRow, error)
	insertFn   func(ctx context.Context, row store.UserRow) error
}

func happySession() *store.Session {
	return &store.Session{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		UserID:       "u-1",
		Email:        "ada@example.com",
	}
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*store.Session, error) {
	if f.signInFn != nil {
		return f.signInFn(ctx, email, password)
	}
	return happySession(), nil
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*store.Session, error) {
	if f.signUpFn != nil {
		return f.signUpFn(ctx, email, password)
	}
	return happySession(), nil
}

func (f *fakeAuth) RefreshSession(ctx context.Context, refreshToken string) (*store.Session, error) {
	if f.refreshFn != nil {
		return f.refreshFn(ctx, refreshToken)
	}
	s := happySession()
	s.AccessToken = "at-2"
	s.RefreshToken = "rt-2"
	return s, nil
}

func (f *fakeAuth) UserByID(ctx context.Context, userID string) (*store.UserRow, error) {
	if f.userByIDFn != nil {
		return f.userByIDFn(ctx, userID)
	}
	return &store.UserRow{UserID: userID, Email: "ada@example.com", Name: "Ada"}, nil
}

func (f *fakeAuth) InsertUser(ctx context.Context, row store.UserRow) error {
	if f.insertFn != nil {
		return f.insertFn(ctx, row)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, row)
	return nil
}

func (f *fakeAuth) SetToken(accessToken string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = accessToken
}

func (f *fakeAuth) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func TestManager_InitialSnapshotLoading(t *testing.T) {
	m := NewManager(&fakeAuth{})
	defer m.Close()

	snap := m.Current()
	assert.True(t, snap.Loading)
	assert.False(t, snap.Authenticated())
}

func TestManager_SignInResolvesUser(t *testing.T) {
	auth := &fakeAuth{}
	m := NewManager(auth)
	defer m.Close()

	require.NoError(t, m.SignIn(context.Background(), "ada@example.com", "hunter2"))

	snap := m.Current()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "u-1", snap.User.UserID)
	assert.Equal(t, "Ada", snap.User.Name)
	assert.Equal(t, "at-1", auth.currentToken())
}

func TestManager_SignInFailurePublishesError(t *testing.T) {
	wantErr := &store.AuthError{Status: 400, Message: "Invalid login credentials"}
	auth := &fakeAuth{
		signInFn: func(context.Context, string, string) (*store.Session, error) {
			return nil, wantErr
		},
	}
	m := NewManager(auth)
	defer m.Close()

	err := m.SignIn(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)

	snap := m.Current()
	assert.False(t, snap.Authenticated())
	assert.ErrorIs(t, snap.Err, wantErr)
}

func TestManager_SignUpInsertsProfile(t *testing.T) {
	auth := &fakeAuth{}
	m := NewManager(auth)
	defer m.Close()

	err := m.SignUp(context.Background(), "ada@example.com", "hunter2", store.UserRow{
		Name:     "Ada",
		UserType: "admin",
	})
	require.NoError(t, err)

	require.Len(t, auth.inserted, 1)
	row := auth.inserted[0]
	// The manager stamps the auth identity onto the profile row.
	assert.Equal(t, "u-1", row.UserID)
	assert.Equal(t, "ada@example.com", row.Email)
	assert.Equal(t, "Ada", row.Name)
	assert.True(t, m.Current().Authenticated())
}

func TestManager_SignUpOrphanSurfaced(t *testing.T) {
	insertErr := errors.New("permission denied for relation user")
	auth := &fakeAuth{
		insertFn: func(context.Context, store.UserRow) error { return insertErr },
	}
	m := NewManager(auth)
	defer m.Close()

	err := m.SignUp(context.Background(), "ada@example.com", "hunter2", store.UserRow{Name: "Ada"})
	require.Error(t, err)

	var orphan *OrphanedAccountError
	require.True(t, errors.As(err, &orphan))
	assert.Equal(t, "u-1", orphan.UserID)
	assert.ErrorIs(t, err, insertErr)
	assert.False(t, m.Current().Authenticated())
}

func TestManager_RefreshWithoutSession(t *testing.T) {
	m := NewManager(&fakeAuth{})
	defer m.Close()

	require.Error(t, m.Refresh(context.Background()))
}

func TestManager_RefreshRotatesTokens(t *testing.T) {
	auth := &fakeAuth{}
	m := NewManager(auth)
	defer m.Close()

	require.NoError(t, m.SignIn(context.Background(), "ada@example.com", "hunter2"))
	require.NoError(t, m.Refresh(context.Background()))

	snap := m.Current()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "at-2", snap.Session.AccessToken)
	assert.Equal(t, "at-2", auth.currentToken())
}

// A resolution that is superseded mid-flight must not overwrite the newer
// one's snapshot, even when it finishes with an error.
func TestManager_LatestInitiatedResolutionWins(t *testing.T) {
	firstInFlight := make(chan struct{})
	var once sync.Once
	var calls int

	auth := &fakeAuth{}
	auth.userByIDFn = func(ctx context.Context, userID string) (*store.UserRow, error) {
		calls++
		if calls == 1 {
			once.Do(func() { close(firstInFlight) })
			<-ctx.Done() // parked until the second resolution cancels us
			return nil, ctx.Err()
		}
		return &store.UserRow{UserID: userID, Name: "Ada"}, nil
	}

	m := NewManager(auth)
	defer m.Close()

	done := make(chan error, 1)
	go func() {
		done <- m.SignIn(context.Background(), "ada@example.com", "hunter2")
	}()

	select {
	case <-firstInFlight:
	case <-time.After(2 * time.Second):
		t.Fatal("first resolution never started")
	}

	// Second sign-in supersedes and cancels the first.
	require.NoError(t, m.SignIn(context.Background(), "ada@example.com", "hunter2"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first resolution never returned")
	}

	snap := m.Current()
	require.True(t, snap.Authenticated(), "stale resolution overwrote the winner: %+v", snap)
	assert.NoError(t, snap.Err)
	assert.Equal(t, "Ada", snap.User.Name)
}

func TestManager_SignOut(t *testing.T) {
	auth := &fakeAuth{}
	m := NewManager(auth)
	defer m.Close()

	require.NoError(t, m.SignIn(context.Background(), "ada@example.com", "hunter2"))
	m.SignOut()

	snap := m.Current()
	assert.False(t, snap.Authenticated())
	assert.Nil(t, snap.User)
	assert.Empty(t, auth.currentToken())
}

func TestManager_SubscribeSeesLatestState(t *testing.T) {
	m := NewManager(&fakeAuth{})
	defer m.Close()

	ch, cancel := m.Subscribe()
	defer cancel()

	require.NoError(t, m.SignIn(context.Background(), "ada@example.com", "hunter2"))

	// The buffered channel holds the newest snapshot; drain until we see the
	// authenticated one.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-ch:
			if snap.Authenticated() {
				return
			}
		case <-deadline:
			t.Fatal("never observed the authenticated snapshot")
		}
	}
}

func TestManager_SubscribeCancelClosesChannel(t *testing.T) {
	m := NewManager(&fakeAuth{})
	defer m.Close()

	ch, cancel := m.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)
}
