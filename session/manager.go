// Package session owns "who is logged in" for the whole application. It
// replaces ambient context state with an explicit manager: a defined
// Current/Subscribe/Refresh contract, a single writer, and cancellation of
// in-flight refreshes so the last-initiated resolution always wins.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/teamoptimus/voicebot/store"
)

// AuthStore is the slice of the remote session store the manager needs.
// *store.Store satisfies it; tests substitute fakes.
type AuthStore interface {
	SignInWithPassword(ctx context.Context, email, password string) (*store.Session, error)
	SignUp(ctx context.Context, email, password string) (*store.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*store.Session, error)
	UserByID(ctx context.Context, userID string) (*store.UserRow, error)
	InsertUser(ctx context.Context, row store.UserRow) error
	SetToken(accessToken string)
}

// Snapshot is the observable auth state: the profile row, the token bundle,
// whether a resolution is in flight, and the last resolution error. Loading
// is the only signal consumers use to avoid acting on an absent user.
type Snapshot struct {
	User    *store.UserRow
	Session *store.Session
	Loading bool
	Err     error
}

// Authenticated reports whether a resolved user is present.
func (s Snapshot) Authenticated() bool {
	return !s.Loading && s.User != nil && s.Session != nil
}

// OrphanedAccountError flags the sign-up correctness gap: the auth account
// was created but the profile insert failed, leaving an account with no
// profile row. It is surfaced, never repaired silently.
type OrphanedAccountError struct {
	UserID string
	Cause  error
}

func (e *OrphanedAccountError) Error() string {
	return fmt.Sprintf("auth account %s created but profile insert failed: %v", e.UserID, e.Cause)
}

func (e *OrphanedAccountError) Unwrap() error { return e.Cause }

// Manager is the single writer of auth state. All reads go through Current or
// a subscription channel; all mutation happens inside the manager under one
// mutex, so consumers never observe a half-written snapshot.
type Manager struct {
	auth AuthStore

	mu      sync.Mutex
	snap    Snapshot
	subs    map[int]chan Snapshot
	nextSub int

	// refreshGen tags the most recently initiated resolution; a resolution
	// that finishes after being superseded discards its result.
	refreshGen    uint64
	refreshCancel context.CancelFunc

	closed bool
}

// NewManager constructs a Manager over the given store. The initial snapshot
// is Loading until the first SignIn or Refresh resolves.
func NewManager(auth AuthStore) *Manager {
	return &Manager{
		auth: auth,
		snap: Snapshot{Loading: true},
		subs: make(map[int]chan Snapshot),
	}
}

// Current returns the latest snapshot.
func (m *Manager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Subscribe registers for snapshot change notifications. The channel holds
// the most recent snapshot only: a slow consumer drops intermediate states,
// never blocks the writer. The returned cancel removes the subscription.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Snapshot, 1)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// SignIn authenticates with email+password and resolves the profile row.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	sess, err := m.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		m.fail(err)
		return err
	}
	return m.adoptSession(ctx, sess)
}

// SignUp creates the auth account, then inserts the profile row. If the
// insert fails the auth account already exists with no profile; the returned
// *OrphanedAccountError names it so the caller can see the orphan.
func (m *Manager) SignUp(ctx context.Context, email, password string, profile store.UserRow) error {
	sess, err := m.auth.SignUp(ctx, email, password)
	if err != nil {
		m.fail(err)
		return err
	}
	m.auth.SetToken(sess.AccessToken)

	profile.UserID = sess.UserID
	profile.Email = email
	if err := m.auth.InsertUser(ctx, profile); err != nil {
		orphan := &OrphanedAccountError{UserID: sess.UserID, Cause: err}
		log.Error().Err(orphan).Str("user_id", sess.UserID).Msg("sign-up left an orphaned auth account")
		m.fail(orphan)
		return orphan
	}
	return m.adoptSession(ctx, sess)
}

// Refresh re-resolves the session and user using the current refresh token.
// A Refresh initiated while another is in flight cancels the older one; the
// final snapshot always comes from the most recently initiated refresh.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	cur := m.snap.Session
	m.mu.Unlock()

	if cur == nil || cur.RefreshToken == "" {
		err := fmt.Errorf("no session to refresh")
		m.fail(err)
		return err
	}

	sess, err := m.auth.RefreshSession(ctx, cur.RefreshToken)
	if err != nil {
		m.fail(err)
		return err
	}
	return m.adoptSession(ctx, sess)
}

// SignOut drops the session and user and reverts the store to anonymous.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.cancelInFlightLocked()
	m.auth.SetToken("")
	m.snap = Snapshot{}
	m.publishLocked()
	m.mu.Unlock()
}

// Close cancels any in-flight resolution and closes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.cancelInFlightLocked()
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

// adoptSession installs the token, then fetches the profile row under a
// cancellable generation so a superseding resolution wins.
func (m *Manager) adoptSession(ctx context.Context, sess *store.Session) error {
	m.mu.Lock()
	m.cancelInFlightLocked()
	m.refreshGen++
	gen := m.refreshGen
	fetchCtx, cancel := context.WithCancel(ctx)
	m.refreshCancel = cancel
	m.auth.SetToken(sess.AccessToken)
	m.snap = Snapshot{Session: sess, Loading: true}
	m.publishLocked()
	m.mu.Unlock()

	user, err := m.auth.UserByID(fetchCtx, sess.UserID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.refreshGen {
		// A newer resolution started while we were fetching; discard.
		return nil
	}
	m.refreshCancel = nil
	if err != nil {
		log.Warn().Err(err).Str("user_id", sess.UserID).Msg("user row fetch failed")
		m.snap = Snapshot{Session: sess, Err: err}
		m.publishLocked()
		return err
	}
	m.snap = Snapshot{Session: sess, User: user}
	m.publishLocked()
	return nil
}

func (m *Manager) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Loading = false
	m.snap.Err = err
	m.publishLocked()
}

func (m *Manager) cancelInFlightLocked() {
	if m.refreshCancel != nil {
		m.refreshCancel()
		m.refreshCancel = nil
	}
}

// publishLocked pushes the current snapshot to every subscriber without
// blocking: a full buffer is drained first so the channel always carries the
// newest state.
func (m *Manager) publishLocked() {
	for _, ch := range m.subs {
		select {
		case ch <- m.snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- m.snap:
			default:
			}
		}
	}
}
