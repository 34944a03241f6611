package session

import "sync"

// GuardState classifies the auth layout's view of the session.
type GuardState int

const (
	// Unresolved means the session is still loading; render nothing.
	Unresolved GuardState = iota
	// Authenticated means a user is present; auth forms must not render.
	Authenticated
	// Anonymous means resolution finished with no user; render the forms.
	Anonymous
)

func (s GuardState) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Decision is what the auth layout should do right now.
type Decision int

const (
	// Wait renders nothing.
	Wait Decision = iota
	// ShowForms renders the sign-in/sign-up forms.
	ShowForms
	// Redirect renders nothing and navigates to the returned target.
	Redirect
)

// HomeRoute is where authenticated visitors of the auth routes are sent.
const HomeRoute = "/"

// Guard keeps authenticated users away from the sign-in/sign-up views.
// It issues exactly one Redirect per resolution: once the redirect has been
// handed out, subsequent polls in the same authenticated stretch return Wait.
type Guard struct {
	mgr *Manager

	mu         sync.Mutex
	redirected bool
}

// NewGuard wraps the manager.
func NewGuard(mgr *Manager) *Guard {
	return &Guard{mgr: mgr}
}

// State derives the three-state view from the current snapshot.
func (g *Guard) State() GuardState {
	snap := g.mgr.Current()
	switch {
	case snap.Loading:
		return Unresolved
	case snap.Authenticated():
		return Authenticated
	default:
		return Anonymous
	}
}

// Decide returns the action for the auth routes and, for Redirect, the
// target route.
func (g *Guard) Decide() (Decision, string) {
	state := g.State()

	g.mu.Lock()
	defer g.mu.Unlock()

	switch state {
	case Anonymous:
		g.redirected = false
		return ShowForms, ""
	case Authenticated:
		if g.redirected {
			return Wait, ""
		}
		g.redirected = true
		return Redirect, HomeRoute
	default:
		return Wait, ""
	}
}
