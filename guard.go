package session

import (
	"fmt"
	"io"

	"github.com/brochaworks/go-session/store"
)

// ViewFunc renders a view. The guard wraps these to gate protected content.
type ViewFunc func(w io.Writer) error

// Requirement is a role or permission demand attached to a protected view.
type Requirement struct {
	kind  string
	value string
}

// RequireRole demands a role. The admin role satisfies any demand.
func RequireRole(role string) Requirement {
	return Requirement{kind: "role", value: role}
}

// RequirePermission demands a permission-list entry. The admin role is
// always satisfied.
func RequirePermission(perm string) Requirement {
	return Requirement{kind: "permission", value: perm}
}

func (r Requirement) satisfiedBy(user *Profile) bool {
	switch r.kind {
	case "role":
		return user.HasRole(r.value)
	case "permission":
		return user.HasPermission(r.value)
	default:
		return false
	}
}

// Guard gates rendering of protected views on the session state. An
// unauthenticated visit stores the current route for post-login restoration
// and forces navigation to the login route; a missing role or permission
// renders an inline denial without redirecting.
type Guard struct {
	session   *Manager
	cfg       Config
	transient store.Store
	nav       Navigator
	logger    Logger
	fallback  ViewFunc
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGuardNavigator sets the navigation surface.
func WithGuardNavigator(nav Navigator) GuardOption {
	return func(g *Guard) { g.nav = nav }
}

// WithGuardFallback sets the view rendered while an unauthenticated redirect
// is in flight. Defaults to rendering nothing.
func WithGuardFallback(view ViewFunc) GuardOption {
	return func(g *Guard) { g.fallback = view }
}

// WithGuardLogger sets the Guard logger.
func WithGuardLogger(l Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard creates a render gate over the session state. The transient store
// must be the same one the Transport stores rejected routes in, so the
// post-login restoration sees a single key.
func NewGuard(session *Manager, transient store.Store, opts ...GuardOption) *Guard {
	g := &Guard{
		session:   session,
		cfg:       session.Config(),
		transient: transient,
		logger:    defLogger{},
	}

	for _, opt := range opts {
		opt(g)
	}

	g.nav = normalizeNavigator(g.nav, g.logger)

	if g.transient == nil {
		g.transient = store.NewMemory()
	}

	return g
}

// Protect wraps a view so it only renders for an authenticated session that
// satisfies every requirement.
func (g *Guard) Protect(view ViewFunc, reqs ...Requirement) ViewFunc {
	return func(w io.Writer) error {
		snap := g.session.Snapshot()

		if !snap.Authenticated {
			g.stashRejectedRoute()
			g.nav.Navigate(g.cfg.GetLoginRoute())
			if g.fallback != nil {
				return g.fallback(w)
			}
			return nil
		}

		for _, req := range reqs {
			if !req.satisfiedBy(snap.User) {
				g.logger.Debug("access denied", "kind", req.kind, "value", req.value)
				_, err := fmt.Fprintf(w, "access denied: missing %s %q\n", req.kind, req.value)
				return err
			}
		}

		return view(w)
	}
}

// GuestOnly wraps a view that must not render for an authenticated session:
// a logged-in user is sent to the stored post-login destination (consumed on
// use) or to the configured default.
func (g *Guard) GuestOnly(view ViewFunc) ViewFunc {
	return func(w io.Writer) error {
		snap := g.session.Snapshot()
		if !snap.Authenticated {
			return view(w)
		}

		g.nav.Navigate(g.RedirectTarget())
		return nil
	}
}

// RedirectTarget returns the stored post-login destination, clearing it, or
// the configured default when none was stored.
func (g *Guard) RedirectTarget() string {
	key := g.cfg.GetRejectedRouteKey()

	target, err := g.transient.Get(key)
	if err != nil || target == "" {
		return g.cfg.GetRejectedRouteDefault()
	}

	if err := g.transient.Delete(key); err != nil {
		g.logger.Error("failed to clear rejected route: %v", err)
	}
	return target
}

func (g *Guard) stashRejectedRoute() {
	current := g.nav.Current()
	if current == "" || current == g.cfg.GetLoginRoute() {
		return
	}
	if err := g.transient.Set(g.cfg.GetRejectedRouteKey(), current); err != nil {
		g.logger.Error("failed to store rejected route: %v", err)
	}
}
