package session

import (
	"net/http"

	"github.com/brochaworks/go-session/store"
)

// Session bundles the fully wired stack for one front-end process: the
// credential store, the outbound transport, the state container, and the
// render guard, all sharing one configuration, one navigator, and one
// transient store. It is constructed once at process start and passed by
// reference to the composition layer.
type Session struct {
	Manager   *Manager
	Transport *Transport
	Guard     *Guard

	// Client routes all backend traffic through the transport. Hand it to
	// the typed API services.
	Client *http.Client
}

// SessionOption configures the wired stack.
type SessionOption func(*sessionDeps)

type sessionDeps struct {
	logger    Logger
	nav       Navigator
	notifier  Notifier
	verifier  Verifier
	transient store.Store
	base      http.RoundTripper
}

// WithSessionLogger sets the logger shared by every component.
func WithSessionLogger(l Logger) SessionOption {
	return func(d *sessionDeps) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSessionNavigator sets the navigation surface shared by the transport
// and the guard.
func WithSessionNavigator(nav Navigator) SessionOption {
	return func(d *sessionDeps) { d.nav = nav }
}

// WithSessionNotifier sets the notification sink shared by the manager and
// the transport.
func WithSessionNotifier(n Notifier) SessionOption {
	return func(d *sessionDeps) { d.notifier = n }
}

// WithSessionVerifier overrides the token check used by
// VerifyAuthentication.
func WithSessionVerifier(v Verifier) SessionOption {
	return func(d *sessionDeps) { d.verifier = v }
}

// WithSessionTransient sets the transient store holding the post-login
// redirect target. Defaults to an in-memory store.
func WithSessionTransient(s store.Store) SessionOption {
	return func(d *sessionDeps) { d.transient = s }
}

// WithSessionBaseTransport sets the RoundTripper under the gateway.
func WithSessionBaseTransport(rt http.RoundTripper) SessionOption {
	return func(d *sessionDeps) { d.base = rt }
}

// New wires the whole stack over a durable key/value backend. Call
// Manager.InitializeAuth once afterwards to seed the state from storage.
func New(cfg Config, backing store.Store, opts ...SessionOption) *Session {
	deps := &sessionDeps{
		logger:    defLogger{},
		transient: store.NewMemory(),
	}
	for _, opt := range opts {
		opt(deps)
	}

	deps.nav = normalizeNavigator(deps.nav, deps.logger)
	deps.notifier = normalizeNotifier(deps.notifier, deps.logger)

	creds := NewCredentialStore(backing, cfg).WithLogger(deps.logger)

	transport := NewTransport(creds, cfg, deps.transient,
		WithBase(deps.base),
		WithTransportNavigator(deps.nav),
		WithTransportNotifier(deps.notifier),
		WithTransportLogger(deps.logger),
	)

	client := &http.Client{Transport: transport}

	managerOpts := []Option{
		WithHTTPClient(client),
		WithLogger(deps.logger),
		WithNotifier(deps.notifier),
	}
	if deps.verifier != nil {
		managerOpts = append(managerOpts, WithVerifier(deps.verifier))
	}

	manager := NewManager(cfg, creds, managerOpts...)
	transport.BindSession(manager)

	guard := NewGuard(manager, deps.transient,
		WithGuardNavigator(deps.nav),
		WithGuardLogger(deps.logger),
	)

	return &Session{
		Manager:   manager,
		Transport: transport,
		Guard:     guard,
		Client:    client,
	}
}
