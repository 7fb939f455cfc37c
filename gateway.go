package session

import (
	"net/http"
	"time"

	"github.com/brochaworks/go-session/store"
	"github.com/goliatone/go-print"
)

// SessionEnder is the slice of Manager the gateway needs to force a
// termination. Kept as an interface so the transport can be built before the
// Manager and bound afterwards.
type SessionEnder interface {
	Logout(silent bool)
}

// Transport is the single outbound pipeline to the backend. It reads the
// credential from the CredentialStore on every request (never from session
// state, so the wire path stays decoupled from UI flags) and attaches it
// under both header conventions the backend deployments expect. Every
// response is inspected for the authorization-failure status; on a match the
// session is terminated and navigation is forced back to the login route.
type Transport struct {
	base      http.RoundTripper
	creds     *CredentialStore
	cfg       Config
	transient store.Store
	nav       Navigator
	notifier  Notifier
	logger    Logger
	session   SessionEnder
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithBase sets the wrapped RoundTripper. Defaults to
// http.DefaultTransport.
func WithBase(rt http.RoundTripper) TransportOption {
	return func(t *Transport) {
		if rt != nil {
			t.base = rt
		}
	}
}

// WithTransportNavigator sets the navigation surface used on expiry.
func WithTransportNavigator(nav Navigator) TransportOption {
	return func(t *Transport) { t.nav = nav }
}

// WithTransportNotifier sets the notification sink used on expiry.
func WithTransportNotifier(n Notifier) TransportOption {
	return func(t *Transport) { t.notifier = n }
}

// WithTransportLogger sets the Transport logger.
func WithTransportLogger(l Logger) TransportOption {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTransport creates the outbound pipeline. The transient store receives
// the rejected route so the login flow can restore it after the next
// successful authentication.
func NewTransport(creds *CredentialStore, cfg Config, transient store.Store, opts ...TransportOption) *Transport {
	t := &Transport{
		base:      http.DefaultTransport,
		creds:     creds,
		cfg:       cfg,
		transient: transient,
		logger:    defLogger{},
	}

	for _, opt := range opts {
		opt(t)
	}

	t.nav = normalizeNavigator(t.nav, t.logger)
	t.notifier = normalizeNotifier(t.notifier, t.logger)

	if t.transient == nil {
		t.transient = store.NewMemory()
	}

	return t
}

// BindSession wires the Manager whose Logout the expiry reaction invokes.
// Must be called before the first authenticated request when the Manager is
// constructed after the Transport.
func (t *Transport) BindSession(s SessionEnder) {
	t.session = s
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	if token := t.creds.ReadCredential(); token != "" {
		out.Header.Set(t.cfg.GetTokenHeader(), token)
		out.Header.Set("Authorization", t.cfg.GetAuthScheme()+" "+token)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.expireSession(out)
	}

	// The original response always reaches the caller so its own error
	// handling still runs; the expiry reaction above is a side effect, not a
	// substitute.
	return resp, nil
}

// expireSession is the involuntary termination path: silent logout, a
// user-visible expiry notice, capture of the rejected route for post-login
// restoration, and an immediate redirect to the login route. Navigation is
// not deferred; waiting a frame would race views still rendering against the
// dead session.
func (t *Transport) expireSession(req *http.Request) {
	t.logger.Info(
		"authorization failure, terminating session",
		"details", print.MaybePrettyJSON(map[string]any{
			"method": req.Method,
			"url":    req.URL.String(),
		}),
	)

	if t.session != nil {
		t.session.Logout(true)
	} else {
		t.creds.Clear()
	}

	t.notifier.Notify(Notification{
		Level:   LevelWarning,
		Message: "your session has expired, please sign in again",
		TTL:     5 * time.Second,
	})

	current := t.nav.Current()
	if current != "" && current != t.cfg.GetLoginRoute() {
		if err := t.transient.Set(t.cfg.GetRejectedRouteKey(), current); err != nil {
			t.logger.Error("failed to store rejected route: %v", err)
		}
	}

	t.nav.Navigate(t.cfg.GetLoginRoute())
}
