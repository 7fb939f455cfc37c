package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// Credentials is the login payload sent to the authentication endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
}

// Snapshot is an immutable view of the session state at one instant.
type Snapshot struct {
	User          *Profile
	Token         string
	Authenticated bool
	Loading       bool
	Error         string
}

// Verifier performs the lightweight token check backing
// VerifyAuthentication. Signature and expiry verification stay a backend
// concern; the token is never decoded locally.
type Verifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, token string) (bool, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (bool, error) {
	return f(ctx, token)
}

// Manager is the single source of truth for "am I logged in, as whom, with
// what token, and what happened during the last attempt". It is created once
// at process start and shared by reference; its operations are the only
// legal mutators of the state.
//
// Invariant: authenticated is true if and only if both the user and the
// token are present. InitializeAuth and RefreshAuthState treat any partial
// state as corrupt and reset both the state and the backing store.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	creds    *CredentialStore
	http     *http.Client
	logger   Logger
	notifier Notifier
	verifier Verifier

	user          *Profile
	token         string
	authenticated bool
	loading       bool
	lastError     string

	listeners map[int]func(Snapshot)
	nextID    int
}

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient sets the client used for the authentication endpoints.
// Point it at a client whose transport is this package's Transport so login
// traffic shares the gateway pipeline.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		if client != nil {
			m.http = client
		}
	}
}

// WithLogger sets the Manager logger.
func WithLogger(l Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithNotifier sets the user-facing notification sink.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithVerifier overrides the token check used by VerifyAuthentication.
func WithVerifier(v Verifier) Option {
	return func(m *Manager) {
		if v != nil {
			m.verifier = v
		}
	}
}

// NewManager creates the session state container on top of a credential
// store.
func NewManager(cfg Config, creds *CredentialStore, opts ...Option) *Manager {
	m := &Manager{
		cfg:       cfg,
		creds:     creds,
		http:      &http.Client{},
		logger:    defLogger{},
		listeners: map[int]func(Snapshot){},
	}

	for _, opt := range opts {
		opt(m)
	}

	m.notifier = normalizeNotifier(m.notifier, m.logger)
	if m.verifier == nil {
		m.verifier = &remoteVerifier{http: m.http, url: cfg.GetBaseURL() + cfg.GetVerifyEndpoint()}
	}

	return m
}

// Config exposes the configuration the Manager was built with so
// collaborating components (guard, transport) can share it.
func (m *Manager) Config() Config { return m.cfg }

// Credentials exposes the backing credential store.
func (m *Manager) Credentials() *CredentialStore { return m.creds }

// Client returns the HTTP client the Manager performs authentication calls
// with.
func (m *Manager) Client() *http.Client { return m.http }

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Subscribe registers a listener invoked after every state change. The
// returned function unsubscribes it.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Login authenticates against the backend. On success the credential and the
// full raw response are written through to the store and the state flips to
// authenticated. On failure the most specific available message is recorded
// in the state's error field; the rich error is also returned for callers
// that want it. Loading is cleared at the end regardless of outcome.
//
// Overlapping calls are not deduplicated; the last response to resolve wins.
func (m *Manager) Login(ctx context.Context, payload Credentials) error {
	if err := payload.Validate(); err != nil {
		m.mu.Lock()
		m.lastError = err.Error()
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.publish(snap)

		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid login payload").
			WithCode(goerrors.CodeBadRequest)
	}

	m.mu.Lock()
	m.loading = true
	m.lastError = ""
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)

	result, err := m.requestLogin(ctx, payload)
	if err != nil {
		m.logger.Error("login failed: %v", err)

		m.mu.Lock()
		m.loading = false
		m.lastError = loginErrorMessage(err)
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.publish(snap)

		return err
	}

	m.creds.WriteCredential(result.token)
	m.creds.WriteAuthResponse(result.raw)

	m.mu.Lock()
	m.user = result.profile
	m.token = result.token
	m.authenticated = true
	m.loading = false
	m.lastError = ""
	snap = m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)

	m.logger.Info("login succeeded", "user", result.profile.ID())
	return nil
}

// Logout clears the credential store and resets the state. It is synchronous
// and idempotent. When silent is false a "session closed" notification is
// emitted; the involuntary-expiry path passes silent=true since a forced
// termination is not a success.
func (m *Manager) Logout(silent bool) {
	m.creds.Clear()

	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.authenticated = false
	m.lastError = ""
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)

	if !silent {
		m.notifier.Notify(Notification{
			Level:   LevelSuccess,
			Message: "session closed",
			TTL:     4 * time.Second,
		})
	}
}

// InitializeAuth seeds the state from the credential store. Called exactly
// once at process start. A partial pair (token without profile or the
// reverse) is treated as corruption: both keys are cleared and the state
// stays empty. This path never leaves the state partially populated.
func (m *Manager) InitializeAuth() {
	token := m.creds.ReadCredential()
	profile := m.creds.ReadProfile()

	m.mu.Lock()
	switch {
	case token != "" && profile != nil:
		m.user = profile
		m.token = token
		m.authenticated = true
	case token == "" && profile == nil:
		// Nothing stored; stay empty.
	default:
		m.logger.Warn("inconsistent stored credentials, clearing both")
		m.creds.Clear()
		m.user = nil
		m.token = ""
		m.authenticated = false
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
}

// VerifyAuthentication checks the current token against the backend. With no
// token in state it reports false immediately without a network call. Any
// verifier failure or negative result terminates the session via Logout.
func (m *Manager) VerifyAuthentication(ctx context.Context) bool {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()

	if token == "" {
		m.mu.Lock()
		m.authenticated = false
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.publish(snap)
		return false
	}

	ok, err := m.verifier.Verify(ctx, token)
	if err != nil || !ok {
		if err != nil {
			m.logger.Warn("token verification failed: %v", err)
		}
		m.Logout(false)
		return false
	}

	return true
}

// RefreshAuthState re-reads the credential store and overwrites the state's
// token, user, and authenticated fields to match. Used to reconcile after an
// out-of-band storage change. A partial pair is repaired the same way
// InitializeAuth repairs it.
func (m *Manager) RefreshAuthState() {
	token := m.creds.ReadCredential()
	profile := m.creds.ReadProfile()

	m.mu.Lock()
	if (token == "") != (profile == nil) {
		m.logger.Warn("inconsistent stored credentials during refresh, clearing both")
		m.creds.Clear()
		token = ""
		profile = nil
	}

	m.user = profile
	m.token = token
	m.authenticated = token != "" && profile != nil
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
}

// ClearError clears only the error field.
func (m *Manager) ClearError() {
	m.mu.Lock()
	m.lastError = ""
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
}

// HasRole checks the current user's role. See Profile.HasRole for the admin
// override semantics.
func (m *Manager) HasRole(role string) bool {
	return m.Snapshot().User.HasRole(role)
}

// Can checks the current user's permission list. The admin role is always
// satisfied.
func (m *Manager) Can(permission string) bool {
	return m.Snapshot().User.HasPermission(permission)
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		User:          m.user,
		Token:         m.token,
		Authenticated: m.authenticated,
		Loading:       m.loading,
		Error:         m.lastError,
	}
}

func (m *Manager) publish(snap Snapshot) {
	m.mu.RLock()
	listeners := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.RUnlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

type loginResult struct {
	token   string
	profile *Profile
	raw     map[string]any
}

func (m *Manager) requestLogin(ctx context.Context, payload Credentials) (*loginResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode login payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.GetBaseURL()+m.cfg.GetAuthEndpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()).
			WithTextCode(TextCodeLoginFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read login response").
			WithTextCode(TextCodeLoginFailed)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, loginRejection(resp.StatusCode, raw)
	}

	var blob map[string]any
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode login response").
			WithTextCode(TextCodeLoginFailed)
	}

	token := firstString(blob, tokenFields)
	if token == "" {
		return nil, ErrMalformedAuthResponse
	}

	return &loginResult{
		token:   token,
		profile: profileFromAuthResponse(blob),
		raw:     blob,
	}, nil
}

// loginRejection builds the auth error for a non-2xx login response,
// prioritizing the backend's specific message field over its generic one.
func loginRejection(status int, body []byte) error {
	msg := ""

	var blob map[string]any
	if err := json.Unmarshal(body, &blob); err == nil {
		msg = firstString(blob, []string{"msg", "message"})
	}
	if msg == "" {
		msg = loginFallbackMessage
	}

	return goerrors.New(msg, goerrors.CategoryAuth).
		WithTextCode(TextCodeLoginFailed).
		WithCode(goerrors.CodeUnauthorized).
		WithMetadata(map[string]any{"status": status})
}

// loginErrorMessage extracts the most specific human-readable message from a
// login failure: backend-supplied text first, then the transport error, then
// the hardcoded fallback.
func loginErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return loginFallbackMessage
}

// remoteVerifier asks the backend whether the token is still honored. The
// verify endpoint answers 2xx for a live credential and 401 otherwise.
type remoteVerifier struct {
	http *http.Client
	url  string
}

func (v *remoteVerifier) Verify(ctx context.Context, token string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return false, err
	}

	resp, err := v.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return true, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("verify endpoint answered %d", resp.StatusCode)
	}
}
