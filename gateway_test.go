package session_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	session "github.com/brochaworks/go-session"
	"github.com/brochaworks/go-session/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, backing store.Store, opts ...session.TransportOption) (*session.Transport, store.Store) {
	t.Helper()

	cfg := session.DefaultConfig("http://backend.test")
	creds := session.NewCredentialStore(backing, cfg).WithLogger(nopLogger{})
	transient := store.NewMemory()

	opts = append([]session.TransportOption{session.WithTransportLogger(nopLogger{})}, opts...)
	return session.NewTransport(creds, cfg, transient, opts...), transient
}

func TestTransportInjectsCredentialHeaders(t *testing.T) {
	var gotToken, gotAuthz string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("x-token")
		gotAuthz = r.Header.Get("Authorization")
	}))
	defer server.Close()

	backing := store.NewMemory()
	require.NoError(t, backing.Set("token", "tok-1"))

	transport, _ := newTestTransport(t, backing)
	client := &http.Client{Transport: transport}

	resp, err := client.Get(server.URL + "/api/usuarios")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "tok-1", gotToken)
	assert.Equal(t, "Bearer tok-1", gotAuthz)
}

func TestTransportSkipsHeadersWithoutCredential(t *testing.T) {
	var sawToken, sawAuthz bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawToken = r.Header["X-Token"]
		_, sawAuthz = r.Header["Authorization"]
	}))
	defer server.Close()

	transport, _ := newTestTransport(t, store.NewMemory())
	client := &http.Client{Transport: transport}

	resp, err := client.Get(server.URL + "/api/usuarios")
	require.NoError(t, err)
	resp.Body.Close()

	assert.False(t, sawToken)
	assert.False(t, sawAuthz)
}

func TestTransportDoesNotMutateCallerRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	backing := store.NewMemory()
	require.NoError(t, backing.Set("token", "tok-1"))

	transport, _ := newTestTransport(t, backing)
	client := &http.Client{Transport: transport}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get("x-token"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestTransportExpiryReaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"msg": "token expired"})
	}))
	defer server.Close()

	backing := store.NewMemory()
	require.NoError(t, backing.Set("token", "stale"))

	nav := &mockNavigator{}
	nav.setCurrent("/billing/report?x=1")
	notifier := &mockNotifier{}
	ender := &mockEnder{}

	transport, transient := newTestTransport(t, backing,
		session.WithTransportNavigator(nav),
		session.WithTransportNotifier(notifier),
	)
	transport.BindSession(ender)
	client := &http.Client{Transport: transport}

	resp, err := client.Get(server.URL + "/api/nominas")
	require.NoError(t, err)
	defer resp.Body.Close()

	// The rejected response still reaches the caller untouched.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "token expired")

	// Exactly one silent termination.
	require.Equal(t, []bool{true}, ender.calls())

	// One expiry notice, navigation forced to the login route, and the
	// rejected route stashed for post-login restoration.
	notes := notifier.notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, session.LevelWarning, notes[0].Level)

	assert.Equal(t, []string{"/login"}, nav.navigations())

	stored, err := transient.Get("redirect_after_login")
	require.NoError(t, err)
	assert.Equal(t, "/billing/report?x=1", stored)
}

func TestTransportExpiryAtLoginRouteSkipsStash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	backing := store.NewMemory()
	require.NoError(t, backing.Set("token", "stale"))

	nav := &mockNavigator{}
	nav.setCurrent("/login")

	transport, transient := newTestTransport(t, backing, session.WithTransportNavigator(nav))
	transport.BindSession(&mockEnder{})
	client := &http.Client{Transport: transport}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	_, err = transient.Get("redirect_after_login")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, []string{"/login"}, nav.navigations())
}

func TestTransportPassesThroughOtherStatuses(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusForbidden, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		nav := &mockNavigator{}
		ender := &mockEnder{}

		transport, _ := newTestTransport(t, store.NewMemory(), session.WithTransportNavigator(nav))
		transport.BindSession(ender)
		client := &http.Client{Transport: transport}

		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		resp.Body.Close()
		server.Close()

		assert.Equal(t, status, resp.StatusCode)
		assert.Empty(t, ender.calls(), "status %d must not terminate the session", status)
		assert.Empty(t, nav.navigations())
	}
}

// End-to-end: an authenticated session whose next request is rejected must be
// fully terminated, storage included.
func TestSessionExpiryEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"user":  map[string]any{"id": "u-1", "rol": "worker"},
		})
	})
	mux.HandleFunc("/api/nominas", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	backing := store.NewMemory()
	nav := &mockNavigator{}
	notifier := &mockNotifier{}

	sess := session.New(session.DefaultConfig(server.URL), backing,
		session.WithSessionLogger(nopLogger{}),
		session.WithSessionNavigator(nav),
		session.WithSessionNotifier(notifier),
	)

	err := sess.Manager.Login(context.Background(), session.Credentials{
		Email:    "ana@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	require.True(t, sess.Manager.Snapshot().Authenticated)

	nav.setCurrent("/payroll")
	resp, err := sess.Client.Get(server.URL + "/api/nominas")
	require.NoError(t, err)
	resp.Body.Close()

	assert.False(t, sess.Manager.Snapshot().Authenticated)
	assert.Equal(t, 0, backing.Len())
	assert.Equal(t, []string{"/login"}, nav.navigations())
	assert.Equal(t, "/payroll", sess.Guard.RedirectTarget())

	// Silent logout plus the expiry notice means exactly one notification.
	require.Len(t, notifier.notifications(), 1)
	assert.Equal(t, session.LevelWarning, notifier.notifications()[0].Level)
}
