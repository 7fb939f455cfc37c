// Package session mirrors a server-issued bearer credential into local
// storage and keeps client-side session state consistent with it.
//
// The package is the single choke point between a front-end and the Brocha
// ERP backend's authentication contract:
//   - CredentialStore persists exactly two values (the opaque token and the
//     raw authentication response) on a pluggable store.Store backend. Reads
//     never fail; storage errors are logged and degrade to "no credential".
//   - Transport is an http.RoundTripper that attaches the stored credential
//     to every outgoing request and reacts to an authorization failure on any
//     response by terminating the session and forcing navigation back to the
//     login route.
//   - Manager is the observable state container. It is the only legal mutator
//     of the {user, token, authenticated, loading, error} tuple and exposes
//     the Login, Logout, InitializeAuth, VerifyAuthentication,
//     RefreshAuthState, and ClearError operations.
//   - Guard gates view rendering on the authenticated flag and on role or
//     permission requirements derived from the current profile.
//
// Front-end integration points (navigation, notifications) are expressed as
// small interfaces with logging defaults so the package stays usable from a
// CLI, a TUI, or a server-rendered shell alike.
package session
