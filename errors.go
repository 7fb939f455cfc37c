package session

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeNotAuthenticated = "session_not_authenticated"
	TextCodeLoginFailed      = "session_login_failed"
	TextCodeExpired          = "session_expired"
	TextCodeMalformedReply   = "session_malformed_auth_response"
	TextCodeInitFailed       = "session_init_failed"
)

// ErrNotAuthenticated is returned when an operation requires an active session.
var ErrNotAuthenticated = errors.New("not authenticated", errors.CategoryAuth).
	WithTextCode(TextCodeNotAuthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrSessionExpired is returned when the backend signals the credential is no
// longer valid.
var ErrSessionExpired = errors.New("session expired", errors.CategoryAuth).
	WithTextCode(TextCodeExpired).
	WithCode(errors.CodeUnauthorized)

// ErrMalformedAuthResponse is returned when a login response carries no
// usable token.
var ErrMalformedAuthResponse = errors.New("authentication response missing token", errors.CategoryInternal).
	WithTextCode(TextCodeMalformedReply)

// loginFallbackMessage is the last-resort human readable login error, used
// only when neither the backend nor the transport supplied anything better.
const loginFallbackMessage = "unable to sign in, please try again"
