package session

import (
	"encoding/json"
	"errors"

	"github.com/brochaworks/go-session/store"
)

// CredentialStore is the durable backing for the credential and the raw
// authentication response. It owns exactly two keys and absorbs every
// storage-layer failure: reads degrade to empty so the rest of the system
// always sees a well-defined state.
type CredentialStore struct {
	backing store.Store
	cfg     Config
	logger  Logger
}

// NewCredentialStore wraps a key/value backend with the never-throw
// credential persistence contract.
func NewCredentialStore(backing store.Store, cfg Config) *CredentialStore {
	return &CredentialStore{
		backing: backing,
		cfg:     cfg,
		logger:  defLogger{},
	}
}

func (s *CredentialStore) WithLogger(l Logger) *CredentialStore {
	if l != nil {
		s.logger = l
	}
	return s
}

// WriteCredential stores the token under the fixed token key, overwriting any
// existing value. No expiry is enforced locally.
func (s *CredentialStore) WriteCredential(token string) {
	if err := s.backing.Set(s.cfg.GetTokenKey(), token); err != nil {
		s.logger.Error("credential write failed: %v", err)
	}
}

// WriteAuthResponse serializes and stores the full raw authentication
// response, not a normalized subset.
func (s *CredentialStore) WriteAuthResponse(blob map[string]any) {
	raw, err := json.Marshal(blob)
	if err != nil {
		s.logger.Error("auth response encode failed: %v", err)
		return
	}
	if err := s.backing.Set(s.cfg.GetProfileKey(), string(raw)); err != nil {
		s.logger.Error("auth response write failed: %v", err)
	}
}

// ReadCredential returns the stored token or empty. It never fails; storage
// errors are logged and reported as "no credential".
func (s *CredentialStore) ReadCredential() string {
	val, err := s.backing.Get(s.cfg.GetTokenKey())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("credential read failed: %v", err)
		}
		return ""
	}
	return val
}

// ReadProfile reads and deserializes the stored authentication response. A
// wrapper object carrying a nested user record is unwrapped, and any
// credential field nested inside the profile is stripped. Absence and parse
// failures both yield nil.
func (s *CredentialStore) ReadProfile() *Profile {
	raw, err := s.backing.Get(s.cfg.GetProfileKey())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("profile read failed: %v", err)
		}
		return nil
	}

	var blob map[string]any
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		s.logger.Error("profile parse failed: %v", err)
		return nil
	}

	return profileFromAuthResponse(blob)
}

// Clear removes both keys unconditionally. Calling it with nothing stored is
// not an error.
func (s *CredentialStore) Clear() {
	if err := s.backing.Delete(s.cfg.GetTokenKey()); err != nil {
		s.logger.Error("credential delete failed: %v", err)
	}
	if err := s.backing.Delete(s.cfg.GetProfileKey()); err != nil {
		s.logger.Error("auth response delete failed: %v", err)
	}
}

// profileFromAuthResponse extracts the principal record from an
// authentication response. The user record may live under a dedicated
// sub-field or be the flattened remainder of the response.
func profileFromAuthResponse(blob map[string]any) *Profile {
	if blob == nil {
		return nil
	}

	for _, key := range userBlobFields {
		if nested, ok := blob[key].(map[string]any); ok {
			return NewProfile(nested)
		}
	}

	return NewProfile(blob)
}
