package session

import (
	"encoding/json"
	"strings"
)

// UserRole is the user's role
type UserRole = string

// RoleAdmin is the designated administrator role. A profile carrying it
// satisfies every role and permission check.
const RoleAdmin UserRole = "admin"

// The backend (and the services that feed it) never settled on one naming
// convention, so every logical field is resolved through an ordered fallback
// chain over the known variants. Documented once here; do not probe fields
// ad hoc at call sites.
var (
	idFields        = []string{"uid", "id", "_id", "user_id", "userId"}
	emailFields     = []string{"email", "correo", "mail"}
	nameFields      = []string{"nombre", "name", "first_name", "firstName", "Nombre", "Name"}
	lastNameFields  = []string{"apellido", "last_name", "lastName", "Apellido"}
	roleFields      = []string{"rol", "role", "user_role", "tipo", "Rol", "Role"}
	permFields      = []string{"permisos", "permissions", "perms"}
	tokenFields     = []string{"token", "accessToken", "access_token", "jwt"}
	userBlobFields  = []string{"user", "usuario"}
)

// Profile is the server-supplied principal record. The full raw object is
// retained; typed accessors resolve the known fields through the fallback
// chains above.
type Profile struct {
	data map[string]any
}

// NewProfile wraps a raw server-supplied record. Token fields accidentally
// nested inside the record are stripped; they belong to the credential, not
// the principal.
func NewProfile(data map[string]any) *Profile {
	if data == nil {
		return nil
	}
	clean := make(map[string]any, len(data))
	for k, v := range data {
		clean[k] = v
	}
	for _, key := range tokenFields {
		delete(clean, key)
	}
	return &Profile{data: clean}
}

// Raw returns the underlying record. Callers must not mutate it.
func (p *Profile) Raw() map[string]any {
	if p == nil {
		return nil
	}
	return p.data
}

// ID returns the principal identifier under any of its known names.
func (p *Profile) ID() string {
	return p.firstString(idFields)
}

// Email returns the principal email under any of its known names.
func (p *Profile) Email() string {
	return p.firstString(emailFields)
}

// DisplayName resolves the display name, joining first and last name
// components when both are present.
func (p *Profile) DisplayName() string {
	first := p.firstString(nameFields)
	last := p.firstString(lastNameFields)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

// Role returns the role designator under any of its known names.
func (p *Profile) Role() UserRole {
	return p.firstString(roleFields)
}

// Permissions returns the optional permission list, empty when absent.
func (p *Profile) Permissions() []string {
	if p == nil || p.data == nil {
		return nil
	}
	for _, key := range permFields {
		raw, ok := p.data[key]
		if !ok {
			continue
		}
		switch list := raw.(type) {
		case []string:
			return list
		case []any:
			perms := make([]string, 0, len(list))
			for _, item := range list {
				if s, ok := item.(string); ok {
					perms = append(perms, s)
				}
			}
			return perms
		}
	}
	return nil
}

// IsAdmin reports whether the profile carries the designated admin role,
// case-insensitively.
func (p *Profile) IsAdmin() bool {
	return strings.EqualFold(p.Role(), RoleAdmin)
}

// HasRole checks if the user has a specific role. The admin role satisfies
// every requested role; any other role must match case-insensitively.
func (p *Profile) HasRole(role string) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return role != "" && strings.EqualFold(p.Role(), role)
}

// HasPermission checks membership in the permission list. The admin role is
// always satisfied.
func (p *Profile) HasPermission(perm string) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	for _, have := range p.Permissions() {
		if strings.EqualFold(have, perm) {
			return true
		}
	}
	return false
}

func (p *Profile) firstString(keys []string) string {
	if p == nil || p.data == nil {
		return ""
	}
	return firstString(p.data, keys)
}

// MarshalJSON serializes the raw record unchanged.
func (p *Profile) MarshalJSON() ([]byte, error) {
	if p == nil || p.data == nil {
		return []byte("null"), nil
	}
	return json.Marshal(p.data)
}

// UnmarshalJSON replaces the raw record.
func (p *Profile) UnmarshalJSON(raw []byte) error {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}
	p.data = data
	return nil
}

func firstString(data map[string]any, keys []string) string {
	for _, key := range keys {
		raw, ok := data[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		case float64:
			// JSON numbers decode to float64; identifiers are whole values.
			return trimFloat(v)
		}
	}
	return ""
}

func trimFloat(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
