package session

import "context"

var profileCtxKey = &contextKey{"profile"}

type contextKey struct {
	name string
}

// WithContext sets the Profile in the given context
func WithContext(r context.Context, user *Profile) context.Context {
	return context.WithValue(r, profileCtxKey, user)
}

// FromContext finds the profile from the context.
func FromContext(ctx context.Context) (*Profile, bool) {
	raw, ok := ctx.Value(profileCtxKey).(*Profile)
	return raw, ok
}

// Can is a convenience function to check a permission directly from the
// standard context.
func Can(ctx context.Context, permission string) bool {
	user, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return user.HasPermission(permission)
}

// HasRole is a convenience function to check a role directly from the
// standard context.
func HasRole(ctx context.Context, role string) bool {
	user, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return user.HasRole(role)
}
