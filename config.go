package session

// SimpleConfig is a plain-struct Config implementation. Zero fields fall back
// to the defaults the Brocha backend expects.
type SimpleConfig struct {
	BaseURL              string
	AuthEndpoint         string
	VerifyEndpoint       string
	TokenHeader          string
	AuthScheme           string
	TokenKey             string
	ProfileKey           string
	LoginRoute           string
	RejectedRouteKey     string
	RejectedRouteDefault string
}

// DefaultConfig returns a SimpleConfig populated with the conventions the
// original front-end shipped with.
func DefaultConfig(baseURL string) *SimpleConfig {
	return &SimpleConfig{
		BaseURL:              baseURL,
		AuthEndpoint:         "/api/auth/login",
		VerifyEndpoint:       "/api/auth/renew",
		TokenHeader:          "x-token",
		AuthScheme:           "Bearer",
		TokenKey:             "token",
		ProfileKey:           "auth",
		LoginRoute:           "/login",
		RejectedRouteKey:     "redirect_after_login",
		RejectedRouteDefault: "/",
	}
}

func (c *SimpleConfig) GetBaseURL() string { return c.BaseURL }

func (c *SimpleConfig) GetAuthEndpoint() string {
	return defaultString(c.AuthEndpoint, "/api/auth/login")
}

func (c *SimpleConfig) GetVerifyEndpoint() string {
	return defaultString(c.VerifyEndpoint, "/api/auth/renew")
}

func (c *SimpleConfig) GetTokenHeader() string {
	return defaultString(c.TokenHeader, "x-token")
}

func (c *SimpleConfig) GetAuthScheme() string {
	return defaultString(c.AuthScheme, "Bearer")
}

func (c *SimpleConfig) GetTokenKey() string {
	return defaultString(c.TokenKey, "token")
}

func (c *SimpleConfig) GetProfileKey() string {
	return defaultString(c.ProfileKey, "auth")
}

func (c *SimpleConfig) GetLoginRoute() string {
	return defaultString(c.LoginRoute, "/login")
}

func (c *SimpleConfig) GetRejectedRouteKey() string {
	return defaultString(c.RejectedRouteKey, "redirect_after_login")
}

func (c *SimpleConfig) GetRejectedRouteDefault() string {
	return defaultString(c.RejectedRouteDefault, "/")
}

func defaultString(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
