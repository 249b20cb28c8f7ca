package auth

const (
	ScopeOpenID  = "openid"
	ScopeProfile = "profile"
	ScopeEmail   = "email"
)

// AllScopes is the full set of scopes the staff console requests during the
// authorization code flow.
var AllScopes = []string{
	ScopeOpenID,
	ScopeProfile,
	ScopeEmail,
}
