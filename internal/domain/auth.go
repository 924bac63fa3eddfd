package domain

// Token is the bearer credential pair issued by the backend or an OAuth provider.
type Token struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Credentials is the sign-in form. UserName travels on the wire as "email".
type Credentials struct {
	UserName string
	Password string
}

// Registration is the sign-up form.
type Registration struct {
	UserName string
	Email    string
	Password string
}

// AuthStatus is the outcome of an authentication flow.
type AuthStatus string

const (
	AuthStatusSuccess AuthStatus = "success"
	AuthStatusFailed  AuthStatus = "failed"
)
