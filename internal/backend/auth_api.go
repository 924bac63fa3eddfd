package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/spec-kit/backoffice-console/internal/domain"
	"github.com/spec-kit/backoffice-console/internal/normalize"
)

// Auth endpoints, relative to the API prefix.
const (
	signInPath         = "/sign-in"
	signUpPath         = "/sign-up"
	signOutPath        = "/sign-out"
	forgotPasswordPath = "/forgot-password"
	resetPasswordPath  = "/reset-password"
)

// AuthResponse is the parsed answer of sign-in and sign-up.
type AuthResponse struct {
	Token   domain.Token
	User    domain.User
	Message string
}

// SignIn posts the credentials form-encoded. The backend names the login
// field "email" although it carries the user name.
func (c *Client) SignIn(ctx context.Context, creds domain.Credentials) (*AuthResponse, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   signInPath,
		Form: url.Values{
			"email":    {creds.UserName},
			"password": {creds.Password},
		},
	})
	if err != nil {
		return nil, err
	}
	return parseAuthResponse(resp.Body), nil
}

// SignUp registers an account.
func (c *Client) SignUp(ctx context.Context, reg domain.Registration) (*AuthResponse, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   signUpPath,
		JSON: map[string]string{
			"userName": reg.UserName,
			"email":    reg.Email,
			"password": reg.Password,
		},
	})
	if err != nil {
		return nil, err
	}
	return parseAuthResponse(resp.Body), nil
}

// SignOut invalidates the token upstream.
func (c *Client) SignOut(ctx context.Context, token string) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: signOutPath, Token: token})
	return err
}

// Profile fetches the signed-in user's full profile.
func (c *Client) Profile(ctx context.Context, token, path string) (domain.User, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Token: token})
	if err != nil {
		return domain.User{}, err
	}
	user, _ := normalize.Detail(resp.Body, "user", normalize.User)
	return user, nil
}

// ForgotPassword asks the backend to mail a reset link and returns its message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   forgotPasswordPath,
		JSON:   map[string]string{"email": email},
	})
	if err != nil {
		return "", err
	}
	return messageFromBody(resp.Body), nil
}

// ResetPassword sets a new password using the emailed reset token.
func (c *Client) ResetPassword(ctx context.Context, password, resetToken string) (string, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   resetPasswordPath,
		JSON:   map[string]string{"password": password, "token": resetToken},
	})
	if err != nil {
		return "", err
	}
	return messageFromBody(resp.Body), nil
}

func parseAuthResponse(body []byte) *AuthResponse {
	out := &AuthResponse{Message: messageFromBody(body)}
	if !gjson.ValidBytes(body) {
		return out
	}
	root := gjson.ParseBytes(body)
	out.Token = domain.Token{
		AccessToken:  firstString(root, "token", "accessToken", "access_token", "data.token", "data.accessToken"),
		RefreshToken: firstString(root, "refreshToken", "refresh_token", "data.refreshToken"),
	}
	for _, path := range []string{"user", "data.user"} {
		if u := root.Get(path); u.IsObject() {
			out.User = normalize.User(u)
			break
		}
	}
	return out
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
