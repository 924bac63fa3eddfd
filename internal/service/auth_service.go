package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-console/internal/backend"
	"github.com/spec-kit/backoffice-console/internal/config"
	"github.com/spec-kit/backoffice-console/internal/domain"
	"github.com/spec-kit/backoffice-console/internal/events"
	"github.com/spec-kit/backoffice-console/internal/oauth"
	"github.com/spec-kit/backoffice-console/internal/observability"
	"github.com/spec-kit/backoffice-console/internal/session"
)

// NetworkErrorMessage is shown when the backend could not be reached at all.
const NetworkErrorMessage = "Unable to reach the server. Please check your connection and try again."

const (
	signInMethodCredentials = "credentials"
	signInMethodSignUp      = "sign-up"
)

// AuthBackend is the part of the backend API the auth flows need.
type AuthBackend interface {
	SignIn(ctx context.Context, creds domain.Credentials) (*backend.AuthResponse, error)
	SignUp(ctx context.Context, reg domain.Registration) (*backend.AuthResponse, error)
	SignOut(ctx context.Context, token string) error
	Profile(ctx context.Context, token, path string) (domain.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, password, resetToken string) (string, error)
}

// Flow carries the client a sign-in, sign-up or sign-out acts on.
type Flow struct {
	Session   *session.Context
	Navigator session.Navigator
	// RedirectURL is the raw redirect target requested by the client.
	RedirectURL string
}

// Result is the outcome reported to the client.
type Result struct {
	Status  domain.AuthStatus `json:"status"`
	Message string            `json:"message,omitempty"`
}

// OAuthHandshake is handed to the provider callback. OnSignIn completes the
// sign-in with what the provider returned; Redirect only navigates.
type OAuthHandshake struct {
	OnSignIn func(token domain.Token, user domain.User) Result
	Redirect func()
}

// AuthService orchestrates sign-in, sign-up and sign-out against the backend
// and keeps the token and the session state consistent.
type AuthService struct {
	backend       AuthBackend
	states        session.StateRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	metrics       *observability.Metrics
	cfg           config.AuthConfig
	oauthCfg      config.OAuthConfig
	profilePath   string
	enrichTimeout time.Duration

	// baseCtx outlives requests and is cancelled at shutdown.
	baseCtx context.Context
	wg      sync.WaitGroup
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Backend    AuthBackend
	States     session.StateRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewAuthService builds the service. Background profile enrichment runs on
// ctx and stops when it is cancelled.
func NewAuthService(ctx context.Context, cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		backend:       deps.Backend,
		states:        deps.States,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		metrics:       deps.Metrics,
		cfg:           cfg.Auth,
		oauthCfg:      cfg.OAuth,
		profilePath:   cfg.Backend.ProfilePath,
		enrichTimeout: cfg.Backend.Timeout(),
		baseCtx:       ctx,
	}
}

// SignIn authenticates with the backend and, on success, establishes the
// session and navigates to the redirect target.
func (s *AuthService) SignIn(ctx context.Context, flow Flow, creds domain.Credentials) Result {
	resp, err := s.backend.SignIn(ctx, creds)
	if err != nil {
		return s.fail(ctx, flow, signInMethodCredentials, creds.UserName, failureMessage(err), err)
	}
	return s.completeResponse(ctx, flow, signInMethodCredentials, creds.UserName, resp)
}

// SignUp registers with the backend and signs the new account in.
func (s *AuthService) SignUp(ctx context.Context, flow Flow, reg domain.Registration) Result {
	resp, err := s.backend.SignUp(ctx, reg)
	if err != nil {
		return s.fail(ctx, flow, signInMethodSignUp, reg.UserName, failureMessage(err), err)
	}
	return s.completeResponse(ctx, flow, signInMethodSignUp, reg.UserName, resp)
}

// SignOut tells the backend, tears the session down and navigates home.
// Teardown and navigation happen whatever the backend answers, so signing
// out twice is harmless.
func (s *AuthService) SignOut(ctx context.Context, flow Flow) Result {
	ctx = context.WithoutCancel(ctx)
	user := flow.Session.User()

	defer func() {
		if err := flow.Session.Teardown(ctx); err != nil {
			s.logger.Error("session teardown failed", zap.String("session_id", flow.Session.ID()), zap.Error(err))
		}
		s.publish(ctx, events.New(events.EventSignedOut, flow.Session.ID(), actorOf(user), nil))
		flow.Navigator.Navigate("/")
	}()

	token, err := flow.Session.Token(ctx)
	if err != nil {
		s.logger.Warn("read token for sign-out", zap.Error(err))
	}
	if token != "" {
		if err := s.backend.SignOut(ctx, token); err != nil {
			s.logger.Warn("backend sign-out failed", zap.String("session_id", flow.Session.ID()), zap.Error(err))
		}
	}
	return Result{Status: domain.AuthStatusSuccess}
}

// Expire tears the session down locally after the backend rejected its
// token, and sends the client back to sign in.
func (s *AuthService) Expire(ctx context.Context, flow Flow) {
	ctx = context.WithoutCancel(ctx)
	user := flow.Session.User()
	if err := flow.Session.Teardown(ctx); err != nil {
		s.logger.Error("session teardown failed", zap.String("session_id", flow.Session.ID()), zap.Error(err))
	}
	s.publish(ctx, events.New(events.EventSessionExpired, flow.Session.ID(), actorOf(user), nil))
	flow.Navigator.Navigate(s.cfg.UnauthenticatedEntryPath)
}

// OAuthSignIn hands callback the means to finish a provider sign-in and
// returns the callback's error.
func (s *AuthService) OAuthSignIn(ctx context.Context, flow Flow, callback func(OAuthHandshake) error) error {
	return callback(OAuthHandshake{
		OnSignIn: func(token domain.Token, user domain.User) Result {
			if token.AccessToken == "" {
				return s.fail(ctx, flow, "oauth", user.UserName, "Unable to sign in", nil)
			}
			return s.complete(ctx, flow, "oauth", token, user)
		},
		Redirect: func() {
			flow.Navigator.Navigate(s.ResolveRedirect(flow.RedirectURL))
		},
	})
}

// OAuthCredentials turns a provider identity into the session token and
// profile. Provider accounts get the configured default authority.
func (s *AuthService) OAuthCredentials(id oauth.Identity) (domain.Token, domain.User) {
	userName := id.Name
	if userName == "" {
		userName = id.Email
	}
	return domain.Token{AccessToken: id.AccessToken, RefreshToken: id.RefreshToken},
		domain.User{
			ID:        string(id.Provider) + ":" + id.Subject,
			UserName:  userName,
			Email:     id.Email,
			Authority: append([]string(nil), s.oauthCfg.DefaultAuthority...),
			Avatar:    id.Avatar,
		}
}

// ForgotPassword asks the backend to send a reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) Result {
	msg, err := s.backend.ForgotPassword(ctx, email)
	if err != nil {
		s.logger.Warn("forgot password failed", zap.Error(err))
		return Result{Status: domain.AuthStatusFailed, Message: failureMessage(err)}
	}
	return Result{Status: domain.AuthStatusSuccess, Message: msg}
}

// ResetPassword sets a new password with an emailed reset token.
func (s *AuthService) ResetPassword(ctx context.Context, password, resetToken string) Result {
	msg, err := s.backend.ResetPassword(ctx, password, resetToken)
	if err != nil {
		s.logger.Warn("reset password failed", zap.Error(err))
		return Result{Status: domain.AuthStatusFailed, Message: failureMessage(err)}
	}
	return Result{Status: domain.AuthStatusSuccess, Message: msg}
}

// ResolveRedirect accepts only same-origin relative paths and falls back to
// the authenticated entry path.
func (s *AuthService) ResolveRedirect(raw string) string {
	fallback := s.cfg.AuthenticatedEntryPath
	if fallback == "" {
		fallback = "/"
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, `/\`) {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return raw
}

// Wait blocks until in-flight profile enrichments have finished.
func (s *AuthService) Wait() {
	s.wg.Wait()
}

func (s *AuthService) completeResponse(ctx context.Context, flow Flow, method, userName string, resp *backend.AuthResponse) Result {
	if resp == nil || resp.Token.AccessToken == "" {
		msg := "Unable to sign in"
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		return s.fail(ctx, flow, method, userName, msg, nil)
	}
	user := resp.User
	if user.UserName == "" {
		user.UserName = userName
	}
	return s.complete(ctx, flow, method, resp.Token, user)
}

func (s *AuthService) complete(ctx context.Context, flow Flow, method string, token domain.Token, user domain.User) Result {
	if err := flow.Session.Establish(ctx, token, user); err != nil {
		s.logger.Error("establish session", zap.String("session_id", flow.Session.ID()), zap.Error(err))
		return s.fail(ctx, flow, method, user.UserName, err.Error(), err)
	}

	s.metrics.RecordSignIn(method, string(domain.AuthStatusSuccess))
	s.publish(ctx, events.New(events.EventSignedIn, flow.Session.ID(), actorOf(user), events.SignInPayload{Method: method}))
	s.enrich(flow.Session.ID(), token.AccessToken)

	flow.Navigator.Navigate(s.ResolveRedirect(flow.RedirectURL))
	return Result{Status: domain.AuthStatusSuccess}
}

func (s *AuthService) fail(ctx context.Context, flow Flow, method, userName, message string, err error) Result {
	fields := []zap.Field{zap.String("method", method), zap.String("user", userName)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Info("sign-in failed", fields...)
	s.metrics.RecordSignIn(method, string(domain.AuthStatusFailed))
	s.publish(ctx, events.New(events.EventSignInFailed, flow.Session.ID(), events.Actor{UserName: userName},
		events.SignInPayload{Method: method, Message: message}))
	return Result{Status: domain.AuthStatusFailed, Message: message}
}

// enrich fetches the full profile in the background and merges it into the
// session if it is still signed in as the same user.
func (s *AuthService) enrich(sessionID, token string) {
	if s.profilePath == "" {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.baseCtx, s.enrichTimeout)
		defer cancel()

		profile, err := s.backend.Profile(ctx, token, s.profilePath)
		if err != nil {
			s.logger.Warn("profile enrichment failed", zap.String("session_id", sessionID), zap.Error(err))
			s.metrics.RecordEnrichment("failed")
			return
		}
		merged, err := session.MergeProfile(ctx, s.states, sessionID, profile)
		if err != nil {
			s.logger.Warn("merge profile", zap.String("session_id", sessionID), zap.Error(err))
			s.metrics.RecordEnrichment("failed")
			return
		}
		if !merged {
			s.logger.Debug("session changed before profile arrived", zap.String("session_id", sessionID))
			s.metrics.RecordEnrichment("skipped")
			return
		}
		s.metrics.RecordEnrichment("merged")
		s.publish(ctx, events.New(events.EventProfileEnriched, sessionID, actorOf(profile), events.EnrichmentPayload{Merged: merged}))
	}()
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// failureMessage prefers what the server said, then a connectivity hint,
// then the error itself.
func failureMessage(err error) string {
	if msg := backend.ServerMessage(err); msg != "" {
		return msg
	}
	if backend.IsNetwork(err) {
		return NetworkErrorMessage
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	return err.Error()
}

func actorOf(user domain.User) events.Actor {
	return events.Actor{UserID: user.ID, UserName: user.UserName}
}
