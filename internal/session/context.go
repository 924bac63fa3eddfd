package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/spec-kit/backoffice-console/internal/domain"
	"github.com/spec-kit/backoffice-console/internal/tokenstore"
)

// RefreshTokenKey is the key the optional refresh token is stored under.
const RefreshTokenKey = "refresh_token"

// Context is the session of one console client: its id, its token store and
// its state. The token and the signed-in flag only change together through
// Establish and Teardown.
type Context struct {
	id     string
	tokens tokenstore.Store
	states StateRepository
	state  State
}

// Load reads the state of session id.
func Load(ctx context.Context, id string, tokens tokenstore.Store, states StateRepository) (*Context, error) {
	if id == "" {
		return nil, errors.New("session id is empty")
	}
	state, err := states.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session state: %w", err)
	}
	sc := &Context{id: id, tokens: tokens, states: states, state: state}
	if err := sc.dropOrphanedState(ctx); err != nil {
		return nil, err
	}
	return sc, nil
}

// dropOrphanedState tears down a signed-in state whose token has expired,
// so the next sign-in on this client starts from nothing.
func (c *Context) dropOrphanedState(ctx context.Context) error {
	if !c.state.SignedIn {
		return nil
	}
	token, err := c.Token(ctx)
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}
	if token != "" {
		return nil
	}
	if err := c.Teardown(ctx); err != nil {
		return fmt.Errorf("drop orphaned session state: %w", err)
	}
	return nil
}

// ID returns the session id.
func (c *Context) ID() string {
	return c.id
}

// State returns a copy of the current state.
func (c *Context) State() State {
	state := c.state
	state.User.Authority = append([]string(nil), c.state.User.Authority...)
	return state
}

// User returns the current profile.
func (c *Context) User() domain.User {
	return c.State().User
}

// Token reads the access token; an empty string means signed out.
func (c *Context) Token(ctx context.Context) (string, error) {
	return c.tokens.Get(ctx, tokenstore.TokenKey)
}

// Authenticated holds only when a token is stored and the session is
// signed in. A storage failure counts as not authenticated.
func (c *Context) Authenticated(ctx context.Context) bool {
	if !c.state.SignedIn {
		return false
	}
	token, err := c.Token(ctx)
	return err == nil && token != ""
}

// Establish stores the token, marks the session signed in and replaces the
// profile with user. Nothing of a previous profile survives. If the state
// cannot be saved the token is removed again.
func (c *Context) Establish(ctx context.Context, token domain.Token, user domain.User) error {
	if token.AccessToken == "" {
		return errors.New("access token is empty")
	}
	if err := c.tokens.Set(ctx, tokenstore.TokenKey, token.AccessToken); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if token.RefreshToken != "" {
		if err := c.tokens.Set(ctx, RefreshTokenKey, token.RefreshToken); err != nil {
			return multierr.Append(fmt.Errorf("store refresh token: %w", err), c.tokens.Remove(ctx, tokenstore.TokenKey))
		}
	} else if err := c.tokens.Remove(ctx, RefreshTokenKey); err != nil {
		return multierr.Append(fmt.Errorf("clear refresh token: %w", err), c.tokens.Remove(ctx, tokenstore.TokenKey))
	}

	var next State
	next.SetSessionSignedIn(true)
	next.SetUser(user)
	if err := c.save(ctx, next); err != nil {
		return multierr.Combine(err,
			c.tokens.Remove(ctx, tokenstore.TokenKey),
			c.tokens.Remove(ctx, RefreshTokenKey))
	}
	return nil
}

// Teardown clears the tokens and the state. Every step runs even when an
// earlier one fails; the in-memory state is always reset.
func (c *Context) Teardown(ctx context.Context) error {
	c.state.Reset()
	return multierr.Combine(
		c.tokens.Remove(ctx, tokenstore.TokenKey),
		c.tokens.Remove(ctx, RefreshTokenKey),
		c.states.Delete(ctx, c.id),
	)
}

func (c *Context) save(ctx context.Context, next State) error {
	if err := c.states.Save(ctx, c.id, next); err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	c.state = next
	return nil
}

// MergeProfile merges user into the stored profile of session id, provided
// the session is still signed in as the same user. It reports whether the
// profile was written.
func MergeProfile(ctx context.Context, states StateRepository, id string, user domain.User) (bool, error) {
	merged := false
	err := states.Update(ctx, id, func(state *State) bool {
		if !state.SignedIn {
			return false
		}
		if state.User.ID != "" && user.ID != "" && state.User.ID != user.ID {
			return false
		}
		state.SetUser(state.User.Merge(user))
		merged = true
		return true
	})
	return merged, err
}
