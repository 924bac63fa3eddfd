// Package session holds the per-client console session: the signed-in flag,
// the user profile and access to the client's token store.
package session

import "github.com/spec-kit/backoffice-console/internal/domain"

// State is the session state of one console client.
type State struct {
	SignedIn bool        `json:"signedIn"`
	User     domain.User `json:"user"`
}

// SetUser replaces the profile.
func (s *State) SetUser(user domain.User) {
	s.User = user
}

// SetSessionSignedIn sets the signed-in flag.
func (s *State) SetSessionSignedIn(signedIn bool) {
	s.SignedIn = signedIn
}

// Reset returns the state to its initial empty value.
func (s *State) Reset() {
	*s = State{}
}
