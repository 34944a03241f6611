// Package store is a minimal client for the hosted auth+database service the
// product uses as its remote session store. It covers exactly the surface the
// application consumes: password sign-in, sign-up, token refresh, and typed
// reads of the user, assistants and chat_history relations.
package store

import (
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrRowNotFound is returned by single-row reads when the filter matched
// nothing.
var ErrRowNotFound = errors.New("row not found")

// Store talks to one project of the hosted service. The public (anon) key is
// sent as the apikey header on every request; a user access token, once set,
// rides along as the bearer token so row-level policies see the caller.
type Store struct {
	rest *resty.Client
}

// New constructs a Store for the project at baseURL with the given public key.
func New(baseURL, publicKey string) *Store {
	if baseURL == "" {
		panic("store baseURL cannot be empty")
	}
	if publicKey == "" {
		panic("store publicKey cannot be empty")
	}

	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("apikey", publicKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &Store{rest: c}
}

// SetToken installs the access token used as the bearer credential on
// subsequent requests. Call with "" to drop back to anonymous access.
// Not safe to call concurrently with in-flight requests; the session manager
// serializes token changes.
func (s *Store) SetToken(accessToken string) {
	s.rest.SetAuthToken(accessToken)
}
