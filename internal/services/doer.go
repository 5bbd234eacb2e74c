package services

import (
	"context"
	"net/url"
)

// List-endpoint page bounds. Defaults mirror what the dashboard requests;
// the cap keeps a stray caller from asking for an unbounded page.
const (
	defaultListLimit = 30
	maxListLimit     = 200
)

// Doer is the transport contract required by the endpoint services: a
// cached, classified request client. Implemented by *transport.Client;
// tests substitute recording fakes.
type Doer interface {
	// Get issues a cached read and decodes the response into out.
	Get(ctx context.Context, path string, query url.Values, out interface{}) error

	// Post issues a create/command write; related cache entries are
	// invalidated before it returns.
	Post(ctx context.Context, path string, body, out interface{}) error

	// Patch issues a partial-update write with the same invalidation
	// contract as Post.
	Patch(ctx context.Context, path string, body, out interface{}) error
}
