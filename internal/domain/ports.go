package domain

import "context"

// Completer is a text-completion function over an LLM. Implementations may
// return an empty string with a nil error; callers own retry policy.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// SearchClient queries the external web search provider. On exhausted
// retries implementations return an empty slice rather than an error.
type SearchClient interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// PlacesClient looks up a hotel's photos and contact details. A nil result
// with nil error means the place was not found. Configured reports whether
// the provider has credentials; unconfigured clients are skipped entirely.
type PlacesClient interface {
	Lookup(ctx context.Context, name, location string) (*PlaceInfo, error)
	Configured() bool
}
