package planner

import "errors"

// Planner errors.
var (
	// ErrMissingAPIKey indicates a hosted provider was configured without credentials.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrUnsupportedProvider indicates an unknown provider name.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrScriptExhausted indicates a test planner ran out of scripted decisions.
	ErrScriptExhausted = errors.New("script exhausted")

	// ErrNoProvider indicates a planner was built without a provider.
	ErrNoProvider = errors.New("no provider configured")

	// ErrEmptyResponse indicates the provider returned no content.
	ErrEmptyResponse = errors.New("empty response")
)
