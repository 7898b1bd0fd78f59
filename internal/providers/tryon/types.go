package tryon

import "context"

// Request describes a normalized try-on passed to any provider. The selfie
// is available both as a public URL (for providers that fetch inputs
// themselves) and as raw bytes (for providers that take inline data).
type Request struct {
	PersonURL   string
	PersonImage []byte
	PersonMIME  string
	GarmentURL  string
	Category    string
	PromptExtra string
	RequestID   string
}

// Result is the generated composition. Image always holds the raw bytes so
// the caller owns the artifact lifecycle regardless of where the provider
// hosted its output.
type Result struct {
	Image       []byte
	MIME        string
	Description string
	RequestID   string
}

// Provider is the contract implemented by all try-on backends. Exactly one
// provider call is made per user request; failures are not retried here.
type Provider interface {
	Apply(ctx context.Context, req Request) (Result, error)
}
