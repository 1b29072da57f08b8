// Package llm defines the capability interface for text-generation backends
// and the concrete providers the action layer calls into.
package llm

import (
	"context"
	"time"
)

// Per-operation timeouts applied when the caller's context has no deadline.
const (
	healthTimeout   = 3 * time.Second
	modelsTimeout   = 8 * time.Second
	generateTimeout = 60 * time.Second
)

// Provider is one LLM backend. Generate is the only call the gesture
// pipeline depends on; health and model listing serve the surrounding UI.
type Provider interface {
	// ID is the stable registry key, e.g. "ollama".
	ID() string

	// DisplayName is the human-readable provider name.
	DisplayName() string

	// IsHealthy probes the backend. The message explains an unhealthy
	// result, or carries a non-fatal note for a healthy one.
	IsHealthy(ctx context.Context) (bool, string)

	// ListModels returns the models the backend serves, sorted and
	// deduplicated.
	ListModels(ctx context.Context) ([]string, error)

	// Generate produces text for prompt using model at temperature.
	Generate(ctx context.Context, prompt, model string, temperature float64) (string, error)
}

// withTimeout bounds ctx by d unless it already has a deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
