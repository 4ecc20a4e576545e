// Package embedding turns field names into vectors for similarity matching.
package embedding

import (
	"context"
	"errors"
)

// ErrEmptyEmbedding is returned when a provider yields a vector with no components.
var ErrEmptyEmbedding = errors.New("embedding is empty")

// Provider embeds a single text. Implementations must be deterministic for the lifetime of a
// process and safe for concurrent use.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	// Model identifies the vector space; it namespaces cache keys.
	Model() string
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc struct {
	Name string
	Fn   func(ctx context.Context, text string) ([]float64, error)
}

func (p ProviderFunc) Embed(ctx context.Context, text string) ([]float64, error) {
	return p.Fn(ctx, text)
}

func (p ProviderFunc) Model() string { return p.Name }
