package embedding

import (
	"context"
	"errors"
	"io"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/metrics"
)

// CachedProvider consults caches in order before calling the wrapped provider. A hit in a later
// cache is copied into the earlier ones. Cache failures are logged and never fail an embedding.
type CachedProvider struct {
	provider Provider
	caches   []Cache
	logger   ectologger.Logger
}

func NewCachedProvider(provider Provider, logger ectologger.Logger, caches ...Cache) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		caches:   caches,
		logger:   logger,
	}
}

func (p *CachedProvider) Model() string { return p.provider.Model() }

func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	key := CacheKey(p.provider.Model(), text)
	log := p.logger.WithContext(ctx)

	for i, cache := range p.caches {
		vector, ok, err := cache.Get(ctx, key)
		if err != nil {
			log.WithError(err).Warnf("Embedding cache lookup failed for %q", text)
			continue
		}
		if ok {
			metrics.RecordEmbeddingCacheLookup(true)
			p.fill(ctx, p.caches[:i], key, vector)
			return vector, nil
		}
	}
	metrics.RecordEmbeddingCacheLookup(false)

	vector, err := p.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, ErrEmptyEmbedding
	}

	p.fill(ctx, p.caches, key, vector)
	return vector, nil
}

func (p *CachedProvider) fill(ctx context.Context, caches []Cache, key string, vector []float64) {
	for _, cache := range caches {
		if err := cache.Set(ctx, key, vector); err != nil {
			p.logger.WithContext(ctx).WithError(err).Warn("Failed to store embedding in cache")
		}
	}
}

// Reset empties every cache.
func (p *CachedProvider) Reset(ctx context.Context) error {
	var errs []error
	for _, cache := range p.caches {
		if err := cache.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases caches that hold connections.
func (p *CachedProvider) Close() error {
	var errs []error
	for _, cache := range p.caches {
		if closer, ok := cache.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
