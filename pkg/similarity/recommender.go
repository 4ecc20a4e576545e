package similarity

import (
	"context"
	"math"
	"sync"

	"github.com/Gobusters/ectolinq"
	"golang.org/x/sync/errgroup"

	"github.com/Ramsey-B/fern/pkg/embedding"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
)

const DefaultConcurrency = 4

// Options tunes how embeddings are fetched. Concurrency 1 embeds sequentially.
type Options struct {
	Concurrency int
}

// Recommender pairs each target field with its most similar source field.
type Recommender struct {
	provider    embedding.Provider
	concurrency int
}

func NewRecommender(provider embedding.Provider, opts Options) *Recommender {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Recommender{
		provider:    provider,
		concurrency: opts.Concurrency,
	}
}

// Recommend embeds every distinct name once and picks, for each target, the source with the
// strictly greatest similarity. Ties keep the earlier source. The first source is the fallback
// so every target gets a match when sources exist. Any failure is a RecommendationServiceError
// and no partial result is returned.
func (r *Recommender) Recommend(ctx context.Context, targets, sources []string) (map[string]models.Recommendation, error) {
	recommendations := make(map[string]models.Recommendation, len(targets))
	if len(targets) == 0 || len(sources) == 0 {
		return recommendations, nil
	}

	vectors, err := r.embedAll(ctx, append(append([]string{}, targets...), sources...))
	if err != nil {
		return nil, err
	}

	for _, target := range targets {
		bestScore := math.Inf(-1)
		bestMatch := ""

		for _, source := range sources {
			score, err := Cosine(vectors[target], vectors[source])
			if err != nil {
				return nil, apperrors.NewMergeErrorf(apperrors.KindRecommendationServiceError,
					"cannot compare %q with %q: %w", target, source, err).AddField(target)
			}
			if score > bestScore {
				bestScore = score
				bestMatch = source
			}
		}

		recommendations[target] = models.Recommendation{
			BestMatch: bestMatch,
			Score:     Round4(bestScore),
		}
	}

	return recommendations, nil
}

func (r *Recommender) embedAll(ctx context.Context, names []string) (map[string][]float64, error) {
	unique := []string{}
	seen := map[string]struct{}{}
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}

	vectors := make(map[string][]float64, len(unique))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, name := range unique {
		g.Go(func() error {
			vector, err := r.provider.Embed(gctx, name)
			if err != nil {
				return apperrors.NewMergeErrorf(apperrors.KindRecommendationServiceError,
					"failed to embed %q: %w", name, err).AddField(name)
			}
			if len(vector) == 0 {
				return apperrors.NewMergeErrorf(apperrors.KindRecommendationServiceError,
					"failed to embed %q: %w", name, embedding.ErrEmptyEmbedding).AddField(name)
			}

			mu.Lock()
			vectors[name] = vector
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// AutoMapOptions controls which recommendations become mappings.
type AutoMapOptions struct {
	// MinScore drops recommendations scoring below it. Zero keeps everything.
	MinScore float64
	// SourceDateFormats holds the detected input format per source field.
	SourceDateFormats map[string]string
	// DefaultDateFormat is used for date-typed targets whose source format is unknown.
	DefaultDateFormat string
}

// AutoMap turns recommendations into a single-source mapping table. Targets without an accepted
// recommendation are left out so FieldMappings.Missing reports them.
func AutoMap(targets []string, recommendations map[string]models.Recommendation, types map[string]models.FieldType, opts AutoMapOptions) models.FieldMappings {
	mappings := models.FieldMappings{}

	accepted := ectolinq.Filter(targets, func(target string) bool {
		rec, ok := recommendations[target]
		return ok && rec.BestMatch != "" && (opts.MinScore == 0 || rec.Score >= opts.MinScore)
	})

	for _, target := range accepted {
		source := recommendations[target].BestMatch
		mappings.SetSources(target, []string{source})

		if types[target] != models.FieldTypeDate {
			continue
		}
		if format, ok := opts.SourceDateFormats[source]; ok && format != "" {
			mappings.SetDateFormat(target, format)
		} else if opts.DefaultDateFormat != "" {
			mappings.SetDateFormat(target, opts.DefaultDateFormat)
		}
	}

	return mappings
}
