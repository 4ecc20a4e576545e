package app

import (
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/services/reconcile"
	"github.com/Ramsey-B/fern/pkg/embedding"
	"github.com/Ramsey-B/fern/pkg/formula"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/similarity"
)

// NewRedisClient returns nil when Redis is disabled.
func NewRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.RedisEnabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// NewEmbeddingProvider picks the configured provider and layers an in-process cache over an
// optional shared Redis cache.
func NewEmbeddingProvider(cfg *config.Config, logger ectologger.Logger, rdb *redis.Client) (*embedding.CachedProvider, error) {
	var provider embedding.Provider
	switch cfg.EmbeddingProvider {
	case "http":
		provider = embedding.NewHTTPProvider(embedding.HTTPConfig{
			URL:     cfg.EmbeddingURL,
			Model:   cfg.EmbeddingModel,
			APIKey:  cfg.EmbeddingAPIKey,
			Timeout: time.Duration(cfg.EmbeddingTimeoutSeconds) * time.Second,
		}, logger)
	case "hashing", "":
		provider = embedding.NewHashingProvider(cfg.EmbeddingDimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}

	ttl := time.Duration(cfg.EmbeddingCacheTTLSeconds) * time.Second
	caches := []embedding.Cache{
		embedding.NewMemoryCache(embedding.MemoryCacheConfig{MaxSize: cfg.EmbeddingCacheSize, TTL: ttl}),
	}
	if rdb != nil {
		caches = append(caches, embedding.NewRedisCache(rdb, "", ttl))
	}

	return embedding.NewCachedProvider(provider, logger, caches...), nil
}

// NewProducer returns nil when Kafka is disabled.
func NewProducer(cfg *config.Config, logger ectologger.Logger) (*kafka.Producer, error) {
	if !cfg.KafkaEnabled {
		return nil, nil
	}

	producerCfg := kafka.DefaultProducerConfig()
	producerCfg.Brokers = cfg.KafkaBrokers
	producerCfg.Topic = cfg.KafkaMergeEventsTopic
	producerCfg.Compression = cfg.KafkaCompression
	producerCfg.RequiredAcks = cfg.KafkaRequiredAcks

	return kafka.NewProducer(producerCfg, logger)
}

func NewReconcileService(cfg *config.Config, logger ectologger.Logger, provider embedding.Provider, publisher reconcile.EventPublisher) *reconcile.Service {
	recommender := similarity.NewRecommender(provider, similarity.Options{Concurrency: cfg.EmbeddingConcurrency})
	return reconcile.NewService(recommender, formula.NewEvaluator(), publisher, logger, reconcile.Options{
		DateSampleSize:          cfg.DateSampleSize,
		PreviewRowLimit:         cfg.PreviewRowLimit,
		DefaultOutputDateFormat: cfg.DefaultOutputDateFormat,
	})
}
