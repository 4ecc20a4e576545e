package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"fern-api"`
	Version                       string   `env:"APP_VERSION" env-default:"dev"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"30"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"30"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	MaxBodySize                   string   `env:"HTTP_SERVER_MAX_BODY_SIZE" env-default:"32M"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Embedding provider: "http" calls an external model server, "hashing" is an offline fallback
	EmbeddingProvider       string `env:"EMBEDDING_PROVIDER" env-default:"hashing"`
	EmbeddingURL            string `env:"EMBEDDING_URL" env-default:"http://localhost:8080/embed"`
	EmbeddingModel          string `env:"EMBEDDING_MODEL" env-default:"all-MiniLM-L6-v2"`
	EmbeddingAPIKey         string `env:"EMBEDDING_API_KEY" env-default:""`
	EmbeddingCacheSize      int    `env:"EMBEDDING_CACHE_SIZE" env-default:"10000"`
	EmbeddingTimeoutSeconds int    `env:"EMBEDDING_TIMEOUT_SECONDS" env-default:"30"`
	EmbeddingConcurrency    int    `env:"EMBEDDING_CONCURRENCY" env-default:"4"`
	EmbeddingDimensions     int    `env:"EMBEDDING_DIMENSIONS" env-default:"256"`

	// Redis (shared embedding cache)
	RedisEnabled             bool   `env:"REDIS_ENABLED" env-default:"false"`
	RedisHost                string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort                int    `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword            string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB                  int    `env:"REDIS_DB" env-default:"0"`
	EmbeddingCacheTTLSeconds int    `env:"EMBEDDING_CACHE_TTL_SECONDS" env-default:"86400"`

	// Kafka (merge outcome events)
	KafkaEnabled          bool     `env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers          []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaMergeEventsTopic string   `env:"KAFKA_MERGE_EVENTS_TOPIC" env-default:"merge-events"`
	KafkaCompression      string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`
	KafkaRequiredAcks     int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`

	// Tracing
	TracingEnabled bool   `env:"TRACING_ENABLED" env-default:"false"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	OTLPProtocol   string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	OTLPInsecure   bool   `env:"OTLP_INSECURE" env-default:"true"`

	// Reconciliation defaults
	DefaultOutputDateFormat string  `env:"DEFAULT_OUTPUT_DATE_FORMAT" env-default:"dd-MM-yyyy"`
	DateSampleSize          int     `env:"DATE_SAMPLE_SIZE" env-default:"5"`
	PreviewRowLimit         int     `env:"PREVIEW_ROW_LIMIT" env-default:"10"`
	AutoMapMinScore         float64 `env:"AUTOMAP_MIN_SCORE" env-default:"0"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// a missing .env is normal outside local development
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return &cfg, nil
}
