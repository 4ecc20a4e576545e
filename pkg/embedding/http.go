package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
)

const (
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum response body size (10MB)
	MaxResponseSize = 10 * 1024 * 1024
)

// HTTPConfig configures a remote embedding service.
type HTTPConfig struct {
	URL     string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// HTTPProvider calls a remote embedding endpoint. The request body is {"model", "input"} and the
// response may be either {"embedding": [...]} or {"data": [{"embedding": [...]}]}.
type HTTPProvider struct {
	cfg    HTTPConfig
	client *http.Client
	logger ectologger.Logger
}

func NewHTTPProvider(cfg HTTPConfig, logger ectologger.Logger) *HTTPProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &HTTPProvider{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    100,
				IdleConnTimeout: 90 * time.Second,
			},
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

func (p *HTTPProvider) Model() string { return p.cfg.Model }

type embedRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
	Data      []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	start := time.Now()

	payload, err := json.Marshal(embedRequest{Model: p.cfg.Model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Errorf("Embedding request failed: POST %s", p.cfg.URL)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response body too large: %d bytes (max %d)", len(body), MaxResponseSize)
	}

	p.logger.WithContext(ctx).Debugf("Embedding POST %s -> %d (%s)", p.cfg.URL, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}

	var parsed embedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("malformed embedding response: %w", err)
	}

	vector := parsed.Embedding
	if len(vector) == 0 && len(parsed.Data) > 0 {
		vector = parsed.Data[0].Embedding
	}
	if len(vector) == 0 {
		return nil, ErrEmptyEmbedding
	}

	return vector, nil
}
