// Package service holds the crawl orchestration and scoring pipelines.
package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kickon/kickon/internal/config"
)

// ModelClient calls the hosted numeric model over HTTP. The model takes one
// CSV-encoded feature row and answers with a bare probability.
type ModelClient struct {
	client   *resty.Client
	endpoint string
}

// NewModelClient creates a model client.
func NewModelClient(cfg *config.ModelConfig) *ModelClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "text/csv")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &ModelClient{
		client:   client,
		endpoint: cfg.Endpoint,
	}
}

// Score sends one feature row and returns the model's base probability.
// Transport failures, non-2xx statuses, and unparsable bodies all surface
// as errors; the caller decides whether a row is skippable.
func (c *ModelClient) Score(ctx context.Context, featureCSV string) (float64, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(featureCSV).
		Post(c.endpoint)
	if err != nil {
		return 0, fmt.Errorf("model request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("model returned HTTP %d", resp.StatusCode())
	}

	body := strings.TrimSpace(string(resp.Body()))
	prob, err := strconv.ParseFloat(strings.Trim(body, `"`), 64)
	if err != nil {
		return 0, fmt.Errorf("model returned non-numeric body %q", body)
	}

	return prob, nil
}
