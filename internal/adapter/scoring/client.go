package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
	"github.com/Temutjin2k/kekelink/pkg/metrics"
)

const (
	FallbackCategory    = "other"
	FallbackBaseFare    = 400
	FallbackMultiplier  = 1.25
	FallbackTotalFare   = 500
	FallbackExplanation = "Standard rate applied (AI pricing offline)"
)

var ErrDisabled = errors.New("scoring service not configured")

// Client talks to the external classification and pricing service. Every
// failure degrades to a static answer so callers never see an error.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     logger.Logger
}

// New returns a client for baseURL. An empty baseURL always yields fallbacks.
func New(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type classifyRequest struct {
	Content string `json:"content"`
}

// Classify labels free-text report content.
func (c *Client) Classify(ctx context.Context, content string) models.Classification {
	const op = "ScoringClient.Classify"

	var out models.Classification
	err := c.post(ctx, "/v1/classify", classifyRequest{Content: content}, &out)
	if err == nil && out.RiskLevel == "" {
		err = fmt.Errorf("response has no risk_level")
	}
	if err != nil {
		c.fallback(ctx, "classify", fmt.Errorf("%s: %w", op, err))
		return models.Classification{
			Category:  FallbackCategory,
			RiskLevel: types.RiskMedium,
			Summary:   content,
		}
	}
	return out
}

// Price asks for a fare estimate.
func (c *Client) Price(ctx context.Context, req models.FareRequest) models.FareQuote {
	const op = "ScoringClient.Price"

	var out models.FareQuote
	err := c.post(ctx, "/v1/price", req, &out)
	if err == nil && out.TotalFare <= 0 {
		err = fmt.Errorf("response has no total_fare")
	}
	if err != nil {
		c.fallback(ctx, "price", fmt.Errorf("%s: %w", op, err))
		return models.FareQuote{
			BaseFare:         FallbackBaseFare,
			DemandMultiplier: FallbackMultiplier,
			TotalFare:        FallbackTotalFare,
			Explanation:      FallbackExplanation,
			Fallback:         true,
		}
	}
	out.Fallback = false
	return out
}

func (c *Client) post(ctx context.Context, path string, body, dst any) error {
	if c.baseURL == "" {
		return ErrDisabled
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if id := wrap.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected response status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) fallback(ctx context.Context, operation string, err error) {
	metrics.ScoringFallbacksTotal.WithLabelValues(operation).Inc()
	if errors.Is(err, ErrDisabled) {
		c.log.Debug(ctx, "scoring disabled, using fallback", "operation", operation)
		return
	}
	c.log.Warn(wrap.WithAction(ctx, types.ActionExternalServiceFailed), "scoring unavailable, using fallback",
		"operation", operation, "error", err)
}
