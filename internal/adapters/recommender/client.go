// Package recommender is the HTTP client for the remote recommendation service.
//
// The service exposes two endpoints:
//
//	GET /recommend/all      -> ["title", ...]
//	GET /recommend/{title}  -> {"recommendations": ["title", ...]}
//
// Every call is attempted once. Failures surface as *FetchError or *ParseError;
// callers decide whether to fall back.
package recommender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/okian/cinemind/pkg/logger"
	"github.com/okian/cinemind/pkg/metrics"
)

// Endpoint labels used in errors, logs and metrics.
const (
	EndpointAll       = "all"
	EndpointRecommend = "recommend"
)

// Default client configuration constants.
const (
	defaultTimeout   = 10 * time.Second
	defaultRateBurst = 10
	maxBodyBytes     = 8 << 20
	errorSnippetLen  = 256
	breakerName      = "recommender"
)

// Client talks to the recommendation service.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration

	rateRPS   float64
	rateBurst int
	limiter   *rate.Limiter

	breakerCfg BreakerConfig
	breaker    *gobreaker.CircuitBreaker[[]byte]

	logger logger.Logger
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    defaultTimeout,
		rateBurst:  defaultRateBurst,
		breakerCfg: BreakerConfig{}.withDefaults(),
		logger:     logger.Get().Named("recommender"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	if c.rateRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(c.rateRPS), c.rateBurst)
	}
	c.breaker = newBreaker(breakerName, c.breakerCfg, c.logger)
	return c
}

// AllTitles fetches every title known to the service.
func (c *Client) AllTitles(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, EndpointAll, c.baseURL+"/recommend/all")
	if err != nil {
		return nil, err
	}

	var titles []string
	if err := json.Unmarshal(body, &titles); err != nil {
		return nil, &ParseError{Endpoint: EndpointAll, Err: err}
	}
	if titles == nil {
		// A literal null is not a list.
		return nil, &ParseError{Endpoint: EndpointAll, Err: errors.New("payload is not a list")}
	}
	return titles, nil
}

// Recommendations fetches titles recommended for seed. An absent or malformed
// "recommendations" field yields an empty list; a body that is not a JSON
// object is a ParseError.
func (c *Client) Recommendations(ctx context.Context, seed string) ([]string, error) {
	body, err := c.get(ctx, EndpointRecommend, c.baseURL+"/recommend/"+url.PathEscape(seed))
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Recommendations json.RawMessage `json:"recommendations"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ParseError{Endpoint: EndpointRecommend, Err: err}
	}

	titles := []string{}
	if len(envelope.Recommendations) == 0 {
		return titles, nil
	}
	if err := json.Unmarshal(envelope.Recommendations, &titles); err != nil || titles == nil {
		c.logger.Debug(ctx, "ignoring malformed recommendations field", logger.String("seed", seed))
		return []string{}, nil
	}
	return titles, nil
}

// get performs one GET through the limiter and breaker and returns the body.
func (c *Client) get(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		b, err := c.do(ctx, endpoint, reqURL)
		if err != nil && ctx.Err() != nil {
			// Cancelled or past the caller's deadline. The client's own
			// timeout leaves ctx intact and still counts as a failure.
			return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("%w: %w", errCallerGone, ctx.Err())}
		}
		return b, err
	})
	latency := float64(time.Since(start).Milliseconds())
	metrics.RecordRemoteFetchLatency(endpoint, latency)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordRemoteFetch(endpoint, "rejected")
			return nil, &FetchError{Endpoint: endpoint, Err: err}
		}
		if errors.Is(err, errCallerGone) {
			metrics.RecordRemoteFetch(endpoint, "abandoned")
			return nil, err
		}
		metrics.RecordRemoteFetch(endpoint, "failure")
		return nil, err
	}
	metrics.RecordRemoteFetch(endpoint, "success")
	return body, nil
}

func (c *Client) do(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet(body)),
		}
	}
	return body, nil
}

func snippet(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) > errorSnippetLen {
		body = body[:errorSnippetLen]
	}
	return string(body)
}
