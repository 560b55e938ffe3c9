// Package engine is the gateway to the external workflow engine's REST API.
// Every call carries a static API key, runs under a per-call timeout and goes
// through a circuit breaker. Failures are classified into apperr codes:
// ENotFound, EConflict, EEngineUnavailable (transport, timeout, 5xx) and
// EEngineInconsistent (unexpected 4xx, malformed payloads).
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"github.com/edvin/flowplane/internal/apperr"
	"github.com/edvin/flowplane/internal/metrics"
)

const (
	apiPrefix        = "/api/v1"
	pageLimit        = 100
	maxPages         = 1000
	maxResponseBytes = 16 << 20
	maxLoggedBody    = 4 << 10
)

type Config struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	CallTimeout  time.Duration
	CloneTimeout time.Duration
}

type Client struct {
	baseURL      string
	apiKey       string
	apiKeyHeader string
	callTimeout  time.Duration
	cloneTimeout time.Duration
	httpClient   *http.Client
	breaker      *gobreaker.CircuitBreaker
	folders      singleflight.Group
	logger       zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-N8N-API-KEY"
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 15 * time.Second
	}
	if cfg.CloneTimeout < cfg.CallTimeout {
		cfg.CloneTimeout = 3 * cfg.CallTimeout
	}

	c := &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		apiKeyHeader: cfg.APIKeyHeader,
		callTimeout:  cfg.CallTimeout,
		cloneTimeout: cfg.CloneTimeout,
		httpClient: &http.Client{
			Timeout: cfg.CloneTimeout,
		},
		logger: logger.With().Str("component", "engine").Logger(),
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "workflow-engine",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		// Not-found, conflicts and bad payloads mean the engine is up.
		IsSuccessful: func(err error) bool {
			return !apperr.Is(err, apperr.EEngineUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.EngineBreakerState.Set(float64(to))
			c.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("engine circuit breaker state changed")
		},
	})

	return c
}

// do sends one request through the circuit breaker and returns the response
// body of a 2xx answer.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		return c.roundTrip(ctx, op, method, path, body)
	})
	metrics.EngineRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = apperr.Wrap(apperr.EEngineUnavailable, op, "workflow engine is temporarily unavailable", err)
	}
	metrics.EngineRequests.WithLabelValues(op, metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set(c.apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperr.Wrap(apperr.EEngineUnavailable, op, "workflow engine timed out", err)
		}
		return nil, apperr.Wrap(apperr.EEngineUnavailable, op, "workflow engine is unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperr.Wrap(apperr.EEngineUnavailable, op, "read workflow engine response", err)
	}

	if resp.StatusCode < 300 {
		return respBody, nil
	}

	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.Wrap(apperr.ENotFound, op, "not found in workflow engine", statusErr)
	case resp.StatusCode == http.StatusConflict:
		return nil, apperr.Wrap(apperr.EConflict, op, "workflow engine reported a conflict", statusErr)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, apperr.Wrap(apperr.EEngineUnavailable, op, "workflow engine is unavailable", statusErr)
	default:
		c.logger.Error().Str("op", op).Int("status", resp.StatusCode).Str("body", truncate(respBody, maxLoggedBody)).
			Msg("workflow engine rejected request")
		return nil, apperr.Wrap(apperr.EEngineInconsistent, op, "workflow engine returned an unexpected response", statusErr)
	}
}

// StatusError is a non-2xx engine response. The body is kept for operators
// and never returned to API callers.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, truncate([]byte(e.Body), maxLoggedBody))
}

// inconsistent reports a 2xx response whose payload does not have the
// expected shape.
func (c *Client) inconsistent(op, msg string, raw []byte, cause error) error {
	c.logger.Error().Err(cause).Str("op", op).Str("body", truncate(raw, maxLoggedBody)).Msg(msg)
	if cause == nil {
		cause = errors.New(msg)
	}
	return apperr.Wrap(apperr.EEngineInconsistent, op, "workflow engine returned an unexpected response", cause)
}

func (c *Client) decodeWorkflow(op string, raw []byte) (*Workflow, error) {
	var w Workflow
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, c.inconsistent(op, "decode engine workflow", raw, err)
	}
	if w.ID == "" {
		return nil, c.inconsistent(op, "engine workflow without id", raw, nil)
	}
	w.Raw = json.RawMessage(raw)
	return &w, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "...(truncated)"
}
