// Package client talks to a stamping server over HTTP. It submits digests
// for anchoring and downloads the proofs the server publishes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/frankonly/upstamp/crypto"
	"github.com/frankonly/upstamp/log"
)

const (
	// MaxResponseSize bounds every response body read by the client
	MaxResponseSize = 1 << 20

	HeaderRequestID = "X-Request-ID"

	defaultUserAgent = "upstamp"
	defaultTimeout   = 30 * time.Second
	maxErrorBody     = 256
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides default retry settings
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     5,
	InitialBackoff:  100 * time.Millisecond,
	MaxBackoff:      5 * time.Second,
	BackoffMultiple: 2.0,
}

type Config struct {
	// Endpoint receives stamp submissions
	Endpoint string
	Timeout  time.Duration
	Retry    RetryConfig
	// RateLimit is in requests per second, zero disables limiting
	RateLimit float64
	Burst     int
	UserAgent string

	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
}

// StampResponse is the server's answer to a submission
type StampResponse struct {
	// URL is where the proof will be published
	URL string `json:"url"`
}

type stampRequest struct {
	Hash crypto.Digest `json:"hash"`
}

// Client handles network communication with a stamping server
type Client struct {
	endpoint  *url.URL
	retry     RetryConfig
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	logger    *zap.SugaredLogger
}

// New creates a client from cfg, filling unset fields with defaults
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("stamp endpoint cannot be empty")
	}
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid stamp endpoint %q: %w", cfg.Endpoint, err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("invalid stamp endpoint %q: scheme must be http or https", cfg.Endpoint)
	}

	retry := cfg.Retry
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	if retry.BackoffMultiple < 1 {
		retry.BackoffMultiple = 1
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New()
	}

	return &Client{
		endpoint:  endpoint,
		retry:     retry,
		userAgent: userAgent,
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logger,
	}, nil
}

// Endpoint returns the submission URL
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Stamp submits d for anchoring and returns where its proof will appear.
// A relative proof URL is resolved against the endpoint.
func (c *Client) Stamp(ctx context.Context, d crypto.Digest) (*StampResponse, error) {
	data, err := json.Marshal(stampRequest{Hash: d})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stamp request: %w", err)
	}

	res, err := c.roundTrip(ctx, http.MethodPost, c.endpoint.String(), data)
	if err != nil {
		return nil, err
	}

	switch res.status {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		return nil, res.statusError()
	}

	stamp := &StampResponse{}
	if err := json.Unmarshal(res.body, stamp); err != nil {
		return nil, fmt.Errorf("%w: stamp response for %s: %s", ErrBadResponse, d.Hex(), err.Error())
	}
	if strings.TrimSpace(stamp.URL) == "" {
		return nil, fmt.Errorf("%w: stamp response for %s has no proof url", ErrBadResponse, d.Hex())
	}

	ref, err := url.Parse(strings.TrimSpace(stamp.URL))
	if err != nil {
		return nil, fmt.Errorf("%w: proof url %q: %s", ErrBadResponse, stamp.URL, err.Error())
	}
	stamp.URL = c.endpoint.ResolveReference(ref).String()

	c.logger.Debugw("stamp submitted", "hash", d.Hex(), "url", stamp.URL)
	return stamp, nil
}

// FetchProof downloads the serialized proof published at target
func (c *Client) FetchProof(ctx context.Context, target string) ([]byte, error) {
	res, err := c.roundTrip(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	switch res.status {
	case http.StatusOK:
		c.logger.Debugw("proof fetched", "url", target, "size", len(res.body))
		return res.body, nil
	case http.StatusAccepted:
		return nil, fmt.Errorf("%s: %w", target, ErrPending)
	case http.StatusNotFound, http.StatusGone:
		return nil, fmt.Errorf("%s: %w", target, ErrNotFound)
	default:
		return nil, res.statusError()
	}
}

type response struct {
	method string
	url    string
	status int
	body   []byte
}

func (r *response) statusError() *StatusError {
	body := strings.TrimSpace(string(r.body))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{Method: r.method, URL: r.url, StatusCode: r.status, Body: body}
}

// roundTrip repeats a request with backoff while it fails in transport or
// with a temporary status. The last response is returned as is.
func (c *Client) roundTrip(ctx context.Context, method, target string, body []byte) (*response, error) {
	backoff := c.retry.InitialBackoff
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		res, err := c.send(ctx, method, target, body)
		switch {
		case err == nil && !temporary(res.status):
			return res, nil
		case err == nil:
			if attempt == c.retry.MaxAttempts-1 {
				return res, nil
			}
			lastErr = res.statusError()
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, ErrBadResponse):
			return nil, err
		default:
			lastErr = err
		}

		if attempt < c.retry.MaxAttempts-1 {
			c.logger.Debugw("request failed, retrying", "method", method, "url", target,
				"attempt", attempt+1, "backoff", backoff, "error", lastErr)
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = time.Duration(float64(backoff) * c.retry.BackoffMultiple)
			if backoff > c.retry.MaxBackoff {
				backoff = c.retry.MaxBackoff
			}
		}
	}

	c.logger.Warnw("request failed", "method", method, "url", target, "attempts", c.retry.MaxAttempts, "error", lastErr)
	return nil, fmt.Errorf("%s %s failed after %d attempts: %w", method, target, c.retry.MaxAttempts, lastErr)
}

func (c *Client) send(ctx context.Context, method, target string, body []byte) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request url %q: %s", ErrBadResponse, target, err.Error())
	}

	requestID := uuid.New().String()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("%w: %s %s: body exceeds %d bytes", ErrBadResponse, method, target, MaxResponseSize)
	}

	c.logger.Debugw("request done", "method", method, "url", target, "status", resp.StatusCode, "request_id", requestID)
	return &response{method: method, url: target, status: resp.StatusCode, body: data}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
