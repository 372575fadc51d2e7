package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cancomp/internal/logging"
)

const (
	DefaultBaseURL    = "https://musicbrainz.org/ws/2"
	DefaultMaxRetries = 5
	DefaultTimeout    = 60 * time.Second
	bodySnippetLimit  = 4096
)

// Observer receives per-attempt request telemetry.
type Observer interface {
	ObserveRequest(statusCode int, elapsed time.Duration)
	ObserveRetry(reason string)
}

// Config describes the MusicBrainz client configuration.
type Config struct {
	BaseURL   string
	UserAgent string
	// Timeout bounds each attempt. Zero selects DefaultTimeout.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Throttle is shared by every client talking to the same service.
	// When nil a new one with MinInterval is created.
	Throttle   *Throttle
	HTTPClient *http.Client
	Logger     *slog.Logger
	Observer   Observer
}

// Client wraps the MusicBrainz web service.
type Client struct {
	baseURL    *url.URL
	userAgent  string
	maxRetries int
	throttle   *Throttle
	http       *http.Client
	logger     *slog.Logger
	observer   Observer

	sleep  func(context.Context, time.Duration) error
	jitter func() time.Duration
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		return nil, errors.New("musicbrainz: user agent is required")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("musicbrainz: max retries must not be negative, got %d", cfg.MaxRetries)
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz: parse base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	throttle := cfg.Throttle
	if throttle == nil {
		throttle = NewThrottle(MinInterval)
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		maxRetries: cfg.MaxRetries,
		throttle:   throttle,
		http:       httpClient,
		logger:     logging.NewComponentLogger(cfg.Logger, "musicbrainz"),
		observer:   cfg.Observer,
		sleep:      SleepWithContext,
		jitter:     defaultJitter,
	}, nil
}

type attemptResult struct {
	status     int
	retryAfter string
	body       []byte
}

// Get issues a GET for path with query, decoding the JSON body into out.
// Throttling, retries, and backoff are applied transparently; the returned
// error is always a *RemoteError.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	endpoint.RawQuery = query.Encode()
	target := endpoint.String()

	for attempt := 0; ; attempt++ {
		res, err := c.attempt(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return &RemoteError{Kind: KindCanceled, URL: target, Attempts: attempt + 1, Err: ctx.Err()}
			}
			kind, transient := classifyTransportError(err)
			if !transient || attempt >= c.maxRetries {
				return &RemoteError{Kind: kind, URL: target, Attempts: attempt + 1, Err: err}
			}
			delay := backoffDelay(attempt) + c.jitter()
			if err := c.waitRetry(ctx, attempt, delay, string(kind), 0, err); err != nil {
				return &RemoteError{Kind: KindCanceled, URL: target, Attempts: attempt + 1, Err: err}
			}
			continue
		}

		if isRetryableStatus(res.status) && attempt < c.maxRetries {
			delay, ok := parseRetryAfter(res.retryAfter)
			if !ok {
				delay = backoffDelay(attempt) + c.jitter()
			}
			if err := c.waitRetry(ctx, attempt, delay, "status", res.status, nil); err != nil {
				return &RemoteError{Kind: KindCanceled, URL: target, Attempts: attempt + 1, Err: err}
			}
			continue
		}

		if res.status < 200 || res.status > 299 {
			return &RemoteError{
				Kind:       KindHTTP,
				URL:        target,
				StatusCode: res.status,
				Body:       snippet(res.body),
				Attempts:   attempt + 1,
			}
		}
		if err := json.Unmarshal(res.body, out); err != nil {
			return &RemoteError{Kind: KindDecode, URL: target, StatusCode: res.status, Attempts: attempt + 1, Err: err}
		}
		return nil
	}
}

func (c *Client) attempt(ctx context.Context, target string) (attemptResult, error) {
	release, err := c.throttle.Acquire(ctx)
	if err != nil {
		return attemptResult{}, err
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return attemptResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(0, time.Since(start))
		return attemptResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observe(resp.StatusCode, time.Since(start))
	if err != nil {
		return attemptResult{}, fmt.Errorf("read response body: %w", err)
	}
	return attemptResult{
		status:     resp.StatusCode,
		retryAfter: resp.Header.Get("Retry-After"),
		body:       body,
	}, nil
}

func (c *Client) waitRetry(ctx context.Context, attempt int, delay time.Duration, reason string, status int, cause error) error {
	attrs := []logging.Attr{
		logging.Int("attempt", attempt+1),
		logging.Int("max_retries", c.maxRetries),
		logging.Duration("delay", delay),
		logging.String("reason", reason),
		logging.String(logging.FieldImpact, "release group lookup delayed"),
		logging.String(logging.FieldErrorHint, "MusicBrainz is rate limiting or unavailable; retrying automatically"),
	}
	if status != 0 {
		attrs = append(attrs, logging.Int("status", status))
	}
	if cause != nil {
		attrs = append(attrs, logging.Error(cause))
	}
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), "musicbrainz request retry", "musicbrainz_retry", attrs...)
	if c.observer != nil {
		c.observer.ObserveRetry(reason)
	}
	return c.sleep(ctx, delay)
}

func (c *Client) observe(status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(status, elapsed)
	}
}

func snippet(body []byte) string {
	if len(body) > bodySnippetLimit {
		body = body[:bodySnippetLimit]
	}
	return strings.TrimSpace(string(body))
}
