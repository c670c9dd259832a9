package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"wavecast-hq/tunegate/pkg/proxypool"
)

// maxErrorBody caps how much of an upstream response is kept in error
// values. Player responses run to hundreds of kilobytes.
const maxErrorBody = 2048

// Config contains configuration for the upstream client. BaseURL is
// required; zero values elsewhere disable the corresponding feature.
type Config struct {
	// BaseURL is the provider's API origin.
	BaseURL string

	// APIKey is appended to API calls when set.
	APIKey string

	// ClientName and ClientVersion identify the device profile the
	// client impersonates in API payloads.
	ClientName    string
	ClientVersion string

	// UserAgent, Origin and AcceptLanguage are sent on every outbound
	// request so resolution and relay present one identity.
	UserAgent      string
	Origin         string
	AcceptLanguage string

	// AllowedHosts lists hostnames recognized by ExtractMediaID. Nil
	// falls back to DefaultAllowedHosts.
	AllowedHosts []string

	// Timeout bounds metadata calls. Streams are never given an overall
	// deadline; they are bounded by their context.
	Timeout time.Duration

	// Transport knobs for the direct (unproxied) transport.
	DialTimeout           time.Duration
	ResponseHeaderTimeout time.Duration
	MaxIdleConns          int
	IdleConnTimeout       time.Duration

	// ThrottleRPS and ThrottleBurst bound the outbound request rate.
	// Zero RPS disables the throttle.
	ThrottleRPS   float64
	ThrottleBurst int

	// TrendingQueries seeds the trending surface; TrendingSeed makes
	// the query rotation reproducible when non-zero.
	TrendingQueries []string
	TrendingSeed    int64

	// Pool supplies outbound proxies. Nil means direct connections.
	Pool *proxypool.Pool

	Logger *slog.Logger
}

// Client talks to the media provider. All calls honor their context and
// none retry; callers decide retry policy.
type Client struct {
	config   Config
	base     *url.URL
	direct   *http.Transport
	throttle *rate.Limiter
	seeds    *seedPicker
	logger   *slog.Logger
}

// NewClient creates an upstream client from the given configuration.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, &ValidationError{Field: "base_url", Message: "base URL is required"}
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, &ValidationError{Field: "base_url", Message: "invalid base URL: " + err.Error()}
	}
	if config.AllowedHosts == nil {
		config.AllowedHosts = DefaultAllowedHosts
	}
	if config.TrendingQueries == nil {
		config.TrendingQueries = DefaultTrendingQueries
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		config: config,
		base:   base,
		direct: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: config.DialTimeout,
			}).DialContext,
			MaxIdleConns:          config.MaxIdleConns,
			MaxIdleConnsPerHost:   config.MaxIdleConns,
			IdleConnTimeout:       config.IdleConnTimeout,
			ResponseHeaderTimeout: config.ResponseHeaderTimeout,
			DisableCompression:    false,
			ForceAttemptHTTP2:     true,
		},
		seeds:  newSeedPicker(config.TrendingQueries, config.TrendingSeed),
		logger: logger.With("component", "upstream"),
	}
	if config.ThrottleRPS > 0 {
		burst := config.ThrottleBurst
		if burst < 1 {
			burst = 1
		}
		c.throttle = rate.NewLimiter(rate.Limit(config.ThrottleRPS), burst)
	}
	return c, nil
}

// PickProxy selects one proxy endpoint from the configured pool. The
// second return is false when the client runs without a pool.
func (c *Client) PickProxy() (proxypool.Endpoint, bool, error) {
	if c.config.Pool == nil {
		return proxypool.Endpoint{}, false, nil
	}
	ep, err := c.config.Pool.Pick()
	if err != nil {
		return proxypool.Endpoint{}, false, err
	}
	return ep, true, nil
}

// transportFor returns the transport for one outbound call. A non-nil
// via pins the call to that endpoint; otherwise the pool picks, and
// without a pool the direct transport is used.
func (c *Client) transportFor(via *proxypool.Endpoint) (http.RoundTripper, string, error) {
	if via != nil {
		if c.config.Pool == nil {
			return nil, "", errors.New("proxy endpoint given but no pool configured")
		}
		return c.config.Pool.Transport(*via), via.Key(), nil
	}
	if c.config.Pool == nil {
		return c.direct, "", nil
	}
	ep, err := c.config.Pool.Pick()
	if err != nil {
		return nil, "", err
	}
	return c.config.Pool.Transport(ep), ep.Key(), nil
}

// identify sets the headers that make every outbound request present
// the same client identity.
func (c *Client) identify(req *http.Request) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if c.config.Origin != "" {
		req.Header.Set("Origin", c.config.Origin)
	}
	if c.config.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.config.AcceptLanguage)
	}
}

func (c *Client) wait(ctx context.Context) error {
	if c.throttle == nil {
		return nil
	}
	return c.throttle.Wait(ctx)
}

// apiURL builds the endpoint URL for an API path, attaching the key
// when one is configured.
func (c *Client) apiURL(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if c.config.APIKey != "" {
		q := u.Query()
		q.Set("key", c.config.APIKey)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// watchURL builds the canonical watch URL for a media id.
func (c *Client) watchURL(id string) string {
	u := *c.base
	u.Path = "/watch"
	u.RawQuery = url.Values{"v": {id}}.Encode()
	return u.String()
}

// postJSON performs one API call: marshal, send, decode. It never
// retries. op names the call in error values and logs.
func (c *Client) postJSON(ctx context.Context, op, path string, payload, out any, via *proxypool.Endpoint) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", op, err)
	}
	transport, proxyKey, err := c.transportFor(via)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL(path), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.identify(req)

	client := &http.Client{
		Transport: transport,
		Timeout:   c.config.Timeout,
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		var ue *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ue) && ue.Timeout()) {
			return &TimeoutError{Operation: op, Timeout: c.config.Timeout}
		}
		return &UpstreamError{Operation: op, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Operation: op, StatusCode: resp.StatusCode, Message: "failed to read response", Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(raw),
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ParseError{Operation: op, RawResponse: truncate(string(raw), maxErrorBody), Cause: err}
	}

	c.logger.Debug("upstream call completed",
		"operation", op,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"proxy", proxyKey,
	)
	return nil
}

// upstreamMessage pulls the provider's own error wording out of a
// failure body, falling back to the raw text.
func upstreamMessage(raw []byte) string {
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Error.Message != "" {
		return wrapped.Error.Message
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "upstream request failed"
	}
	return truncate(msg, maxErrorBody)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
