package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"wavecast-hq/tunegate/pkg/proxypool"
)

// OpenStream opens the byte stream for one encoding. The returned body
// has no overall deadline; cancel ctx to abandon the transfer. A
// non-nil via pins the request to that proxy endpoint so resolution and
// relay can share one egress identity.
func (c *Client) OpenStream(ctx context.Context, desc EncodingDescriptor, via *proxypool.Endpoint) (*Stream, error) {
	if desc.URL == "" {
		return nil, &ValidationError{Field: "format", Message: "encoding has no stream URL"}
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	transport, proxyKey, err := c.transportFor(via)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, desc.URL, nil)
	if err != nil {
		return nil, &ValidationError{Field: "format", Message: "invalid stream URL: " + err.Error()}
	}
	c.identify(req)

	// No client timeout here. A relay runs as long as the media does
	// and is bounded by its context instead.
	client := &http.Client{Transport: transport}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		var ue *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ue) && ue.Timeout()) {
			return nil, &TimeoutError{Operation: "stream", Timeout: c.config.ResponseHeaderTimeout}
		}
		return nil, &UpstreamError{Operation: "stream", Message: "request failed", Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &UpstreamError{
			Operation:  "stream",
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(body),
		}
	}

	c.logger.Debug("stream opened",
		"itag", desc.Itag,
		"status", resp.StatusCode,
		"content_length", resp.ContentLength,
		"proxy", proxyKey,
	)
	return &Stream{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		StatusCode:    resp.StatusCode,
	}, nil
}
