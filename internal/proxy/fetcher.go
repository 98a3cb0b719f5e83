package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// sanitizedContentType replaces textual content types declared for video
// assets. Some misconfigured origins label binary payloads text/plain, which
// makes browsers refuse playback.
const sanitizedContentType = "video/mp4"

// ErrUpstreamTimeout indicates the upstream did not answer within the main
// fetch timeout.
var ErrUpstreamTimeout = errors.New("upstream timeout")

// ErrUpstreamUnreachable indicates a transport-level failure opening the
// upstream connection.
var ErrUpstreamUnreachable = errors.New("upstream unreachable")

// UpstreamStatusError is returned when the upstream answered with a non-2xx
// status before any body bytes were proxied.
type UpstreamStatusError struct {
	Status int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// ClientStatus maps the upstream status to one the proxy can surface to its
// own client: 4xx/5xx pass through, anything else becomes 502.
func (e *UpstreamStatusError) ClientStatus() int {
	if e.Status >= 400 && e.Status < 600 {
		return e.Status
	}
	return http.StatusBadGateway
}

// Fetcher opens the real upstream data transfer. Exactly one attempt is made
// per client request; players retry on their own and blind retries of large
// video fetches would double cost and latency.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher returns a Fetcher. headerTimeout bounds only the wait for the
// upstream response headers; the body transfer itself is governed by the
// request context, so long streams are not cut off mid-transfer.
func NewFetcher(headerTimeout time.Duration, userAgent string) *Fetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &Fetcher{
		client: &http.Client{
			Transport:     transport,
			CheckRedirect: limitRedirects,
		},
		userAgent: userAgent,
	}
}

// Fetch issues the streaming GET against target, forwarding rangeHeader
// upstream when non-empty (best-effort; the upstream may ignore it). The
// returned response's Body must be closed by the caller. Errors are
// ErrUpstreamTimeout, ErrUpstreamUnreachable, or *UpstreamStatusError.
func (f *Fetcher) Fetch(ctx context.Context, target, rangeHeader string) (*UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, ErrUpstreamUnreachable
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "video/*, */*")
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrUpstreamTimeout
		}
		return nil, ErrUpstreamUnreachable
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &UpstreamStatusError{Status: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(strings.ToLower(contentType), "text/") {
		contentType = sanitizedContentType
	}

	return &UpstreamResponse{
		Status:        resp.StatusCode,
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
		ContentRange:  resp.Header.Get("Content-Range"),
		Body:          resp.Body,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
