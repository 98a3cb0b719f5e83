package proxy

import (
	"context"
	"io"
	"net/http"
	"time"
)

// defaultUserAgent identifies the proxy to upstream origins.
const defaultUserAgent = "Course-Streaming-Proxy/1.0"

// Prober determines metadata about an upstream resource without downloading
// it. All probe failures are recovered silently: an unknown total size is a
// legal outcome the rest of the pipeline must tolerate, never a request
// failure.
type Prober struct {
	client    *http.Client
	userAgent string
}

// NewProber returns a Prober whose probes are bounded by timeout, which is
// deliberately much shorter than the main fetch timeout so an upstream that
// handles HEAD or ranged GETs badly cannot stall the request pipeline.
func NewProber(timeout time.Duration, userAgent string) *Prober {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Prober{
		client: &http.Client{
			Timeout:       timeout,
			CheckRedirect: limitRedirects,
		},
		userAgent: userAgent,
	}
}

// Head issues a HEAD probe and returns the declared content length (-1 when
// absent) and content type. ok is false when the probe failed or the upstream
// did not answer 2xx; in particular an exhausted redirect chain surfaces its
// final 3xx here, and that response's metadata describes the redirect, not
// the asset.
func (p *Prober) Head(ctx context.Context, target string) (length int64, contentType string, ok bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return -1, "", false
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return -1, "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return -1, "", false
	}
	return resp.ContentLength, resp.Header.Get("Content-Type"), true
}

// TotalSize determines the total byte length of target, or -1 when it cannot
// be determined. Strategy, first success wins: HEAD Content-Length, then a
// minimal "bytes=0-0" GET whose Content-Range trailer carries the total.
func (p *Prober) TotalSize(ctx context.Context, target string) int64 {
	if length, _, ok := p.Head(ctx, target); ok && length >= 0 {
		return length
	}
	return p.rangedProbe(ctx, target)
}

func (p *Prober) rangedProbe(ctx context.Context, target string) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return -1
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Range", "bytes=0-0")

	resp, err := p.client.Do(req)
	if err != nil {
		return -1
	}
	defer resp.Body.Close()
	// Drain the single probe byte so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return -1
	}
	if total, ok := parseContentRangeTotal(resp.Header.Get("Content-Range")); ok {
		return total
	}
	return -1
}

// limitRedirects caps upstream redirect chains at five hops.
func limitRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= 5 {
		return http.ErrUseLastResponse
	}
	return nil
}
