package proxy

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"stream-proxy/internal/platform/metrics"
)

// copyBufferSize is the chunk size for the pull-based body copy loop.
const copyBufferSize = 64 * 1024

// Pipeline is the shared streaming path behind every proxy route: probe the
// upstream size, open the fetch, slice if the upstream ignored the range, and
// synthesize correct partial-content headers. Both the generic URL route and
// the gated lecture routes run through the same Pipeline; gating is a
// precondition evaluated by the caller, not a second copy of this logic.
type Pipeline struct {
	prober        *Prober
	fetcher       *Fetcher
	defaultWindow int64
	log           *slog.Logger
	metrics       *metrics.Metrics
}

// NewPipeline assembles a Pipeline. metrics may be nil to disable metric
// recording (e.g. in tests). defaultWindow <= 0 uses DefaultWindowBytes.
func NewPipeline(prober *Prober, fetcher *Fetcher, defaultWindow int64, log *slog.Logger, m *metrics.Metrics) *Pipeline {
	if defaultWindow <= 0 {
		defaultWindow = DefaultWindowBytes
	}
	return &Pipeline{prober: prober, fetcher: fetcher, defaultWindow: defaultWindow, log: log, metrics: m}
}

// Serve proxies target to the client honoring byte-range semantics. Exactly
// one response is produced per call. The caller has already authorized the
// request; Serve never consults access state.
func (p *Pipeline) Serve(w http.ResponseWriter, r *http.Request, target string) {
	if p.metrics != nil {
		p.metrics.StreamStarted()
		defer p.metrics.StreamFinished()
	}

	ctx := r.Context()
	rangeHeader := r.Header.Get("Range")
	spec, hasRange := ParseRange(rangeHeader)

	// Probing only matters when we may have to synthesize a 206 ourselves.
	total := int64(-1)
	if hasRange {
		total = p.prober.TotalSize(ctx, target)
	}

	forward := ""
	if hasRange {
		forward = rangeHeader
	}
	up, err := p.fetcher.Fetch(ctx, target, forward)
	if err != nil {
		p.upstreamError(w, err)
		return
	}
	defer up.Body.Close()

	setStreamHeaders(w.Header())
	w.Header().Set("Content-Type", up.ContentType)

	switch {
	case !hasRange:
		// Full-body transfer, 200.
		if up.ContentLength >= 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(up.ContentLength, 10))
		}
		w.WriteHeader(http.StatusOK)
		flush(w)
		p.pipe(w, up.Body, nil)

	case up.Cooperative():
		// Upstream already emits exactly the requested window; forward its
		// Content-Range verbatim and pipe the bytes through untouched.
		w.Header().Set("Content-Range", up.ContentRange)
		if up.ContentLength >= 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(up.ContentLength, 10))
		}
		w.WriteHeader(http.StatusPartialContent)
		flush(w)
		p.pipe(w, up.Body, nil)

	default:
		// Range-naive upstream: slice the full stream down to the window.
		if total < 0 && up.Status == http.StatusOK && up.ContentLength >= 0 {
			total = up.ContentLength
		}
		// A start past the last byte cannot be satisfied; a zero-length
		// resource still gets its 206 below.
		if total > 0 && spec.Start >= total {
			w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(total, 10))
			writeJSONError(w, http.StatusRequestedRangeNotSatisfiable, "range not satisfiable")
			return
		}
		window := ResolveWindow(spec, total, p.defaultWindow)
		w.Header().Set("Content-Range", window.ContentRange())
		w.Header().Set("Content-Length", strconv.FormatInt(window.Length(), 10))
		w.WriteHeader(http.StatusPartialContent)
		flush(w)
		p.pipe(w, up.Body, NewSlicer(window))
	}
}

// pipe runs the pull-based copy loop: read an upstream chunk only once the
// previous one has been written and flushed, so the client socket's
// write-readiness governs how fast the upstream is read. With a slicer the
// loop stops as soon as the window is delivered instead of waiting for
// upstream EOF; the deferred Body.Close in Serve then tears the upstream
// connection down.
func (p *Pipeline) pipe(w http.ResponseWriter, body io.Reader, slicer *Slicer) {
	buf := make([]byte, copyBufferSize)
	for {
		if slicer != nil && slicer.Done() {
			return
		}
		n, readErr := body.Read(buf)
		if n > 0 {
			out := buf[:n]
			if slicer != nil {
				out = slicer.Next(out)
			}
			if len(out) > 0 {
				written, writeErr := w.Write(out)
				if p.metrics != nil {
					p.metrics.AddBytesStreamed(int64(written))
				}
				if writeErr != nil {
					// Client went away; the request context teardown
					// closes the upstream side.
					p.log.Debug("client write failed", slog.String("error", writeErr.Error()))
					return
				}
				flush(w)
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				// Headers are already out; nothing salvageable, abort.
				p.log.Warn("upstream stream error", slog.String("error", readErr.Error()))
			}
			return
		}
	}
}

// upstreamError maps a fetch failure to a client-facing status. Headers have
// not been sent yet on this path, so a JSON error body is still possible.
func (p *Pipeline) upstreamError(w http.ResponseWriter, err error) {
	if p.metrics != nil {
		p.metrics.IncUpstreamErrors()
	}

	var statusErr *UpstreamStatusError
	switch {
	case errors.Is(err, ErrUpstreamTimeout):
		p.log.Warn("upstream timeout")
		writeJSONError(w, http.StatusGatewayTimeout, "upstream timeout")
	case errors.As(err, &statusErr):
		p.log.Warn("upstream error status", slog.Int("status", statusErr.Status))
		writeJSONError(w, statusErr.ClientStatus(), "upstream error")
	default:
		p.log.Warn("upstream unreachable", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadGateway, "upstream unreachable")
	}
}
