package proxy

import (
	"fmt"
	"io"
)

// RangeSpec is the byte range a client asked for. End is -1 when the client
// gave no explicit end ("bytes=N-"), meaning "to end of resource".
type RangeSpec struct {
	Start int64
	End   int64
}

// Window is the inclusive [Start, End] byte interval the proxy has resolved to
// serve, together with the resource's total size when it could be determined.
// Total is -1 when unknown.
type Window struct {
	Start int64
	End   int64
	Total int64
}

// Length returns the number of bytes in the window. A window whose End
// precedes its Start (zero-length resource) has length zero.
func (w Window) Length() int64 {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start + 1
}

// ContentRange renders the window as a Content-Range header value, using "*"
// for an unknown total. A zero-length resource renders as "bytes 0-0/0".
func (w Window) ContentRange() string {
	if w.Total == 0 {
		return "bytes 0-0/0"
	}
	if w.Total > 0 {
		return fmt.Sprintf("bytes %d-%d/%d", w.Start, w.End, w.Total)
	}
	return fmt.Sprintf("bytes %d-%d/*", w.Start, w.End)
}

// UpstreamResponse is the classified result of opening the upstream fetch.
// ContentLength is -1 when the upstream did not declare one.
type UpstreamResponse struct {
	Status        int
	ContentType   string
	ContentLength int64
	ContentRange  string
	Body          io.ReadCloser
}

// Cooperative reports whether the upstream honored the forwarded range
// itself: status 206 with a well-formed Content-Range, "/*" totals included.
// A cooperative body is already the requested window, so it is piped through
// untouched with its Content-Range forwarded verbatim; anything else goes
// through the slicer.
func (u *UpstreamResponse) Cooperative() bool {
	return u.Status == 206 && wellFormedContentRange(u.ContentRange)
}

// AccessDecision is the gate's verdict for one request.
type AccessDecision struct {
	Allowed bool
	// TargetURL is the upstream asset to stream; empty when the lecture has
	// no playable asset.
	TargetURL string
	// Authenticated reports whether a valid credential was presented.
	// Distinguishes 401 (no valid credential) from 403 (credential fine,
	// access denied) on gated routes.
	Authenticated bool
}
