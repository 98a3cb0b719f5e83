package proxy

import (
	"strconv"
	"strings"
)

// DefaultWindowBytes bounds a synthesized window when the client gave no
// explicit end and the upstream's total size could not be determined.
const DefaultWindowBytes = 256 * 1024

// ParseRange parses a client Range header of the form "bytes=start-end" or
// "bytes=start-". ok is false for an empty or malformed header, or when
// end < start; per our client-compatibility policy the caller then degrades
// to a full-body transfer instead of rejecting the request. Multi-range and
// suffix ("bytes=-N") forms are treated as malformed.
func ParseRange(header string) (RangeSpec, bool) {
	spec := RangeSpec{End: -1}

	rest, found := strings.CutPrefix(header, "bytes=")
	if !found {
		return spec, false
	}
	startStr, endStr, found := strings.Cut(rest, "-")
	if !found || startStr == "" {
		return spec, false
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return spec, false
	}
	end := int64(-1)
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < start {
			return spec, false
		}
	}

	return RangeSpec{Start: start, End: end}, true
}

// ResolveWindow derives the byte window to serve from a parsed range and the
// probed total size (-1 when unknown). An open-ended range runs to the last
// byte when the total is known, and is capped at defaultWindow bytes
// otherwise so an unknown total never produces an unbounded synthetic window.
// The window end is always clamped to the last byte of the resource.
func ResolveWindow(spec RangeSpec, total int64, defaultWindow int64) Window {
	if defaultWindow <= 0 {
		defaultWindow = DefaultWindowBytes
	}

	end := spec.End
	if end < 0 {
		if total >= 0 {
			end = total - 1
		} else {
			end = spec.Start + defaultWindow - 1
		}
	}
	if total >= 0 && end > total-1 {
		end = total - 1
	}

	return Window{Start: spec.Start, End: end, Total: total}
}

// wellFormedContentRange reports whether cr is a syntactically valid partial
// Content-Range of the form "bytes a-b/total", where total is either the
// resource size or "*". An unknown total is still well-formed: the upstream
// honored the range even though it cannot name the resource size.
func wellFormedContentRange(cr string) bool {
	rest, found := strings.CutPrefix(cr, "bytes ")
	if !found {
		return false
	}
	rangePart, totalStr, found := strings.Cut(rest, "/")
	if !found {
		return false
	}
	startStr, endStr, found := strings.Cut(rangePart, "-")
	if !found {
		return false
	}
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return false
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < start {
		return false
	}
	totalStr = strings.TrimSpace(totalStr)
	if totalStr == "*" {
		return true
	}
	total, err := strconv.ParseInt(totalStr, 10, 64)
	return err == nil && total >= 0
}

// parseContentRangeTotal extracts the total size from a Content-Range value
// such as "bytes 0-0/4096". ok is false when the value is not a bytes range
// or the total is "*".
func parseContentRangeTotal(cr string) (int64, bool) {
	if !strings.HasPrefix(cr, "bytes ") {
		return -1, false
	}
	idx := strings.LastIndexByte(cr, '/')
	if idx < 0 {
		return -1, false
	}
	totalStr := strings.TrimSpace(cr[idx+1:])
	if totalStr == "*" {
		return -1, false
	}
	total, err := strconv.ParseInt(totalStr, 10, 64)
	if err != nil || total < 0 {
		return -1, false
	}
	return total, true
}
