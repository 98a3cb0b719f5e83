package proxy

import (
	"net/url"
	"regexp"
	"strings"
)

// PlaylistContentType is the media type HLS playlists are served with.
const PlaylistContentType = "application/vnd.apple.mpegurl"

// segmentContentType is the media type of a bare MPEG transport stream segment.
const segmentContentType = "video/mp2t"

var uriAttrPattern = regexp.MustCompile(`URI="([^"]+)"`)

// IsPlaylist reports whether the upstream asset is an HLS playlist, judged by
// declared content type or URL path suffix.
func IsPlaylist(contentType, target string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "application/vnd.apple.mpegurl") || strings.Contains(ct, "mpegurl") {
		return true
	}
	return hasPathSuffix(target, ".m3u8")
}

// IsSegment reports whether the upstream asset is a bare transport-stream
// segment rather than a playlist.
func IsSegment(contentType, target string) bool {
	if strings.Contains(strings.ToLower(contentType), segmentContentType) {
		return true
	}
	return hasPathSuffix(target, ".ts")
}

func hasPathSuffix(target, suffix string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(target), suffix)
	}
	return strings.HasSuffix(strings.ToLower(u.Path), suffix)
}

// RewritePlaylist re-routes every URI reference in an HLS playlist through
// this proxy. Segment lines and URI="..." attributes inside tags are resolved
// against the playlist's own URL and replaced with proxied equivalents; all
// other lines pass through untouched. The mapping is built fresh per request
// and never cached.
func RewritePlaylist(body, playlistURL, proxyPrefix string) string {
	base, err := url.Parse(playlistURL)
	if err != nil {
		return body
	}

	resolve := func(ref string) string {
		u, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return base.ResolveReference(u).String()
	}

	body = uriAttrPattern.ReplaceAllStringFunc(body, func(m string) string {
		ref := uriAttrPattern.FindStringSubmatch(m)[1]
		return `URI="` + ProxiedURL(proxyPrefix, resolve(ref)) + `"`
	})

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			lines[i] = trimmed
			continue
		}
		lines[i] = ProxiedURL(proxyPrefix, resolve(trimmed))
	}
	return strings.Join(lines, "\n")
}

// SynthesizeSegmentPlaylist wraps a single bare .ts segment in a minimal VOD
// playlist, so players that expect a manifest can still consume a raw
// segment. The 30s EXTINF is a fixed upper bound; players correct the real
// duration from the stream itself.
func SynthesizeSegmentPlaylist(segmentURL, proxyPrefix string) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	b.WriteString("#EXT-X-TARGETDURATION:30\n")
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n")
	b.WriteString("#EXTINF:30.0,\n")
	b.WriteString(ProxiedURL(proxyPrefix, segmentURL))
	b.WriteString("\n#EXT-X-ENDLIST\n")
	return b.String()
}

// ProxiedURL renders the proxy route that re-serves an absolute upstream URL,
// e.g. "/stream?url=https%3A%2F%2Fcdn%2Fseg1.ts".
func ProxiedURL(proxyPrefix, absolute string) string {
	return proxyPrefix + "?url=" + url.QueryEscape(absolute)
}
