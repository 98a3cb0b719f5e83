package proxy

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"stream-proxy/internal/auth"
	"stream-proxy/internal/catalog"
	"stream-proxy/internal/platform/metrics"
)

// maxPlaylistBytes caps how much of an upstream playlist is read into memory.
// Playlists are small; anything larger is not a playlist we can rewrite.
const maxPlaylistBytes = 4 << 20

// Handler exposes the streaming proxy HTTP endpoints using go-chi.
type Handler struct {
	pipe       *Pipeline
	gate       *Gate
	verifier   *auth.Verifier
	streamPath string
	log        *slog.Logger
	metrics    *metrics.Metrics
}

// NewHandler returns a Handler serving the proxy routes. streamPath is the
// public route of the generic proxy (e.g. "/stream"), used when rewriting
// manifests. Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(pipe *Pipeline, gate *Gate, verifier *auth.Verifier, streamPath string, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		pipe:       pipe,
		gate:       gate,
		verifier:   verifier,
		streamPath: streamPath,
		log:        log,
		metrics:    m,
	}
}

// StreamURL handles GET /stream?url=<percent-encoded absolute URL>: the
// generic byte-range proxy. The caller has already authorized the request;
// no access gating happens here.
func (h *Handler) StreamURL(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeJSONError(w, http.StatusBadRequest, "url parameter is required")
		return
	}

	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		writeJSONError(w, http.StatusBadRequest, "invalid url")
		return
	}

	h.pipe.Serve(w, r, target)
}

// StreamLecture handles GET /stream/{lectureID}: the gated proxy that hides
// the upstream URL from clients.
func (h *Handler) StreamLecture(w http.ResponseWriter, r *http.Request) {
	decision, ok := h.authorize(w, r)
	if !ok {
		return
	}
	h.pipe.Serve(w, r, decision.TargetURL)
}

// LectureManifest handles GET /stream/{lectureID}/manifest: the gated,
// HLS-aware route. Playlists are fetched as text and every URI reference is
// rewritten to route back through the generic proxy; a bare .ts segment gets
// a synthesized single-segment playlist. Other upstream types yield 415.
func (h *Handler) LectureManifest(w http.ResponseWriter, r *http.Request) {
	decision, ok := h.authorize(w, r)
	if !ok {
		return
	}
	target := decision.TargetURL

	_, contentType, _ := h.pipe.prober.Head(r.Context(), target)

	switch {
	case IsPlaylist(contentType, target):
		up, err := h.pipe.fetcher.Fetch(r.Context(), target, "")
		if err != nil {
			h.pipe.upstreamError(w, err)
			return
		}
		defer up.Body.Close()

		body, err := io.ReadAll(io.LimitReader(up.Body, maxPlaylistBytes))
		if err != nil {
			h.log.Warn("playlist read failed", slog.String("error", err.Error()))
			writeJSONError(w, http.StatusBadGateway, "upstream error")
			return
		}

		h.writePlaylist(w, RewritePlaylist(string(body), target, h.streamPath))

	case IsSegment(contentType, target):
		h.writePlaylist(w, SynthesizeSegmentPlaylist(target, h.streamPath))

	default:
		h.log.Info("manifest request for unsupported source",
			slog.String("content_type", contentType))
		writeJSONError(w, http.StatusUnsupportedMediaType, "unsupported source type")
	}
}

// Preflight answers CORS preflight requests on the streaming routes.
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	setStreamHeaders(w.Header())
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.WriteHeader(http.StatusNoContent)
}

// authorize runs the access gate for a gated route. On failure it writes the
// error response and returns ok=false; no upstream connection has been opened
// at that point.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (AccessDecision, bool) {
	lectureID := catalog.LectureID(chi.URLParam(r, "lectureID"))
	if lectureID == "" {
		writeJSONError(w, http.StatusBadRequest, "lecture id is required")
		return AccessDecision{}, false
	}

	userID := h.principal(r)
	decision, err := h.gate.Decide(lectureID, userID)
	if err != nil {
		// ErrLectureNotFound and ErrCourseNotFound both surface as 404;
		// which record was missing is not the client's business.
		writeJSONError(w, http.StatusNotFound, err.Error())
		return AccessDecision{}, false
	}

	if !decision.Allowed {
		if h.metrics != nil {
			h.metrics.IncDenied()
		}
		h.log.Info("access denied",
			slog.String("lecture_id", string(lectureID)),
			slog.Bool("authenticated", decision.Authenticated))
		if !decision.Authenticated {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
		} else {
			writeJSONError(w, http.StatusForbidden, "not authorized to stream this video")
		}
		return AccessDecision{}, false
	}

	if decision.TargetURL == "" {
		// Entitled, but there is nothing to play; unlike the credential
		// cases above, authenticating cannot change the outcome.
		if h.metrics != nil {
			h.metrics.IncDenied()
		}
		h.log.Warn("lecture has no playable asset", slog.String("lecture_id", string(lectureID)))
		writeJSONError(w, http.StatusForbidden, "no playable asset for this lecture")
		return AccessDecision{}, false
	}

	return decision, true
}

// principal extracts the viewer identity from the Authorization header,
// falling back to the token query parameter used by legacy video URLs.
// Any credential failure degrades to anonymous rather than erroring the
// request: a public preview must stay playable for anonymous viewers.
func (h *Handler) principal(r *http.Request) catalog.UserID {
	if authz := r.Header.Get("Authorization"); authz != "" {
		if token, found := strings.CutPrefix(authz, "Bearer "); found && token != "" {
			if id, err := h.verifier.UserID(token); err == nil {
				return catalog.UserID(id)
			}
		}
	}
	if token := r.URL.Query().Get("token"); token != "" {
		if id, err := h.verifier.UserID(token); err == nil {
			return catalog.UserID(id)
		}
	}
	return ""
}

func (h *Handler) writePlaylist(w http.ResponseWriter, playlist string) {
	setStreamHeaders(w.Header())
	w.Header().Set("Content-Type", PlaylistContentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(playlist))
}
