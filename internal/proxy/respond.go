package proxy

import (
	"encoding/json"
	"net/http"
)

// setStreamHeaders applies the headers every proxied response carries:
// permissive CORS so web players on any origin can read range headers,
// Accept-Ranges so players issue byte ranges, and an inline disposition so
// browsers play rather than download.
func setStreamHeaders(h http.Header) {
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Disposition", "inline")
	h.Set("Cache-Control", "public, max-age=3600")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Range, Authorization, Content-Type")
	h.Set("Access-Control-Expose-Headers", "Content-Range, Content-Length, Accept-Ranges")
}

// writeJSONError writes a {"error": ...} body with the given status. Callers
// must only use it before any body bytes have been written.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// flush pushes already-written headers (or body bytes) to the client if the
// underlying writer supports it. Flushing headers before the first body byte
// keeps time-to-first-byte low.
func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
