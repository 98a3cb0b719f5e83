package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProber_head_content_length(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.Header().Set("Content-Length", "4096")
		w.Header().Set("Content-Type", "video/mp4")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProber(2*time.Second, "")
	if total := p.TotalSize(context.Background(), srv.URL); total != 4096 {
		t.Errorf("expected 4096, got %d", total)
	}

	length, contentType, ok := p.Head(context.Background(), srv.URL)
	if !ok || length != 4096 || contentType != "video/mp4" {
		t.Errorf("unexpected head result: %d %q %v", length, contentType, ok)
	}
}

func TestProber_falls_back_to_ranged_probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if got := r.Header.Get("Range"); got != "bytes=0-0" {
			t.Errorf("expected minimal ranged probe, got %q", got)
		}
		w.Header().Set("Content-Range", "bytes 0-0/12345")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte{0})
	}))
	defer srv.Close()

	p := NewProber(2*time.Second, "")
	if total := p.TotalSize(context.Background(), srv.URL); total != 12345 {
		t.Errorf("expected 12345, got %d", total)
	}
}

func TestProber_unknown_total_is_not_an_error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProber(2*time.Second, "")
	if total := p.TotalSize(context.Background(), srv.URL); total != -1 {
		t.Errorf("expected -1 for unprobeable upstream, got %d", total)
	}
}

func TestProber_timeout_is_bounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewProber(50*time.Millisecond, "")
	start := time.Now()
	total := p.TotalSize(context.Background(), srv.URL)
	if total != -1 {
		t.Errorf("expected -1 on timeout, got %d", total)
	}
	// Two probes (HEAD + ranged), each bounded by the short timeout.
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("probing took too long: %s", elapsed)
	}
}

func TestProber_unreachable_upstream(t *testing.T) {
	p := NewProber(200*time.Millisecond, "")
	if total := p.TotalSize(context.Background(), "http://127.0.0.1:1/nope"); total != -1 {
		t.Errorf("expected -1, got %d", total)
	}
}

func TestProber_redirect_loop_yields_unknown_total(t *testing.T) {
	// Redirects forever; after the hop cap the client hands back the last 3xx,
	// whose own Content-Length must not be mistaken for the asset's size.
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "185")
		w.Header().Set("Location", srv.URL)
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	p := NewProber(2*time.Second, "")
	if total := p.TotalSize(context.Background(), srv.URL); total != -1 {
		t.Errorf("expected -1 for an exhausted redirect chain, got %d", total)
	}
}

func TestProber_follows_redirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "777")
		w.WriteHeader(http.StatusOK)
	}))
	defer final.Close()

	hops := 0
	var redirect *httptest.Server
	redirect = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hops++
		if hops < 3 {
			http.Redirect(w, r, fmt.Sprintf("%s/hop%d", redirect.URL, hops), http.StatusFound)
			return
		}
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer redirect.Close()

	p := NewProber(2*time.Second, "")
	if total := p.TotalSize(context.Background(), redirect.URL); total != 777 {
		t.Errorf("expected 777 through redirects, got %d", total)
	}
}
