package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stream-proxy/internal/auth"
	"stream-proxy/internal/catalog"
	"stream-proxy/internal/platform/config"
	"stream-proxy/internal/platform/logger"
	"stream-proxy/internal/platform/metrics"
	"stream-proxy/internal/proxy"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	jwtSecret := config.GetEnv("JWT_SECRET", "")
	catalogFile := config.GetEnv("CATALOG_FILE", "")
	streamPath := config.GetEnv("STREAM_PATH", "/stream")
	userAgent := config.GetEnv("UPSTREAM_USER_AGENT", "")
	probeTimeout := time.Duration(config.GetEnvInt("PROBE_TIMEOUT_SECONDS", 5)) * time.Second
	fetchTimeout := time.Duration(config.GetEnvInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second
	defaultWindow := config.GetEnvInt64("DEFAULT_WINDOW_BYTES", proxy.DefaultWindowBytes)

	log := logger.New(logLevel, logFormat)

	if jwtSecret == "" {
		log.Warn("JWT_SECRET is empty, all bearer tokens will be rejected")
	}

	repo := catalog.NewInMemoryRepository()
	if catalogFile != "" {
		if err := catalog.LoadFile(catalogFile, repo); err != nil {
			log.Error("catalog load failed", "file", catalogFile, "error", err)
			os.Exit(1)
		}
		log.Info("catalog loaded", "file", catalogFile)
	}

	met := metrics.New()
	prober := proxy.NewProber(probeTimeout, userAgent)
	fetcher := proxy.NewFetcher(fetchTimeout, userAgent)
	pipe := proxy.NewPipeline(prober, fetcher, defaultWindow, log, met)
	gate := proxy.NewGate(repo)
	verifier := auth.NewVerifier(jwtSecret)
	h := proxy.NewHandler(pipe, gate, verifier, streamPath, log, met)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", met.Handler().ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Route(streamPath, func(r chi.Router) {
		r.Get("/", h.StreamURL)
		r.Options("/", h.Preflight)
		r.Route("/{lectureID}", func(r chi.Router) {
			r.Get("/", h.StreamLecture)
			r.Options("/", h.Preflight)
			r.Get("/manifest", h.LectureManifest)
			r.Options("/manifest", h.Preflight)
		})
	})

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"stream_path", streamPath,
		"probe_timeout", probeTimeout.String(),
		"fetch_timeout", fetchTimeout.String(),
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
