// Command mazecored serves the schedule generation API. Storage backends are
// selected through MAZECORE_* environment variables; see internal/archive and
// internal/blob for the recognized settings.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mazecore/internal/adapters/schedules"
	"mazecore/internal/archive"
	"mazecore/internal/blob"
	"mazecore/internal/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("MAZECORE_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	store, err := archive.Open(ctx)
	if err != nil {
		log.Fatalf("open archive: %v", err)
	}
	blobStore, err := blob.Open(ctx)
	if err != nil {
		log.Fatalf("open blob store: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := core.NewPrometheusMetricsRecorder(registry)

	service := core.NewService(store, core.WithMetrics(metrics))

	worker := schedules.NewWorker(service, blobStore)
	worker.Start()

	handler := schedules.NewHandler(service)
	handler.Exports = worker

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", handler)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("mazecored listening on %s (archive=%s blob=%s)",
			addr, envOrDefault("MAZECORE_ARCHIVE_DRIVER", "memory"), blobStore.Driver())
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if err := worker.Stop(shutdownCtx); err != nil {
		log.Printf("export worker shutdown: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
