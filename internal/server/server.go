package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"exchangerates/internal/publish"
	"exchangerates/internal/snapshot"
)

// Handler serves the artifacts under store plus health and metrics routes.
// A nil gatherer leaves /metrics unregistered.
func Handler(store *publish.Store, g prometheus.Gatherer, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /latest.json", func(w http.ResponseWriter, r *http.Request) {
		serveArtifact(w, store.LatestPath())
	})
	mux.HandleFunc("GET /historical/{file}", func(w http.ResponseWriter, r *http.Request) {
		date, ok := strings.CutSuffix(r.PathValue("file"), ".json")
		if !ok || !validDate(date) {
			http.Error(w, "expected /historical/YYYY-MM-DD.json", http.StatusBadRequest)
			return
		}
		serveArtifact(w, store.HistoricalPath(date))
	})
	if g != nil {
		// promhttp compression is off; withGzip handles it for every route.
		mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{DisableCompression: true}))
	}
	return withCORS(withGzip(recoverPanic(log, mux)))
}

// NewServer wraps h with the listener timeouts used by every binary.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func validDate(s string) bool {
	if len(s) != len(snapshot.DateLayout) {
		return false
	}
	_, err := time.Parse(snapshot.DateLayout, s)
	return err == nil
}

func serveArtifact(w http.ResponseWriter, path string) {
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, "artifact unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
