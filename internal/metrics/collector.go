package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for FilesTotal.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// FileStats is the per-file summary recorded by RecordFile.
type FileStats struct {
	Units              int
	Pieces             int
	ProvenanceMisses   int
	AnnotationFailures int
}

// Handler returns the HTTP handler for Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// SetBuildInfo records the running version.
func SetBuildInfo(version string) {
	BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// RecordFile records one pipeline run over a file.
func RecordFile(language string, stats FileStats, duration time.Duration, err error) {
	if err != nil {
		FilesTotal.WithLabelValues(language, ResultFailed).Inc()
		return
	}
	FilesTotal.WithLabelValues(language, ResultOK).Inc()
	FileDuration.WithLabelValues(language).Observe(duration.Seconds())
	UnitsTotal.WithLabelValues(language).Add(float64(stats.Units))
	PiecesTotal.WithLabelValues(language).Add(float64(stats.Pieces))
	ProvenanceMissesTotal.WithLabelValues(language).Add(float64(stats.ProvenanceMisses))
	AnnotationFailuresTotal.WithLabelValues(language).Add(float64(stats.AnnotationFailures))
}

// RecordProviderRequest records one explanation request.
func RecordProviderRequest(provider string, duration time.Duration, err error) {
	ProviderRequestsTotal.WithLabelValues(provider).Inc()
	ProviderDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if err != nil {
		ProviderErrorsTotal.WithLabelValues(provider).Inc()
	}
}

// RecordCacheAccess records an explanation cache lookup.
func RecordCacheAccess(hit bool) {
	if hit {
		CacheHitsTotal.Inc()
	} else {
		CacheMissesTotal.Inc()
	}
}

// RecordWatcherChange records a coalesced filesystem change.
func RecordWatcherChange(changeType string) {
	WatcherChangesTotal.WithLabelValues(changeType).Inc()
}

// Server exposes Handler at /metrics.
type Server struct {
	listener net.Listener
	server   *http.Server
}

// Listen binds addr. Use Serve to start handling requests.
func Listen(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s; %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	return &Server{
		listener: ln,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve handles requests until ctx is cancelled, then shuts down.
func (s *Server) Serve(ctx context.Context) error {
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server error; %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown metrics server; %w", err)
	}
	return nil
}
