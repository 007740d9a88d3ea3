// Package server runs the exposition HTTP listener: the configured metrics
// path, a health check endpoint and a small index page. The listener serves
// scrapes concurrently with the orchestrator's tick loop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hadoop-jmx-exporter/internal/config"
	"github.com/hadoop-jmx-exporter/pkg/logger"
	"github.com/hadoop-jmx-exporter/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the exposition HTTP listener.
type Server struct {
	cfg    config.ServerConfig
	server *http.Server
	routes []string
}

// statusWriter captures the response status code for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader records the status code.
func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// New builds the exposition server. Metrics are rendered from the injected
// registry on every pull.
func New(cfg config.ServerConfig, registers metrics.Registers) *Server {
	srv := &Server{cfg: cfg}

	mux := http.NewServeMux()
	srv.handle(mux, cfg.Path, promhttp.HandlerFor(registers, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(logger.GetLogger()),
	}))
	srv.handle(mux, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	if cfg.Path != "/" {
		srv.handle(mux, "/", http.HandlerFunc(srv.indexHandler))
	}

	srv.server = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      logMiddleware(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv
}

func (s *Server) handle(mux *http.ServeMux, pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	mux.Handle(pattern, handler)
}

// Handler exposes the full handler chain, for tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<html>
<head><title>Hadoop JMX Exporter</title></head>
<body>
<h1>Hadoop JMX Exporter</h1>
<p><a href="%s">%s - metrics</a></p>
<p><a href="/health">/health - health check</a></p>
</body>
</html>
`, s.cfg.Path, s.cfg.Path)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Start begins listening without blocking the caller.
func (s *Server) Start() error {
	logger.Info("starting exposition server",
		zap.String("listen_addr", s.cfg.ListenAddr()),
		zap.Strings("routes", s.routes))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("exposition server failed to listen",
				zap.String("listen_addr", s.cfg.ListenAddr()), zap.Error(err))
		}
	}()
	return nil
}

// Shutdown stops accepting new scrapes and drains in-flight ones.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Warn("shutdown timeout exceeded")
			return nil
		}
		logger.Error("exposition server shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("exposition server shutdown successfully")
	return nil
}
