package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbfcm/taxsale-scraper/internal/config"
	"github.com/pbfcm/taxsale-scraper/internal/metrics"
	"github.com/pbfcm/taxsale-scraper/internal/scraper"
)

// Scraper is the part of the scrape pipeline the HTTP layer depends on.
type Scraper interface {
	Scrape(ctx context.Context) (scraper.Result, error)
}

// Server wires HTTP handlers to the scraper.
type Server struct {
	router  chi.Router
	scraper Scraper
	cfg     config.Config
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(scr Scraper, cfg config.Config, logger *zap.Logger) *Server {
	s := &Server{
		scraper: scr,
		cfg:     cfg,
		logger:  logger,
	}
	metrics.Init()
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(2 * time.Minute))

	r.Route("/pbfcm", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/scrape", s.scrape)
	})
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// health reports liveness only. It never touches the browser session, so it
// stays green even when the target site or Chrome is down.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := s.scraper.Scrape(r.Context())
	if err != nil {
		metrics.ObserveScrape(s.cfg.Scraper.Engine, "error", 0, time.Since(start))
		s.logger.Error("scrape failed", zap.Error(err))
		s.writeError(w, scrapeStatus(err), err.Error())
		return
	}
	metrics.ObserveScrape(s.cfg.Scraper.Engine, "ok", result.Count, time.Since(start))
	s.writeJSON(w, http.StatusOK, result)
}

// scrapeStatus maps pipeline failures onto response codes. Everything is a
// 5xx: the request itself is always well-formed, so failures are ours or
// the target site's.
func scrapeStatus(err error) int {
	switch {
	case errors.Is(err, scraper.ErrBrowserLaunch):
		return http.StatusBadGateway
	case errors.Is(err, scraper.ErrExtractionTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
