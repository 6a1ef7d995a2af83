package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/Vitaee/FlexReviewApi/internal/domain"
)

type Server struct{ mux *chi.Mux }

// New builds the router with the full middleware stack. limiter may be nil
// to disable per-IP rate limiting (tests, local runs).
func New(limiter domain.LimiterStore, perMinute int) *Server {
	m := chi.NewRouter()

	// middlewares first, before any routes are added
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(15 * time.Second))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))
	if limiter != nil && perMinute > 0 {
		m.Use(RateLimit(limiter, perMinute, time.Minute, "/health", "/metrics"))
	}

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
