package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"anchor-rag/internal/config"
	"anchor-rag/internal/formcontroller"
	"anchor-rag/internal/rag"
	"anchor-rag/internal/static"
)

const shutdownTimeout = 10 * time.Second

// SupportedFormats is what the library page advertises.
var SupportedFormats = []string{".pdf", ".docx", ".pptx", ".xlsx", ".xlsm", ".ods", ".txt", ".md"}

type Server struct {
	querier rag.Querier
	cfg     config.ServerConfig
	router  chi.Router
}

func New(q rag.Querier, cfg config.ServerConfig) *Server {
	s := &Server{querier: q, cfg: cfg}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if len(s.cfg.AllowOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(static.Assets()))))

	r.Get("/", s.landing)
	r.Get("/elements", s.elements)
	r.Get("/generic", s.generic)
	r.Get("/health", health)

	r.Post("/query", s.query)
	r.Post(formcontroller.Endpoint, s.query)
	r.Post("/ask", s.ask)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Error writing response")
	}
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
