// Package web serves the browser chat page.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"stock-assistant/internal/agents"
	"stock-assistant/internal/logging"
	"stock-assistant/internal/metrics"
	"stock-assistant/internal/models"
)

const (
	sessionCookie = "stockbot_session"
	maxFormBytes  = 16 << 10
)

// Server is the chat web server. Each browser session runs its turns in order;
// different sessions run concurrently.
type Server struct {
	orch      *agents.Orchestrator
	metrics   *metrics.Metrics
	chartPath string
	logger    zerolog.Logger

	sessions *sessionStore
	srv      *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithSessionLimits bounds how long an idle browser session is kept and how
// many sessions exist at once. Zero values keep the defaults.
func WithSessionLimits(ttl time.Duration, max int) ServerOption {
	return func(s *Server) {
		s.sessions = newSessionStore(ttl, max)
	}
}

// NewServer creates a server listening on addr.
func NewServer(addr string, orch *agents.Orchestrator, m *metrics.Metrics, chartPath string, logger zerolog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		orch:      orch,
		metrics:   m,
		chartPath: chartPath,
		logger:    logger.With().Str("component", "web").Logger(),
		sessions:  newSessionStore(defaultSessionTTL, defaultMaxSessions),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /chart.png", s.handleChart)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.srv.Addr).Msg("web server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("shutting down web server")
	return s.srv.Shutdown(shutdownCtx)
}

type pageData struct {
	Title    string
	Messages []models.Message
	Answer   string
	ImageURL string
	Error    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: pageTitle}
	if ws := s.currentSession(r); ws != nil {
		v := ws.view()
		data.Messages = ws.session.Messages()
		data.Answer = v.Answer
		data.Error = v.Error
		if v.ImagePath != "" {
			data.ImageURL = fmt.Sprintf("/chart.png?t=%d", v.UpdatedAt.UnixNano())
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		log := logging.FromContext(r.Context())
		log.Error().Err(err).Msg("failed to render page")
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	ws := s.currentSession(r)
	if ws == nil {
		ws = s.sessions.create()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    ws.session.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	result, err := s.orch.Turn(r.Context(), ws.session, r.PostFormValue("q"))
	if err != nil {
		log := logging.WithSession(logging.FromContext(r.Context()), ws.session.ID)
		log.Debug().Err(err).Msg("turn error shown to user")
		ws.setView(view{Error: err.Error()})
	} else {
		ws.setView(view{Answer: result.Text, ImagePath: result.ImagePath})
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if ws := s.currentSession(r); ws != nil {
		ws.session.Reset()
		s.sessions.remove(ws.session.ID)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(s.chartPath); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, s.chartPath)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.len(),
	})
}

func (s *Server) currentSession(r *http.Request) *webSession {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	return s.sessions.get(c.Value)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), s.logger)))
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
