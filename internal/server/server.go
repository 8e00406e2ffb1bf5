package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"protanni/internal/clock"
	"protanni/internal/metrics"
	"protanni/internal/model"
	"protanni/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

type Options struct {
	DB      *store.DB
	Auth    Authenticator
	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

type Server struct {
	db      *store.DB
	auth    Authenticator
	clock   clock.Clock
	log     *slog.Logger
	metrics *metrics.Metrics
}

func New(opts Options) *Server {
	s := &Server{db: opts.DB, auth: opts.Auth, clock: opts.Clock, log: opts.Logger, metrics: opts.Metrics}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.metrics == nil {
		s.metrics = metrics.New(false)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.instrument, s.recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/habits", s.handle(s.listHabits))
		r.Post("/habits", s.handle(s.createHabit))
		r.Post("/habits/toggle", s.handle(s.toggleHabit))
		r.Post("/habits/delete", s.handle(s.deleteHabit))

		r.Get("/tasks", s.handle(s.listTasks))
		r.Post("/tasks", s.handle(s.createTask))
		r.Post("/tasks/toggle", s.handle(s.toggleTask))
		r.Post("/tasks/delete", s.handle(s.deleteTask))

		r.Get("/captures", s.handle(s.listCaptures))
		r.Post("/captures", s.handle(s.createCapture))
		r.Post("/captures/archive", s.handle(s.archiveCapture))
		r.Post("/captures/restore", s.handle(s.restoreCapture))
		r.Post("/captures/convert-to-task", s.handle(s.convertCapture))

		r.Get("/mood", s.handle(s.getMood))
		r.Post("/mood", s.handle(s.upsertMood))

		r.Get("/profile/daily-focus", s.handle(s.getFocus))
		r.Post("/profile/daily-focus", s.handle(s.setFocus))

		r.Get("/review/weekly", s.handle(s.weeklyReview))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, failf(CodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, failf(CodeValidationError, "method %s not allowed", r.Method))
	})
	return r
}

type ctxKey int

const profileKey ctxKey = 1

func profileFrom(ctx context.Context) model.Profile {
	p, _ := ctx.Value(profileKey).(model.Profile)
	return p
}

// handlerFunc returns the success status and data, or an error.
type handlerFunc func(r *http.Request, p model.Profile) (int, any, error)

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, data, err := fn(r, profileFrom(r.Context()))
		if err != nil {
			ae := toAPIError(err)
			if ae.Code == CodeDatabaseError || ae.Code == CodeServerError {
				s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
			}
			writeFailure(w, ae)
			return
		}
		writeSuccess(w, status, data)
	}
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || s.auth == nil {
			writeFailure(w, failf(CodeUnauthorized, "Unauthorized"))
			return
		}
		userID, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeFailure(w, failf(CodeUnauthorized, "Unauthorized"))
			return
		}
		p, err := s.db.GetProfile(r.Context(), userID)
		if err != nil {
			writeFailure(w, failf(CodeUnauthorized, "Unauthorized"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileKey, p)))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.log.Error("panic in handler", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				writeFailure(w, failf(CodeServerError, "internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		took := time.Since(start)
		s.metrics.ObserveHTTP(route, r.Method, status, took)
		s.log.Debug("request", "method", r.Method, "route", route, "status", status, "took", took, "request_id", middleware.GetReqID(r.Context()))
	})
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return ""
	}
	return h[len(prefix):]
}

// ListenAndServe serves Handler on addr until ctx is done, then drains for
// up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", "addr", addr)
		if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
	s.log.Info("shutting down")
	return hs.Shutdown(shutdownCtx)
}
