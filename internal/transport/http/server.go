// Package http provides the HTTP transport layer for the catalog service.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mvaleed/mjcatalog/internal/auth"
	"github.com/mvaleed/mjcatalog/internal/config"
	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/service"
)

const maxBodyBytes = 1 << 20

// Server is the HTTP server for the catalog service.
type Server struct {
	httpServer  *http.Server
	router      *chi.Mux
	catalog     *service.Services
	authService *service.AuthService
	limiter     *ipRateLimiter
	checks      []healthCheck
	logger      *slog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.Config,
	catalog *service.Services,
	authService *service.AuthService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		catalog:     catalog,
		authService: authService,
		limiter:     newIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(s.rateLimitMiddleware)
}

func (s *Server) setupRoutes() {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeErrors(w, r, []result.Error{result.New(result.LayerPresentation, http.StatusNotFound, "no route for "+r.URL.Path)})
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeErrors(w, r, []result.Error{result.New(result.LayerPresentation, http.StatusMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path)})
	})

	// Health check
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", s.handleIssueToken)

		// Reads are public
		r.Get("/versions", s.handleListVersions)
		r.Get("/versions/{version}", s.handleGetVersion)
		r.Get("/versions/{version}/exists", s.handleVersionExists)
		r.Get("/versions/{version}/properties", s.handleListProperties)
		r.Get("/versions/{version}/properties/{name}", s.handleGetProperty)
		r.Get("/versions/{version}/properties/{name}/exists", s.handlePropertyExists)

		r.Get("/styles", s.handleListStyles)
		r.Get("/styles/{name}", s.handleGetStyle)
		r.Get("/styles/{name}/links", s.handleListLinksByStyle)

		r.Get("/links", s.handleListLinks)
		r.Get("/links/exists", s.handleLinkExists)

		r.Get("/history", s.handleListHistory)
		r.Get("/history/last/{n}", s.handleLastHistory)

		// Writes require a token with the write scope
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Use(s.requireScope(auth.ScopeCatalogWrite))

			r.Post("/versions", s.handleAddVersion)
			r.Delete("/versions/{version}", s.handleDeleteVersion)

			r.Post("/versions/{version}/properties", s.handleAddProperty)
			r.Put("/versions/{version}/properties/{name}", s.handleUpdateProperty)
			r.Patch("/versions/{version}/properties/{name}", s.handlePatchProperty)
			r.Delete("/versions/{version}/properties/{name}", s.handleDeleteProperty)

			r.Post("/styles", s.handleAddStyle)
			r.Put("/styles/{name}", s.handleUpdateStyle)
			r.Delete("/styles/{name}", s.handleDeleteStyle)
			r.Post("/styles/{name}/tags", s.handleAddTag)
			r.Delete("/styles/{name}/tags/{tag}", s.handleDeleteTag)
			r.Put("/styles/{name}/description", s.handleEditDescription)
			r.Delete("/styles/{name}/links", s.handleDeleteLinksByStyle)

			r.Post("/links", s.handleAddLink)
			r.Delete("/links", s.handleDeleteLink)

			r.Post("/history", s.handleAddHistory)
			r.Delete("/history", s.handlePruneHistory)
		})
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Response helpers

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// respond writes the value of a successful result with status, or the
// problem document of a failed one.
func respond[T any](s *Server, w http.ResponseWriter, r *http.Request, status int, res result.Result[T]) {
	if res.IsFailed() {
		s.writeErrors(w, r, res.Errors())
		return
	}
	s.writeJSON(w, status, res.Value())
}

// respondNoContent writes 204 for a successful result.
func respondNoContent[T any](s *Server, w http.ResponseWriter, r *http.Request, res result.Result[T]) {
	if res.IsFailed() {
		s.writeErrors(w, r, res.Errors())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any) *result.Error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		e := result.BadRequest("body", "invalid JSON: "+err.Error())
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			e = result.New(result.LayerPresentation, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("body: larger than %d bytes", tooLarge.Limit))
		}
		return &e
	}
	return nil
}

// pathParam returns the decoded route parameter key. chi routes on RawPath
// when the request carries one, and its params are then still escaped.
func pathParam(r *http.Request, key string) (string, *result.Error) {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw, nil
	}
	v, err := url.PathUnescape(raw)
	if err != nil {
		e := result.BadRequest(result.Field(key), "invalid path escape")
		return "", &e
	}
	return v, nil
}

// pathParams unescapes every named route parameter. When any is malformed it
// writes the problem response and returns false.
func (s *Server) pathParams(w http.ResponseWriter, r *http.Request, keys ...string) ([]string, bool) {
	values := make([]string, len(keys))
	var errs []result.Error
	for i, key := range keys {
		v, err := pathParam(r, key)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		values[i] = v
	}
	if len(errs) > 0 {
		s.writeErrors(w, r, errs)
		return nil, false
	}
	return values, true
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Context helpers

type contextKey string

const (
	clientClaimsKey contextKey = "client_claims"
)

func setClientClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, clientClaimsKey, claims)
}

func getClientClaims(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(clientClaimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
