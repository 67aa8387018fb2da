package http

import (
	"context"
	"net/http"
	"time"

	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/service"
)

// Health check

type healthCheck struct {
	name  string
	check func(context.Context) error
}

// AddHealthCheck registers a dependency probed by /health.
func (s *Server) AddHealthCheck(name string, check func(context.Context) error) {
	s.checks = append(s.checks, healthCheck{name: name, check: check})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var errs []result.Error
	for _, c := range s.checks {
		if err := c.check(ctx); err != nil {
			errs = append(errs, result.Infrastructure("checking "+c.name, err))
		}
	}
	if len(errs) > 0 {
		s.writeErrors(w, r, errs)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req service.TokenRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, *err)
		return
	}

	respond(s, w, r, http.StatusOK, s.authService.IssueToken(r.Context(), req))
}
