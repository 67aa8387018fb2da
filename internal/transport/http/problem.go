package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mvaleed/mjcatalog/internal/result"
)

const problemContentType = "application/problem+json"

// Problem is the body written for every failed request.
type Problem struct {
	Status    int             `json:"status"`
	MainError MainError       `json:"mainError"`
	Details   []ProblemDetail `json:"details"`
}

type MainError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ProblemDetail struct {
	Layer   result.Layer `json:"layer"`
	Code    int          `json:"code"`
	Message string       `json:"message"`
}

// NewProblem builds the problem document for errs.
func NewProblem(errs []result.Error) Problem {
	main := result.SelectMain(errs)
	if len(errs) == 0 {
		errs = []result.Error{main}
	}

	details := make([]ProblemDetail, len(errs))
	for i, e := range errs {
		details[i] = ProblemDetail{Layer: e.Layer, Code: e.StatusCode(), Message: e.Message}
	}

	return Problem{
		Status:    main.StatusCode(),
		MainError: MainError{Code: main.StatusCode(), Message: main.Message},
		Details:   details,
	}
}

func (s *Server) writeErrors(w http.ResponseWriter, r *http.Request, errs []result.Error) {
	p := NewProblem(errs)

	if p.Status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.Int("status", p.Status),
			slog.String("error", p.MainError.Message),
			slog.Int("errors", len(p.Details)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}

	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		s.logger.Error("failed to encode problem", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, e result.Error) {
	s.writeErrors(w, r, []result.Error{e})
}
