package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/service"
)

// parseInstant accepts RFC 3339 timestamps or plain dates. A plain date used
// as an upper bound covers the whole day.
func parseInstant(field, raw string, upper bool) (time.Time, *result.Error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		if upper {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, nil
	}
	e := result.BadRequest(result.Field(field), "expected RFC 3339 timestamp or YYYY-MM-DD, got "+strconv.Quote(raw))
	return time.Time{}, &e
}

// handleListHistory lists all prompt history, or filters by the keyword
// query parameter or by the from and to query parameters.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	switch {
	case q.Has("keyword"):
		respond(s, w, r, http.StatusOK, s.catalog.History.HistoryByKeyword(ctx, q.Get("keyword")))

	case q.Has("from") || q.Has("to"):
		var errs []result.Error
		if !q.Has("from") || !q.Has("to") {
			errs = append(errs, result.BadRequest("query", "from and to must be given together"))
		}
		from, ferr := parseInstant("from", q.Get("from"), false)
		to, terr := parseInstant("to", q.Get("to"), true)
		for _, e := range []*result.Error{ferr, terr} {
			if e != nil {
				errs = append(errs, *e)
			}
		}
		if len(errs) > 0 {
			s.writeErrors(w, r, errs)
			return
		}
		respond(s, w, r, http.StatusOK, s.catalog.History.HistoryByDateRange(ctx, from, to))

	default:
		respond(s, w, r, http.StatusOK, s.catalog.History.ListHistory(ctx))
	}
}

func (s *Server) handleLastHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "n")
	if !ok {
		return
	}
	n, err := strconv.Atoi(p[0])
	if err != nil {
		s.writeError(w, r, result.BadRequest("n", "must be an integer"))
		return
	}
	respond(s, w, r, http.StatusOK, s.catalog.History.LastHistory(r.Context(), n))
}

func (s *Server) handleAddHistory(w http.ResponseWriter, r *http.Request) {
	var req service.AddPromptHistoryInput
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, *err)
		return
	}
	respond(s, w, r, http.StatusCreated, s.catalog.History.AddHistory(r.Context(), req))
}

// handlePruneHistory deletes records older than the olderThan query
// parameter, a Go duration such as 720h.
func (s *Server) handlePruneHistory(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("olderThan")
	olderThan, err := time.ParseDuration(raw)
	if err != nil {
		s.writeError(w, r, result.BadRequest("olderThan", "expected a duration such as 720h"))
		return
	}
	respond(s, w, r, http.StatusOK, s.catalog.History.PruneHistory(r.Context(), olderThan))
}
