package http

import (
	"net/http"
	"strings"

	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/service"
)

type tagRequest struct {
	Tag string `json:"tag"`
}

type descriptionRequest struct {
	Description string `json:"description"`
}

// handleListStyles lists every style, or filters by one of the type, tags
// (comma separated) or keyword query parameters.
func (s *Server) handleListStyles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filters []string
	for _, key := range []string{"type", "tags", "keyword"} {
		if q.Has(key) {
			filters = append(filters, key)
		}
	}
	if len(filters) > 1 {
		s.writeError(w, r, result.BadRequest("query", "use only one of type, tags or keyword, got "+strings.Join(filters, ", ")))
		return
	}

	ctx := r.Context()
	switch {
	case q.Has("type"):
		respond(s, w, r, http.StatusOK, s.catalog.Styles.ListStylesByType(ctx, q.Get("type")))
	case q.Has("tags"):
		respond(s, w, r, http.StatusOK, s.catalog.Styles.ListStylesByTags(ctx, splitList(q.Get("tags"))))
	case q.Has("keyword"):
		respond(s, w, r, http.StatusOK, s.catalog.Styles.ListStylesByDescriptionKeyword(ctx, q.Get("keyword")))
	default:
		respond(s, w, r, http.StatusOK, s.catalog.Styles.ListStyles(ctx))
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *Server) handleGetStyle(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "name")
	if !ok {
		return
	}
	respond(s, w, r, http.StatusOK, s.catalog.Styles.GetStyle(r.Context(), p[0]))
}

func (s *Server) handleAddStyle(w http.ResponseWriter, r *http.Request) {
	var req service.StyleInput
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, *err)
		return
	}
	respond(s, w, r, http.StatusCreated, s.catalog.Styles.AddStyle(r.Context(), req))
}

func (s *Server) handleUpdateStyle(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "name")
	if !ok {
		return
	}
	var req service.StyleInput
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, *err)
		return
	}
	req.Name = p[0]
	respond(s, w, r, http.StatusOK, s.catalog.Styles.UpdateStyle(r.Context(), req))
}

func (s *Server) handleDeleteStyle(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "name")
	if !ok {
		return
	}
	respondNoContent(s, w, r, s.catalog.Styles.DeleteStyle(r.Context(), p[0]))
}

func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "name")
	if !ok {
		return
	}
	var req tagRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, *err)
		return
	}
	respond(s, w, r, http.StatusCreated, s.catalog.Styles.AddTag(r.Context(), p[0], req.Tag))
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "name", "tag")
	if !ok {
		return
	}
	respondNoContent(s, w, r, s.catalog.Styles.DeleteTag(r.Context(), p[0], p[1]))
}

func (s *Server) handleEditDescription(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "name")
	if !ok {
		return
	}
	var req descriptionRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, *err)
		return
	}
	respond(s, w, r, http.StatusOK, s.catalog.Styles.EditDescription(r.Context(), p[0], req.Description))
}
