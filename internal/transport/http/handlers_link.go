package http

import (
	"net/http"

	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/service"
	"github.com/mvaleed/mjcatalog/internal/workflow"
)

// Example links are URLs, so single-link routes take the link as the
// "link" query parameter instead of a path segment.

func (s *Server) linkQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !r.URL.Query().Has("link") {
		s.writeError(w, r, result.BadRequest("link", "query parameter is required"))
		return "", false
	}
	return r.URL.Query().Get("link"), true
}

func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	respond(s, w, r, http.StatusOK, s.catalog.Links.ListLinks(r.Context()))
}

// handleListLinksByStyle narrows to one model version when the version
// query parameter is set.
func (s *Server) handleListLinksByStyle(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "name")
	if !ok {
		return
	}
	if q := r.URL.Query(); q.Has("version") {
		respond(s, w, r, http.StatusOK, s.catalog.Links.ListLinksByStyleAndVersion(r.Context(), p[0], q.Get("version")))
		return
	}
	respond(s, w, r, http.StatusOK, s.catalog.Links.ListLinksByStyle(r.Context(), p[0]))
}

func (s *Server) handleLinkExists(w http.ResponseWriter, r *http.Request) {
	link, ok := s.linkQuery(w, r)
	if !ok {
		return
	}
	respond(s, w, r, http.StatusOK, workflow.MapResult(s.catalog.Links.LinkExists(r.Context(), link), toExists))
}

func (s *Server) handleAddLink(w http.ResponseWriter, r *http.Request) {
	var req service.AddExampleLinkInput
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, *err)
		return
	}
	respond(s, w, r, http.StatusCreated, s.catalog.Links.AddLink(r.Context(), req))
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	link, ok := s.linkQuery(w, r)
	if !ok {
		return
	}
	respondNoContent(s, w, r, s.catalog.Links.DeleteLink(r.Context(), link))
}

// handleDeleteLinksByStyle reports how many links were removed.
func (s *Server) handleDeleteLinksByStyle(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "name")
	if !ok {
		return
	}
	respond(s, w, r, http.StatusOK, s.catalog.Links.DeleteLinksByStyle(r.Context(), p[0]))
}
