package http

import (
	"net/http"

	"github.com/mvaleed/mjcatalog/internal/service"
	"github.com/mvaleed/mjcatalog/internal/workflow"
)

type existsResponse struct {
	Exists bool `json:"exists"`
}

func toExists(b bool) existsResponse { return existsResponse{Exists: b} }

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	respond(s, w, r, http.StatusOK, s.catalog.Versions.ListVersions(r.Context()))
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "version")
	if !ok {
		return
	}
	respond(s, w, r, http.StatusOK, s.catalog.Versions.GetVersion(r.Context(), p[0]))
}

func (s *Server) handleVersionExists(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "version")
	if !ok {
		return
	}
	exists := s.catalog.Versions.VersionExists(r.Context(), p[0])
	respond(s, w, r, http.StatusOK, workflow.MapResult(exists, toExists))
}

func (s *Server) handleAddVersion(w http.ResponseWriter, r *http.Request) {
	var req service.AddVersionInput
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, *err)
		return
	}
	respond(s, w, r, http.StatusCreated, s.catalog.Versions.AddVersion(r.Context(), req))
}

func (s *Server) handleDeleteVersion(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "version")
	if !ok {
		return
	}
	respondNoContent(s, w, r, s.catalog.Versions.DeleteVersion(r.Context(), p[0]))
}
