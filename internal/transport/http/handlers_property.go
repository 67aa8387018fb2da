package http

import (
	"net/http"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/workflow"
)

type propertyRequest struct {
	Name         string   `json:"name"`
	Parameters   []string `json:"parameters"`
	DefaultValue string   `json:"defaultValue,omitempty"`
	MinValue     string   `json:"minValue,omitempty"`
	MaxValue     string   `json:"maxValue,omitempty"`
	Description  string   `json:"description,omitempty"`
}

func (req propertyRequest) input(version string) domain.PropertyInput {
	return domain.PropertyInput{
		Version:      version,
		Name:         req.Name,
		Parameters:   req.Parameters,
		DefaultValue: req.DefaultValue,
		MinValue:     req.MinValue,
		MaxValue:     req.MaxValue,
		Description:  req.Description,
	}
}

type patchPropertyRequest struct {
	Characteristic string `json:"characteristic"`
	Value          string `json:"value"`
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "version")
	if !ok {
		return
	}
	respond(s, w, r, http.StatusOK, s.catalog.Properties.ListProperties(r.Context(), p[0]))
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "version", "name")
	if !ok {
		return
	}
	respond(s, w, r, http.StatusOK, s.catalog.Properties.GetProperty(r.Context(), p[0], p[1]))
}

func (s *Server) handlePropertyExists(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "version", "name")
	if !ok {
		return
	}
	exists := s.catalog.Properties.PropertyExists(r.Context(), p[0], p[1])
	respond(s, w, r, http.StatusOK, workflow.MapResult(exists, toExists))
}

func (s *Server) handleAddProperty(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "version")
	if !ok {
		return
	}
	var req propertyRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, *err)
		return
	}
	respond(s, w, r, http.StatusCreated, s.catalog.Properties.AddProperty(r.Context(), req.input(p[0])))
}

// handleUpdateProperty replaces the whole property; the path names it.
func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "version", "name")
	if !ok {
		return
	}
	var req propertyRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, *err)
		return
	}
	req.Name = p[1]
	respond(s, w, r, http.StatusOK, s.catalog.Properties.UpdateProperty(r.Context(), req.input(p[0])))
}

func (s *Server) handlePatchProperty(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "version", "name")
	if !ok {
		return
	}
	var req patchPropertyRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, *err)
		return
	}
	respond(s, w, r, http.StatusOK,
		s.catalog.Properties.PatchProperty(r.Context(), p[0], p[1], req.Characteristic, req.Value))
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pathParams(w, r, "version", "name")
	if !ok {
		return
	}
	respondNoContent(s, w, r, s.catalog.Properties.DeleteProperty(r.Context(), p[0], p[1]))
}
