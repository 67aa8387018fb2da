package result

import (
	"fmt"
	"net/http"
)

// Layer names the architectural layer an error originated in.
type Layer string

const (
	LayerDomain         Layer = "Domain"
	LayerApplication    Layer = "Application"
	LayerPersistence    Layer = "Persistence"
	LayerInfrastructure Layer = "Infrastructure"
	LayerPresentation   Layer = "Presentation"
	LayerUtilities      Layer = "Utilities"
	LayerUnknown        Layer = "Unknown"
)

// Valid returns true if the Layer is recognized.
func (l Layer) Valid() bool {
	switch l {
	case LayerDomain, LayerApplication, LayerPersistence, LayerInfrastructure,
		LayerPresentation, LayerUtilities, LayerUnknown:
		return true
	}
	return false
}

// Error is a single failure with the layer that produced it and an
// HTTP-style status code used later to pick the response status.
type Error struct {
	Message  string
	Layer    Layer
	Code     int
	Metadata map[string]any
}

func (e Error) Error() string {
	return fmt.Sprintf("[%s %d] %s", e.Layer, e.StatusCode(), e.Message)
}

// Is matches errors with the same layer, code and message; metadata is
// ignored.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}
	return e.Layer == t.Layer && e.Code == t.Code && e.Message == t.Message
}

// StatusCode returns the error code, defaulting to 500 when none was set
// or the recorded one is not a valid HTTP status.
func (e Error) StatusCode() int {
	if e.Code < 100 || e.Code > 599 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// WithMetadata returns a copy of the error with key set in its metadata.
func (e Error) WithMetadata(key string, value any) Error {
	md := make(map[string]any, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md[key] = value
	e.Metadata = md
	return e
}

// New builds an error with an explicit layer and code.
func New(layer Layer, code int, message string) Error {
	if !layer.Valid() {
		layer = LayerUnknown
	}
	return Error{Message: message, Layer: layer, Code: code}
}
