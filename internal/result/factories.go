package result

import (
	"fmt"
	"net/http"
)

// Field names the value being reported on ("StyleName", "Tag", ...).
// It replaces type-name reflection: every call site states what it checks.
type Field string

func (f Field) String() string { return string(f) }

// NullOrEmpty reports a required value that was not provided.
func NullOrEmpty(field Field) Error {
	return New(LayerDomain, http.StatusBadRequest,
		fmt.Sprintf("%s cannot be null or empty", field)).
		WithMetadata("field", string(field))
}

// TooLong reports a value exceeding its maximum length.
func TooLong(field Field, max int, value string) Error {
	return New(LayerDomain, http.StatusBadRequest,
		fmt.Sprintf("%s cannot be longer than %d characters (got %d)", field, max, len([]rune(value)))).
		WithMetadata("field", string(field))
}

// InvalidFormat reports a value that does not match the expected shape.
func InvalidFormat(field Field, value, hint string) Error {
	return New(LayerDomain, http.StatusBadRequest,
		fmt.Sprintf("%s '%s' has an invalid format: %s", field, value, hint)).
		WithMetadata("field", string(field))
}

// OutOfRange reports a value outside of the accepted bounds.
func OutOfRange(field Field, value, hint string) Error {
	return New(LayerDomain, http.StatusBadRequest,
		fmt.Sprintf("%s '%s' is out of range: %s", field, value, hint)).
		WithMetadata("field", string(field))
}

// Duplicate reports a repeated entry inside a single aggregate.
func Duplicate(field Field, value string) Error {
	return New(LayerDomain, http.StatusBadRequest,
		fmt.Sprintf("%s '%s' is listed more than once", field, value)).
		WithMetadata("field", string(field))
}

// NotFound reports a referenced record that does not exist.
func NotFound(field Field, value string) Error {
	return New(LayerApplication, http.StatusNotFound,
		fmt.Sprintf("%s '%s' not found", field, value)).
		WithMetadata("field", string(field))
}

// AlreadyExists reports a create that would duplicate an existing record.
func AlreadyExists(field Field, value string) Error {
	return New(LayerApplication, http.StatusConflict,
		fmt.Sprintf("%s '%s' already exists", field, value)).
		WithMetadata("field", string(field))
}

// NoneFound reports an empty collection where at least one record was expected.
func NoneFound(field Field) Error {
	return New(LayerApplication, http.StatusNotFound,
		fmt.Sprintf("no %s records found", field)).
		WithMetadata("field", string(field))
}

// Database reports a storage failure during op.
func Database(op string, err error) Error {
	return New(LayerPersistence, http.StatusInternalServerError,
		fmt.Sprintf("database error while %s: %v", op, err))
}

// Infrastructure reports a failure of a supporting system (cache, broker).
func Infrastructure(op string, err error) Error {
	return New(LayerInfrastructure, http.StatusServiceUnavailable,
		fmt.Sprintf("%s failed: %v", op, err))
}

// BadRequest reports a malformed request detected at the transport edge.
func BadRequest(field Field, reason string) Error {
	return New(LayerPresentation, http.StatusBadRequest,
		fmt.Sprintf("%s: %s", field, reason)).
		WithMetadata("field", string(field))
}

func Unauthorized(reason string) Error {
	return New(LayerPresentation, http.StatusUnauthorized, reason)
}

func Forbidden(reason string) Error {
	return New(LayerPresentation, http.StatusForbidden, reason)
}

// TooManyRequests reports a caller that exceeded its rate limit.
func TooManyRequests(reason string) Error {
	return New(LayerPresentation, http.StatusTooManyRequests, reason)
}

// Unknown is the fallback for failures nobody classified.
func Unknown(message string) Error {
	return New(LayerUnknown, http.StatusInternalServerError, message)
}
