package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/mjcatalog/internal/result"
)

// PromptHistory records a prompt that was generated for a model version.
type PromptHistory struct {
	ID        uuid.UUID
	Prompt    Prompt
	Version   ModelVersion
	CreatedOn time.Time
}

// NewPromptHistory creates a fresh history record stamped with the current time.
func NewPromptHistory(prompt, version string) result.Result[PromptHistory] {
	return RestorePromptHistory(uuid.New(), prompt, version, time.Now().UTC())
}

// RestorePromptHistory rebuilds a stored record, re-validating its fields.
func RestorePromptHistory(id uuid.UUID, prompt, version string, createdOn time.Time) result.Result[PromptHistory] {
	p := NewPrompt(prompt)
	v := NewModelVersion(version)

	errs := result.Merge(p, v)
	if id == uuid.Nil {
		errs = append(errs, result.NullOrEmpty(FieldHistoryID))
	}
	if len(errs) > 0 {
		return result.Fail[PromptHistory](errs...)
	}
	return result.Ok(PromptHistory{
		ID:        id,
		Prompt:    p.Value(),
		Version:   v.Value(),
		CreatedOn: createdOn.UTC(),
	})
}
