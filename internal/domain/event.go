package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event that occurred.
// Events are immutable facts about something that happened.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Subject   string         `json:"subject"`
	Data      map[string]any `json:"data"`
}

// Event type constants
const (
	EventVersionCreated       = "version.created"
	EventVersionDeleted       = "version.deleted"
	EventPropertyCreated      = "property.created"
	EventPropertyUpdated      = "property.updated"
	EventPropertyDeleted      = "property.deleted"
	EventStyleCreated         = "style.created"
	EventStyleUpdated         = "style.updated"
	EventStyleDeleted         = "style.deleted"
	EventStyleTagAdded        = "style.tag_added"
	EventStyleTagRemoved      = "style.tag_removed"
	EventExampleLinkCreated   = "example_link.created"
	EventExampleLinkDeleted   = "example_link.deleted"
	EventPromptHistoryCreated = "prompt_history.created"
	EventPromptHistoryPruned  = "prompt_history.pruned"
)

// NewEvent creates a new domain event.
func NewEvent(eventType, subject string, data map[string]any) Event {
	if data == nil {
		data = make(map[string]any)
	}
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Subject:   subject,
		Data:      data,
	}
}

func VersionCreatedEvent(v Version) Event {
	return NewEvent(EventVersionCreated, v.Version.Value(), map[string]any{
		"parameter": v.Parameter.Value(),
	})
}

func VersionDeletedEvent(v ModelVersion) Event {
	return NewEvent(EventVersionDeleted, v.Value(), nil)
}

func PropertyEvent(eventType string, p Property) Event {
	return NewEvent(eventType, p.Version.Value()+"/"+p.Name.Value(), map[string]any{
		"version":    p.Version.Value(),
		"property":   p.Name.Value(),
		"parameters": p.ParameterStrings(),
	})
}

func StyleEvent(eventType string, s Style) Event {
	return NewEvent(eventType, s.Name.Value(), map[string]any{
		"type": s.Type.Value(),
		"tags": s.TagStrings(),
	})
}

func StyleTagEvent(eventType string, name StyleName, tag Tag) Event {
	return NewEvent(eventType, name.Value(), map[string]any{
		"tag": tag.Value(),
	})
}

func ExampleLinkEvent(eventType string, l ExampleLink) Event {
	return NewEvent(eventType, l.Link.Value(), map[string]any{
		"style":   l.StyleName.Value(),
		"version": l.Version.Value(),
	})
}

func PromptHistoryCreatedEvent(h PromptHistory) Event {
	return NewEvent(EventPromptHistoryCreated, h.ID.String(), map[string]any{
		"version": h.Version.Value(),
	})
}

func PromptHistoryPrunedEvent(before time.Time, removed int64) Event {
	return NewEvent(EventPromptHistoryPruned, "prompt_history", map[string]any{
		"before":  before.Format(time.RFC3339),
		"removed": removed,
	})
}
