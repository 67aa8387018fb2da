package service

import (
	"log/slog"

	"github.com/mvaleed/mjcatalog/internal/event"
	"github.com/mvaleed/mjcatalog/internal/storage"
)

// Services bundles the catalog use cases.
type Services struct {
	Versions   *VersionService
	Properties *PropertyService
	Styles     *StyleService
	Links      *ExampleLinkService
	History    *PromptHistoryService
}

// New wires every catalog service to repos.
func New(repos *storage.Repositories, publisher event.Publisher, logger *slog.Logger) *Services {
	return &Services{
		Versions:   NewVersionService(repos.Versions, publisher, logger),
		Properties: NewPropertyService(repos.Versions, repos.Properties, publisher, logger),
		Styles:     NewStyleService(repos.Styles, publisher, logger),
		Links:      NewExampleLinkService(repos.Links, repos.Styles, repos.Versions, publisher, logger),
		History:    NewPromptHistoryService(repos.History, repos.Versions, publisher, logger),
	}
}
