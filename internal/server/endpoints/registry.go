package endpoints

import (
	"github.com/farmacob/cobtool/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Letter endpoints
		&NotificationEndpoint{},
		&CollectionEndpoint{},

		// Template endpoints
		&ResolveTemplatesEndpoint{},
	}
}

// LetterCommands returns endpoints grouped under the "letters" subcommand.
func LetterCommands() []api.Endpoint {
	return []api.Endpoint{
		&NotificationEndpoint{},
		&CollectionEndpoint{},
	}
}

// TemplateCommands returns endpoints grouped under the "templates" subcommand.
func TemplateCommands() []api.Endpoint {
	return []api.Endpoint{
		&ResolveTemplatesEndpoint{},
	}
}
