package sessions

import (
	"github.com/getevo/evo/v2"

	"github.com/Wakar473/Timechamp/apps/database"
)

var service *Service

type App struct{}

func (a App) Register() error {
	service = NewService(database.DB)
	return nil
}

func (a App) Router() error {
	var controller Controller

	evo.Post("/api/sessions/start", controller.StartSession)
	evo.Post("/api/sessions/:id/stop", controller.StopSession)
	evo.Get("/api/sessions/active", controller.GetActiveSessions)
	evo.Get("/api/sessions/:id", controller.GetSession)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "sessions"
}

// GetService exposes the session service to other apps
func GetService() *Service {
	return service
}
