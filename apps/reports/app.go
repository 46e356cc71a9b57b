package reports

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

	evo.Get("/api/reports/daily", controller.GetDailySummary)
	evo.Get("/api/reports/organization/daily", controller.GetOrganizationDaily)
	evo.Get("/api/reports/user/:id", controller.GetUserReport)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "reports"
}
