package aggregation

import (
	"time"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/settings"

	"github.com/Wakar473/Timechamp/apps/database"
	"github.com/Wakar473/Timechamp/apps/jobs"
	"github.com/Wakar473/Timechamp/apps/realtime"
)

var service *Service

type App struct{}

func (a App) Register() error {
	service = NewService(database.DB, realtime.GetEmitter())
	return nil
}

func (a App) Router() error {
	var controller Controller
	evo.Post("/api/admin/aggregation/run", controller.RunAggregation)
	return nil
}

func (a App) WhenReady() error {
	return jobs.RegisterJob(jobs.JobDefinition{
		Name:        JobName,
		Description: "Roll work sessions into per-user daily summaries",
		Schedule:    settings.Get("AGGREGATION.SCHEDULE", "0 */15 * * * *").String(),
		Timeout:     10 * time.Minute,
		Enabled:     settings.Get("AGGREGATION.ENABLED", true).Bool(),
		Handler:     runScheduled,
	})
}

func (a App) Name() string {
	return "aggregation"
}
