package alerts

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

	// Thresholds are policy, not protocol: operators tune them per deployment
	if threshold, err := settings.Get("ALERTS.IDLE_THRESHOLD", "5m").Duration(); err == nil && threshold > 0 {
		service.IdleThreshold = threshold
	}
	if threshold, err := settings.Get("ALERTS.OVERTIME_THRESHOLD", "9h").Duration(); err == nil && threshold > 0 {
		service.OvertimeThreshold = threshold
	}
	return nil
}

func (a App) Router() error {
	var controller Controller
	evo.Get("/api/alerts", controller.GetAlerts)
	return nil
}

func (a App) WhenReady() error {
	err := jobs.RegisterJob(jobs.JobDefinition{
		Name:        IdleJobName,
		Description: "Raise idle alerts for silent active sessions",
		Schedule:    settings.Get("ALERTS.IDLE_SCHEDULE", "0 */2 * * * *").String(),
		Timeout:     5 * time.Minute,
		Enabled:     settings.Get("ALERTS.IDLE_ENABLED", true).Bool(),
		Handler:     runIdleScan,
	})
	if err != nil {
		return err
	}

	return jobs.RegisterJob(jobs.JobDefinition{
		Name:        OvertimeJobName,
		Description: "Raise overtime alerts for daily totals above the threshold",
		Schedule:    settings.Get("ALERTS.OVERTIME_SCHEDULE", "0 */5 * * * *").String(),
		Timeout:     5 * time.Minute,
		Enabled:     settings.Get("ALERTS.OVERTIME_ENABLED", true).Bool(),
		Handler:     runOvertimeScan,
	})
}

func (a App) Name() string {
	return "alerts"
}
