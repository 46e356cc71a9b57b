package main

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/application"

	"github.com/Wakar473/Timechamp/apps/activity"
	"github.com/Wakar473/Timechamp/apps/aggregation"
	"github.com/Wakar473/Timechamp/apps/alerts"
	"github.com/Wakar473/Timechamp/apps/database"
	"github.com/Wakar473/Timechamp/apps/jobs"
	"github.com/Wakar473/Timechamp/apps/models"
	"github.com/Wakar473/Timechamp/apps/nats"
	"github.com/Wakar473/Timechamp/apps/realtime"
	"github.com/Wakar473/Timechamp/apps/redis"
	"github.com/Wakar473/Timechamp/apps/reports"
	"github.com/Wakar473/Timechamp/apps/sessions"
)

func main() {
	evo.Setup()

	var apps = application.GetInstance()
	apps.Register(database.App{}, models.App{}, redis.App{}, nats.App{}, jobs.App{}, sessions.App{}, activity.App{}, realtime.App{}, aggregation.App{}, alerts.App{}, reports.App{})

	evo.Run()
}
