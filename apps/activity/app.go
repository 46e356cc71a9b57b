package activity

import (
	"time"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/settings"

	"github.com/Wakar473/Timechamp/apps/database"
)

var (
	service        *Service
	requestTimeout = 5 * time.Second
)

type App struct{}

func (a App) Register() error {
	service = NewService(database.DB)

	if retries := settings.Get("INGEST.MAX_RETRIES").Int(); retries > 0 {
		service.MaxRetries = retries
	}
	if delay, err := settings.Get("INGEST.RETRY_DELAY", "100ms").Duration(); err == nil && delay > 0 {
		service.RetryDelay = delay
	}
	if timeout, err := settings.Get("INGEST.REQUEST_TIMEOUT", "5s").Duration(); err == nil && timeout > 0 {
		requestTimeout = timeout
	}

	return nil
}

func (a App) Router() error {
	var controller Controller

	evo.Post("/api/sessions/:id/activity", controller.LogActivity)
	evo.Post("/api/activity/batch", controller.BatchLogActivity)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "activity"
}
