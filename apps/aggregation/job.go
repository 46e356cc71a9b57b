package aggregation

import (
	"time"

	"github.com/getevo/evo/v2/lib/log"

	"github.com/Wakar473/Timechamp/apps/jobs"
	"github.com/Wakar473/Timechamp/apps/models"
)

// JobName identifies the scheduled summary rollup
const JobName = "daily-summary"

// runScheduled aggregates the current day for every organization with
// sessions. A failing organization is logged and skipped, the next run
// corrects it because the rollup is idempotent.
func runScheduled(ctx *jobs.Context) error {
	date := models.DateOf(time.Now())

	orgs, err := service.Organizations(ctx, date)
	if err != nil {
		return err
	}

	for _, orgID := range orgs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		processed, err := service.AggregateDay(ctx, orgID, date)
		if err != nil {
			log.Error("Aggregation failed for organization %s: %v", orgID, err)
			continue
		}
		ctx.AddProcessed(processed)
	}
	return nil
}
