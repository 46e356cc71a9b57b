package alerts

import (
	"github.com/Wakar473/Timechamp/apps/jobs"
)

// Job names for the two evaluator scans
const (
	IdleJobName     = "idle-detector"
	OvertimeJobName = "overtime-checker"
)

func runIdleScan(ctx *jobs.Context) error {
	created, err := service.ScanIdle(ctx)
	ctx.AddProcessed(created)
	return err
}

func runOvertimeScan(ctx *jobs.Context) error {
	created, err := service.ScanOvertime(ctx)
	ctx.AddProcessed(created)
	return err
}
