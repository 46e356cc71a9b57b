package jobs

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/application"
	"github.com/getevo/evo/v2/lib/args"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/settings"

	"github.com/Wakar473/Timechamp/apps/database"
	"github.com/Wakar473/Timechamp/apps/nats"
)

// App represents the Jobs application module
type App struct{}

var _ application.Application = (*App)(nil)

// Register initializes the jobs module
func (App) Register() error {
	log.Info("Registering Jobs app...")
	return nil
}

// Router registers HTTP routes for job management
func (App) Router() error {
	var admin = evo.Group("/api/admin/jobs")
	admin.Get("/", GetJobs)
	admin.Get("/executions", GetJobExecutions)
	admin.Post("/:name/run", RunJob)
	return nil
}

// WhenReady initializes the scheduler after all apps have registered their
// job definitions
func (App) WhenReady() error {
	if args.Exists("--migration-do") {
		if err := database.DB.AutoMigrate(&JobExecution{}); err != nil {
			return err
		}
	}

	if !settings.Get("JOBS.ENABLED", true).Bool() {
		log.Info("Jobs are disabled, skipping scheduler initialization")
		return nil
	}

	var locks *LockManager
	if js := nats.GetJetStream(); js != nil {
		var err error
		locks, err = NewLockManager(js)
		if err != nil {
			log.Warning("Failed to create lock manager, jobs will run unlocked: %v", err)
		}
	} else {
		log.Warning("JetStream not available, jobs will run unlocked")
	}

	scheduler := NewScheduler(database.DB, locks)

	// Jobs queued by other apps before the scheduler existed
	for _, job := range pendingJobs() {
		if err := scheduler.RegisterJob(job); err != nil {
			return err
		}
	}

	scheduler.Start()
	log.Info("Jobs app ready - scheduler running")
	return nil
}

// Name returns the app name
func (App) Name() string {
	return "jobs"
}

// Shutdown gracefully stops the scheduler
func (App) Shutdown() error {
	log.Info("Shutting down Jobs app...")
	if s := GetScheduler(); s != nil {
		s.Stop()
	}
	return nil
}
