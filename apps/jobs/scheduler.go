package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Scheduler runs registered jobs on their cron schedules. Every run is
// recorded as a JobExecution row, and a distributed lock keeps one run per
// job across instances.
type Scheduler struct {
	cron      *cron.Cron
	locks     *LockManager
	db        *gorm.DB
	jobs      map[string]*JobDefinition
	mu        sync.RWMutex
	baseCtx   context.Context
	cancel    context.CancelFunc
	isRunning bool
}

var (
	scheduler *Scheduler
	once      sync.Once
)

// GetScheduler returns the singleton scheduler instance
func GetScheduler() *Scheduler {
	return scheduler
}

// NewScheduler creates the singleton job scheduler
func NewScheduler(db *gorm.DB, locks *LockManager) *Scheduler {
	once.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		scheduler = &Scheduler{
			cron: cron.New(cron.WithSeconds(), cron.WithChain(
				cron.Recover(cron.DefaultLogger),
			)),
			locks:   locks,
			db:      db,
			jobs:    make(map[string]*JobDefinition),
			baseCtx: ctx,
			cancel:  cancel,
		}
	})
	return scheduler
}

// RegisterJob registers a new job with the scheduler
func (s *Scheduler) RegisterJob(job JobDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.Name == "" {
		return fmt.Errorf("job name cannot be empty")
	}
	if job.Handler == nil {
		return fmt.Errorf("job %s has no handler", job.Name)
	}
	if !job.Enabled {
		log.Info("Job %s is disabled, skipping registration", job.Name)
		return nil
	}
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %s is already registered", job.Name)
	}

	s.jobs[job.Name] = &job

	_, err := s.cron.AddFunc(job.Schedule, func() {
		s.runJob(job.Name)
	})
	if err != nil {
		return err
	}

	log.Info("Registered job: %s (schedule: %s)", job.Name, job.Schedule)
	return nil
}

// runJob executes a job with distributed locking and an execution record
func (s *Scheduler) runJob(jobName string) {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		log.Error("Job not found: %s", jobName)
		return
	}

	if s.locks != nil {
		if !s.locks.TryLock(jobName) {
			log.Debug("Job %s is already running on another instance, skipping", jobName)
			return
		}
		defer s.locks.Unlock(jobName)
	}

	execution := &JobExecution{
		ID:         uuid.New(),
		JobName:    jobName,
		InstanceID: s.instanceID(),
		Status:     JobStatusRunning,
		StartedAt:  time.Now(),
	}

	// Bookkeeping never gates the handler. Handlers are idempotent, so a run
	// without an execution record beats a run that never happened.
	recorded := true
	if err := s.db.Create(execution).Error; err != nil {
		log.Error("Failed to create job execution record: %v", err)
		recorded = false
	}

	runCtx := s.baseCtx
	var cancel context.CancelFunc
	if job.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, job.Timeout)
		defer cancel()
	}

	ctx := NewContext(runCtx, jobName, execution.ID)
	jobErr := job.Handler(ctx)

	now := time.Now()
	execution.CompletedAt = &now
	execution.DurationMs = now.Sub(execution.StartedAt).Milliseconds()
	execution.RecordsProcessed = ctx.Processed()

	if jobErr != nil {
		execution.Status = JobStatusFailed
		execution.Error = jobErr.Error()
		log.Error("Job %s failed: %v", jobName, jobErr)
	} else {
		execution.Status = JobStatusCompleted
		log.Info("Job %s completed (processed: %d, duration: %dms)",
			jobName, execution.RecordsProcessed, execution.DurationMs)
	}

	if recorded {
		if err := s.db.Save(execution).Error; err != nil {
			log.Error("Failed to update job execution record: %v", err)
		}
	}
}

func (s *Scheduler) instanceID() string {
	if s.locks != nil {
		return s.locks.InstanceID()
	}
	return "local"
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	log.Info("Job scheduler started with %d jobs", len(s.jobs))
}

// Stop stops the scheduler and cancels in-flight runs. Handlers observe the
// cancellation between units of work, no partially-applied state is possible
// because every unit is an idempotent write.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Info("Job scheduler stopped")
}

// RunNow triggers immediate execution of a job
func (s *Scheduler) RunNow(jobName string) error {
	s.mu.RLock()
	_, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s is not registered", jobName)
	}
	go s.runJob(jobName)
	return nil
}

// Jobs returns all registered job definitions
func (s *Scheduler) Jobs() []*JobDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*JobDefinition, 0, len(s.jobs))
	for _, job := range s.jobs {
		result = append(result, job)
	}
	return result
}
