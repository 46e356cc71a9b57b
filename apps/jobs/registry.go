package jobs

import "sync"

// Apps register their jobs during their own WhenReady, which may run before
// the scheduler exists. Definitions are parked here and drained when the
// scheduler starts.
var (
	pending   []JobDefinition
	pendingMu sync.Mutex
)

// RegisterJob queues a job definition for the scheduler, or registers it
// directly when the scheduler is already running.
func RegisterJob(job JobDefinition) error {
	if s := GetScheduler(); s != nil {
		return s.RegisterJob(job)
	}
	pendingMu.Lock()
	defer pendingMu.Unlock()
	pending = append(pending, job)
	return nil
}

func pendingJobs() []JobDefinition {
	pendingMu.Lock()
	defer pendingMu.Unlock()
	jobs := pending
	pending = nil
	return jobs
}
