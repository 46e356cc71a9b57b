package jobs

import (
	"fmt"
	"os"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/nats-io/nats.go"
)

// LockManager handles distributed job locks backed by a NATS KV bucket, so
// overlapping scan intervals on different instances skip instead of stacking.
// The engine's writes are idempotent either way, the locks only save work.
type LockManager struct {
	kv         nats.KeyValue
	instanceID string
}

// NewLockManager creates a lock manager bound to the shared JetStream context
func NewLockManager(js nats.JetStreamContext) (*LockManager, error) {
	if js == nil {
		return nil, fmt.Errorf("JetStream context is nil")
	}

	hostname, _ := os.Hostname()
	instanceID := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	kv, err := js.CreateKeyValue(&nats.KeyValueConfig{
		Bucket:      "job_locks",
		Description: "Distributed locks for background jobs",
		TTL:         30 * time.Minute,
	})
	if err != nil {
		kv, err = js.KeyValue("job_locks")
		if err != nil {
			return nil, fmt.Errorf("failed to create/bind job_locks KV bucket: %w", err)
		}
	}

	return &LockManager{kv: kv, instanceID: instanceID}, nil
}

// TryLock attempts to acquire the lock for a job. Create is atomic on the KV
// bucket and fails when the key already exists.
func (lm *LockManager) TryLock(jobName string) bool {
	_, err := lm.kv.Create(jobName, []byte(lm.instanceID))
	if err != nil {
		entry, getErr := lm.kv.Get(jobName)
		if getErr == nil && string(entry.Value()) == lm.instanceID {
			// We already own it, refresh the TTL
			if _, updateErr := lm.kv.Put(jobName, []byte(lm.instanceID)); updateErr == nil {
				return true
			}
		}
		return false
	}
	return true
}

// Unlock releases the lock if this instance owns it
func (lm *LockManager) Unlock(jobName string) {
	entry, err := lm.kv.Get(jobName)
	if err != nil {
		return
	}
	if string(entry.Value()) == lm.instanceID {
		if err := lm.kv.Delete(jobName); err != nil {
			log.Warning("Failed to release lock for job %s: %v", jobName, err)
		}
	}
}

// InstanceID returns this instance's identifier
func (lm *LockManager) InstanceID() string {
	return lm.instanceID
}
