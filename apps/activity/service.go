package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Wakar473/Timechamp/apps/models"
	"github.com/Wakar473/Timechamp/lib/response"
)

const (
	// DefaultMaxRetries bounds the optimistic concurrency retry loop
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the backoff base, doubled on each attempt
	DefaultRetryDelay = 100 * time.Millisecond
)

// errVersionConflict signals that a concurrent writer won the version race.
// It never leaves this package, the retry loop consumes it.
var errVersionConflict = errors.New("session version conflict")

// Event is one reported activity interval. A zero Timestamp means "now".
type Event struct {
	ActivityType    models.ActivityType
	DurationSeconds int64
	AppName         *string
	URL             *string
	Timestamp       time.Time
}

// Service ingests activity events against work sessions. Session rows are
// never locked: the mutation is a conditional update on the version read at
// the start of the transaction, and a lost race is retried with exponential
// backoff up to MaxRetries before surfacing a Conflict to the caller.
type Service struct {
	db         *gorm.DB
	MaxRetries int
	RetryDelay time.Duration

	// sleep is replaceable so tests can assert backoff without real delays
	sleep func(time.Duration)
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:         db,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		sleep:      time.Sleep,
	}
}

// LogActivity applies a single event to the session owned by userID and
// records it. Returns the updated session and the persisted activity row.
func (s *Service) LogActivity(ctx context.Context, sessionID, userID uuid.UUID, event Event) (*models.WorkSession, *models.ActivityLog, error) {
	if err := validateEvents(event); err != nil {
		return nil, nil, err
	}

	session, logs, err := s.applyWithRetry(ctx, sessionID, userID, []Event{event})
	if err != nil {
		return nil, nil, err
	}

	log.Debug("Activity logged: session=%s type=%s duration=%d", sessionID, event.ActivityType, event.DurationSeconds)
	return session, &logs[0], nil
}

// BatchLogActivity applies all events as one atomic unit: one version check,
// one totals update, all log rows inserted in the same transaction. The batch
// is rejected wholesale when the session is stopped, nothing is partially
// applied. Events need not be time-ordered, only their sum affects totals.
func (s *Service) BatchLogActivity(ctx context.Context, userID, sessionID uuid.UUID, events []Event) (*models.WorkSession, int, error) {
	if len(events) == 0 {
		return nil, 0, response.ErrMissingRequired
	}
	if err := validateEvents(events...); err != nil {
		return nil, 0, err
	}

	session, logs, err := s.applyWithRetry(ctx, sessionID, userID, events)
	if err != nil {
		return nil, 0, err
	}

	log.Info("Batch activity logged: session=%s events=%d", sessionID, len(logs))
	return session, len(logs), nil
}

func validateEvents(events ...Event) error {
	for _, event := range events {
		if event.DurationSeconds < 0 {
			return response.ErrNegativeDuration
		}
		if event.ActivityType != models.ActivityActive && event.ActivityType != models.ActivityIdle {
			return response.ErrInvalidInput
		}
	}
	return nil
}

func (s *Service) applyWithRetry(ctx context.Context, sessionID, userID uuid.UUID, events []Event) (*models.WorkSession, []models.ActivityLog, error) {
	for attempt := 0; ; attempt++ {
		session, logs, err := s.apply(ctx, sessionID, userID, events)
		if err == nil {
			return session, logs, nil
		}
		if !errors.Is(err, errVersionConflict) {
			if ctx.Err() != nil {
				// The deadline bounds the whole retry loop; report it as the
				// retryable conflict so clients resubmit
				return nil, nil, response.ErrConcurrentUpdate
			}
			return nil, nil, err
		}
		if attempt >= s.MaxRetries {
			log.Warning("Max retries reached logging activity to session %s", sessionID)
			return nil, nil, response.ErrConcurrentUpdate
		}
		if ctx.Err() != nil {
			return nil, nil, response.ErrConcurrentUpdate
		}
		log.Debug("Version conflict on session %s, attempt %d", sessionID, attempt+1)
		s.sleep(s.RetryDelay << attempt)
	}
}

// apply runs one ingestion attempt: read the session, add the event durations
// to its totals, write back conditioned on the version being unchanged, then
// insert the activity rows. A conditional update touching zero rows means a
// concurrent writer won and the whole attempt rolls back.
func (s *Service) apply(ctx context.Context, sessionID, userID uuid.UUID, events []Event) (*models.WorkSession, []models.ActivityLog, error) {
	var session models.WorkSession
	var logs []models.ActivityLog

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if session.IsStopped() {
			return response.ErrSessionStopped
		}

		var activeDelta, idleDelta int64
		for _, event := range events {
			if event.ActivityType == models.ActivityActive {
				activeDelta += event.DurationSeconds
			} else {
				idleDelta += event.DurationSeconds
			}
		}

		now := time.Now()
		result := tx.Model(&models.WorkSession{}).
			Where("id = ? AND version = ?", session.ID, session.Version).
			Updates(map[string]interface{}{
				"total_active_seconds": session.TotalActiveSeconds + activeDelta,
				"total_idle_seconds":   session.TotalIdleSeconds + idleDelta,
				"last_activity_at":     now,
				"version":              session.Version + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update session totals: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errVersionConflict
		}

		logs = make([]models.ActivityLog, 0, len(events))
		for _, event := range events {
			timestamp := event.Timestamp
			if timestamp.IsZero() {
				timestamp = now
			}
			logs = append(logs, models.ActivityLog{
				SessionID:       session.ID,
				Timestamp:       timestamp,
				ActivityType:    event.ActivityType,
				DurationSeconds: event.DurationSeconds,
				AppName:         event.AppName,
				URL:             event.URL,
			})
		}
		if err := tx.Create(&logs).Error; err != nil {
			return fmt.Errorf("failed to insert activity logs: %w", err)
		}

		session.TotalActiveSeconds += activeDelta
		session.TotalIdleSeconds += idleDelta
		session.LastActivityAt = now
		session.Version++
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &session, logs, nil
}
