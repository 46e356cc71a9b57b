package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Wakar473/Timechamp/apps/models"
	"github.com/Wakar473/Timechamp/lib/response"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.WorkSession{}, &models.ActivityLog{}))
	return db
}

func seedSession(t *testing.T, db *gorm.DB, status models.SessionStatus) *models.WorkSession {
	t.Helper()
	session := &models.WorkSession{
		OrganizationID: uuid.New(),
		UserID:         uuid.New(),
		StartTime:      time.Now().Add(-time.Hour),
		Status:         status,
		LastActivityAt: time.Now().Add(-time.Hour),
		Version:        1,
	}
	require.NoError(t, db.Create(session).Error)
	return session
}

func TestLogActivityAccumulatesTotals(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	session := seedSession(t, db, models.SessionActive)

	updated, logRow, err := svc.LogActivity(context.Background(), session.ID, session.UserID, Event{
		ActivityType:    models.ActivityActive,
		DurationSeconds: 120,
	})
	require.NoError(t, err)
	require.EqualValues(t, 120, updated.TotalActiveSeconds)
	require.EqualValues(t, 0, updated.TotalIdleSeconds)
	require.EqualValues(t, 2, updated.Version)
	require.EqualValues(t, 120, logRow.DurationSeconds)
	require.Equal(t, models.ActivityActive, logRow.ActivityType)

	updated, _, err = svc.LogActivity(context.Background(), session.ID, session.UserID, Event{
		ActivityType:    models.ActivityIdle,
		DurationSeconds: 30,
	})
	require.NoError(t, err)
	require.EqualValues(t, 120, updated.TotalActiveSeconds)
	require.EqualValues(t, 30, updated.TotalIdleSeconds)
	require.EqualValues(t, 3, updated.Version)

	var stored models.WorkSession
	require.NoError(t, db.First(&stored, "id = ?", session.ID).Error)
	require.EqualValues(t, 120, stored.TotalActiveSeconds)
	require.EqualValues(t, 30, stored.TotalIdleSeconds)
	require.False(t, stored.LastActivityAt.Before(session.LastActivityAt))

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("session_id = ?", session.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestLogActivityZeroDurationIsRecorded(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	session := seedSession(t, db, models.SessionActive)

	updated, logRow, err := svc.LogActivity(context.Background(), session.ID, session.UserID, Event{
		ActivityType:    models.ActivityActive,
		DurationSeconds: 0,
	})
	require.NoError(t, err)
	require.EqualValues(t, 0, updated.TotalActiveSeconds)
	require.EqualValues(t, 2, updated.Version)
	require.EqualValues(t, 0, logRow.DurationSeconds)

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("session_id = ?", session.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestLogActivityRejectsStoppedSession(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	session := seedSession(t, db, models.SessionStopped)

	_, _, err := svc.LogActivity(context.Background(), session.ID, session.UserID, Event{
		ActivityType:    models.ActivityActive,
		DurationSeconds: 60,
	})

	var appErr response.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, response.ErrorCodeInvalidState, appErr.Code)

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("session_id = ?", session.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestLogActivitySessionNotFound(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	_, _, err := svc.LogActivity(context.Background(), uuid.New(), uuid.New(), Event{
		ActivityType:    models.ActivityActive,
		DurationSeconds: 10,
	})

	var appErr response.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, response.ErrorCodeSessionNotFound, appErr.Code)
}

func TestLogActivityNegativeDuration(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	session := seedSession(t, db, models.SessionActive)

	_, _, err := svc.LogActivity(context.Background(), session.ID, session.UserID, Event{
		ActivityType:    models.ActivityActive,
		DurationSeconds: -5,
	})

	var appErr response.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, response.ErrorCodeValidationError, appErr.Code)
}

func TestBatchLogActivityAppliesAtomically(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	session := seedSession(t, db, models.SessionActive)

	events := []Event{
		{ActivityType: models.ActivityActive, DurationSeconds: 100},
		{ActivityType: models.ActivityIdle, DurationSeconds: 40},
		{ActivityType: models.ActivityActive, DurationSeconds: 60},
	}

	updated, accepted, err := svc.BatchLogActivity(context.Background(), session.UserID, session.ID, events)
	require.NoError(t, err)
	require.Equal(t, 3, accepted)
	require.EqualValues(t, 160, updated.TotalActiveSeconds)
	require.EqualValues(t, 40, updated.TotalIdleSeconds)

	// The whole batch consumes one version, not one per event
	require.EqualValues(t, 2, updated.Version)

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("session_id = ?", session.ID).Count(&count).Error)
	require.EqualValues(t, 3, count)
}

func TestBatchLogActivityRejectedWhenStopped(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	session := seedSession(t, db, models.SessionStopped)

	_, _, err := svc.BatchLogActivity(context.Background(), session.UserID, session.ID, []Event{
		{ActivityType: models.ActivityActive, DurationSeconds: 10},
		{ActivityType: models.ActivityIdle, DurationSeconds: 20},
	})

	var appErr response.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, response.ErrorCodeInvalidState, appErr.Code)

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("session_id = ?", session.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestBatchLogActivityEmptyBatch(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	session := seedSession(t, db, models.SessionActive)

	_, _, err := svc.BatchLogActivity(context.Background(), session.UserID, session.ID, nil)
	require.ErrorIs(t, err, response.ErrMissingRequired)
}

func TestConcurrentIngestionLosesNothing(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	svc.sleep = func(time.Duration) {}
	session := seedSession(t, db, models.SessionActive)

	const workers = 10
	const duration = 60

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.LogActivity(context.Background(), session.ID, session.UserID, Event{
				ActivityType:    models.ActivityActive,
				DurationSeconds: duration,
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	var stored models.WorkSession
	require.NoError(t, db.First(&stored, "id = ?", session.ID).Error)
	require.EqualValues(t, workers*duration, stored.TotalActiveSeconds)
	require.EqualValues(t, 1+workers, stored.Version)

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("session_id = ?", session.ID).Count(&count).Error)
	require.EqualValues(t, workers, count)
}

// forceConflicts bumps the session version out from under the next n update
// attempts, making each conditional write lose its race.
func forceConflicts(t *testing.T, db *gorm.DB, sessionID uuid.UUID, n *int) {
	t.Helper()
	err := db.Callback().Update().Before("gorm:update").Register("test:force_conflict", func(tx *gorm.DB) {
		if *n <= 0 {
			return
		}
		*n--
		err := tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE work_sessions SET version = version + 1 WHERE id = ?", sessionID).Error
		require.NoError(t, err)
	})
	require.NoError(t, err)
}

func TestRetryBackoffThenConflict(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	session := seedSession(t, db, models.SessionActive)

	var slept []time.Duration
	svc.sleep = func(d time.Duration) { slept = append(slept, d) }

	remaining := svc.MaxRetries + 1
	forceConflicts(t, db, session.ID, &remaining)

	_, _, err := svc.LogActivity(context.Background(), session.ID, session.UserID, Event{
		ActivityType:    models.ActivityActive,
		DurationSeconds: 60,
	})

	var appErr response.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, response.ErrorCodeConflict, appErr.Code)
	require.True(t, appErr.Retryable)

	require.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}, slept)

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("session_id = ?", session.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestRetrySucceedsAfterConflict(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	session := seedSession(t, db, models.SessionActive)

	var slept []time.Duration
	svc.sleep = func(d time.Duration) { slept = append(slept, d) }

	remaining := 2
	forceConflicts(t, db, session.ID, &remaining)

	updated, _, err := svc.LogActivity(context.Background(), session.ID, session.UserID, Event{
		ActivityType:    models.ActivityActive,
		DurationSeconds: 60,
	})
	require.NoError(t, err)
	require.EqualValues(t, 60, updated.TotalActiveSeconds)
	require.Len(t, slept, 2)

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("session_id = ?", session.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestVersionConflictStaysInternal(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	svc.sleep = func(time.Duration) {}
	session := seedSession(t, db, models.SessionActive)

	remaining := svc.MaxRetries + 1
	forceConflicts(t, db, session.ID, &remaining)

	_, _, err := svc.LogActivity(context.Background(), session.ID, session.UserID, Event{
		ActivityType:    models.ActivityActive,
		DurationSeconds: 1,
	})
	require.Error(t, err)
	require.False(t, errors.Is(err, errVersionConflict))
}
