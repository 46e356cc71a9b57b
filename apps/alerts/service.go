package alerts

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Wakar473/Timechamp/apps/models"
	"github.com/Wakar473/Timechamp/apps/realtime"
)

const (
	// DefaultIdleThreshold is how long a session may be silent before an
	// idle alert fires
	DefaultIdleThreshold = 5 * time.Minute
	// DefaultOvertimeThreshold is the daily work total above which an
	// overtime alert fires
	DefaultOvertimeThreshold = 9 * time.Hour
)

// Emitter pushes alert events to connected clients
type Emitter interface {
	EmitToUser(userID uuid.UUID, event string, payload any) error
}

// Service scans session and summary state for alert conditions. Scans only
// read summaries, never write them, so they tolerate the aggregation job
// running concurrently. The unique (user, type, day) index makes the
// dedup-check-plus-insert a single atomic decision point.
type Service struct {
	db      *gorm.DB
	emitter Emitter

	IdleThreshold     time.Duration
	OvertimeThreshold time.Duration

	// now is replaceable in tests
	now func() time.Time
}

func NewService(db *gorm.DB, emitter Emitter) *Service {
	return &Service{
		db:                db,
		emitter:           emitter,
		IdleThreshold:     DefaultIdleThreshold,
		OvertimeThreshold: DefaultOvertimeThreshold,
		now:               time.Now,
	}
}

// ScanIdle raises one idle alert per user per day for active sessions whose
// last activity is older than the threshold. Returns the number of alerts
// created.
func (s *Service) ScanIdle(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.IdleThreshold)

	var sessions []models.WorkSession
	err := s.db.WithContext(ctx).
		Where("status = ? AND last_activity_at < ?", models.SessionActive, cutoff).
		Find(&sessions).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan idle sessions: %w", err)
	}

	created := 0
	for _, session := range sessions {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}

		sessionID := session.ID
		alert := models.Alert{
			OrganizationID: session.OrganizationID,
			UserID:         session.UserID,
			SessionID:      &sessionID,
			Type:           models.AlertIdle,
			AlertDate:      models.DateOf(s.now()),
			Message:        fmt.Sprintf("No activity detected for %d minutes", int(s.IdleThreshold.Minutes())),
		}

		inserted, err := s.create(ctx, &alert)
		if err != nil {
			log.Error("Failed to create idle alert for user %s: %v", session.UserID, err)
			continue
		}
		if !inserted {
			continue
		}
		created++

		if s.emitter != nil {
			if err := s.emitter.EmitToUser(session.UserID, realtime.EventInactiveAlert, realtime.InactiveAlertPayload{
				SessionID: session.ID,
				Message:   alert.Message,
				Timestamp: s.now(),
			}); err != nil {
				log.Warning("Failed to push idle alert for user %s: %v", session.UserID, err)
			}
		}
		log.Info("Idle alert created: user=%s session=%s", session.UserID, session.ID)
	}
	return created, nil
}

// ScanOvertime raises one overtime alert per user per day for today's
// summaries strictly above the threshold. A total exactly at the threshold
// does not trigger.
func (s *Service) ScanOvertime(ctx context.Context) (int, error) {
	today := models.DateOf(s.now())
	thresholdSeconds := int64(s.OvertimeThreshold.Seconds())

	var summaries []models.DailySummary
	err := s.db.WithContext(ctx).
		Where("date = ? AND total_work_seconds > ?", today, thresholdSeconds).
		Find(&summaries).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan overtime summaries: %w", err)
	}

	created := 0
	for _, summary := range summaries {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}

		hours := fmt.Sprintf("%.1f", float64(summary.TotalWorkSeconds)/3600)
		alert := models.Alert{
			OrganizationID: summary.OrganizationID,
			UserID:         summary.UserID,
			Type:           models.AlertOvertime,
			AlertDate:      today,
			Message: fmt.Sprintf("You have worked %s hours today, exceeding the %d hour threshold",
				hours, int(s.OvertimeThreshold.Hours())),
		}

		inserted, err := s.create(ctx, &alert)
		if err != nil {
			log.Error("Failed to create overtime alert for user %s: %v", summary.UserID, err)
			continue
		}
		if !inserted {
			continue
		}
		created++

		if s.emitter != nil {
			hoursWorked, _ := strconv.ParseFloat(hours, 64)
			if err := s.emitter.EmitToUser(summary.UserID, realtime.EventOvertimeAlert, realtime.OvertimeAlertPayload{
				HoursWorked: hoursWorked,
				Message:     alert.Message,
				Timestamp:   s.now(),
			}); err != nil {
				log.Warning("Failed to push overtime alert for user %s: %v", summary.UserID, err)
			}
		}
		log.Info("Overtime alert created: user=%s hours=%s", summary.UserID, hours)
	}
	return created, nil
}

// ListForUser returns the user's most recent alerts, newest first, capped at
// 100. A non-empty date narrows the list to that day.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, date string) ([]models.Alert, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100)
	if date != "" {
		query = query.Where("alert_date = ?", date)
	}

	var alerts []models.Alert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// create inserts the alert unless one already exists for the same
// (user, type, day). The conflict clause rides the unique index, so two
// concurrent scan passes cannot both insert.
func (s *Service) create(ctx context.Context, alert *models.Alert) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}, {Name: "alert_date"}},
			DoNothing: true,
		}).
		Create(alert)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
