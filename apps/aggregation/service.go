package aggregation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Wakar473/Timechamp/apps/models"
	"github.com/Wakar473/Timechamp/apps/realtime"
)

// Emitter pushes summary-change notifications to connected clients
type Emitter interface {
	EmitToUser(userID uuid.UUID, event string, payload any) error
}

// Service rolls work sessions into per-user daily summaries. The rollup is a
// pure function of session state at read time followed by an atomic upsert
// keyed on (user_id, date), so re-running it any number of times, including
// concurrently with itself, converges on the same row values.
type Service struct {
	db      *gorm.DB
	emitter Emitter
}

func NewService(db *gorm.DB, emitter Emitter) *Service {
	return &Service{db: db, emitter: emitter}
}

// AggregateDay recomputes all summaries for one organization and date.
// Returns the number of users summarized.
func (s *Service) AggregateDay(ctx context.Context, organizationID uuid.UUID, date string) (int, error) {
	dayStart, err := models.ParseDate(date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	var sessions []models.WorkSession
	err = s.db.WithContext(ctx).
		Where("organization_id = ? AND start_time >= ? AND start_time < ?",
			organizationID, dayStart, dayEnd).
		Find(&sessions).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load sessions for %s: %w", date, err)
	}

	type totals struct {
		active int64
		idle   int64
	}
	perUser := make(map[uuid.UUID]*totals)
	for _, session := range sessions {
		t := perUser[session.UserID]
		if t == nil {
			t = &totals{}
			perUser[session.UserID] = t
		}
		t.active += session.TotalActiveSeconds
		t.idle += session.TotalIdleSeconds
	}

	processed := 0
	for userID, t := range perUser {
		// Each upsert is an independently idempotent unit, so a shutdown
		// signal only has to stop new units from starting
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}

		summary, err := s.upsert(ctx, organizationID, userID, date, t.active, t.idle)
		if err != nil {
			return processed, err
		}
		processed++

		if s.emitter != nil {
			if err := s.emitter.EmitToUser(userID, realtime.EventSummaryUpdate, realtime.SummaryUpdatePayload{Summary: summary}); err != nil {
				log.Warning("Failed to push summary update for user %s: %v", userID, err)
			}
		}
	}

	log.Info("Daily summary aggregated: organization=%s date=%s users=%d", organizationID, date, processed)
	return processed, nil
}

// upsert writes one summary row atomically: a single conditional
// insert-or-update, never read-then-write, so concurrent invocations for the
// same (user, date) cannot interleave.
func (s *Service) upsert(ctx context.Context, organizationID, userID uuid.UUID, date string, active, idle int64) (*models.DailySummary, error) {
	summary := models.DailySummary{
		OrganizationID:    organizationID,
		UserID:            userID,
		Date:              date,
		TotalWorkSeconds:  active + idle,
		ActiveSeconds:     active,
		IdleSeconds:       idle,
		ProductivityScore: ProductivityScore(active, idle),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"organization_id",
				"total_work_seconds",
				"active_seconds",
				"idle_seconds",
				"productivity_score",
				"updated_at",
			}),
		}).
		Create(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert summary for user %s: %w", userID, err)
	}
	return &summary, nil
}

// Organizations lists the organizations that have sessions on the given date
func (s *Service) Organizations(ctx context.Context, date string) ([]uuid.UUID, error) {
	dayStart, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	var ids []uuid.UUID
	err = s.db.WithContext(ctx).
		Model(&models.WorkSession{}).
		Distinct("organization_id").
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
		Pluck("organization_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return ids, nil
}

// ProductivityScore computes active/(active+idle)x100 rounded to 2 decimals,
// 0 when the denominator is 0
func ProductivityScore(active, idle int64) float64 {
	total := active + idle
	if total == 0 {
		return 0
	}
	score := float64(active) / float64(total) * 100
	return math.Round(score*100) / 100
}
