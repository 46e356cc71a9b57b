package reports

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Wakar473/Timechamp/apps/aggregation"
	"github.com/Wakar473/Timechamp/apps/models"
)

// Service serves read-only reporting queries over sessions and summaries.
// Everything here is a pass-through view of the data model, organization
// scoped on every query.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DailyReport is the per-user view of one day
type DailyReport struct {
	UserID            uuid.UUID `json:"user_id"`
	Date              string    `json:"date"`
	TotalWorkSeconds  int64     `json:"total_work_seconds"`
	ActiveSeconds     int64     `json:"active_seconds"`
	IdleSeconds       int64     `json:"idle_seconds"`
	ProductivityScore float64   `json:"productivity_score"`
	SessionsCount     int64     `json:"sessions_count"`
}

// DailySummary returns one user's summary for a date. When the aggregation
// job has not materialized the row yet, the report is computed live from the
// day's sessions; summaries are a cache, not the source of truth.
func (s *Service) DailySummary(ctx context.Context, userID, organizationID uuid.UUID, date string) (*DailyReport, error) {
	report := &DailyReport{UserID: userID, Date: date}

	var summary models.DailySummary
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND organization_id = ? AND date = ?", userID, organizationID, date).
		First(&summary).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	dayStart, parseErr := models.ParseDate(date)
	if parseErr != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, parseErr)
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		var sessions []models.WorkSession
		err = s.db.WithContext(ctx).
			Where("user_id = ? AND organization_id = ? AND start_time >= ? AND start_time < ?",
				userID, organizationID, dayStart, dayEnd).
			Find(&sessions).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load sessions: %w", err)
		}

		for _, session := range sessions {
			report.ActiveSeconds += session.TotalActiveSeconds
			report.IdleSeconds += session.TotalIdleSeconds
		}
		report.TotalWorkSeconds = report.ActiveSeconds + report.IdleSeconds
		report.ProductivityScore = aggregation.ProductivityScore(report.ActiveSeconds, report.IdleSeconds)
		report.SessionsCount = int64(len(sessions))
		return report, nil
	}

	report.TotalWorkSeconds = summary.TotalWorkSeconds
	report.ActiveSeconds = summary.ActiveSeconds
	report.IdleSeconds = summary.IdleSeconds
	report.ProductivityScore = summary.ProductivityScore

	err = s.db.WithContext(ctx).
		Model(&models.WorkSession{}).
		Where("user_id = ? AND organization_id = ? AND start_time >= ? AND start_time < ?",
			userID, organizationID, dayStart, dayEnd).
		Count(&report.SessionsCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	return report, nil
}

// UserReport is the per-user rollup over a date range
type UserReport struct {
	UserID                   uuid.UUID             `json:"user_id"`
	StartDate                string                `json:"start_date"`
	EndDate                  string                `json:"end_date"`
	TotalWorkSeconds         int64                 `json:"total_work_seconds"`
	TotalActiveSeconds       int64                 `json:"total_active_seconds"`
	TotalIdleSeconds         int64                 `json:"total_idle_seconds"`
	AverageProductivityScore float64               `json:"average_productivity_score"`
	DaysWorked               int                   `json:"days_worked"`
	DailySummaries           []models.DailySummary `json:"daily_summaries"`
}

// Range returns a user's productivity over an inclusive date range
func (s *Service) Range(ctx context.Context, userID, organizationID uuid.UUID, startDate, endDate string) (*UserReport, error) {
	var summaries []models.DailySummary
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND organization_id = ? AND date >= ? AND date <= ?",
			userID, organizationID, startDate, endDate).
		Order("date ASC").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load summaries: %w", err)
	}

	report := &UserReport{
		UserID:         userID,
		StartDate:      startDate,
		EndDate:        endDate,
		DaysWorked:     len(summaries),
		DailySummaries: summaries,
	}

	var scoreSum float64
	for _, summary := range summaries {
		report.TotalActiveSeconds += summary.ActiveSeconds
		report.TotalIdleSeconds += summary.IdleSeconds
		scoreSum += summary.ProductivityScore
	}
	report.TotalWorkSeconds = report.TotalActiveSeconds + report.TotalIdleSeconds
	if len(summaries) > 0 {
		report.AverageProductivityScore = round2(scoreSum / float64(len(summaries)))
	}
	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// OrganizationDaily lists all summaries in an organization for one date
func (s *Service) OrganizationDaily(ctx context.Context, organizationID uuid.UUID, date string) ([]models.DailySummary, error) {
	var summaries []models.DailySummary
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND date = ?", organizationID, date).
		Order("user_id ASC").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load organization summaries: %w", err)
	}
	return summaries, nil
}
