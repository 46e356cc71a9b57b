package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Wakar473/Timechamp/apps/models"
	"github.com/Wakar473/Timechamp/lib/response"
)

// Service manages the work session lifecycle. The one-active-session-per-user
// invariant rides the unique active_key index: the loser of a concurrent
// double-start hits a duplicate key, never a stale snapshot, and gets a
// Conflict.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Start opens a new active session for the user with zeroed totals
func (s *Service) Start(ctx context.Context, userID, organizationID uuid.UUID, projectID *uuid.UUID) (*models.WorkSession, error) {
	now := time.Now()
	activeKey := userID
	session := &models.WorkSession{
		OrganizationID: organizationID,
		UserID:         userID,
		ProjectID:      projectID,
		StartTime:      now,
		Status:         models.SessionActive,
		ActiveKey:      &activeKey,
		LastActivityAt: now,
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.ErrActiveSessionExists
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Stop closes an active session. Stopping an already stopped session fails
// with InvalidState so callers can tell "I stopped it" apart from "someone
// already stopped it". Totals are left untouched.
func (s *Service) Stop(ctx context.Context, sessionID, userID uuid.UUID) (*models.WorkSession, error) {
	var session models.WorkSession

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if session.IsStopped() {
			return response.ErrSessionAlreadyStopped
		}

		now := time.Now()
		result := tx.Model(&models.WorkSession{}).
			Where("id = ? AND version = ?", session.ID, session.Version).
			Updates(map[string]interface{}{
				"status":     models.SessionStopped,
				"end_time":   now,
				"active_key": nil,
				"version":    session.Version + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to stop session: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return response.ErrConcurrentUpdate
		}

		session.Status = models.SessionStopped
		session.EndTime = &now
		session.ActiveKey = nil
		session.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Get loads a session owned by the given user
func (s *Service) Get(ctx context.Context, sessionID, userID uuid.UUID) (*models.WorkSession, error) {
	var session models.WorkSession
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &session, nil
}

// ActiveForUser returns the user's active session, or nil if there is none
func (s *Service) ActiveForUser(ctx context.Context, userID uuid.UUID) (*models.WorkSession, error) {
	var session models.WorkSession
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.SessionActive).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active session: %w", err)
	}
	return &session, nil
}

// ActiveForOrganization lists all active sessions in an organization
func (s *Service) ActiveForOrganization(ctx context.Context, organizationID uuid.UUID) ([]models.WorkSession, error) {
	var sessions []models.WorkSession
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", organizationID, models.SessionActive).
		Order("start_time DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return sessions, nil
}
