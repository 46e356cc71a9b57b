package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the canonical day format used for summary and alert keys.
const DateLayout = "2006-01-02"

// DateOf truncates a timestamp to its calendar day key.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a day key back into the start of that local day.
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, time.Local)
}

// Today returns the current calendar day key.
func Today() string {
	return DateOf(time.Now())
}

// SessionStatus represents the lifecycle state of a work session
type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionStopped SessionStatus = "stopped"
)

// ActivityType classifies a reported activity interval
type ActivityType string

const (
	ActivityActive ActivityType = "active"
	ActivityIdle   ActivityType = "idle"
)

// AlertType classifies a detected alert condition
type AlertType string

const (
	AlertIdle     AlertType = "idle"
	AlertOvertime AlertType = "overtime"
)

// WorkSession is one open-or-closed span of tracked work for a user.
// Totals only ever grow while the session is active, and every persisted
// mutation bumps Version. Concurrent writers race on the version column
// instead of taking row locks.
type WorkSession struct {
	ID                 uuid.UUID     `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	OrganizationID     uuid.UUID     `gorm:"column:organization_id;type:char(36);not null;index:idx_org_start,priority:1" json:"organization_id"`
	UserID             uuid.UUID     `gorm:"column:user_id;type:char(36);not null;index:idx_user_status,priority:1" json:"user_id"`
	ProjectID          *uuid.UUID    `gorm:"column:project_id;type:char(36)" json:"project_id,omitempty"`
	StartTime          time.Time     `gorm:"column:start_time;not null;index:idx_org_start,priority:2" json:"start_time"`
	EndTime            *time.Time    `gorm:"column:end_time" json:"end_time"`
	TotalActiveSeconds int64         `gorm:"column:total_active_seconds;not null;default:0" json:"total_active_seconds"`
	TotalIdleSeconds   int64         `gorm:"column:total_idle_seconds;not null;default:0" json:"total_idle_seconds"`
	Status             SessionStatus `gorm:"column:status;size:20;not null;default:active;index:idx_user_status,priority:2" json:"status"`
	// ActiveKey mirrors UserID while the session is active and is cleared on
	// stop. The unique index makes one-active-session-per-user a store
	// invariant: concurrent double-starts race on the index, not on an
	// application-level check.
	ActiveKey      *uuid.UUID `gorm:"column:active_key;type:char(36);uniqueIndex:idx_one_active" json:"-"`
	LastActivityAt time.Time  `gorm:"column:last_activity_at" json:"last_activity_at"`
	Version            int64         `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt          time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	ActivityLogs []ActivityLog `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"activity_logs,omitempty"`
}

func (WorkSession) TableName() string {
	return "work_sessions"
}

func (s *WorkSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsStopped reports whether the session has been closed
func (s *WorkSession) IsStopped() bool {
	return s.Status == SessionStopped
}

// TotalWorkSeconds returns active plus idle seconds
func (s *WorkSession) TotalWorkSeconds() int64 {
	return s.TotalActiveSeconds + s.TotalIdleSeconds
}

// ActivityLog is the immutable record of one reported activity interval.
// Rows are created once per accepted event and never mutated, so the sum of
// durations per type always matches the owning session's totals.
type ActivityLog struct {
	ID              uuid.UUID    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	SessionID       uuid.UUID    `gorm:"column:session_id;type:char(36);not null;index:idx_session_ts,priority:1" json:"session_id"`
	Timestamp       time.Time    `gorm:"column:timestamp;not null;index:idx_session_ts,priority:2" json:"timestamp"`
	ActivityType    ActivityType `gorm:"column:activity_type;size:20;not null" json:"activity_type"`
	DurationSeconds int64        `gorm:"column:duration_seconds;not null" json:"duration_seconds"`
	AppName         *string      `gorm:"column:app_name;size:255" json:"app_name,omitempty"`
	URL             *string      `gorm:"column:url;type:text" json:"url,omitempty"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// DailySummary is the derived per-user per-day rollup. It is a cache of
// session state, recomputable at any time, and unique per (user_id, date).
type DailySummary struct {
	ID                uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	OrganizationID    uuid.UUID `gorm:"column:organization_id;type:char(36);not null;index" json:"organization_id"`
	UserID            uuid.UUID `gorm:"column:user_id;type:char(36);not null;uniqueIndex:idx_user_date,priority:1" json:"user_id"`
	Date              string    `gorm:"column:date;type:char(10);not null;uniqueIndex:idx_user_date,priority:2" json:"date"`
	TotalWorkSeconds  int64     `gorm:"column:total_work_seconds;not null;default:0" json:"total_work_seconds"`
	ActiveSeconds     int64     `gorm:"column:active_seconds;not null;default:0" json:"active_seconds"`
	IdleSeconds       int64     `gorm:"column:idle_seconds;not null;default:0" json:"idle_seconds"`
	ProductivityScore float64   `gorm:"column:productivity_score;type:decimal(5,2);not null;default:0" json:"productivity_score"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DailySummary) TableName() string {
	return "daily_summaries"
}

func (s *DailySummary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Alert is a notification of a detected condition. The unique index on
// (user_id, type, alert_date) makes the evaluator's dedup-check-plus-insert
// atomic: one logical row per user per type per calendar day.
type Alert struct {
	ID             uuid.UUID  `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:char(36);not null;index" json:"organization_id"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:char(36);not null;uniqueIndex:idx_alert_dedup,priority:1" json:"user_id"`
	SessionID      *uuid.UUID `gorm:"column:session_id;type:char(36)" json:"session_id,omitempty"`
	Type           AlertType  `gorm:"column:type;size:20;not null;uniqueIndex:idx_alert_dedup,priority:2" json:"type"`
	AlertDate      string     `gorm:"column:alert_date;type:char(10);not null;uniqueIndex:idx_alert_dedup,priority:3" json:"alert_date"`
	Message        string     `gorm:"column:message;type:text;not null" json:"message"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ResolvedAt     *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	ResolvedBy     *uuid.UUID `gorm:"column:resolved_by;type:char(36)" json:"resolved_by,omitempty"`
}

func (Alert) TableName() string {
	return "alerts"
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
