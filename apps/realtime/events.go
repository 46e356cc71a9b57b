package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/Wakar473/Timechamp/apps/models"
)

// Event names delivered to connected clients
const (
	EventUserOnline    = "USER_ONLINE"
	EventUserOffline   = "USER_OFFLINE"
	EventSessionUpdate = "SESSION_UPDATE"
	EventInactiveAlert = "INACTIVE_ALERT"
	EventOvertimeAlert = "OVERTIME_ALERT"
	EventSummaryUpdate = "SUMMARY_UPDATE"
)

// Envelope is the wire format for all pushed events
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// UserPresencePayload accompanies USER_ONLINE and USER_OFFLINE
type UserPresencePayload struct {
	UserID    uuid.UUID `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionUpdatePayload accompanies SESSION_UPDATE
type SessionUpdatePayload struct {
	Session *models.WorkSession `json:"session"`
}

// InactiveAlertPayload accompanies INACTIVE_ALERT
type InactiveAlertPayload struct {
	SessionID uuid.UUID `json:"sessionId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// OvertimeAlertPayload accompanies OVERTIME_ALERT
type OvertimeAlertPayload struct {
	HoursWorked float64   `json:"hoursWorked"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// SummaryUpdatePayload accompanies SUMMARY_UPDATE
type SummaryUpdatePayload struct {
	Summary *models.DailySummary `json:"summary"`
}

// UserSubject is the NATS subject carrying events for a single user
func UserSubject(userID uuid.UUID) string {
	return "rt.user." + userID.String()
}

// OrganizationSubject is the NATS subject carrying organization-wide events
func OrganizationSubject(organizationID uuid.UUID) string {
	return "rt.org." + organizationID.String()
}
