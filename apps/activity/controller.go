package activity

import (
	"context"
	"time"

	"github.com/getevo/evo/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Wakar473/Timechamp/apps/models"
	"github.com/Wakar473/Timechamp/lib/identity"
	"github.com/Wakar473/Timechamp/lib/response"
)

var validate = validator.New()

type Controller struct{}

type LogActivityRequest struct {
	ActivityType    string  `json:"activity_type" validate:"required,oneof=active idle"`
	DurationSeconds int64   `json:"duration_seconds"`
	AppName         *string `json:"app_name,omitempty"`
	URL             *string `json:"url,omitempty"`
}

type BatchEventRequest struct {
	ActivityType    string     `json:"activity_type" validate:"required,oneof=active idle"`
	DurationSeconds int64      `json:"duration_seconds"`
	AppName         *string    `json:"app_name,omitempty"`
	URL             *string    `json:"url,omitempty"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

type BatchActivityRequest struct {
	SessionID string              `json:"session_id" validate:"required,uuid"`
	Events    []BatchEventRequest `json:"events" validate:"required,min=1,dive"`
}

// LogActivity records a single activity event against a session
func (c Controller) LogActivity(request *evo.Request) any {
	caller, err := identity.FromRequest(request)
	if err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	sessionID, err := uuid.Parse(request.Param("id").String())
	if err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	var req LogActivityRequest
	if err := request.BodyParser(&req); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	if err := validate.Struct(req); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	ctx, cancel := requestContext()
	defer cancel()

	session, activityLog, err := service.LogActivity(ctx, sessionID, caller.UserID, Event{
		ActivityType:    models.ActivityType(req.ActivityType),
		DurationSeconds: req.DurationSeconds,
		AppName:         req.AppName,
		URL:             req.URL,
	})
	if err != nil {
		return response.FromError(err)
	}

	return response.OK(map[string]any{
		"session":  session,
		"activity": activityLog,
	})
}

// BatchLogActivity records a batch of events as one atomic unit
func (c Controller) BatchLogActivity(request *evo.Request) any {
	caller, err := identity.FromRequest(request)
	if err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	var req BatchActivityRequest
	if err := request.BodyParser(&req); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	if err := validate.Struct(req); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	events := make([]Event, 0, len(req.Events))
	for _, e := range req.Events {
		event := Event{
			ActivityType:    models.ActivityType(e.ActivityType),
			DurationSeconds: e.DurationSeconds,
			AppName:         e.AppName,
			URL:             e.URL,
		}
		if e.Timestamp != nil {
			event.Timestamp = *e.Timestamp
		}
		events = append(events, event)
	}

	ctx, cancel := requestContext()
	defer cancel()

	session, processed, err := service.BatchLogActivity(ctx, caller.UserID, sessionID, events)
	if err != nil {
		return response.FromError(err)
	}

	return response.OK(map[string]any{
		"session":         session,
		"processed_count": processed,
	})
}

// requestContext bounds one ingestion call, retries and backoff included
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
