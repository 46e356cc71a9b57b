package sessions

import (
	"context"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"

	"github.com/Wakar473/Timechamp/lib/identity"
	"github.com/Wakar473/Timechamp/lib/response"
)

type Controller struct{}

type StartSessionRequest struct {
	ProjectID *string `json:"project_id,omitempty"`
}

// StartSession opens a new work session for the authenticated user
func (c Controller) StartSession(request *evo.Request) any {
	caller, err := identity.FromRequest(request)
	if err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	var req StartSessionRequest
	if err := request.BodyParser(&req); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	var projectID *uuid.UUID
	if req.ProjectID != nil {
		id, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			return response.Error(response.ErrInvalidInput)
		}
		projectID = &id
	}

	session, err := service.Start(context.Background(), caller.UserID, caller.OrganizationID, projectID)
	if err != nil {
		return response.FromError(err)
	}

	log.Info("Work session %s started for user %s", session.ID, caller.UserID)
	return response.Created(session)
}

// StopSession closes the given session
func (c Controller) StopSession(request *evo.Request) any {
	caller, err := identity.FromRequest(request)
	if err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	sessionID, err := uuid.Parse(request.Param("id").String())
	if err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	session, err := service.Stop(context.Background(), sessionID, caller.UserID)
	if err != nil {
		return response.FromError(err)
	}

	log.Info("Work session %s stopped for user %s", session.ID, caller.UserID)
	return response.OK(session)
}

// GetSession returns one session owned by the caller
func (c Controller) GetSession(request *evo.Request) any {
	caller, err := identity.FromRequest(request)
	if err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	sessionID, err := uuid.Parse(request.Param("id").String())
	if err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	session, err := service.Get(context.Background(), sessionID, caller.UserID)
	if err != nil {
		return response.FromError(err)
	}
	return response.OK(session)
}

// GetActiveSessions lists active sessions in the caller's organization
func (c Controller) GetActiveSessions(request *evo.Request) any {
	caller, err := identity.FromRequest(request)
	if err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	sessions, err := service.ActiveForOrganization(context.Background(), caller.OrganizationID)
	if err != nil {
		return response.FromError(err)
	}
	return response.OKWithMeta(sessions, &response.Meta{Count: len(sessions)})
}
