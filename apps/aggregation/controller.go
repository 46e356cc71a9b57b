package aggregation

import (
	"context"

	"github.com/getevo/evo/v2"
	"github.com/google/uuid"

	"github.com/Wakar473/Timechamp/apps/models"
	"github.com/Wakar473/Timechamp/lib/identity"
	"github.com/Wakar473/Timechamp/lib/response"
)

type Controller struct{}

type RunAggregationRequest struct {
	Date           string `json:"date"`
	OrganizationID string `json:"organization_id"`
}

// RunAggregation triggers an immediate rollup for one organization and date.
// Safe to call while the scheduled job is running: both converge on the same
// summary rows.
func (c Controller) RunAggregation(request *evo.Request) any {
	if _, err := identity.FromRequest(request); err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	var req RunAggregationRequest
	if err := request.BodyParser(&req); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	if req.Date == "" || req.OrganizationID == "" {
		return response.Error(response.ErrMissingRequired)
	}
	if _, err := models.ParseDate(req.Date); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	processed, err := service.AggregateDay(context.Background(), orgID, req.Date)
	if err != nil {
		return response.FromError(err)
	}

	return response.OKWithMessage(map[string]any{
		"processed_users": processed,
	}, "aggregation completed")
}
