package alerts

import (
	"context"

	"github.com/getevo/evo/v2"

	"github.com/Wakar473/Timechamp/apps/models"
	"github.com/Wakar473/Timechamp/lib/identity"
	"github.com/Wakar473/Timechamp/lib/response"
)

type Controller struct{}

// GetAlerts lists the caller's alerts, newest first, optionally filtered by day
func (c Controller) GetAlerts(request *evo.Request) any {
	caller, err := identity.FromRequest(request)
	if err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	date := request.Query("date").String()
	if date != "" {
		if _, err := models.ParseDate(date); err != nil {
			return response.Error(response.ErrInvalidInput)
		}
	}

	alerts, err := service.ListForUser(context.Background(), caller.UserID, date)
	if err != nil {
		return response.FromError(err)
	}
	return response.OKWithMeta(alerts, &response.Meta{Count: len(alerts)})
}
