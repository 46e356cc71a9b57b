package reports

import (
	"context"

	"github.com/getevo/evo/v2"
	"github.com/google/uuid"

	"github.com/Wakar473/Timechamp/apps/models"
	"github.com/Wakar473/Timechamp/lib/identity"
	"github.com/Wakar473/Timechamp/lib/response"
)

type Controller struct{}

// GetDailySummary returns the caller's summary for one date, today when the
// date query parameter is absent
func (c Controller) GetDailySummary(request *evo.Request) any {
	caller, err := identity.FromRequest(request)
	if err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	date := request.Query("date").String()
	if date == "" {
		date = models.Today()
	}
	if _, err := models.ParseDate(date); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	report, err := service.DailySummary(context.Background(), caller.UserID, caller.OrganizationID, date)
	if err != nil {
		return response.FromError(err)
	}
	return response.OK(report)
}

// GetUserReport returns a user's rollup over a date range. Callers may only
// read other users' reports inside their own organization.
func (c Controller) GetUserReport(request *evo.Request) any {
	caller, err := identity.FromRequest(request)
	if err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	userID, err := uuid.Parse(request.Param("id").String())
	if err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	startDate := request.Query("start_date").String()
	endDate := request.Query("end_date").String()
	if _, err := models.ParseDate(startDate); err != nil {
		return response.Error(response.ErrMissingRequired)
	}
	if _, err := models.ParseDate(endDate); err != nil {
		return response.Error(response.ErrMissingRequired)
	}

	report, err := service.Range(context.Background(), userID, caller.OrganizationID, startDate, endDate)
	if err != nil {
		return response.FromError(err)
	}
	return response.OK(report)
}

// GetOrganizationDaily lists every summary in the caller's organization for
// one date
func (c Controller) GetOrganizationDaily(request *evo.Request) any {
	caller, err := identity.FromRequest(request)
	if err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	date := request.Query("date").String()
	if date == "" {
		date = models.Today()
	}
	if _, err := models.ParseDate(date); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	summaries, err := service.OrganizationDaily(context.Background(), caller.OrganizationID, date)
	if err != nil {
		return response.FromError(err)
	}
	return response.OKWithMeta(summaries, &response.Meta{Count: len(summaries)})
}
