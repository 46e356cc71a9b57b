package realtime

import (
	"context"

	"github.com/getevo/evo/v2"

	"github.com/Wakar473/Timechamp/lib/identity"
	"github.com/Wakar473/Timechamp/lib/response"
)

type Controller struct{}

// GetOnlineUsers returns the ids of users currently connected in the
// caller's organization
func (c Controller) GetOnlineUsers(request *evo.Request) any {
	caller, err := identity.FromRequest(request)
	if err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	members, err := presence.Members(context.Background(), caller.OrganizationID.String())
	if err != nil {
		return response.FromError(err)
	}

	return response.OKWithMeta(members, &response.Meta{Count: len(members)})
}
