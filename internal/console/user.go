package console

import (
	"context"
	"net/http"

	"github.com/snellmaster/snellctl/pkg/api"
)

// End-user self-service endpoints, reusing the same pipeline unchanged.

// UserProfileInfo returns the end-user principal from the profile endpoint.
func (c *Console) UserProfileInfo(ctx context.Context) (api.UserInfo, error) {
	return doJSON[api.UserInfo](c, ctx, http.MethodGet, "/user/profile", nil, nil)
}

// UpdateUserProfile mutates the end-user's own profile.
func (c *Console) UpdateUserProfile(ctx context.Context, req api.UpdateUserRequest) error {
	return doVoid(c, ctx, http.MethodPut, "/user/profile", nil, req)
}
