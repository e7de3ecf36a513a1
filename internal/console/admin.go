package console

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/snellmaster/snellctl/internal/common/httpclient"
	"github.com/snellmaster/snellctl/pkg/api"
)

// Administrative entity endpoints. These are mechanical collaborators of the
// request pipeline: each call builds a descriptor and lets the pipeline do
// credential injection, loading accounting, and envelope unwrapping.

// ChangePassword rotates the administrator password.
func (c *Console) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	req := api.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid password change request: %w", err)
	}
	return doVoid(c, ctx, http.MethodPost, "/admin/password", nil, req)
}

// ListNodes returns all fleet nodes.
func (c *Console) ListNodes(ctx context.Context) ([]api.Node, error) {
	return doJSON[[]api.Node](c, ctx, http.MethodGet, "/admin/nodes", nil, nil)
}

// CreateNode registers a node.
func (c *Console) CreateNode(ctx context.Context, req api.CreateNodeRequest) (api.Node, error) {
	if err := c.validate.Struct(req); err != nil {
		return api.Node{}, fmt.Errorf("invalid node: %w", err)
	}
	return doJSON[api.Node](c, ctx, http.MethodPost, "/admin/nodes", nil, req)
}

// GetNode returns one node.
func (c *Console) GetNode(ctx context.Context, id int64) (api.Node, error) {
	return doJSON[api.Node](c, ctx, http.MethodGet, fmt.Sprintf("/admin/nodes/%d", id), nil, nil)
}

// UpdateNode mutates node attributes.
func (c *Console) UpdateNode(ctx context.Context, id int64, req api.UpdateNodeRequest) (api.Node, error) {
	return doJSON[api.Node](c, ctx, http.MethodPut, fmt.Sprintf("/admin/nodes/%d", id), nil, req)
}

// DeleteNode removes a node from the fleet.
func (c *Console) DeleteNode(ctx context.Context, id int64) error {
	return doVoid(c, ctx, http.MethodDelete, fmt.Sprintf("/admin/nodes/%d", id), nil, nil)
}

// RegenerateNodeToken rotates a node's agent API token.
func (c *Console) RegenerateNodeToken(ctx context.Context, id int64) (string, error) {
	out, err := doJSON[struct {
		Token string `json:"token"`
	}](c, ctx, http.MethodPost, fmt.Sprintf("/admin/nodes/%d/token", id), nil, nil)
	return out.Token, err
}

// DownloadInstallScript fetches the agent install script for a node as raw
// bytes, bypassing envelope unwrapping.
func (c *Console) DownloadInstallScript(ctx context.Context, id int64) ([]byte, error) {
	return c.client.DoRequest(ctx, httpclient.RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/admin/nodes/%d/install-script", id),
		Binary: true,
	})
}

// ListUsers returns a page of end users.
func (c *Console) ListUsers(ctx context.Context, filter api.UserFilter) (api.Page[api.UserInfo], error) {
	query := map[string]string{}
	if filter.Username != "" {
		query["username"] = filter.Username
	}
	if filter.Status != 0 {
		query["status"] = strconv.Itoa(filter.Status)
	}
	addPaging(query, filter.Page, filter.PageSize)
	return doJSON[api.Page[api.UserInfo]](c, ctx, http.MethodGet, "/admin/users", query, nil)
}

// CreateUser registers an end user.
func (c *Console) CreateUser(ctx context.Context, req api.CreateUserRequest) (api.UserInfo, error) {
	if err := c.validate.Struct(req); err != nil {
		return api.UserInfo{}, fmt.Errorf("invalid user: %w", err)
	}
	return doJSON[api.UserInfo](c, ctx, http.MethodPost, "/admin/users", nil, req)
}

// GetUser returns one end user.
func (c *Console) GetUser(ctx context.Context, id int64) (api.UserInfo, error) {
	return doJSON[api.UserInfo](c, ctx, http.MethodGet, fmt.Sprintf("/admin/users/%d", id), nil, nil)
}

// UpdateUser mutates user attributes.
func (c *Console) UpdateUser(ctx context.Context, id int64, req api.UpdateUserRequest) (api.UserInfo, error) {
	return doJSON[api.UserInfo](c, ctx, http.MethodPut, fmt.Sprintf("/admin/users/%d", id), nil, req)
}

// DeleteUser removes an end user.
func (c *Console) DeleteUser(ctx context.Context, id int64) error {
	return doVoid(c, ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil, nil)
}

// ResetUserTraffic zeroes a user's traffic counters.
func (c *Console) ResetUserTraffic(ctx context.Context, id int64) error {
	return doVoid(c, ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/reset-traffic", id), nil, nil)
}

// SetUserStatus enables or disables a user account.
func (c *Console) SetUserStatus(ctx context.Context, id int64, status int) error {
	return doVoid(c, ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/status", id), nil, map[string]int{"status": status})
}

// AssignNodes grants a user access to the given nodes.
func (c *Console) AssignNodes(ctx context.Context, id int64, nodeIDs []int64) error {
	return doVoid(c, ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/nodes", id), nil, map[string][]int64{"node_ids": nodeIDs})
}

// ListInstances returns a page of proxy instances.
func (c *Console) ListInstances(ctx context.Context, filter api.InstanceFilter) (api.Page[api.Instance], error) {
	query := map[string]string{}
	if filter.NodeID != 0 {
		query["node_id"] = strconv.FormatInt(filter.NodeID, 10)
	}
	if filter.UserID != 0 {
		query["user_id"] = strconv.FormatInt(filter.UserID, 10)
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	addPaging(query, filter.Page, filter.PageSize)
	return doJSON[api.Page[api.Instance]](c, ctx, http.MethodGet, "/admin/instances", query, nil)
}

// CreateInstance provisions an instance.
func (c *Console) CreateInstance(ctx context.Context, req api.CreateInstanceRequest) (api.Instance, error) {
	if err := c.validate.Struct(req); err != nil {
		return api.Instance{}, fmt.Errorf("invalid instance: %w", err)
	}
	return doJSON[api.Instance](c, ctx, http.MethodPost, "/admin/instances", nil, req)
}

// GetInstance returns one instance.
func (c *Console) GetInstance(ctx context.Context, id int64) (api.Instance, error) {
	return doJSON[api.Instance](c, ctx, http.MethodGet, fmt.Sprintf("/admin/instances/%d", id), nil, nil)
}

// DeleteInstance tears an instance down.
func (c *Console) DeleteInstance(ctx context.Context, id int64) error {
	return doVoid(c, ctx, http.MethodDelete, fmt.Sprintf("/admin/instances/%d", id), nil, nil)
}

// RestartInstance restarts the proxy process of an instance.
func (c *Console) RestartInstance(ctx context.Context, id int64) error {
	return doVoid(c, ctx, http.MethodPost, fmt.Sprintf("/admin/instances/%d/restart", id), nil, nil)
}

// SetInstanceStatus starts or stops an instance.
func (c *Console) SetInstanceStatus(ctx context.Context, id int64, status string) error {
	return doVoid(c, ctx, http.MethodPut, fmt.Sprintf("/admin/instances/%d/status", id), nil, map[string]string{"status": status})
}

// GetInstanceConfig returns the rendered proxy configuration of an instance.
func (c *Console) GetInstanceConfig(ctx context.Context, id int64) (string, error) {
	out, err := doJSON[struct {
		Config string `json:"config"`
	}](c, ctx, http.MethodGet, fmt.Sprintf("/admin/instances/%d/config", id), nil, nil)
	return out.Config, err
}

// ListSubscriptions returns all subscriptions.
func (c *Console) ListSubscriptions(ctx context.Context) ([]api.Subscription, error) {
	return doJSON[[]api.Subscription](c, ctx, http.MethodGet, "/admin/subscriptions", nil, nil)
}

// CreateSubscription issues a subscription for a user.
func (c *Console) CreateSubscription(ctx context.Context, req api.CreateSubscriptionRequest) (api.Subscription, error) {
	if err := c.validate.Struct(req); err != nil {
		return api.Subscription{}, fmt.Errorf("invalid subscription: %w", err)
	}
	return doJSON[api.Subscription](c, ctx, http.MethodPost, "/admin/subscriptions", nil, req)
}

// DeleteSubscription revokes a subscription.
func (c *Console) DeleteSubscription(ctx context.Context, id int64) error {
	return doVoid(c, ctx, http.MethodDelete, fmt.Sprintf("/admin/subscriptions/%d", id), nil, nil)
}

// RegenerateSubscriptionToken rotates a subscription token.
func (c *Console) RegenerateSubscriptionToken(ctx context.Context, id int64) (api.Subscription, error) {
	return doJSON[api.Subscription](c, ctx, http.MethodPost, fmt.Sprintf("/admin/subscriptions/%d/regenerate", id), nil, nil)
}

// ListTemplates returns all subscription templates.
func (c *Console) ListTemplates(ctx context.Context) ([]api.Template, error) {
	return doJSON[[]api.Template](c, ctx, http.MethodGet, "/admin/templates", nil, nil)
}

// CreateTemplate adds a subscription template.
func (c *Console) CreateTemplate(ctx context.Context, req api.CreateTemplateRequest) (api.Template, error) {
	if err := c.validate.Struct(req); err != nil {
		return api.Template{}, fmt.Errorf("invalid template: %w", err)
	}
	return doJSON[api.Template](c, ctx, http.MethodPost, "/admin/templates", nil, req)
}

// UpdateTemplate mutates a template.
func (c *Console) UpdateTemplate(ctx context.Context, id int64, req api.UpdateTemplateRequest) (api.Template, error) {
	return doJSON[api.Template](c, ctx, http.MethodPut, fmt.Sprintf("/admin/templates/%d", id), nil, req)
}

// DeleteTemplate removes a template.
func (c *Console) DeleteTemplate(ctx context.Context, id int64) error {
	return doVoid(c, ctx, http.MethodDelete, fmt.Sprintf("/admin/templates/%d", id), nil, nil)
}

// SetDefaultTemplate marks a template as the default for new subscriptions.
func (c *Console) SetDefaultTemplate(ctx context.Context, id int64) error {
	return doVoid(c, ctx, http.MethodPost, fmt.Sprintf("/admin/templates/%d/default", id), nil, nil)
}

// ListOperationLogs returns a page of audit records.
func (c *Console) ListOperationLogs(ctx context.Context, filter api.LogFilter) (api.LogPage, error) {
	query := map[string]string{}
	if filter.AdminID != 0 {
		query["admin_id"] = strconv.FormatInt(filter.AdminID, 10)
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if filter.TargetType != "" {
		query["target_type"] = filter.TargetType
	}
	addPaging(query, filter.Page, filter.PageSize)
	return doJSON[api.LogPage](c, ctx, http.MethodGet, "/admin/logs", query, nil)
}

// TrafficSummary returns fleet-wide traffic counters.
func (c *Console) TrafficSummary(ctx context.Context) (api.TrafficSummary, error) {
	return doJSON[api.TrafficSummary](c, ctx, http.MethodGet, "/admin/traffic/summary", nil, nil)
}

// UserTrafficRanking returns the top users by traffic over the given period
// ("day", "week", or "month").
func (c *Console) UserTrafficRanking(ctx context.Context, period string, limit int) ([]api.TrafficRankingEntry, error) {
	query := map[string]string{"type": period}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}
	return doJSON[[]api.TrafficRankingEntry](c, ctx, http.MethodGet, "/admin/traffic/ranking/user", query, nil)
}

// NodeTrafficRanking returns nodes ranked by traffic over the given period.
func (c *Console) NodeTrafficRanking(ctx context.Context, period string) ([]api.TrafficRankingEntry, error) {
	return doJSON[[]api.TrafficRankingEntry](c, ctx, http.MethodGet, "/admin/traffic/ranking/node", map[string]string{"type": period}, nil)
}

// TrafficTrend returns the per-day traffic series for the last days.
func (c *Console) TrafficTrend(ctx context.Context, days int) ([]api.TrafficPoint, error) {
	query := map[string]string{}
	if days > 0 {
		query["days"] = strconv.Itoa(days)
	}
	return doJSON[[]api.TrafficPoint](c, ctx, http.MethodGet, "/admin/traffic/trend", query, nil)
}

// ListSystemConfigs returns all system configuration entries.
func (c *Console) ListSystemConfigs(ctx context.Context) ([]api.SystemConfig, error) {
	return doJSON[[]api.SystemConfig](c, ctx, http.MethodGet, "/admin/system-configs", nil, nil)
}

// UpdateSystemConfig sets one configuration key.
func (c *Console) UpdateSystemConfig(ctx context.Context, key, value string) error {
	return doVoid(c, ctx, http.MethodPut, "/admin/system-configs/"+key, nil, map[string]string{"value": value})
}

// BatchUpdateSystemConfigs sets several configuration keys in one call.
func (c *Console) BatchUpdateSystemConfigs(ctx context.Context, configs map[string]string) error {
	return doVoid(c, ctx, http.MethodPut, "/admin/system-configs", nil, map[string]map[string]string{"configs": configs})
}

// DashboardStats returns the admin landing page summary.
func (c *Console) DashboardStats(ctx context.Context) (api.DashboardStats, error) {
	return doJSON[api.DashboardStats](c, ctx, http.MethodGet, "/admin/dashboard/stats", nil, nil)
}

func addPaging(query map[string]string, page, pageSize int) {
	if page > 0 {
		query["page"] = strconv.Itoa(page)
	}
	if pageSize > 0 {
		query["page_size"] = strconv.Itoa(pageSize)
	}
}
