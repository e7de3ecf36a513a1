package api

// Node is a managed proxy node in the fleet.
type Node struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	APIToken       string  `json:"api_token"`
	Endpoint       string  `json:"endpoint"`
	Location       string  `json:"location,omitempty"`
	CountryCode    string  `json:"country_code,omitempty"`
	Status         string  `json:"status"` // "online" | "offline"
	CPUUsage       float64 `json:"cpu_usage"`
	MemoryUsage    float64 `json:"memory_usage"`
	DiskUsage      float64 `json:"disk_usage"`
	BandwidthUsage float64 `json:"bandwidth_usage"`
	InstanceCount  int     `json:"instance_count,omitempty"`
	LastSeenAt     string  `json:"last_seen_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// CreateNodeRequest registers a new node.
type CreateNodeRequest struct {
	Name        string `json:"name" validate:"required"`
	Endpoint    string `json:"endpoint" validate:"required"`
	Location    string `json:"location,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// UpdateNodeRequest mutates node attributes; zero fields are left unchanged.
type UpdateNodeRequest struct {
	Name        string `json:"name,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
	Location    string `json:"location,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Instance is a proxy service instance running on a node.
type Instance struct {
	ID        int64  `json:"id"`
	NodeID    int64  `json:"node_id"`
	UserID    int64  `json:"user_id"`
	Port      int    `json:"port"`
	PSK       string `json:"psk"`
	Status    string `json:"status"` // "running" | "stopped" | "error"
	CreatedAt string `json:"created_at"`
}

// InstanceFilter narrows instance listings.
type InstanceFilter struct {
	NodeID   int64  `json:"node_id,omitempty"`
	UserID   int64  `json:"user_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
}

// CreateInstanceRequest provisions an instance for a user on a node.
type CreateInstanceRequest struct {
	NodeID int64 `json:"node_id" validate:"required"`
	UserID int64 `json:"user_id" validate:"required"`
	Port   int   `json:"port,omitempty"`
}

// CreateUserRequest registers an end user.
type CreateUserRequest struct {
	Username     string `json:"username" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	TrafficLimit int64  `json:"traffic_limit,omitempty"`
}

// UpdateUserRequest mutates user attributes; zero fields are left unchanged.
type UpdateUserRequest struct {
	Email        string `json:"email,omitempty"`
	Password     string `json:"password,omitempty"`
	TrafficLimit int64  `json:"traffic_limit,omitempty"`
}

// UserFilter narrows user listings.
type UserFilter struct {
	Username string `json:"username,omitempty"`
	Status   int    `json:"status,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
}

// Subscription is a client-facing subscription link for a user.
type Subscription struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Token     string `json:"token"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// CreateSubscriptionRequest issues a subscription for a user.
type CreateSubscriptionRequest struct {
	UserID     int64 `json:"user_id" validate:"required"`
	TemplateID int64 `json:"template_id,omitempty"`
}

// Template is a subscription rendering template.
type Template struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Format    string `json:"format"`
	Content   string `json:"content"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// CreateTemplateRequest adds a subscription template.
type CreateTemplateRequest struct {
	Name    string `json:"name" validate:"required"`
	Format  string `json:"format" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// UpdateTemplateRequest mutates a template; zero fields are left unchanged.
type UpdateTemplateRequest struct {
	Name    string `json:"name,omitempty"`
	Format  string `json:"format,omitempty"`
	Content string `json:"content,omitempty"`
}

// OperationLog is an audit record of an administrative action.
type OperationLog struct {
	ID           int64  `json:"id"`
	AdminID      int64  `json:"admin_id"`
	AdminName    string `json:"admin_name"`
	Action       string `json:"action"`
	TargetType   string `json:"target_type"`
	TargetID     int64  `json:"target_id,omitempty"`
	Description  string `json:"description"`
	IPAddress    string `json:"ip_address"`
	UserAgent    string `json:"user_agent,omitempty"`
	RequestBody  string `json:"request_body,omitempty"`
	ResponseBody string `json:"response_body,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// LogFilter narrows operation log listings.
type LogFilter struct {
	AdminID    int64  `json:"admin_id,omitempty"`
	Action     string `json:"action,omitempty"`
	TargetType string `json:"target_type,omitempty"`
	Page       int    `json:"page,omitempty"`
	PageSize   int    `json:"page_size,omitempty"`
}

// LogPage is the pagination wrapper used by the operation log endpoint. It
// predates Page and keys the records under "items" rather than "list".
type LogPage struct {
	Items    []OperationLog `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// TrafficSummary aggregates fleet-wide traffic counters.
type TrafficSummary struct {
	TodayBytes int64 `json:"today_bytes"`
	MonthBytes int64 `json:"month_bytes"`
	TotalBytes int64 `json:"total_bytes"`
}

// TrafficRankingEntry is one row of a user or node traffic ranking.
type TrafficRankingEntry struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// TrafficPoint is one sample of the traffic trend series.
type TrafficPoint struct {
	Date  string `json:"date"`
	Bytes int64  `json:"bytes"`
}

// SystemConfig is a single key/value configuration entry.
type SystemConfig struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveUsers    int64 `json:"active_users"`
	TotalNodes     int64 `json:"total_nodes"`
	OnlineNodes    int64 `json:"online_nodes"`
	TotalInstances int64 `json:"total_instances"`
	TodayTraffic   int64 `json:"today_traffic"`
}
