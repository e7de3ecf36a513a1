// Package api defines the wire types exchanged with the Snell Master REST
// backend: the response envelope, authentication payloads, and the entity
// records served by the admin and user consoles.
package api

import "encoding/json"

// Business codes carried inside the response envelope. These are distinct
// from HTTP transport status codes: the server reports them inside a 200
// response body.
const (
	CodeOK             = 0   // operation succeeded, Data is valid
	CodeSessionExpired = 401 // held credential is no longer valid
	CodeForbidden      = 403 // authenticated but not permitted
)

// Envelope is the two-level response wrapper used by every non-binary
// endpoint. Code reports the business outcome; Data holds the payload and is
// only meaningful when Code is CodeOK.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// LoginRequest is the credential exchange payload for both consoles.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token plus the principal matching the
// console that performed the login. Exactly one of Admin or User is set.
type LoginResponse struct {
	Token string     `json:"token"`
	Admin *AdminInfo `json:"admin,omitempty"`
	User  *UserInfo  `json:"user,omitempty"`
}

// AdminInfo is the administrator principal.
type AdminInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      int    `json:"role"` // 1: admin, 2: super_admin
	CreatedAt string `json:"created_at"`
}

// UserInfo is the end-user principal, including traffic accounting.
type UserInfo struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	TrafficLimit     int64  `json:"traffic_limit"`
	TrafficUsedToday int64  `json:"traffic_used_today"`
	TrafficUsedMonth int64  `json:"traffic_used_month"`
	TrafficUsedTotal int64  `json:"traffic_used_total"`
	Status           int    `json:"status"`
	CreatedAt        string `json:"created_at"`
}

// ChangePasswordRequest rotates the administrator password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Page is the pagination wrapper used by listing endpoints.
type Page[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}
