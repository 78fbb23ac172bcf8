package domain

// ID is used across domain entities.
type ID int64

// Status represents a lightweight state value.
type Status string

// Role of an authenticated user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
)

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID ID   `json:"userId"`
	Role   Role `json:"role"`
}

// IsDriver reports whether the caller authenticated as a driver.
func (r RequestContext) IsDriver() bool {
	return r.Role == RoleDriver && r.UserID > 0
}
