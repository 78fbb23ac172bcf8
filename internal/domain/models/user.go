package models

import (
	"strings"

	"transporte/internal/domain"
)

type User struct {
	ID           domain.ID   `json:"id"`
	Username     string      `json:"username"`
	FullName     string      `json:"fullName"`
	Phone        string      `json:"phone"`
	Email        string      `json:"email,omitempty"`
	Role         domain.Role `json:"role"`
	Active       bool        `json:"active"`
	PasswordHash string      `json:"-"`
}

func (u User) IsDriver() bool {
	return u.Role == domain.RoleDriver
}

// DisplayName falls back to the username when no full name is set.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Username
}
