package rbac

import "time"

// Permission represents an atomic capability classified by resource and action.
type Permission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Role represents a named, reusable bundle of permissions.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UserRef is the reduced user projection embedded in role listings. It never
// carries credential material.
type UserRef struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// RoleDetail is a role enriched with its resolved permission set and the users
// it is assigned to.
type RoleDetail struct {
	Role
	Permissions []Permission `json:"permissions"`
	UserCount   int64        `json:"userCount"`
	Users       []UserRef    `json:"users"`
}

// UserRole links one user to one role. The (UserID, RoleID) pair is unique.
type UserRole struct {
	UserID    int64     `json:"userId"`
	RoleID    int64     `json:"roleId"`
	CreatedAt time.Time `json:"createdAt"`
}
