package users

import (
	"fmt"
	"time"
)

// User types derived from profile ownership. An account with an employee
// profile is an employee even if it also owns an agent profile.
const (
	TypeEmployee = "employee"
	TypeAgent    = "agent"
	TypeUser     = "user"
)

// User represents a user account.
type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName"`
	Phone     string     `json:"phone"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	// hash stays internal; it never crosses the API surface.
	PasswordHash string `json:"-"`
}

// Detail is a user enriched with role names and the derived type.
type Detail struct {
	User
	Roles    []string `json:"roles"`
	UserType string   `json:"userType"`
}

// DeriveUserType picks the account type from profile ownership.
func DeriveUserType(hasEmployee, hasAgent bool) string {
	switch {
	case hasEmployee:
		return TypeEmployee
	case hasAgent:
		return TypeAgent
	default:
		return TypeUser
	}
}

// EmployeeCode derives the employee code from the account id. Id-based codes
// survive deletions without ever being reissued.
func EmployeeCode(userID int64) string {
	return fmt.Sprintf("EMP%03d", userID)
}

// AgentCode derives the agent code from the account id.
func AgentCode(userID int64) string {
	return fmt.Sprintf("AGT%03d", userID)
}

// EmployeeProfileInput carries the optional employee profile created with a
// new account.
type EmployeeProfileInput struct {
	DepartmentID  int64  `json:"departmentId" validate:"required"`
	DesignationID *int64 `json:"designationId"`
	JoiningDate   string `json:"joiningDate"`
}

// AgentProfileInput carries the optional agent profile created with a new
// account.
type AgentProfileInput struct {
	CompanyName string `json:"companyName"`
	Phone       string `json:"phone"`
}
