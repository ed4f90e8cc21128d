package employees

import "time"

// Employment statuses tracked per employee.
const (
	StatusActive     = "active"
	StatusOnLeave    = "on_leave"
	StatusResigned   = "resigned"
	StatusTerminated = "terminated"
)

// ValidStatus reports whether the status is part of the fixed set.
func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusOnLeave, StatusResigned, StatusTerminated:
		return true
	}
	return false
}

// Employee is an employee profile joined with its account and lookups.
type Employee struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"userId"`
	EmployeeCode  string     `json:"employeeCode"`
	FullName      string     `json:"fullName"`
	Email         string     `json:"email"`
	DepartmentID  int64      `json:"departmentId"`
	Department    string     `json:"department"`
	DesignationID *int64     `json:"designationId"`
	Designation   *string    `json:"designation"`
	Status        string     `json:"status"`
	JoiningDate   *time.Time `json:"joiningDate"`
	LeavingDate   *time.Time `json:"leavingDate"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Department is an organizational unit.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Designation is a job title within a department.
type Designation struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	DepartmentID *int64 `json:"departmentId"`
}

// Filter narrows employee listings.
type Filter struct {
	DepartmentID int64
	Status       string
	Page         int
	PerPage      int
}
