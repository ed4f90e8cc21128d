package recruitment

import "time"

// Posting statuses.
const (
	StatusOpen   = "open"
	StatusOnHold = "on_hold"
	StatusClosed = "closed"
)

// ValidStatus reports whether the status is part of the fixed set.
func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusOnHold, StatusClosed:
		return true
	}
	return false
}

// Posting is an open position being recruited for.
type Posting struct {
	ID            int64      `json:"id"`
	Position      string     `json:"position"`
	DepartmentID  int64      `json:"departmentId"`
	Department    string     `json:"department"`
	Description   string     `json:"description"`
	NumberOfPosts int        `json:"numberOfPosts"`
	Status        string     `json:"status"`
	PostedDate    time.Time  `json:"postedDate"`
	ClosingDate   *time.Time `json:"closingDate"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
