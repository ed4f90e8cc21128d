package settings

import "time"

// Setting is a keyed configuration record.
type Setting struct {
	ID          int64     `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	IsEditable  bool      `json:"isEditable"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategoryGroup is the settings list sliced by category.
type CategoryGroup struct {
	Category string    `json:"category"`
	Settings []Setting `json:"settings"`
}

// BatchResult reports the outcome of one key in a batch update.
type BatchResult struct {
	Key     string `json:"key"`
	Updated bool   `json:"updated"`
	Error   string `json:"error,omitempty"`
}
