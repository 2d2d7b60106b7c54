package model

import (
	"fmt"
	"time"
)

type Contest struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	URL             string    `json:"url"`
	DurationSeconds int       `json:"duration_seconds"`
	Difficulty      *int      `json:"difficulty,omitempty"`
	DateAdded       time.Time `json:"date_added"`
	AddedBy         string    `json:"added_by"`
	AddedByURL      string    `json:"added_by_url"`
	Likes           int       `json:"likes"`
	Dislikes        int       `json:"dislikes"`
	Type            *string   `json:"type,omitempty"`
}

// FormatDuration renders a duration like "2h 30m" or "45m".
func FormatDuration(durationSeconds int) string {
	hours := durationSeconds / 3600
	minutes := (durationSeconds % 3600) / 60

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", minutes)
}
