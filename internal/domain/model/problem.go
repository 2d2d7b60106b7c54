package model

import (
	"strings"
	"time"
)

type FeedbackType string

const (
	FeedbackLike    FeedbackType = "like"
	FeedbackDislike FeedbackType = "dislike"
)

// Problem is a catalog entry. URL is the unique external key; no two catalog
// problems share a URL.
type Problem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Tags       []string  `json:"tags"`
	Difficulty *int      `json:"difficulty,omitempty"`
	URL        string    `json:"url"`
	Solved     int       `json:"solved"`
	DateAdded  time.Time `json:"date_added"`
	AddedBy    string    `json:"added_by"`
	AddedByURL string    `json:"added_by_url"`
	Likes      int       `json:"likes"`
	Dislikes   int       `json:"dislikes"`
	Source     Platform  `json:"source"`
	Type       *string   `json:"type,omitempty"`
}

// ProblemSource classifies a catalog URL by host.
func ProblemSource(url string) Platform {
	if strings.Contains(url, "kattis.com") {
		return PlatformKattis
	}
	return PlatformCodeforces
}
