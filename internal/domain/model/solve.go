package model

import (
	"time"
)

type Platform string

const (
	PlatformCodeforces Platform = "codeforces"
	PlatformKattis     Platform = "kattis"
)

func (p Platform) Valid() bool {
	return p == PlatformCodeforces || p == PlatformKattis
}

// SolvedProblem is the normalized record produced by a platform adapter.
// URL is the canonical join key against the catalog; Name is display-only.
// For platforms without per-solve timestamps (Kattis) SolvedAt is the import
// time and must not be used for ordering.
type SolvedProblem struct {
	URL      string    `json:"url"`
	Name     string    `json:"name,omitempty"`
	SolvedAt time.Time `json:"solvedAt"`
}

// UserSolvedProblem is the persisted solve record. (UserID, ProblemID) is
// unique; the reconciler computes the net-new set before inserting.
type UserSolvedProblem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProblemID string    `json:"problem_id"`
	SolvedAt  time.Time `json:"solved_at"`
}

// ImportResult is the caller-facing contract of an import run.
// ImportedCount <= MatchedCount <= TotalSolved always holds on success.
type ImportResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	TotalSolved   int    `json:"totalSolved"`
	MatchedCount  int    `json:"matchedCount"`
	ImportedCount int    `json:"importedCount"`
}
