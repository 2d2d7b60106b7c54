// Package platform adapts external competitive-programming sites into the
// normalized solved-problem representation used by the import pipeline.
package platform

import (
	"context"
	"fmt"
	"gitgud_server/internal/common"
	"gitgud_server/internal/domain/model"
	"net/http"
	"strings"

	"gitgud_server/internal/platform/config"
)

// Adapter turns one external platform's response format into a deduplicated
// set of normalized solve records. Adapters are read-only against the
// external site and hold no state across calls.
type Adapter interface {
	Platform() model.Platform
	// FetchSolves returns the user's solved problems, deduplicated by
	// canonical URL. A confirmed user with zero solves is (nil-or-empty, nil),
	// not an error.
	FetchSolves(ctx context.Context, username string) ([]model.SolvedProblem, error)
	// ProfileURL is the public profile page for a handle, used in
	// user-facing "verify your username" guidance.
	ProfileURL(username string) string
	// CatalogURLPrefix narrows catalog reads during matching. Empty means
	// the whole catalog is loaded.
	CatalogURLPrefix() string
}

var (
	// ErrUserNotFound means the platform confirmed the handle does not exist.
	ErrUserNotFound = fmt.Errorf("platform user not found: %w", common.ErrNotFound)
)

// ClassifyError maps an upstream HTTP status and free-text message onto the
// error taxonomy. Message classification is substring matching against
// whatever prose the platform returns; it is fragile by nature, so every
// call site goes through here and nowhere else.
func ClassifyError(statusCode int, message string) error {
	if statusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	if statusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w (HTTP 429)", common.ErrRateLimited)
	}
	if strings.Contains(strings.ToLower(message), "not found") {
		return ErrUserNotFound
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", statusCode)
	}
	return fmt.Errorf("%w: %s", common.ErrUpstream, message)
}

// Registry holds the configured adapters keyed by platform.
type Registry map[model.Platform]Adapter

func (r Registry) Get(p model.Platform) (Adapter, bool) {
	a, ok := r[p]
	return a, ok
}

// NewRegistry builds the default adapter set from the loaded configuration.
func NewRegistry(client *http.Client) Registry {
	cfg := config.AppConfig
	cf := NewCodeforcesAdapter(cfg.CodeforcesBaseURL, client)
	ka := NewKattisAdapter(cfg.KattisBaseURL, client, nil)
	return Registry{
		cf.Platform(): cf,
		ka.Platform(): ka,
	}
}
