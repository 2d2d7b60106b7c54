package service

import (
	"context"
	"errors"
	"fmt"
	"gitgud_server/internal/app/platform"
	"gitgud_server/internal/common"
	"gitgud_server/internal/domain/model"
	"gitgud_server/internal/domain/repository"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImportService runs the solve-import pipeline: platform adapter → catalog
// matcher → reconciler → persistence. Import never returns an error; every
// failure mode is folded into the ImportResult contract.
type ImportService struct {
	adapters    platform.Registry
	problemRepo repository.ProblemRepository
	solveRepo   repository.SolveRepository
	userRepo    repository.UserRepository
}

func NewImportService(
	adapters platform.Registry,
	problemRepo repository.ProblemRepository,
	solveRepo repository.SolveRepository,
	userRepo repository.UserRepository,
) *ImportService {
	return &ImportService{
		adapters:    adapters,
		problemRepo: problemRepo,
		solveRepo:   solveRepo,
		userRepo:    userRepo,
	}
}

// FetchUserSolves exposes raw adapter output for the per-platform
// user-solves endpoints. No catalog matching or persistence happens here.
func (s *ImportService) FetchUserSolves(ctx context.Context, p model.Platform, username string) ([]model.SolvedProblem, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("no username provided: %w", common.ErrValidation)
	}
	adapter, ok := s.adapters.Get(p)
	if !ok {
		return nil, fmt.Errorf("unsupported platform %q: %w", p, common.ErrBadRequest)
	}
	return adapter.FetchSolves(ctx, username)
}

// Import fetches the user's solve history from the platform, matches it
// against the catalog, reconciles against already-recorded solves and
// persists only the net-new subset. Re-running with unchanged external data
// yields ImportedCount == 0. ImportedCount <= MatchedCount <= TotalSolved
// holds for every successful result.
func (s *ImportService) Import(ctx context.Context, userID string, p model.Platform, username string) (result model.ImportResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: import for user %s panicked: %v", userID, r)
			result = model.ImportResult{Success: false, Message: "Unexpected error during import"}
		}
	}()

	username = strings.TrimSpace(username)
	if username == "" {
		// Fall back to the handle the user saved in settings.
		if names, err := s.userRepo.GetPlatformUsernames(ctx, userID); err == nil {
			username = strings.TrimSpace(names.ForPlatform(p))
		}
	}
	if username == "" {
		return model.ImportResult{Success: false, Message: fmt.Sprintf("%s username is required", p)}
	}

	adapter, ok := s.adapters.Get(p)
	if !ok {
		return model.ImportResult{Success: false, Message: fmt.Sprintf("Unsupported platform %q", p)}
	}

	solves, err := adapter.FetchSolves(ctx, username)
	if err != nil {
		return model.ImportResult{Success: false, Message: importFailureMessage(adapter, p, username, err)}
	}

	var catalog []model.Problem
	if prefix := adapter.CatalogURLPrefix(); prefix != "" {
		catalog, err = s.problemRepo.ListByURLPrefix(ctx, prefix)
	} else {
		catalog, err = s.problemRepo.List(ctx)
	}
	if err != nil {
		return model.ImportResult{Success: false, Message: "Error fetching problems: " + err.Error()}
	}

	matched := matchSolvesToCatalog(solves, catalog)

	existing, err := s.solveRepo.GetSolvedProblemIDs(ctx, userID)
	if err != nil {
		return model.ImportResult{Success: false, Message: "Error fetching existing solved problems: " + err.Error()}
	}

	netNew := filterNewSolves(matched, existing)

	records := make([]model.UserSolvedProblem, 0, len(netNew))
	for _, m := range netNew {
		records = append(records, model.UserSolvedProblem{
			ID:        uuid.NewString(),
			UserID:    userID,
			ProblemID: m.problemID,
			SolvedAt:  m.solvedAt,
		})
	}
	if err := s.solveRepo.InsertSolves(ctx, records); err != nil {
		return model.ImportResult{Success: false, Message: "Error inserting solved problems: " + err.Error()}
	}

	return model.ImportResult{
		Success:       true,
		TotalSolved:   len(solves),
		MatchedCount:  len(matched),
		ImportedCount: len(records),
	}
}

// importFailureMessage turns adapter errors into user-facing guidance. The
// not-found case gets an actionable message with the profile link to check.
func importFailureMessage(adapter platform.Adapter, p model.Platform, username string, err error) string {
	if errors.Is(err, platform.ErrUserNotFound) {
		return fmt.Sprintf("No %s user named %q was found. Verify the handle at %s and try again.",
			p, username, adapter.ProfileURL(username))
	}
	if errors.Is(err, common.ErrRateLimited) {
		return fmt.Sprintf("%s is rate limiting requests right now. Try again in a few minutes.", p)
	}
	return fmt.Sprintf("Failed to fetch solved problems from %s: %v", p, err)
}

type matchedSolve struct {
	problemID string
	solvedAt  time.Time
}

// matchSolvesToCatalog joins normalized solve records against the catalog by
// exact URL equality. Solves for problems not yet in the catalog are
// silently dropped; they are not an error.
func matchSolvesToCatalog(solves []model.SolvedProblem, catalog []model.Problem) []matchedSolve {
	byURL := make(map[string]string, len(catalog))
	for _, p := range catalog {
		byURL[p.URL] = p.ID
	}

	matched := make([]matchedSolve, 0, len(solves))
	for _, s := range solves {
		id, ok := byURL[s.URL]
		if !ok {
			continue
		}
		matched = append(matched, matchedSolve{problemID: id, solvedAt: s.SolvedAt})
	}
	return matched
}

// filterNewSolves is the reconciler: the subset of matched solves whose
// problem id is not already recorded for the user. Idempotence is a property
// of this set difference, not of the storage layer's unique constraint (that
// remains only a backstop against concurrent imports).
func filterNewSolves(matched []matchedSolve, existing map[string]struct{}) []matchedSolve {
	netNew := make([]matchedSolve, 0, len(matched))
	for _, m := range matched {
		if _, ok := existing[m.problemID]; ok {
			continue
		}
		netNew = append(netNew, m)
	}
	return netNew
}
