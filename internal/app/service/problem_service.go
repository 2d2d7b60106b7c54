package service

import (
	"context"
	"errors"
	"fmt"
	"gitgud_server/internal/common"
	"gitgud_server/internal/domain/model"
	"gitgud_server/internal/domain/repository"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
	solveRepo   repository.SolveRepository
}

func NewProblemService(problemRepo repository.ProblemRepository, solveRepo repository.SolveRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo, solveRepo: solveRepo}
}

type CreateProblemRequest struct {
	Name       string   `json:"name"`
	Tags       []string `json:"tags"`
	Difficulty *int     `json:"difficulty,omitempty"`
	URL        string   `json:"url"`
	AddedBy    string   `json:"added_by"`
	AddedByURL string   `json:"added_by_url"`
	Type       *string  `json:"type,omitempty"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, req CreateProblemRequest) (*model.Problem, error) {
	if req.Name == "" || req.URL == "" {
		return nil, fmt.Errorf("name and url are required: %w", common.ErrBadRequest)
	}

	// URLs are the unique external key; reject duplicates up front so the
	// caller gets a clean conflict instead of a constraint error.
	if _, err := s.problemRepo.FindByURL(ctx, req.URL); err == nil {
		return nil, fmt.Errorf("problem already exists in database: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check problem existence: %w", err)
	}

	problem := &model.Problem{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Slug:       slug.Make(req.Name),
		Tags:       req.Tags,
		Difficulty: req.Difficulty,
		URL:        req.URL,
		DateAdded:  time.Now().UTC(),
		AddedBy:    req.AddedBy,
		AddedByURL: req.AddedByURL,
		Source:     model.ProblemSource(req.URL),
		Type:       req.Type,
	}
	if problem.Tags == nil {
		problem.Tags = []string{}
	}

	if err := s.problemRepo.Create(ctx, problem); err != nil {
		return nil, err
	}
	return problem, nil
}

// ProblemWithUserState decorates a catalog entry with the caller's solved
// flag and recorded feedback.
type ProblemWithUserState struct {
	model.Problem
	SolvedByUser bool                `json:"solved_by_user"`
	UserFeedback *model.FeedbackType `json:"user_feedback,omitempty"`
}

func (s *ProblemService) ListProblems(ctx context.Context, userID string) ([]ProblemWithUserState, error) {
	problems, err := s.problemRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var solved map[string]struct{}
	var feedback map[string]model.FeedbackType
	if userID != "" {
		if solved, err = s.solveRepo.GetSolvedProblemIDs(ctx, userID); err != nil {
			return nil, err
		}
		if feedback, err = s.problemRepo.GetUserFeedback(ctx, userID); err != nil {
			return nil, err
		}
	}

	out := make([]ProblemWithUserState, 0, len(problems))
	for _, p := range problems {
		entry := ProblemWithUserState{Problem: p}
		if _, ok := solved[p.ID]; ok {
			entry.SolvedByUser = true
		}
		if ft, ok := feedback[p.ID]; ok {
			f := ft
			entry.UserFeedback = &f
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *ProblemService) GetProblem(ctx context.Context, id string) (*model.Problem, error) {
	return s.problemRepo.FindByID(ctx, id)
}

type FeedbackRequest struct {
	Feedback model.FeedbackType  `json:"feedback"`
	Undo     bool                `json:"undo"`
	Previous *model.FeedbackType `json:"previous,omitempty"`
}

func (s *ProblemService) SubmitFeedback(ctx context.Context, problemID, userID string, req FeedbackRequest) (*model.Problem, error) {
	if req.Feedback != model.FeedbackLike && req.Feedback != model.FeedbackDislike {
		return nil, fmt.Errorf("feedback must be %q or %q: %w", model.FeedbackLike, model.FeedbackDislike, common.ErrValidation)
	}
	if req.Previous != nil && *req.Previous != model.FeedbackLike && *req.Previous != model.FeedbackDislike {
		return nil, fmt.Errorf("previous feedback must be %q or %q: %w", model.FeedbackLike, model.FeedbackDislike, common.ErrValidation)
	}
	return s.problemRepo.ApplyFeedback(ctx, problemID, userID, req.Feedback, req.Undo, req.Previous)
}

func (s *ProblemService) SetSolved(ctx context.Context, problemID, userID string, isSolved bool) error {
	if _, err := s.problemRepo.FindByID(ctx, problemID); err != nil {
		return err
	}
	if isSolved {
		return s.solveRepo.MarkSolved(ctx, userID, problemID)
	}
	return s.solveRepo.MarkUnsolved(ctx, userID, problemID)
}
