package service

import (
	"context"
	"gitgud_server/internal/domain/model"
	"gitgud_server/internal/domain/repository"
)

type ContestService struct {
	contestRepo repository.ContestRepository
}

func NewContestService(contestRepo repository.ContestRepository) *ContestService {
	return &ContestService{contestRepo: contestRepo}
}

// ContestWithUserState decorates a contest with the caller's participation
// flag and a display-ready duration.
type ContestWithUserState struct {
	model.Contest
	Duration     string `json:"duration"`
	Participated bool   `json:"participated"`
}

func (s *ContestService) ListContests(ctx context.Context, userID string) ([]ContestWithUserState, error) {
	contests, err := s.contestRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var participated map[string]struct{}
	if userID != "" {
		if participated, err = s.contestRepo.GetParticipation(ctx, userID); err != nil {
			return nil, err
		}
	}

	out := make([]ContestWithUserState, 0, len(contests))
	for _, c := range contests {
		entry := ContestWithUserState{
			Contest:  c,
			Duration: model.FormatDuration(c.DurationSeconds),
		}
		if _, ok := participated[c.ID]; ok {
			entry.Participated = true
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *ContestService) SetParticipation(ctx context.Context, contestID, userID string, participated bool) error {
	if participated {
		return s.contestRepo.MarkParticipated(ctx, userID, contestID)
	}
	return s.contestRepo.UnmarkParticipated(ctx, userID, contestID)
}
