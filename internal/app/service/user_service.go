package service

import (
	"context"
	"errors"
	"fmt"
	"gitgud_server/internal/common"
	"gitgud_server/internal/domain/model"
	"gitgud_server/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetPreferences returns stored preferences, creating the defaults on first
// access so new users always get a well-formed record back.
func (s *UserService) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	prefs, err := s.userRepo.GetPreferences(ctx, userID)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	prefs = model.DefaultPreferences(userID)
	if err := s.userRepo.UpsertPreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

type UpdatePreferencesRequest struct {
	Theme               *string `json:"theme,omitempty"`
	HideFromLeaderboard *bool   `json:"hide_from_leaderboard,omitempty"`
}

func (s *UserService) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*model.UserPreferences, error) {
	if req.Theme != nil && *req.Theme != model.ThemeLight && *req.Theme != model.ThemeDark {
		return nil, fmt.Errorf("theme must be %q or %q: %w", model.ThemeLight, model.ThemeDark, common.ErrValidation)
	}

	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Theme != nil {
		prefs.Theme = *req.Theme
	}
	if req.HideFromLeaderboard != nil {
		prefs.HideFromLeaderboard = *req.HideFromLeaderboard
	}

	if err := s.userRepo.UpsertPreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// GetPlatformUsernames never errors on absence; a user without saved handles
// gets an empty record, matching how the settings page treats new accounts.
func (s *UserService) GetPlatformUsernames(ctx context.Context, userID string) (*model.PlatformUsernames, error) {
	names, err := s.userRepo.GetPlatformUsernames(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &model.PlatformUsernames{UserID: userID}, nil
		}
		return nil, err
	}
	return names, nil
}

type SavePlatformUsernamesRequest struct {
	CodeforcesUsername string `json:"codeforces_username"`
	KattisUsername     string `json:"kattis_username"`
}

func (s *UserService) SavePlatformUsernames(ctx context.Context, userID string, req SavePlatformUsernamesRequest) (*model.PlatformUsernames, error) {
	names := &model.PlatformUsernames{
		UserID:             userID,
		CodeforcesUsername: req.CodeforcesUsername,
		KattisUsername:     req.KattisUsername,
	}
	if err := s.userRepo.UpsertPlatformUsernames(ctx, names); err != nil {
		return nil, err
	}
	return names, nil
}
