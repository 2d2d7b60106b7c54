package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"gitgud_server/internal/common"
	"gitgud_server/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)

	GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error)
	UpsertPreferences(ctx context.Context, prefs *model.UserPreferences) error

	GetPlatformUsernames(ctx context.Context, userID string) (*model.PlatformUsernames, error)
	UpsertPlatformUsernames(ctx context.Context, names *model.PlatformUsernames) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, username, avatar_url, github_url, role, created_at, updated_at
	          FROM users WHERE id = $1`
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.AvatarURL, &user.GithubURL, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	query := `SELECT user_id, theme, hide_from_leaderboard FROM user_preferences WHERE user_id = $1`
	prefs := &model.UserPreferences{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&prefs.UserID, &prefs.Theme, &prefs.HideFromLeaderboard,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.GetPreferences: %w", err)
	}
	return prefs, nil
}

func (r *pgUserRepository) UpsertPreferences(ctx context.Context, prefs *model.UserPreferences) error {
	query := `INSERT INTO user_preferences (user_id, theme, hide_from_leaderboard)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id) DO UPDATE
	          SET theme = EXCLUDED.theme,
	              hide_from_leaderboard = EXCLUDED.hide_from_leaderboard,
	              updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, query, prefs.UserID, prefs.Theme, prefs.HideFromLeaderboard); err != nil {
		return fmt.Errorf("pgUserRepository.UpsertPreferences: %w", err)
	}
	return nil
}

func (r *pgUserRepository) GetPlatformUsernames(ctx context.Context, userID string) (*model.PlatformUsernames, error) {
	query := `SELECT user_id, COALESCE(codeforces_username, ''), COALESCE(kattis_username, ''), updated_at
	          FROM user_platform_usernames WHERE user_id = $1`
	names := &model.PlatformUsernames{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&names.UserID, &names.CodeforcesUsername, &names.KattisUsername, &names.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.GetPlatformUsernames: %w", err)
	}
	return names, nil
}

func (r *pgUserRepository) UpsertPlatformUsernames(ctx context.Context, names *model.PlatformUsernames) error {
	query := `INSERT INTO user_platform_usernames (user_id, codeforces_username, kattis_username)
	          VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
	          ON CONFLICT (user_id) DO UPDATE
	          SET codeforces_username = EXCLUDED.codeforces_username,
	              kattis_username = EXCLUDED.kattis_username,
	              updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, query, names.UserID, names.CodeforcesUsername, names.KattisUsername); err != nil {
		return fmt.Errorf("pgUserRepository.UpsertPlatformUsernames: %w", err)
	}
	return nil
}
