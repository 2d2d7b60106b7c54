package repository

import (
	"context"
	"database/sql"
	"fmt"
	"gitgud_server/internal/domain/model"
)

type LeaderboardRepository interface {
	GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
}

type pgLeaderboardRepository struct {
	db *sql.DB
}

func NewPgLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &pgLeaderboardRepository{db: db}
}

// GetLeaderboard ranks users by problems solved, breaking ties by the sum of
// earliest solve timestamps (earlier wins). Users who opted out via
// hide_from_leaderboard are excluded before ranking.
func (r *pgLeaderboardRepository) GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	query := `
        SELECT RANK() OVER (ORDER BY COUNT(usp.problem_id) DESC, COALESCE(SUM(EXTRACT(EPOCH FROM usp.solved_at)::bigint), 0) ASC) AS rank,
               u.id, u.username, u.avatar_url, u.github_url,
               COUNT(usp.problem_id) AS problems_solved,
               COALESCE(SUM(EXTRACT(EPOCH FROM usp.solved_at)::bigint), 0) AS earliest_solves_sum
        FROM users u
        JOIN user_solved_problems usp ON usp.user_id = u.id
        LEFT JOIN user_preferences up ON up.user_id = u.id
        WHERE COALESCE(up.hide_from_leaderboard, FALSE) = FALSE
        GROUP BY u.id, u.username, u.avatar_url, u.github_url
        ORDER BY rank ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgLeaderboardRepository.GetLeaderboard: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.Rank, &e.UserID, &e.Username, &e.AvatarURL, &e.GithubURL,
			&e.ProblemsSolved, &e.EarliestSolvesSum); err != nil {
			return nil, fmt.Errorf("pgLeaderboardRepository.GetLeaderboard scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgLeaderboardRepository.GetLeaderboard rows.Err: %w", err)
	}
	return entries, nil
}
