package repository

import (
	"context"
	"database/sql"
	"fmt"
	"gitgud_server/internal/common"
	"gitgud_server/internal/domain/model"
)

type ContestRepository interface {
	List(ctx context.Context) ([]model.Contest, error)
	GetParticipation(ctx context.Context, userID string) (map[string]struct{}, error)
	MarkParticipated(ctx context.Context, userID, contestID string) error
	UnmarkParticipated(ctx context.Context, userID, contestID string) error
}

type pgContestRepository struct {
	db *sql.DB
}

func NewPgContestRepository(db *sql.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

func (r *pgContestRepository) List(ctx context.Context) ([]model.Contest, error) {
	query := `SELECT id, name, url, duration_seconds, difficulty, date_added, added_by, added_by_url, likes, dislikes, type
	          FROM contests ORDER BY date_added DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.List: %w", err)
	}
	defer rows.Close()

	contests := []model.Contest{}
	for rows.Next() {
		var c model.Contest
		if err := rows.Scan(&c.ID, &c.Name, &c.URL, &c.DurationSeconds, &c.Difficulty,
			&c.DateAdded, &c.AddedBy, &c.AddedByURL, &c.Likes, &c.Dislikes, &c.Type); err != nil {
			return nil, fmt.Errorf("pgContestRepository.List scan: %w", err)
		}
		contests = append(contests, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContestRepository.List rows.Err: %w", err)
	}
	return contests, nil
}

func (r *pgContestRepository) GetParticipation(ctx context.Context, userID string) (map[string]struct{}, error) {
	query := `SELECT contest_id FROM user_contest_participation WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.GetParticipation: %w", err)
	}
	defer rows.Close()

	ids := map[string]struct{}{}
	for rows.Next() {
		var contestID string
		if err := rows.Scan(&contestID); err != nil {
			return nil, fmt.Errorf("pgContestRepository.GetParticipation scan: %w", err)
		}
		ids[contestID] = struct{}{}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContestRepository.GetParticipation rows.Err: %w", err)
	}
	return ids, nil
}

func (r *pgContestRepository) MarkParticipated(ctx context.Context, userID, contestID string) error {
	query := `INSERT INTO user_contest_participation (id, user_id, contest_id, participated_at)
	          VALUES (gen_random_uuid(), $1, $2, CURRENT_TIMESTAMP)`
	if _, err := r.db.ExecContext(ctx, query, userID, contestID); err != nil {
		if common.IsUniqueViolation(err) {
			return nil // already marked
		}
		return fmt.Errorf("pgContestRepository.MarkParticipated: %w", err)
	}
	return nil
}

func (r *pgContestRepository) UnmarkParticipated(ctx context.Context, userID, contestID string) error {
	query := `DELETE FROM user_contest_participation WHERE user_id = $1 AND contest_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, contestID); err != nil {
		return fmt.Errorf("pgContestRepository.UnmarkParticipated: %w", err)
	}
	return nil
}
