package repository

import (
	"context"
	"database/sql"
	"fmt"
	"gitgud_server/internal/common"
	"gitgud_server/internal/domain/model"
	"log"
)

// SolveRepository persists user_solved_problems rows. (user_id, problem_id)
// carries a unique constraint; the import reconciler computes the net-new set
// before calling InsertSolves, so a violation there is a concurrent-import
// race and is skipped rather than surfaced.
type SolveRepository interface {
	GetSolvedProblemIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	InsertSolves(ctx context.Context, solves []model.UserSolvedProblem) error
	MarkSolved(ctx context.Context, userID, problemID string) error
	MarkUnsolved(ctx context.Context, userID, problemID string) error
}

type pgSolveRepository struct {
	db *sql.DB
}

func NewPgSolveRepository(db *sql.DB) SolveRepository {
	return &pgSolveRepository{db: db}
}

func (r *pgSolveRepository) GetSolvedProblemIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	query := `SELECT problem_id FROM user_solved_problems WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgSolveRepository.GetSolvedProblemIDs: %w", err)
	}
	defer rows.Close()

	ids := map[string]struct{}{}
	for rows.Next() {
		var problemID string
		if err := rows.Scan(&problemID); err != nil {
			return nil, fmt.Errorf("pgSolveRepository.GetSolvedProblemIDs scan: %w", err)
		}
		ids[problemID] = struct{}{}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSolveRepository.GetSolvedProblemIDs rows.Err: %w", err)
	}
	return ids, nil
}

func (r *pgSolveRepository) InsertSolves(ctx context.Context, solves []model.UserSolvedProblem) error {
	if len(solves) == 0 {
		return nil
	}
	stmt, err := r.db.PrepareContext(ctx,
		`INSERT INTO user_solved_problems (id, user_id, problem_id, solved_at) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("pgSolveRepository.InsertSolves prepare: %w", err)
	}
	defer stmt.Close()

	for _, s := range solves {
		if _, err := stmt.ExecContext(ctx, s.ID, s.UserID, s.ProblemID, s.SolvedAt); err != nil {
			if common.IsUniqueViolation(err) {
				// Another import for the same user won the race; the row
				// is already there, which is the state we wanted.
				log.Printf("WARN: solve for user %s problem %s already recorded, skipping", s.UserID, s.ProblemID)
				continue
			}
			return fmt.Errorf("pgSolveRepository.InsertSolves exec: %w", err)
		}
	}
	return nil
}

func (r *pgSolveRepository) MarkSolved(ctx context.Context, userID, problemID string) error {
	query := `INSERT INTO user_solved_problems (id, user_id, problem_id, solved_at)
	          VALUES (gen_random_uuid(), $1, $2, CURRENT_TIMESTAMP)`
	if _, err := r.db.ExecContext(ctx, query, userID, problemID); err != nil {
		if common.IsUniqueViolation(err) {
			return nil // already solved
		}
		return fmt.Errorf("pgSolveRepository.MarkSolved: %w", err)
	}
	return nil
}

func (r *pgSolveRepository) MarkUnsolved(ctx context.Context, userID, problemID string) error {
	query := `DELETE FROM user_solved_problems WHERE user_id = $1 AND problem_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, problemID); err != nil {
		return fmt.Errorf("pgSolveRepository.MarkUnsolved: %w", err)
	}
	return nil
}
