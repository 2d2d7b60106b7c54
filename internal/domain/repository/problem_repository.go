package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"gitgud_server/internal/common"
	"gitgud_server/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq" // pq.Array for text[] columns
)

type ProblemRepository interface {
	Create(ctx context.Context, problem *model.Problem) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	FindByURL(ctx context.Context, url string) (*model.Problem, error)
	List(ctx context.Context) ([]model.Problem, error)
	// ListByURLPrefix narrows the catalog to one platform's problems, used
	// by the import matcher for platforms with a single URL shape.
	ListByURLPrefix(ctx context.Context, prefix string) ([]model.Problem, error)

	// GetUserFeedback returns the caller's recorded feedback keyed by
	// problem id.
	GetUserFeedback(ctx context.Context, userID string) (map[string]model.FeedbackType, error)
	// ApplyFeedback records or undoes a like/dislike and keeps the
	// denormalized counters on the problem row in step, in one transaction.
	// Returns the updated problem.
	ApplyFeedback(ctx context.Context, problemID, userID string, feedback model.FeedbackType, undo bool, previous *model.FeedbackType) (*model.Problem, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

const problemColumns = `id, name, slug, tags, difficulty, url, solved, date_added, added_by, added_by_url, likes, dislikes, type`

func scanProblem(row interface {
	Scan(dest ...interface{}) error
}) (*model.Problem, error) {
	p := &model.Problem{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, pq.Array(&p.Tags), &p.Difficulty, &p.URL, &p.Solved,
		&p.DateAdded, &p.AddedBy, &p.AddedByURL, &p.Likes, &p.Dislikes, &p.Type,
	)
	if err != nil {
		return nil, err
	}
	p.Source = model.ProblemSource(p.URL)
	return p, nil
}

func (r *pgProblemRepository) Create(ctx context.Context, p *model.Problem) error {
	query := `INSERT INTO problems (id, name, slug, tags, difficulty, url, solved, date_added, added_by, added_by_url, likes, dislikes, type)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Slug, pq.Array(p.Tags), p.Difficulty, p.URL, p.Solved,
		p.DateAdded, p.AddedBy, p.AddedByURL, p.Likes, p.Dislikes, p.Type,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == common.UniqueViolationCode {
			return fmt.Errorf("problem with this URL already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1`
	p, err := scanProblem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgProblemRepository) FindByURL(ctx context.Context, url string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE url = $1`
	p, err := scanProblem(r.db.QueryRowContext(ctx, query, url))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindByURL: %w", err)
	}
	return p, nil
}

func (r *pgProblemRepository) List(ctx context.Context) ([]model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems ORDER BY date_added DESC`
	return r.queryProblems(ctx, query)
}

func (r *pgProblemRepository) ListByURLPrefix(ctx context.Context, prefix string) ([]model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE url LIKE $1 || '%' ORDER BY date_added DESC`
	return r.queryProblems(ctx, query, prefix)
}

func (r *pgProblemRepository) queryProblems(ctx context.Context, query string, args ...interface{}) ([]model.Problem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.queryProblems: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("pgProblemRepository.queryProblems scan: %w", err)
		}
		problems = append(problems, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.queryProblems rows.Err: %w", err)
	}
	return problems, nil
}

func (r *pgProblemRepository) GetUserFeedback(ctx context.Context, userID string) (map[string]model.FeedbackType, error) {
	query := `SELECT problem_id, feedback_type FROM user_problem_feedback WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetUserFeedback: %w", err)
	}
	defer rows.Close()

	feedback := map[string]model.FeedbackType{}
	for rows.Next() {
		var problemID string
		var ft model.FeedbackType
		if err := rows.Scan(&problemID, &ft); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.GetUserFeedback scan: %w", err)
		}
		feedback[problemID] = ft
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetUserFeedback rows.Err: %w", err)
	}
	return feedback, nil
}

func (r *pgProblemRepository) ApplyFeedback(ctx context.Context, problemID, userID string, feedback model.FeedbackType, undo bool, previous *model.FeedbackType) (*model.Problem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ApplyFeedback begin: %w", err)
	}
	defer tx.Rollback()

	if undo {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_problem_feedback WHERE user_id = $1 AND problem_id = $2`,
			userID, problemID); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ApplyFeedback delete: %w", err)
		}
		if err := adjustFeedbackCounter(ctx, tx, problemID, feedback, -1); err != nil {
			return nil, err
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_problem_feedback (user_id, problem_id, feedback_type) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, problem_id) DO UPDATE SET feedback_type = EXCLUDED.feedback_type`,
			userID, problemID, feedback); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ApplyFeedback upsert: %w", err)
		}
		if err := adjustFeedbackCounter(ctx, tx, problemID, feedback, 1); err != nil {
			return nil, err
		}
		if previous != nil && *previous != feedback {
			if err := adjustFeedbackCounter(ctx, tx, problemID, *previous, -1); err != nil {
				return nil, err
			}
		}
	}

	p, err := scanProblem(tx.QueryRowContext(ctx,
		`SELECT `+problemColumns+` FROM problems WHERE id = $1`, problemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.ApplyFeedback reread: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ApplyFeedback commit: %w", err)
	}
	return p, nil
}

func adjustFeedbackCounter(ctx context.Context, tx *sql.Tx, problemID string, feedback model.FeedbackType, delta int) error {
	column := "likes"
	if feedback == model.FeedbackDislike {
		column = "dislikes"
	}
	query := fmt.Sprintf(`UPDATE problems SET %s = GREATEST(%s + $1, 0) WHERE id = $2`, column, column)
	if _, err := tx.ExecContext(ctx, query, delta, problemID); err != nil {
		return fmt.Errorf("pgProblemRepository.adjustFeedbackCounter: %w", err)
	}
	return nil
}
