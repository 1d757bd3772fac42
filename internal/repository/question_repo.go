package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"quizgame/internal/models"
)

type QuestionRepo struct {
	pool *pgxpool.Pool
}

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{pool: pool}
}

// ListActive returns the playable questions in id order.
func (r *QuestionRepo) ListActive(ctx context.Context) ([]models.Question, error) {
	query := `SELECT id, question_text, options, answer, is_active
		FROM quiz_questions WHERE is_active = TRUE ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Options, &q.Answer, &q.IsActive); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *QuestionRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM quiz_questions").Scan(&n)
	return n, err
}

// CreateBatch inserts questions in one transaction. Either all rows are
// written and their ids set, or none are.
func (r *QuestionRepo) CreateBatch(ctx context.Context, questions []models.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO quiz_questions (question_text, options, answer, is_active)
		VALUES ($1, $2, $3, $4) RETURNING id`

	for i := range questions {
		q := &questions[i]
		if err := tx.QueryRow(ctx, query, q.Text, q.Options, q.Answer, q.IsActive).Scan(&q.ID); err != nil {
			return fmt.Errorf("failed to insert question %d: %w", i+1, err)
		}
	}

	return tx.Commit(ctx)
}
