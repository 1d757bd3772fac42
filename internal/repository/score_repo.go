package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizgame/internal/models"
)

type ScoreRepo struct {
	pool *pgxpool.Pool
}

func NewScoreRepo(pool *pgxpool.Pool) *ScoreRepo {
	return &ScoreRepo{pool: pool}
}

func (r *ScoreRepo) Create(ctx context.Context, s *models.Score) error {
	s.ID = uuid.New()
	query := `INSERT INTO quiz_scores (id, user_id, player_name, score, wrong, difficulty)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.UserID, s.PlayerName, s.Score, s.Wrong, s.Difficulty,
	).Scan(&s.CreatedAt)
}

// ListTop returns the best scores, earliest first on ties.
func (r *ScoreRepo) ListTop(ctx context.Context, limit int) ([]models.Score, error) {
	query := `SELECT id, user_id, player_name, score, wrong, difficulty, created_at
		FROM quiz_scores ORDER BY score DESC, created_at ASC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := []models.Score{}
	for rows.Next() {
		var s models.Score
		if err := rows.Scan(&s.ID, &s.UserID, &s.PlayerName, &s.Score, &s.Wrong, &s.Difficulty, &s.CreatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
