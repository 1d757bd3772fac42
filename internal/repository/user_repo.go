package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizgame/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `u.id, u.username, u.email, u.password_hash, u.created_at, u.last_login_at,
	COALESCE(p.total_games, 0), COALESCE(p.best_score, 0), COALESCE(p.total_correct, 0), COALESCE(p.total_wrong, 0)`

// Create inserts the user together with an empty player profile.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	user.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		user.ID, user.Username, user.Email, user.PasswordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "INSERT INTO player_profiles (user_id) VALUES ($1)", user.ID); err != nil {
		return err
	}
	user.Profile = models.PlayerProfile{}

	return tx.Commit(ctx)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u LEFT JOIN player_profiles p ON p.user_id = u.id
		WHERE u.username = $1`
	return r.scanUser(ctx, query, username)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u LEFT JOIN player_profiles p ON p.user_id = u.id
		WHERE u.id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.LastLoginAt,
		&user.Profile.TotalGames, &user.Profile.BestScore, &user.Profile.TotalCorrect, &user.Profile.TotalWrong,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET last_login_at = NOW() WHERE id = $1", id)
	return err
}

// RecordGame folds one finished quiz into the user's profile totals.
func (r *UserRepo) RecordGame(ctx context.Context, userID uuid.UUID, score, wrong int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO player_profiles (user_id, total_games, best_score, total_correct, total_wrong)
		VALUES ($1, 1, $2, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			total_games = player_profiles.total_games + 1,
			best_score = GREATEST(player_profiles.best_score, EXCLUDED.best_score),
			total_correct = player_profiles.total_correct + EXCLUDED.total_correct,
			total_wrong = player_profiles.total_wrong + EXCLUDED.total_wrong`,
		userID, score, wrong,
	)
	return err
}
