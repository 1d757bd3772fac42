package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"quizgame/internal/metrics"
	"quizgame/internal/models"
	"quizgame/pkg/validator"
)

const (
	DefaultScoreLimit = 10
	MaxScoreLimit     = 100
	GuestPlayerName   = "Guest"
)

type scoreRepository interface {
	Create(ctx context.Context, s *models.Score) error
	ListTop(ctx context.Context, limit int) ([]models.Score, error)
}

type userLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ScoreQueue hands recorded scores to the background workers.
type ScoreQueue interface {
	Enqueue(ctx context.Context, job models.ScoreJob) error
}

type ScoreService struct {
	scores  scoreRepository
	users   userLookup
	queue   ScoreQueue
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewScoreService(scores scoreRepository, users userLookup, queue ScoreQueue, m *metrics.Metrics, logger *zap.Logger) *ScoreService {
	return &ScoreService{scores: scores, users: users, queue: queue, metrics: m, logger: logger}
}

// Submit stores a finished game. When userID is set the player name is the
// account's username, otherwise the submitted name or "Guest".
func (s *ScoreService) Submit(ctx context.Context, userID *uuid.UUID, req models.SubmitScoreRequest) (*models.Score, error) {
	req.PlayerName = strings.TrimSpace(req.PlayerName)
	if fields := validator.FieldErrors(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	name := req.PlayerName
	if userID != nil {
		user, err := s.users.GetByID(ctx, *userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &UnauthorizedError{Message: "User no longer exists"}
			}
			return nil, err
		}
		name = user.Username
	}
	if name == "" {
		name = GuestPlayerName
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyEasy
	}

	score := &models.Score{
		UserID:     userID,
		PlayerName: name,
		Score:      req.Score,
		Wrong:      req.Wrong,
		Difficulty: difficulty,
	}
	if err := s.scores.Create(ctx, score); err != nil {
		return nil, err
	}
	s.metrics.ScoreRecorded(difficulty)

	job := models.ScoreJob{
		ScoreID:    score.ID,
		UserID:     score.UserID,
		PlayerName: score.PlayerName,
		Score:      score.Score,
		Wrong:      score.Wrong,
		Difficulty: score.Difficulty,
		CreatedAt:  score.CreatedAt,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Warn("failed to enqueue score job", zap.String("score_id", score.ID.String()), zap.Error(err))
	}

	return score, nil
}

// Top returns the leaderboard. limit <= 0 means the default; larger values
// are capped.
func (s *ScoreService) Top(ctx context.Context, limit int) ([]models.Score, error) {
	if limit <= 0 {
		limit = DefaultScoreLimit
	}
	if limit > MaxScoreLimit {
		limit = MaxScoreLimit
	}
	return s.scores.ListTop(ctx, limit)
}
