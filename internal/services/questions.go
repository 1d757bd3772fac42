package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"quizgame/internal/models"
	"quizgame/internal/quiz"
)

type questionRepository interface {
	ListActive(ctx context.Context) ([]models.Question, error)
	Count(ctx context.Context) (int, error)
	CreateBatch(ctx context.Context, questions []models.Question) error
}

type QuestionService struct {
	repo   questionRepository
	logger *zap.Logger
}

func NewQuestionService(repo questionRepository, logger *zap.Logger) *QuestionService {
	return &QuestionService{repo: repo, logger: logger}
}

func (s *QuestionService) List(ctx context.Context) ([]models.Question, error) {
	return s.repo.ListActive(ctx)
}

// SeedFromFile imports the questions in path when the table is empty and
// reports how many were inserted. The import is all or nothing, so a failed
// seed is retried on the next start. An empty path is a no-op.
func (s *QuestionService) SeedFromFile(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, nil
	}

	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	if n > 0 {
		s.logger.Debug("questions already present, skipping seed", zap.Int("count", n))
		return 0, nil
	}

	questions, err := quiz.LoadFile(path)
	if err != nil {
		return 0, err
	}

	for i := range questions {
		questions[i].IsActive = true
	}
	if err := s.repo.CreateBatch(ctx, questions); err != nil {
		return 0, fmt.Errorf("failed to seed questions: %w", err)
	}

	s.logger.Info("seeded questions", zap.String("file", path), zap.Int("count", len(questions)))
	return len(questions), nil
}
