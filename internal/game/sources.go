package game

import (
	"context"

	"quizgame/internal/models"
	"quizgame/internal/quiz"
)

// FileSource reads questions from a local JSON file.
type FileSource struct {
	Path string
}

func (s FileSource) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	return quiz.LoadFile(s.Path)
}

type shuffled struct {
	src QuestionSource
}

// Shuffled returns a source that serves src's questions in random order.
func Shuffled(src QuestionSource) QuestionSource {
	return shuffled{src: src}
}

func (s shuffled) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	questions, err := s.src.FetchQuestions(ctx)
	if err != nil {
		return nil, err
	}
	return quiz.Shuffle(questions), nil
}
