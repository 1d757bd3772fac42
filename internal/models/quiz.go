package models

import (
	"time"

	"github.com/google/uuid"
)

type Question struct {
	ID       int      `json:"id"`
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
	IsActive bool     `json:"-"`
}

type QuestionList struct {
	Questions []Question `json:"questions"`
}

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Score struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	PlayerName string     `json:"player_name"`
	Score      int        `json:"score"`
	Wrong      int        `json:"wrong"`
	Difficulty string     `json:"difficulty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type SubmitScoreRequest struct {
	PlayerName string `json:"player_name" validate:"omitempty,max=100"`
	Score      int    `json:"score" validate:"min=0"`
	Wrong      int    `json:"wrong" validate:"min=0"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

type ScoreList struct {
	Scores []Score `json:"scores"`
}
