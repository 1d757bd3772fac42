package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoreJob is queued after a score is stored so profile totals and the live
// leaderboard are updated off the request path.
type ScoreJob struct {
	ScoreID    uuid.UUID  `json:"score_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	PlayerName string     `json:"player_name"`
	Score      int        `json:"score"`
	Wrong      int        `json:"wrong"`
	Difficulty string     `json:"difficulty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
