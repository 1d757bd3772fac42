package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"quizgame/internal/middleware"
	"quizgame/internal/models"
)

type scoreService interface {
	Submit(ctx context.Context, userID *uuid.UUID, req models.SubmitScoreRequest) (*models.Score, error)
	Top(ctx context.Context, limit int) ([]models.Score, error)
}

type ScoreHandler struct {
	scores scoreService
}

func NewScoreHandler(scores scoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

func (h *ScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"limit": "Must be a positive integer"}, r))
			return
		}
		limit = n
	}

	scores, err := h.scores.Top(r.Context(), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ScoreList{Scores: scores})
}

func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	var userID *uuid.UUID
	if id, ok := middleware.LookupUserID(r.Context()); ok {
		userID = &id
	}

	score, err := h.scores.Submit(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, score)
}
