package handlers

import (
	"context"
	"net/http"

	"quizgame/internal/models"
)

type questionLister interface {
	List(ctx context.Context) ([]models.Question, error)
}

type QuestionHandler struct {
	questions questionLister
}

func NewQuestionHandler(questions questionLister) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questions.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}
	writeJSON(w, http.StatusOK, models.QuestionList{Questions: questions})
}
