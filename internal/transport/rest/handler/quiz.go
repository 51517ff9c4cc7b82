package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"studynotes/internal/model"
	"studynotes/internal/repository"
	"studynotes/internal/service"
	"studynotes/internal/transport/rest/middleware"
)

// QuizHandler handles quiz endpoints
type QuizHandler struct {
	quizSvc  *service.QuizService
	validate *validator.Validate
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizSvc *service.QuizService) *QuizHandler {
	return &QuizHandler{
		quizSvc:  quizSvc,
		validate: validator.New(),
	}
}

// GenerateQuizRequest is the request body for quiz generation
type GenerateQuizRequest struct {
	NoteID       uint `json:"noteId" validate:"required"`
	NumQuestions int  `json:"numQuestions"`
}

// SubmitScoreRequest is the request body for score submission
type SubmitScoreRequest struct {
	Score int `json:"score" validate:"gte=0"`
}

// QuizSummary is the list-view shape: no question bodies, just counts
type QuizSummary struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	NoteID        uint      `json:"noteId"`
	Score         *int      `json:"score"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Generate handles POST /v1/quizzes/generate
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "noteId required")
		return
	}

	quiz, err := h.quizSvc.Generate(r.Context(), userID, req.NoteID, req.NumQuestions)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "note not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// List handles GET /v1/quizzes
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	quizzes, err := h.quizSvc.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := lo.Map(quizzes, func(q model.Quiz, _ int) QuizSummary {
		return QuizSummary{
			ID:            q.ID,
			Title:         q.Title,
			NoteID:        q.NoteID,
			Score:         q.Score,
			QuestionCount: len(q.Questions),
			CreatedAt:     q.CreatedAt,
		}
	})
	writeJSON(w, http.StatusOK, summaries)
}

// Get handles GET /v1/quizzes/{id}
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	quiz, err := h.quizSvc.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "quiz not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// Submit handles PUT /v1/quizzes/{id}/submit
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quiz, err := h.quizSvc.SubmitScore(r.Context(), userID, id, req.Score)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "quiz not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}
