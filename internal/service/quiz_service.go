package service

import (
	"context"
	"log"

	"github.com/samber/lo"

	"studynotes/internal/model"
	"studynotes/internal/repository"
)

const defaultQuestionCount = 5

// QuestionGenerator is the slice of the ML client the quiz flow depends on
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, text string, num int) ([]GeneratedQuestion, error)
}

// QuizService handles quiz generation, retrieval, and score submission
type QuizService struct {
	quizRepo repository.QuizRepo
	noteRepo repository.NoteRepo
	ml       QuestionGenerator
}

// NewQuizService creates a new quiz service
func NewQuizService(quizRepo repository.QuizRepo, noteRepo repository.NoteRepo, ml QuestionGenerator) *QuizService {
	return &QuizService{
		quizRepo: quizRepo,
		noteRepo: noteRepo,
		ml:       ml,
	}
}

// Generate builds a quiz from a note's content. The ML service being
// down degrades to a single placeholder question rather than failing
// the request. The quiz inherits the note's title.
func (s *QuizService) Generate(ctx context.Context, userID, noteID uint, numQuestions int) (*model.Quiz, error) {
	if numQuestions <= 0 {
		numQuestions = defaultQuestionCount
	}

	note, err := s.noteRepo.GetByID(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	generated, err := s.ml.GenerateQuestions(ctx, note.Content, numQuestions)
	if err != nil || len(generated) == 0 {
		log.Printf("[Quiz Service] ML question generation unavailable: %v", err)
		generated = []GeneratedQuestion{
			{
				QuestionText:  "ML Service unavailable. Core concept?",
				Options:       []string{"A", "B"},
				CorrectAnswer: "A",
			},
		}
	}

	quiz := &model.Quiz{
		Title:  note.Title,
		UserID: userID,
		NoteID: note.ID,
		Questions: lo.Map(generated, func(q GeneratedQuestion, _ int) model.Question {
			return model.Question{
				Text:          q.QuestionText,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
			}
		}),
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Get retrieves a quiz with its questions, ownership checked
func (s *QuizService) Get(ctx context.Context, userID, id uint) (*model.Quiz, error) {
	return s.quizRepo.GetByID(ctx, id, userID)
}

// List retrieves the caller's quizzes, newest first
func (s *QuizService) List(ctx context.Context, userID uint) ([]model.Quiz, error) {
	return s.quizRepo.ListByUser(ctx, userID)
}

// SubmitScore overwrites the quiz's stored score. Duplicate submissions
// are tolerated as last-write-wins.
func (s *QuizService) SubmitScore(ctx context.Context, userID, id uint, score int) (*model.Quiz, error) {
	return s.quizRepo.UpdateScore(ctx, id, userID, score)
}
