package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"studynotes/internal/model"
)

type QuizRepo interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	GetByID(ctx context.Context, id, userID uint) (*model.Quiz, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Quiz, error)
	UpdateScore(ctx context.Context, id, userID uint, score int) (*model.Quiz, error)
}

type quizRepo struct {
	db *gorm.DB
}

// NewQuizRepo creates a new quiz repository
func NewQuizRepo(db *gorm.DB) QuizRepo {
	return &quizRepo{db: db}
}

// Create persists a quiz and its questions in one transaction.
// Question insertion order fixes presentation order.
func (r *quizRepo) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

func (r *quizRepo) GetByID(ctx context.Context, id, userID uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id")
		}).
		First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepo) ListByUser(ctx context.Context, userID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id")
		}).
		Order("created_at DESC").
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

// UpdateScore overwrites the stored score. The store does not validate
// the score against the question count; that is the caller's job.
func (r *quizRepo) UpdateScore(ctx context.Context, id, userID uint, score int) (*model.Quiz, error) {
	quiz, err := r.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	quiz.Score = &score
	if err := r.db.WithContext(ctx).Model(&model.Quiz{}).
		Where("id = ?", id).
		Update("score", score).Error; err != nil {
		return nil, err
	}
	return quiz, nil
}
