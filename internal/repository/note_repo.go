package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"studynotes/internal/model"
)

type NoteRepo interface {
	Create(ctx context.Context, note *model.Note) error
	GetByID(ctx context.Context, id, userID uint) (*model.Note, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Note, error)
	Update(ctx context.Context, note *model.Note) error
	Delete(ctx context.Context, id, userID uint) error
}

type noteRepo struct {
	db *gorm.DB
}

// NewNoteRepo creates a new note repository
func NewNoteRepo(db *gorm.DB) NoteRepo {
	return &noteRepo{db: db}
}

func (r *noteRepo) Create(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// GetByID loads a note owned by userID. A note owned by someone else is
// indistinguishable from an absent one.
func (r *noteRepo) GetByID(ctx context.Context, id, userID uint) (*model.Note, error) {
	var note model.Note
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

func (r *noteRepo) ListByUser(ctx context.Context, userID uint) ([]model.Note, error) {
	var notes []model.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Quizzes").
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepo) Update(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *noteRepo) Delete(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
