package service

import (
	"context"
	"errors"
	"log"

	"studynotes/internal/model"
	"studynotes/internal/repository"
)

// Summarizer is the slice of the ML client the note flows depend on
type Summarizer interface {
	Summarize(ctx context.Context, text string) (*SummarizeResult, error)
}

// NoteService handles note CRUD and summary generation
type NoteService struct {
	noteRepo repository.NoteRepo
	ml       Summarizer
}

// NewNoteService creates a new note service
func NewNoteService(noteRepo repository.NoteRepo, ml Summarizer) *NoteService {
	return &NoteService{
		noteRepo: noteRepo,
		ml:       ml,
	}
}

// Create summarizes the content and persists the note. A failed ML call
// never blocks note creation; the summary becomes a diagnostic
// placeholder instead. Title precedence: user title, ML-suggested
// title, "Untitled Note".
func (s *NoteService) Create(ctx context.Context, userID uint, title, content string, subjectID *uint) (*model.Note, error) {
	summary := ""
	generatedTitle := ""

	result, err := s.ml.Summarize(ctx, content)
	if err != nil {
		log.Printf("[Note Service] ML summarize failed: %v", err)
		summary = fallbackSummary(err)
	} else {
		summary = result.Summary
		generatedTitle = result.Title
	}

	if title == "" {
		title = generatedTitle
	}
	if title == "" {
		title = "Untitled Note"
	}

	note := &model.Note{
		Title:     title,
		Content:   content,
		Summary:   summary,
		UserID:    userID,
		SubjectID: subjectID,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Update rewrites title and content and always re-generates the summary
func (s *NoteService) Update(ctx context.Context, userID, id uint, title, content string) (*model.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.ml.Summarize(ctx, content)
	if err != nil {
		log.Printf("[Note Service] ML summarize failed on update: %v", err)
		note.Summary = fallbackSummary(err)
	} else {
		note.Summary = result.Summary
	}

	note.Title = title
	note.Content = content
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Get retrieves a single note owned by userID
func (s *NoteService) Get(ctx context.Context, userID, id uint) (*model.Note, error) {
	return s.noteRepo.GetByID(ctx, id, userID)
}

// List retrieves the caller's notes, newest first
func (s *NoteService) List(ctx context.Context, userID uint) ([]model.Note, error) {
	return s.noteRepo.ListByUser(ctx, userID)
}

// Delete removes a note owned by userID
func (s *NoteService) Delete(ctx context.Context, userID, id uint) error {
	return s.noteRepo.Delete(ctx, id, userID)
}

// fallbackSummary maps ML transport failures onto the placeholder
// strings shown to the user in place of a summary
func fallbackSummary(err error) string {
	switch {
	case errors.Is(err, ErrMLTimeout):
		return "Summary unavailable (Request Timed Out)"
	case errors.Is(err, ErrMLUnavailable):
		return "Summary unavailable (ML Service Offline)"
	default:
		return "Summary unavailable (ML Error)"
	}
}
