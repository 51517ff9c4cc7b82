package service

import (
	"context"
	"log"

	"studynotes/internal/extract"
)

// UploadResult is returned after a document is processed
type UploadResult struct {
	Text    string `json:"text"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// UploadService runs the document pipeline: extract text, store the
// original in the cloud, auto-summarize
type UploadService struct {
	storage Uploader
	ml      Summarizer
}

// NewUploadService creates a new upload service
func NewUploadService(storage Uploader, ml Summarizer) *UploadService {
	return &UploadService{
		storage: storage,
		ml:      ml,
	}
}

// Process extracts text from the uploaded document, uploads the
// original bytes, and summarizes the extracted text. Extraction and
// storage failures fail the request; a failed summary degrades to a
// placeholder like the note flow.
func (s *UploadService) Process(ctx context.Context, data []byte, mediaType string) (*UploadResult, error) {
	text, err := extract.Text(data, mediaType)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.Upload(ctx, data)
	if err != nil {
		return nil, err
	}
	log.Printf("[Upload Service] Stored document at %s", url)

	summary := ""
	result, err := s.ml.Summarize(ctx, text)
	if err != nil {
		log.Printf("[Upload Service] ML summarize failed: %v", err)
		summary = fallbackSummary(err)
	} else {
		summary = result.Summary
	}

	return &UploadResult{
		Text:    text,
		Summary: summary,
		URL:     url,
	}, nil
}
