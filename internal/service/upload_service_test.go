package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"studynotes/internal/extract"
)

// stubUploader returns a fixed URL or error
type stubUploader struct {
	url string
	err error
}

func (s *stubUploader) Upload(ctx context.Context, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func TestUploadProcess(t *testing.T) {
	storage := &stubUploader{url: "https://cdn.example.com/doc.txt"}
	ml := &stubSummarizer{result: &SummarizeResult{Summary: "A short summary."}}
	svc := NewUploadService(storage, ml)

	result, err := svc.Process(context.Background(), []byte("lecture notes"), "text/plain")
	require.NoError(t, err)
	require.Equal(t, "lecture notes", result.Text)
	require.Equal(t, "A short summary.", result.Summary)
	require.Equal(t, "https://cdn.example.com/doc.txt", result.URL)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc := NewUploadService(&stubUploader{url: "u"}, &stubSummarizer{result: &SummarizeResult{Summary: "s"}})

	_, err := svc.Process(context.Background(), []byte{0x89, 0x50, 0x4e, 0x47}, "image/png")
	require.ErrorIs(t, err, extract.ErrUnsupportedType)
}

func TestUploadStorageFailureFailsRequest(t *testing.T) {
	storage := &stubUploader{err: errors.New("cloud unreachable")}
	svc := NewUploadService(storage, &stubSummarizer{result: &SummarizeResult{Summary: "s"}})

	_, err := svc.Process(context.Background(), []byte("text"), "text/plain")
	require.Error(t, err)
}

func TestUploadSummaryFailureDegrades(t *testing.T) {
	storage := &stubUploader{url: "https://cdn.example.com/doc.txt"}
	ml := &stubSummarizer{err: fmt.Errorf("%w: connection refused", ErrMLUnavailable)}
	svc := NewUploadService(storage, ml)

	result, err := svc.Process(context.Background(), []byte("text"), "text/plain")
	require.NoError(t, err)
	require.Equal(t, "Summary unavailable (ML Service Offline)", result.Summary)
	require.Equal(t, "https://cdn.example.com/doc.txt", result.URL)
}
