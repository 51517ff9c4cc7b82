package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"
)

var (
	// ErrMLUnavailable means the ML service could not be reached
	ErrMLUnavailable = errors.New("ml service unavailable")
	// ErrMLTimeout means the ML service did not answer within the deadline
	ErrMLTimeout = errors.New("ml service request timed out")
)

// MLClient wraps the external summarization and question-generation
// service. Model inference is slow, so the timeout is generous (60s by
// default) but always bounded.
type MLClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewMLClient creates a new ML service client
func NewMLClient(baseURL string, timeout time.Duration) *MLClient {
	return &MLClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SummarizeResult is the validated response of the summarize endpoint
type SummarizeResult struct {
	Summary string `json:"summary"`
	Title   string `json:"title"`
}

// GeneratedQuestion is a question item returned by the ML service
type GeneratedQuestion struct {
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type generateQuestionsResponse struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// Summarize asks the ML service for a summary and a suggested title.
// The title may be empty; an empty summary is treated as a malformed
// response.
func (c *MLClient) Summarize(ctx context.Context, text string) (*SummarizeResult, error) {
	respBody, err := c.post(ctx, "/summarize", map[string]interface{}{
		"text": text,
	})
	if err != nil {
		return nil, err
	}

	var result SummarizeResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse summarize response: %w", err)
	}
	if result.Summary == "" {
		return nil, fmt.Errorf("summarize response missing summary field")
	}
	return &result, nil
}

// GenerateQuestions asks the ML service for up to num questions derived
// from the text. Items missing a question text, options, or a correct
// answer are dropped at the boundary rather than trusted as-is.
func (c *MLClient) GenerateQuestions(ctx context.Context, text string, num int) ([]GeneratedQuestion, error) {
	respBody, err := c.post(ctx, "/generate-questions", map[string]interface{}{
		"text":          text,
		"num_questions": num,
	})
	if err != nil {
		return nil, err
	}

	var resp generateQuestionsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse questions response: %w", err)
	}

	questions := make([]GeneratedQuestion, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		if q.QuestionText == "" || len(q.Options) == 0 || q.CorrectAnswer == "" {
			log.Printf("[ML Client] Dropping malformed question item: %+v", q)
			continue
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (c *MLClient) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	url := c.baseURL + path
	log.Printf("[ML Client] POST %s", path)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		log.Printf("[ML Client] ERROR: API returned %d: %s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("ml service error %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// classifyTransportError maps low-level transport failures onto the
// sentinels the note and upload flows key their fallback summaries on
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrMLTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrMLTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrMLUnavailable, err)
}
