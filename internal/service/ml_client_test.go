package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/summarize", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "mitochondria are the powerhouse", req["text"])

		json.NewEncoder(w).Encode(map[string]string{
			"summary": "Mitochondria produce energy.",
			"title":   "Cell Energy",
		})
	}))
	defer srv.Close()

	client := NewMLClient(srv.URL, time.Second)
	result, err := client.Summarize(context.Background(), "mitochondria are the powerhouse")
	require.NoError(t, err)
	require.Equal(t, "Mitochondria produce energy.", result.Summary)
	require.Equal(t, "Cell Energy", result.Title)
}

func TestSummarizeRejectsEmptySummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"summary": "", "title": "Cell Energy"})
	}))
	defer srv.Close()

	client := NewMLClient(srv.URL, time.Second)
	_, err := client.Summarize(context.Background(), "text")
	require.Error(t, err)
}

func TestSummarizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewMLClient(srv.URL, time.Second)
	_, err := client.Summarize(context.Background(), "text")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMLTimeout)
}

func TestSummarizeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewMLClient(srv.URL, time.Second)
	_, err := client.Summarize(context.Background(), "text")
	require.ErrorIs(t, err, ErrMLUnavailable)
}

func TestSummarizeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewMLClient(srv.URL, 20*time.Millisecond)
	_, err := client.Summarize(context.Background(), "text")
	require.ErrorIs(t, err, ErrMLTimeout)
}

func TestGenerateQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/generate-questions", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, float64(5), req["num_questions"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"questions": []map[string]interface{}{
				{
					"questionText":  "What do mitochondria produce?",
					"options":       []string{"ATP", "DNA", "RNA"},
					"correctAnswer": "ATP",
				},
				{
					"questionText":  "Where does glycolysis occur?",
					"options":       []string{"Cytoplasm", "Nucleus"},
					"correctAnswer": "Cytoplasm",
				},
			},
		})
	}))
	defer srv.Close()

	client := NewMLClient(srv.URL, time.Second)
	questions, err := client.GenerateQuestions(context.Background(), "cell biology", 5)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.Equal(t, "What do mitochondria produce?", questions[0].QuestionText)
	require.Equal(t, []string{"ATP", "DNA", "RNA"}, questions[0].Options)
	require.Equal(t, "ATP", questions[0].CorrectAnswer)
}

func TestGenerateQuestionsDropsMalformedItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"questions": []map[string]interface{}{
				{"questionText": "", "options": []string{"A"}, "correctAnswer": "A"},
				{"questionText": "No options", "options": []string{}, "correctAnswer": "A"},
				{"questionText": "No answer", "options": []string{"A", "B"}, "correctAnswer": ""},
				{"questionText": "Kept", "options": []string{"A", "B"}, "correctAnswer": "B"},
			},
		})
	}))
	defer srv.Close()

	client := NewMLClient(srv.URL, time.Second)
	questions, err := client.GenerateQuestions(context.Background(), "text", 4)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.Equal(t, "Kept", questions[0].QuestionText)
}
