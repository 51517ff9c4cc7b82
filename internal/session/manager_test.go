package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studynotes/internal/model"
	"studynotes/internal/repository"
)

// fakeQuizRepo serves one quiz and records score updates
type fakeQuizRepo struct {
	mu     sync.Mutex
	quiz   *model.Quiz
	scores []int
}

func (f *fakeQuizRepo) Create(ctx context.Context, quiz *model.Quiz) error { return nil }

func (f *fakeQuizRepo) GetByID(ctx context.Context, id, userID uint) (*model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quiz == nil || f.quiz.ID != id || f.quiz.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return f.quiz, nil
}

func (f *fakeQuizRepo) ListByUser(ctx context.Context, userID uint) ([]model.Quiz, error) {
	return nil, nil
}

func (f *fakeQuizRepo) UpdateScore(ctx context.Context, id, userID uint, score int) (*model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores = append(f.scores, score)
	return f.quiz, nil
}

func (f *fakeQuizRepo) updated() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.scores))
	copy(out, f.scores)
	return out
}

func newTestManager(t *testing.T, repo repository.QuizRepo) *Manager {
	t.Helper()
	m := NewManager(repo, testDelay, time.Hour, nil)
	t.Cleanup(m.Stop)
	return m
}

func TestManagerCreateAndGet(t *testing.T) {
	repo := &fakeQuizRepo{quiz: threeQuestionQuiz()}
	m := newTestManager(t, repo)

	v, err := m.Create(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Equal(t, StateInProgress, v.State)
	require.Equal(t, uint(1), v.QuizID)
	require.Equal(t, 3, v.Total)
	require.NotEmpty(t, v.ID)

	got, err := m.Get(v.ID, 7)
	require.NoError(t, err)
	require.Equal(t, v.ID, got.ID)
}

func TestManagerCreateForeignQuiz(t *testing.T) {
	repo := &fakeQuizRepo{quiz: threeQuestionQuiz()}
	m := newTestManager(t, repo)

	_, err := m.Create(context.Background(), 99, 1)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestManagerHidesForeignSessions(t *testing.T) {
	repo := &fakeQuizRepo{quiz: threeQuestionQuiz()}
	m := newTestManager(t, repo)

	v, err := m.Create(context.Background(), 7, 1)
	require.NoError(t, err)

	_, err = m.Get(v.ID, 99)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.Answer(v.ID, 99, "A")
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, m.Owns(v.ID, 99))
	require.True(t, m.Owns(v.ID, 7))
}

func TestManagerFinishRemovesSession(t *testing.T) {
	repo := &fakeQuizRepo{quiz: &model.Quiz{
		ID: 1, UserID: 7, Title: "One",
		Questions: []model.Question{
			{Text: "Q1", Options: model.StringArray{"A", "B"}, CorrectAnswer: "A"},
		},
	}}
	m := newTestManager(t, repo)

	v, err := m.Create(context.Background(), 7, 1)
	require.NoError(t, err)

	_, err = m.Answer(v.ID, 7, "A")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		got, err := m.Get(v.ID, 7)
		return err == nil && got.State == StateCompleted
	}, time.Second, time.Millisecond)

	score, err := m.Finish(v.ID, 7)
	require.NoError(t, err)
	require.Equal(t, 1, score)

	_, err = m.Get(v.ID, 7)
	require.ErrorIs(t, err, ErrNotFound)

	// Completion submitted once, Finish once more
	require.Eventually(t, func() bool {
		return len(repo.updated()) == 2
	}, time.Second, time.Millisecond)
	require.Equal(t, []int{1, 1}, repo.updated())
}

func TestManagerDestroyDiscardsAttempt(t *testing.T) {
	repo := &fakeQuizRepo{quiz: threeQuestionQuiz()}
	m := newTestManager(t, repo)

	v, err := m.Create(context.Background(), 7, 1)
	require.NoError(t, err)

	_, err = m.Answer(v.ID, 7, "A")
	require.NoError(t, err)

	require.NoError(t, m.Destroy(v.ID, 7))
	_, err = m.Get(v.ID, 7)
	require.ErrorIs(t, err, ErrNotFound)

	// No score ever reaches the store for an abandoned attempt
	time.Sleep(5 * testDelay)
	require.Empty(t, repo.updated())
}

func TestManagerSessionsAreIndependent(t *testing.T) {
	repo := &fakeQuizRepo{quiz: threeQuestionQuiz()}
	m := newTestManager(t, repo)

	first, err := m.Create(context.Background(), 7, 1)
	require.NoError(t, err)
	second, err := m.Create(context.Background(), 7, 1)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	_, err = m.Answer(first.ID, 7, "A")
	require.NoError(t, err)

	got, err := m.Get(second.ID, 7)
	require.NoError(t, err)
	require.Nil(t, got.Selected)
	require.Equal(t, 0, got.Score)
}
