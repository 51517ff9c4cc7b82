// Package session hosts the quiz-taking flow: one question at a time,
// an answer lock per question, a fixed feedback delay before
// auto-advance, and an exactly-once score submission on completion.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/samber/lo"

	"studynotes/internal/model"
)

var (
	// ErrCompleted means the session already reached its terminal state
	ErrCompleted = errors.New("session already completed")
	// ErrNotCompleted means the session has unanswered questions left
	ErrNotCompleted = errors.New("session not completed")
)

// State names the two session states
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Event names pushed over the session event stream
const (
	EventFeedback  = "feedback"
	EventAdvance   = "advance"
	EventCompleted = "completed"
)

// EventSink receives session lifecycle events (implemented by the
// websocket hub; defined here to avoid an import cycle)
type EventSink interface {
	SessionEvent(sessionID string, event string, payload interface{})
}

// SubmitFunc writes a final score to the quiz store
type SubmitFunc func(ctx context.Context, score int) error

// Config assembles an engine
type Config struct {
	ID     string
	Quiz   *model.Quiz
	Delay  time.Duration
	Submit SubmitFunc
	Events EventSink
}

// Feedback is revealed immediately after an option is selected
type Feedback struct {
	Index         int    `json:"index"`
	Selected      string `json:"selected"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Score         int    `json:"score"`
}

// QuestionView is a question as presented to the client, without the
// correct answer
type QuestionView struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// View is a snapshot of session state for the client
type View struct {
	ID       string        `json:"id"`
	QuizID   uint          `json:"quizId"`
	Title    string        `json:"title"`
	State    State         `json:"state"`
	Index    int           `json:"index"`
	Total    int           `json:"total"`
	Score    int           `json:"score"`
	Selected *string       `json:"selected,omitempty"`
	Question *QuestionView `json:"question,omitempty"`
}

// Engine drives a single user through one quiz attempt. All transitions
// are serialized under a mutex; the only self-initiated transition is
// the delayed advance scheduled by SelectOption, which teardown cancels.
type Engine struct {
	id     string
	quizID uint
	userID uint
	title  string

	questions []model.Question
	valid     bool
	delay     time.Duration
	submit    SubmitFunc
	events    EventSink

	mu         sync.Mutex
	index      int
	score      int
	selection  *string
	completed  bool
	closed     bool
	take       int // generation counter, invalidates pending advances
	timer      *time.Timer
	lastActive time.Time
}

// NewEngine creates a session for the given quiz. A malformed quiz —
// zero questions, or a question whose correct answer is not among its
// options — fails closed: the session starts in Completed(0) and
// submits that score, never reading a current question.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		id:         cfg.ID,
		quizID:     cfg.Quiz.ID,
		userID:     cfg.Quiz.UserID,
		title:      cfg.Quiz.Title,
		questions:  cfg.Quiz.Questions,
		delay:      cfg.Delay,
		submit:     cfg.Submit,
		events:     cfg.Events,
		lastActive: time.Now(),
	}

	e.valid = len(e.questions) > 0 && lo.EveryBy(e.questions, func(q model.Question) bool {
		return lo.Contains(q.Options, q.CorrectAnswer)
	})
	if !e.valid {
		log.Printf("[Session] Quiz %d is malformed, completing session %s with score 0", e.quizID, e.id)
		e.completed = true
		e.submitScore()
	}

	return e
}

// UserID returns the owning user
func (e *Engine) UserID() uint {
	return e.userID
}

// Snapshot returns the current session state
func (e *Engine) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActive = time.Now()
	return e.view()
}

// SelectOption records the answer for the current question. Once a
// selection exists it is immutable: repeated calls echo the original
// feedback without changing state. Correctness is exact string match.
// A correct answer is worth one point. The advance to the next question
// is scheduled after the feedback delay and cannot be skipped.
func (e *Engine) SelectOption(option string) (*Feedback, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActive = time.Now()

	if e.completed {
		return nil, ErrCompleted
	}
	if e.selection != nil {
		// Answer lock: report the existing selection unchanged
		return e.feedback(), nil
	}

	question := e.questions[e.index]
	e.selection = &option
	if question.IsCorrect(option) {
		e.score++
	}

	fb := e.feedback()
	e.emit(EventFeedback, fb)

	take := e.take
	e.timer = time.AfterFunc(e.delay, func() {
		e.advance(take)
	})

	return fb, nil
}

// advance moves to the next question or completes the session. A stale
// take (the session was restarted or closed while the timer was
// pending) is ignored.
func (e *Engine) advance(take int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.completed || e.take != take || e.selection == nil {
		return
	}

	if e.index+1 < len(e.questions) {
		e.index++
		e.selection = nil
		e.emit(EventAdvance, map[string]interface{}{
			"index": e.index,
			"score": e.score,
		})
		return
	}

	e.completed = true
	e.emit(EventCompleted, map[string]interface{}{
		"score": e.score,
		"total": len(e.questions),
	})
	e.submitScore()
}

// Restart discards the attempt and reinitializes to the first question
// with zero score. No submission is made; the next completion submits
// again (retakes overwrite the stored score). A malformed quiz stays in
// its fail-closed terminal state.
func (e *Engine) Restart() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActive = time.Now()

	if !e.valid {
		return e.view()
	}

	e.cancelTimer()
	e.take++
	e.index = 0
	e.score = 0
	e.selection = nil
	e.completed = false
	return e.view()
}

// Finish performs the redundant, idempotent score submission the
// results screen offers. A store failure is logged and does not block
// the caller from navigating away.
func (e *Engine) Finish() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.completed {
		return 0, ErrNotCompleted
	}
	e.submitScore()
	return e.score, nil
}

// Close tears the session down. A pending advance is cancelled; an
// in-progress score is discarded without submission.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.take++
	e.cancelTimer()
}

// idleSince reports the last time a caller touched the session
func (e *Engine) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActive
}

// submitScore fires the score write without blocking the session.
// Failures are logged, not retried. Callers hold e.mu.
func (e *Engine) submitScore() {
	score := e.score
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.submit(ctx, score); err != nil {
			log.Printf("[Session] Failed to submit score %d for quiz %d: %v", score, e.quizID, err)
		}
	}()
}

// cancelTimer stops a pending advance. Callers hold e.mu.
func (e *Engine) cancelTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// feedback builds the post-selection view. Callers hold e.mu and have
// checked that a selection exists.
func (e *Engine) feedback() *Feedback {
	question := e.questions[e.index]
	return &Feedback{
		Index:         e.index,
		Selected:      *e.selection,
		Correct:       question.IsCorrect(*e.selection),
		CorrectAnswer: question.CorrectAnswer,
		Score:         e.score,
	}
}

// view builds a client snapshot. Callers hold e.mu.
func (e *Engine) view() View {
	v := View{
		ID:       e.id,
		QuizID:   e.quizID,
		Title:    e.title,
		State:    StateInProgress,
		Index:    e.index,
		Total:    len(e.questions),
		Score:    e.score,
		Selected: e.selection,
	}
	if e.completed {
		v.State = StateCompleted
		return v
	}
	q := e.questions[e.index]
	v.Question = &QuestionView{
		Text:    q.Text,
		Options: q.Options,
	}
	return v
}

// emit pushes an event to the stream, if one is attached. Best-effort.
func (e *Engine) emit(event string, payload interface{}) {
	if e.events == nil {
		return
	}
	e.events.SessionEvent(e.id, event, payload)
}
