package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"studynotes/internal/repository"
)

// ErrNotFound means the session is absent or owned by someone else
var ErrNotFound = errors.New("session not found")

// Manager is the in-memory registry of live quiz sessions. Sessions are
// ephemeral: never persisted, torn down on finish, destroy, or after
// sitting idle past the TTL.
type Manager struct {
	quizRepo repository.QuizRepo
	delay    time.Duration
	idleTTL  time.Duration
	events   EventSink

	mu       sync.RWMutex
	sessions map[string]*Engine
	stop     chan struct{}
}

// NewManager creates a session manager and starts its idle sweeper
func NewManager(quizRepo repository.QuizRepo, delay, idleTTL time.Duration, events EventSink) *Manager {
	m := &Manager{
		quizRepo: quizRepo,
		delay:    delay,
		idleTTL:  idleTTL,
		events:   events,
		sessions: make(map[string]*Engine),
		stop:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Create opens a session for one of the caller's quizzes. An absent or
// foreign quiz surfaces as NotFound.
func (m *Manager) Create(ctx context.Context, userID, quizID uint) (View, error) {
	quiz, err := m.quizRepo.GetByID(ctx, quizID, userID)
	if err != nil {
		return View{}, err
	}

	id := uuid.New().String()
	engine := NewEngine(Config{
		ID:    id,
		Quiz:  quiz,
		Delay: m.delay,
		Submit: func(ctx context.Context, score int) error {
			_, err := m.quizRepo.UpdateScore(ctx, quizID, userID, score)
			return err
		},
		Events: m.events,
	})

	m.mu.Lock()
	m.sessions[id] = engine
	m.mu.Unlock()

	log.Printf("[Session] Created session %s for quiz %d", id, quizID)
	return engine.Snapshot(), nil
}

// Get returns the caller's session snapshot
func (m *Manager) Get(id string, userID uint) (View, error) {
	engine, err := m.lookup(id, userID)
	if err != nil {
		return View{}, err
	}
	return engine.Snapshot(), nil
}

// Answer selects an option on the session's current question
func (m *Manager) Answer(id string, userID uint, option string) (*Feedback, error) {
	engine, err := m.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	return engine.SelectOption(option)
}

// Restart resets the session for another attempt
func (m *Manager) Restart(id string, userID uint) (View, error) {
	engine, err := m.lookup(id, userID)
	if err != nil {
		return View{}, err
	}
	return engine.Restart(), nil
}

// Finish resubmits the final score and tears the session down
func (m *Manager) Finish(id string, userID uint) (int, error) {
	engine, err := m.lookup(id, userID)
	if err != nil {
		return 0, err
	}
	score, err := engine.Finish()
	if err != nil {
		return 0, err
	}
	m.remove(id)
	return score, nil
}

// Destroy cancels the session without submitting anything
func (m *Manager) Destroy(id string, userID uint) error {
	if _, err := m.lookup(id, userID); err != nil {
		return err
	}
	m.remove(id)
	return nil
}

// Owns reports whether the session exists and belongs to userID,
// without touching its idle clock. Used by the event stream handshake.
func (m *Manager) Owns(id string, userID uint) bool {
	_, err := m.lookup(id, userID)
	return err == nil
}

// Stop halts the idle sweeper and closes every live session
func (m *Manager) Stop() {
	close(m.stop)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, engine := range m.sessions {
		engine.Close()
		delete(m.sessions, id)
	}
}

func (m *Manager) lookup(id string, userID uint) (*Engine, error) {
	m.mu.RLock()
	engine, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || engine.UserID() != userID {
		return nil, ErrNotFound
	}
	return engine, nil
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	engine, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if ok {
		engine.Close()
	}
}

// sweep drops sessions that have sat idle past the TTL
func (m *Manager) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-m.idleTTL)
			m.mu.Lock()
			for id, engine := range m.sessions {
				if engine.idleSince().Before(cutoff) {
					engine.Close()
					delete(m.sessions, id)
					log.Printf("[Session] Swept idle session %s", id)
				}
			}
			m.mu.Unlock()
		}
	}
}
