package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vancomm/minesweeper-host/internal/mines"
)

var ErrNotFound = errors.New("game session not found")

type GameSession struct {
	GameSessionId uuid.UUID
	CreatedAt     time.Time

	mu        sync.Mutex
	board     *mines.Board
	updatedAt time.Time
}

// Do runs fn with exclusive access to the session's board.
func (s *GameSession) Do(fn func(b *mines.Board) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = time.Now()
	return fn(s.board)
}

// Reset swaps in a board built by gen for the same params, keeping the
// session id.
func (s *GameSession) Reset(gen func(p mines.Params) (*mines.Board, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := gen(s.board.Params)
	if err != nil {
		return err
	}
	s.board = b
	s.updatedAt = time.Now()
	return nil
}

func (s *GameSession) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

type Queries struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*GameSession
}

func New() *Queries {
	return &Queries{sessions: make(map[uuid.UUID]*GameSession)}
}

func (q *Queries) CreateGameSession(board *mines.Board) *GameSession {
	now := time.Now()
	session := &GameSession{
		GameSessionId: uuid.New(),
		CreatedAt:     now,
		board:         board,
		updatedAt:     now,
	}
	q.mu.Lock()
	q.sessions[session.GameSessionId] = session
	q.mu.Unlock()
	return session
}

func (q *Queries) FetchGameSession(id uuid.UUID) (*GameSession, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	session, ok := q.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

func (q *Queries) DeleteGameSession(id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(q.sessions, id)
	return nil
}

func (q *Queries) Count() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.sessions)
}

// Sweep drops sessions nobody has touched since before now-idle and returns
// how many were dropped.
func (q *Queries) Sweep(now time.Time, idle time.Duration) int {
	cutoff := now.Add(-idle)
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for id, session := range q.sessions {
		if session.UpdatedAt().Before(cutoff) {
			delete(q.sessions, id)
			n++
		}
	}
	return n
}
