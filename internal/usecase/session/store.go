// Package session keeps per-session conversation history in memory.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain/conversation"
)

const (
	// DefaultHistoryCap is the number of messages kept per session.
	DefaultHistoryCap = 50
	// DefaultTimeout is the idle time after which a session expires.
	DefaultTimeout = 60 * time.Minute
)

// Info describes a session without its history.
type Info struct {
	ID           string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActive   time.Time `json:"last_active"`
	MessageCount int       `json:"message_count"`
}

type session struct {
	mu         sync.Mutex
	id         string
	createdAt  time.Time
	lastActive time.Time
	history    []conversation.Message
	// removed is set under mu when the sweeper drops the session; holders of
	// a stale pointer must look it up again.
	removed bool
}

// Store is an in-memory session store. Appends to one session are serialized;
// different sessions never contend beyond the map lookup.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session

	historyCap int
	timeout    time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// New creates an empty store.
func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions:   make(map[string]*session),
		historyCap: DefaultHistoryCap,
		timeout:    DefaultTimeout,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// WithHistoryCap sets how many messages each session keeps.
func (s *Store) WithHistoryCap(n int) *Store {
	if n > 0 {
		s.historyCap = n
	}
	return s
}

// WithTimeout sets the idle expiry.
func (s *Store) WithTimeout(d time.Duration) *Store {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// GetOrCreate returns id when that session exists, touching it; otherwise it
// creates a session with a fresh id.
func (s *Store) GetOrCreate(id string) string {
	if id != "" {
		s.mu.RLock()
		sess, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			sess.mu.Lock()
			alive := !sess.removed
			if alive {
				sess.lastActive = s.now()
			}
			sess.mu.Unlock()
			if alive {
				return id
			}
		}
	}
	return s.create(uuid.NewString()).id
}

func (s *Store) create(id string) *session {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := &session{id: id, createdAt: now, lastActive: now}
	s.sessions[id] = sess
	s.logger.Debug("Session created", zap.String("session_id", id))
	return sess
}

// Append adds a message to the session's history, creating the session when
// it does not exist. The oldest messages are evicted beyond the cap.
func (s *Store) Append(id string, role conversation.Role, content string) {
	for !s.append(id, role, content) {
	}
}

// append reports false when the session expired between lookup and lock.
func (s *Store) append(id string, role conversation.Role, content string) bool {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		sess = s.create(id)
	}

	now := s.now()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.removed {
		return false
	}

	sess.history = append(sess.history, conversation.Message{Role: role, Content: content, Timestamp: now})
	if over := len(sess.history) - s.historyCap; over > 0 {
		sess.history = slices.Delete(sess.history, 0, over)
	}
	sess.lastActive = now
	return true
}

// History returns a copy of the session's messages, oldest first.
func (s *Store) History(id string) []conversation.Message {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return slices.Clone(sess.history)
}

// Clear empties the session's history and returns how many messages it held.
func (s *Store) Clear(id string) int {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return 0
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	n := len(sess.history)
	sess.history = nil
	s.logger.Info("Session history cleared", zap.String("session_id", id), zap.Int("messages", n))
	return n
}

// Get returns session metadata.
func (s *Store) Get(id string) (Info, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return Info{}, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return Info{
		ID:           sess.id,
		CreatedAt:    sess.createdAt,
		LastActive:   sess.lastActive,
		MessageCount: len(sess.history),
	}, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CleanupExpired removes sessions idle since before now minus the timeout.
func (s *Store) CleanupExpired(now time.Time) int {
	cutoff := now.Add(-s.timeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		expired := sess.lastActive.Before(cutoff)
		sess.removed = expired
		sess.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("Expired sessions removed", zap.Int("count", removed))
	}
	return removed
}

// Run removes expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.CleanupExpired(s.now())
		case <-ctx.Done():
			return nil
		}
	}
}
