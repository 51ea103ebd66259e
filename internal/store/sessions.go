// Package store provides conversation session state and calculation persistence.
package store

import (
	"sync"
	"time"

	"github.com/ashureev/ipoteka-bot/internal/domain"
)

// turnStripes is the number of mutexes guarding per-chat turn processing.
const turnStripes = 64

// SessionStore keeps in-flight conversation state in memory, keyed by
// chat ID. Sessions are copied in and out, so callers never share
// mutable memory with the store or with each other.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]domain.Session

	turnLocks [turnStripes]sync.Mutex
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]domain.Session),
	}
}

// LockTurn serializes turn processing for a chat and returns the unlock
// function. Turns for the same chat must be applied one at a time, in
// arrival order; turns for different chats may run in parallel. Chats
// sharing a stripe contend with each other, which is harmless.
func (s *SessionStore) LockTurn(chatID int64) func() {
	lock := &s.turnLocks[uint64(chatID)%turnStripes]
	lock.Lock()
	return lock.Unlock
}

// Get returns a copy of the session for a chat, if one exists.
func (s *SessionStore) Get(chatID int64) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[chatID]
	return sess, ok
}

// GetOrCreate returns the session for a chat, storing and returning a
// fresh one with no step set if the chat has none.
func (s *SessionStore) GetOrCreate(chatID int64) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[chatID]; ok {
		return sess
	}

	now := time.Now()
	sess := domain.Session{
		ChatID:    chatID,
		Step:      domain.StepNone,
		StartedAt: now,
		UpdatedAt: now,
	}
	s.sessions[chatID] = sess
	return sess
}

// Set stores a session snapshot and stamps its UpdatedAt time.
func (s *SessionStore) Set(sess domain.Session) {
	sess.UpdatedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ChatID] = sess
}

// Delete removes a chat's session. Deleting an absent session is a no-op.
func (s *SessionStore) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// Len returns the number of active sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// DeleteIdle removes every session whose last update predates cutoff
// and returns the affected chat IDs.
func (s *SessionStore) DeleteIdle(cutoff time.Time) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []int64
	for chatID, sess := range s.sessions {
		if sess.IdleSince(cutoff) {
			delete(s.sessions, chatID)
			expired = append(expired, chatID)
		}
	}
	return expired
}
