package engine

import (
	"sync"

	"ai-traininglab-be/internal/entity"

	"github.com/google/uuid"
)

type threadKey struct {
	sessionId uuid.UUID
	side      string
}

// messageStore holds the ordered message sequence for every session
// thread. Order within a thread is strictly insertion order; no ordering
// relation exists between threads.
type messageStore struct {
	mu      sync.Mutex
	threads map[threadKey][]*entity.ChatMessage
}

func newMessageStore() *messageStore {
	return &messageStore{
		threads: make(map[threadKey][]*entity.ChatMessage),
	}
}

func (s *messageStore) Append(msg *entity.ChatMessage) {
	key := threadKey{sessionId: msg.ChatSessionId, side: msg.Side}
	s.mu.Lock()
	s.threads[key] = append(s.threads[key], msg)
	s.mu.Unlock()
}

// List returns a copy of the thread; callers never see later appends.
func (s *messageStore) List(sessionId uuid.UUID, side string) []*entity.ChatMessage {
	key := threadKey{sessionId: sessionId, side: side}
	s.mu.Lock()
	defer s.mu.Unlock()
	thread := s.threads[key]
	out := make([]*entity.ChatMessage, len(thread))
	copy(out, thread)
	return out
}

func (s *messageStore) Count(sessionId uuid.UUID, side string) int {
	key := threadKey{sessionId: sessionId, side: side}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.threads[key])
}

// DeleteSession drops every thread belonging to the session.
func (s *messageStore) DeleteSession(sessionId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.threads {
		if key.sessionId == sessionId {
			delete(s.threads, key)
		}
	}
}
