// Package convstore holds the process-lifetime conversation map. Conversations
// are never persisted; an idle conversation is evicted wholesale and the next
// message under the same key starts over.
package convstore

import (
	"sync"
	"time"

	"vendebot/internal/domain"
)

// Store maps (customer phone, business) keys to live conversations. Acquire
// hands out the conversation with its per-key lock held, so a whole
// message-handling pass, including the external calls inside it, is
// serialized against other messages for the same key.
type Store struct {
	mu        sync.Mutex
	entries   map[string]*entry
	idleAfter time.Duration
	now       func() time.Time
}

type entry struct {
	mu   sync.Mutex
	conv *domain.Conversation
}

// New builds a Store evicting conversations idle for longer than idleAfter.
func New(idleAfter time.Duration) *Store {
	return &Store{
		entries:   make(map[string]*entry),
		idleAfter: idleAfter,
		now:       time.Now,
	}
}

func key(phone, businessID string) string {
	return phone + ":" + businessID
}

// Acquire returns the conversation for the key, creating a fresh one when
// absent, with its lock held. The caller must invoke release when done.
//
// An entry can be evicted while a caller is queued on its lock, and eviction
// may even happen under that very lock (a cancel mid-handling). After taking
// the entry lock the map is re-checked: a stale entry is abandoned and the
// acquire starts over, so no caller ever proceeds on an evicted conversation.
func (s *Store) Acquire(phone, businessID string) (conv *domain.Conversation, release func(), created bool) {
	k := key(phone, businessID)
	for {
		s.mu.Lock()
		e, ok := s.entries[k]
		if !ok {
			e = &entry{conv: domain.NewConversation(phone, businessID, s.now())}
			s.entries[k] = e
		}
		s.mu.Unlock()

		e.mu.Lock()

		s.mu.Lock()
		current := s.entries[k] == e
		s.mu.Unlock()
		if current {
			return e.conv, e.mu.Unlock, !ok
		}
		e.mu.Unlock()
	}
}

// ForEach visits every live conversation with its lock held. Entries busy in
// a message-handling pass are skipped; they are active by definition.
func (s *Store) ForEach(fn func(conv *domain.Conversation)) {
	s.mu.Lock()
	snapshot := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		snapshot = append(snapshot, e)
	}
	s.mu.Unlock()

	for _, e := range snapshot {
		if !e.mu.TryLock() {
			continue
		}
		fn(e.conv)
		e.mu.Unlock()
	}
}

// Evict drops the conversation for the key, if any. It is safe to call while
// holding the conversation's own lock; callers already queued on that lock
// restart on a fresh conversation.
func (s *Store) Evict(phone, businessID string) {
	s.mu.Lock()
	delete(s.entries, key(phone, businessID))
	s.mu.Unlock()
}

// Sweep evicts conversations idle beyond the threshold and returns how many
// were dropped. Conversations mid-handling hold their entry lock and are
// skipped.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.idleAfter)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for k, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.conv.LastActivity.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.entries, k)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of live conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunSweeper periodically sweeps until stop is closed.
func (s *Store) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-stop:
			return
		}
	}
}
