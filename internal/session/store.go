package session

import (
	"container/list"
	"log"
	"sync"
	"time"
)

// Default bounds for the session store. All overridable via Config.
const (
	DefaultMaxSessions     = 10000
	DefaultTTL             = 10 * time.Minute
	DefaultCleanupInterval = 2 * time.Minute
)

// Config holds the store bounds.
type Config struct {
	MaxSessions     int
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Stats provides session store statistics (for monitoring).
type Stats struct {
	Live     int `json:"live_sessions"`
	Capacity int `json:"capacity"`
	Evicted  int `json:"evicted_total"`
	Expired  int `json:"expired_total"`
}

// Store is a bounded, expiring session store safe for concurrent use.
// Internally a map plus a recency list: front = most recently used.
// No operation fails — absence is nil/no-op, so a lost session degrades
// to "start a new dialog" instead of breaking the gateway response path.
type Store struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	recency *list.List // of *Session
	cfg     Config

	evicted int
	expired int

	stopOnce sync.Once
	stop     chan struct{}
}

// NewStore creates a session store. Zero-valued config fields fall back
// to the defaults above.
func NewStore(cfg Config) *Store {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}

	return &Store{
		entries: make(map[string]*list.Element),
		recency: list.New(),
		cfg:     cfg,
		stop:    make(chan struct{}),
	}
}

// Get returns the session for sessionID, or nil if absent or older than
// the TTL (expired entries are evicted as a side effect). On success the
// recency order, last-access time and access counter are refreshed.
func (s *Store) Get(sessionID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, exists := s.entries[sessionID]
	if !exists {
		return nil
	}

	sess := elem.Value.(*Session)
	if time.Since(sess.LastAccessedAt) > s.cfg.TTL {
		s.removeLocked(sessionID, elem)
		s.expired++
		return nil
	}

	sess.LastAccessedAt = time.Now()
	sess.AccessCount++
	s.recency.MoveToFront(elem)

	return sess.Clone()
}

// Set inserts or replaces the session. If the store is at capacity and
// sessionID is new, the least-recently-used entry is evicted first.
func (s *Store) Set(sessionID string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(sessionID, sess)
}

// Update merges stage and fields into the existing session (or a fresh
// one if absent/expired) and writes it back.
func (s *Store) Update(sessionID, phone string, stage Stage, fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sess *Session
	if elem, exists := s.entries[sessionID]; exists {
		current := elem.Value.(*Session)
		if time.Since(current.LastAccessedAt) <= s.cfg.TTL {
			sess = current.Clone()
		}
	}
	if sess == nil {
		sess = New(sessionID, phone, stage)
	}

	sess.Phone = phone
	sess.Stage = stage
	for k, v := range fields {
		sess.Fields[k] = v
	}
	sess.LastAccessedAt = time.Now()

	s.setLocked(sessionID, sess)
}

// Delete removes the session immediately; used on dialog termination.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, exists := s.entries[sessionID]; exists {
		s.removeLocked(sessionID, elem)
	}
}

// Cleanup scans all entries and deletes any whose age exceeds the TTL.
// Returns the number of sessions removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, elem := range s.entries {
		sess := elem.Value.(*Session)
		if time.Since(sess.LastAccessedAt) > s.cfg.TTL {
			s.removeLocked(id, elem)
			s.expired++
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries (including any not yet swept).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// GetStats returns current store statistics.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Live:     len(s.entries),
		Capacity: s.cfg.MaxSessions,
		Evicted:  s.evicted,
		Expired:  s.expired,
	}
}

// Start launches the periodic cleanup sweep. The process owns the ticker
// and cancels it through Stop at shutdown.
func (s *Store) Start() {
	go func() {
		ticker := time.NewTicker(s.cfg.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := s.Cleanup(); n > 0 {
					log.Printf("🧹 Session cleanup removed %d expired sessions", n)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop cancels the cleanup sweep. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *Store) setLocked(sessionID string, sess *Session) {
	stored := sess.Clone()

	if elem, exists := s.entries[sessionID]; exists {
		elem.Value = stored
		s.recency.MoveToFront(elem)
		return
	}

	if len(s.entries) >= s.cfg.MaxSessions {
		if oldest := s.recency.Back(); oldest != nil {
			victim := oldest.Value.(*Session)
			s.removeLocked(victim.SessionID, oldest)
			s.evicted++
		}
	}

	s.entries[sessionID] = s.recency.PushFront(stored)
}

func (s *Store) removeLocked(sessionID string, elem *list.Element) {
	s.recency.Remove(elem)
	delete(s.entries, sessionID)
}
