// qspace.go
package qreg

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
)

const (
	// DefaultSession is the register used by clients that do not name one.
	DefaultSession = "default"
	// NewSessionID asks the space to mint a fresh session.
	NewSessionID = "new"

	// DefaultMaxSessions bounds a space created without WithMaxSessions.
	DefaultMaxSessions = 10000

	maxSessionIDLength = 128
)

/*
Transition records one operation applied to a session's register: the
reconciled input, the output, and why the register did or did not change.
*/
type Transition struct {
	ID        string    `json:"id"`
	Sequence  uint64    `json:"sequence"`
	Action    Action    `json:"action"`
	From      Symbols   `json:"from"`
	To        Symbols   `json:"to"`
	Vector    Vector    `json:"vector"`
	Cause     Cause     `json:"cause"`
	Timestamp time.Time `json:"timestamp"`
}

/*
Session owns one register. Every read-reconcile-write sequence runs under the
session lock, so concurrent requests against the same session are applied
one after the other instead of overwriting each other.
*/
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	register     Register
	lastUsed     time.Time
	ledger       []Transition
	sequence     uint64
	historyLimit int
}

func newSession(id string, historyLimit int) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		register:     NewRegister(),
		lastUsed:     now,
		historyLimit: historyLimit,
	}
}

/*
Transact hands the stored register to fn and persists the outcome fn
returns. from is the reconciled state the operation started from and is
what the ledger records as the transition's input.
*/
func (s *Session) Transact(action Action, fn func(stored Register) (from Register, out Outcome)) Register {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, out := fn(s.register)
	s.register = out.Register
	s.lastUsed = time.Now()
	s.record(action, from, out)

	return out.Register
}

// Snapshot returns the stored register without touching it.
func (s *Session) Snapshot() Register {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register
}

// History returns the transitions recorded after the given sequence number.
func (s *Session) History(since uint64) []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Transition, 0, len(s.ledger))
	for _, t := range s.ledger {
		if t.Sequence > since {
			out = append(out, t)
		}
	}
	return out
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// record appends to the ledger, dropping the oldest entries past the limit.
// Caller holds s.mu.
func (s *Session) record(action Action, from Register, out Outcome) {
	if s.historyLimit <= 0 {
		return
	}

	s.sequence++
	s.ledger = append(s.ledger, Transition{
		ID:        uuid.NewString(),
		Sequence:  s.sequence,
		Action:    action,
		From:      from.Symbols,
		To:        out.Register.Symbols,
		Vector:    out.Register.Vector,
		Cause:     out.Cause,
		Timestamp: time.Now(),
	})

	if over := len(s.ledger) - s.historyLimit; over > 0 {
		s.ledger = append(s.ledger[:0:0], s.ledger[over:]...)
	}
}

/*
Space holds every live session. Idle sessions other than the default one
are evicted by a background sweep once they exceed the TTL.
*/
type Space struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl             time.Duration
	cleanupInterval time.Duration
	historyLimit    int
	maxSessions     int

	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// SpaceOption configures a Space.
type SpaceOption func(*Space)

/*
WithMaxSessions bounds the number of live sessions, the default one
included. Once full, the least recently used session is evicted to make
room. The default session is never evicted, so a cap of one still admits
a single named session. A non-positive n keeps DefaultMaxSessions.
*/
func WithMaxSessions(n int) SpaceOption {
	return func(sp *Space) {
		if n > 0 {
			sp.maxSessions = n
		}
	}
}

/*
NewSpace creates a space with the default session already present. A
non-positive ttl disables expiry and the sweep goroutine.
*/
func NewSpace(ttl, cleanupInterval time.Duration, historyLimit int, opts ...SpaceOption) *Space {
	sp := &Space{
		sessions:        make(map[string]*Session),
		ttl:             ttl,
		cleanupInterval: cleanupInterval,
		historyLimit:    historyLimit,
		maxSessions:     DefaultMaxSessions,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(sp)
	}
	sp.sessions[DefaultSession] = newSession(DefaultSession, historyLimit)

	if ttl > 0 {
		if sp.cleanupInterval <= 0 {
			sp.cleanupInterval = time.Minute
		}
		sp.wg.Add(1)
		go sp.runCleanup()
	}

	return sp
}

/*
Session resolves a client-supplied session ID. An empty ID selects the
default session, NewSessionID mints a new one, and any other ID is created
on first use, subject to the space's session cap.
*/
func (sp *Space) Session(id string) *Session {
	id = strings.TrimSpace(id)
	switch {
	case id == "" || len(id) > maxSessionIDLength:
		id = DefaultSession
	case strings.EqualFold(id, NewSessionID):
		return sp.Create()
	}

	sp.mu.RLock()
	s, ok := sp.sessions[id]
	sp.mu.RUnlock()
	if ok {
		return s
	}

	sp.mu.Lock()
	defer sp.mu.Unlock()
	if s, ok = sp.sessions[id]; ok {
		return s
	}
	s = newSession(id, sp.historyLimit)
	sp.admit(s)
	return s
}

// Create registers a session under a fresh UUID.
func (sp *Space) Create() *Session {
	s := newSession(uuid.NewString(), sp.historyLimit)

	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.admit(s)
	return s
}

// admit stores s, evicting the least recently used session when full.
// Caller holds sp.mu for writing.
func (sp *Space) admit(s *Session) {
	for len(sp.sessions) >= sp.maxSessions {
		if !sp.evictOldest() {
			break
		}
	}
	sp.sessions[s.ID] = s
	errnie.Info("Session - created %s", s.ID)
}

// evictOldest drops the least recently used session other than the default.
// Caller holds sp.mu for writing.
func (sp *Space) evictOldest() bool {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, s := range sp.sessions {
		if id == DefaultSession {
			continue
		}
		if used := s.idleSince(); oldestID == "" || used.Before(oldest) {
			oldestID, oldest = id, used
		}
	}
	if oldestID == "" {
		return false
	}
	delete(sp.sessions, oldestID)
	errnie.Info("Session - evicted %s", oldestID)
	return true
}

// Lookup returns an existing session without creating one.
func (sp *Space) Lookup(id string) (*Session, bool) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	s, ok := sp.sessions[id]
	return s, ok
}

func (sp *Space) Len() int {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return len(sp.sessions)
}

// Close stops the sweep goroutine. Sessions stay readable.
func (sp *Space) Close() {
	sp.closeOnce.Do(func() {
		close(sp.done)
	})
	sp.wg.Wait()
}

func (sp *Space) runCleanup() {
	defer sp.wg.Done()
	ticker := time.NewTicker(sp.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sp.done:
			return
		case <-ticker.C:
			sp.cleanup(time.Now())
		}
	}
}

// cleanup evicts sessions idle for longer than the TTL as of now.
func (sp *Space) cleanup(now time.Time) int {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	evicted := 0
	for id, s := range sp.sessions {
		if id == DefaultSession {
			continue
		}
		if now.Sub(s.idleSince()) > sp.ttl {
			delete(sp.sessions, id)
			evicted++
			errnie.Info("Session - expired %s", id)
		}
	}
	return evicted
}
