package shell

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pranavc2255/portfolio/internal/host"
	"github.com/pranavc2255/portfolio/internal/menu"
)

const (
	defaultSessionTTL  = 30 * time.Minute
	defaultSweepEvery  = time.Minute
	defaultMaxSessions = 10000
)

// SessionOptions configures a Sessions registry.
type SessionOptions struct {
	Shell       Options
	Document    host.Options
	TTL         time.Duration
	SweepEvery  time.Duration
	MaxSessions int
	Now         func() time.Time
}

type session struct {
	shell    *Shell
	lastSeen time.Time
}

// Sessions keeps one mounted shell per browser session. Idle sessions are
// unmounted by Sweep.
type Sessions struct {
	opts SessionOptions
	log  *zap.Logger

	mu    sync.Mutex
	items map[string]*session
}

// NewSessions returns an empty registry.
func NewSessions(opts SessionOptions) *Sessions {
	if opts.TTL <= 0 {
		opts.TTL = defaultSessionTTL
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = defaultSweepEvery
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Shell.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{opts: opts, log: log, items: map[string]*session{}}
}

// Acquire returns the shell for id, mounting a new one under a fresh id when
// id is unknown. The returned id is the one the client should keep.
func (s *Sessions) Acquire(id string) (*Shell, string) {
	now := s.opts.Now()

	s.mu.Lock()
	if sess, ok := s.items[id]; ok && id != "" {
		sess.lastSeen = now
		s.mu.Unlock()
		return sess.shell, id
	}
	var evicted *Shell
	if len(s.items) >= s.opts.MaxSessions {
		evicted = s.evictOldestLocked()
	}
	id = uuid.NewString()
	sh := Mount(host.NewDocument(s.opts.Document), s.opts.Shell)
	s.items[id] = &session{shell: sh, lastSeen: now}
	s.mu.Unlock()

	if evicted != nil {
		evicted.Unmount()
	}
	return sh, id
}

// Lookup returns the shell for id without creating one.
func (s *Sessions) Lookup(id string) (*Shell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.opts.Now()
	return sess.shell, true
}

func (s *Sessions) evictOldestLocked() *Shell {
	var (
		oldestID string
		oldest   *session
	)
	for id, sess := range s.items {
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, sess
		}
	}
	if oldest == nil {
		return nil
	}
	delete(s.items, oldestID)
	return oldest.shell
}

// Sweep unmounts sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Sessions) Sweep() int {
	cutoff := s.opts.Now().Add(-s.opts.TTL)

	s.mu.Lock()
	var stale []*Shell
	for id, sess := range s.items {
		if sess.lastSeen.Before(cutoff) {
			stale = append(stale, sess.shell)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, sh := range stale {
		sh.Unmount()
	}
	return len(stale)
}

// Run sweeps periodically until ctx is done, then unmounts everything.
func (s *Sessions) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Debug("swept idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Close unmounts every session.
func (s *Sessions) Close() {
	s.mu.Lock()
	all := make([]*Shell, 0, len(s.items))
	for id, sess := range s.items {
		all = append(all, sess.shell)
		delete(s.items, id)
	}
	s.mu.Unlock()

	for _, sh := range all {
		sh.Unmount()
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// OpenMenus returns the number of sessions whose panel is open.
func (s *Sessions) OpenMenus() int {
	s.mu.Lock()
	shells := make([]*Shell, 0, len(s.items))
	for _, sess := range s.items {
		shells = append(shells, sess.shell)
	}
	s.mu.Unlock()

	n := 0
	for _, sh := range shells {
		if sh.State() == menu.Open {
			n++
		}
	}
	return n
}
