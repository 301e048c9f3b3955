package matchmaking

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSession indicates the user has not started a matchmaking session.
var ErrNoSession = errors.New("no active matchmaking session")

const defaultSessionTTL = 30 * time.Minute

type sessionEntry struct {
	session  *Session
	lastSeen time.Time
}

// Registry tracks the active session per user. Starting a session replaces
// any previous one, so repeated runs are independent of each other. Entries
// untouched for the configured TTL are dropped on the next access so the map
// does not accumulate sessions for users who stopped matching.
type Registry struct {
	profiles ProfileSource
	requests RequestStore
	scorer   Scorer
	cfg      Config
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewRegistry constructs a session registry sharing the provided
// collaborators across sessions.
func NewRegistry(profiles ProfileSource, requests RequestStore, scorer Scorer, cfg Config) *Registry {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	now := cfg.NowFunc
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Registry{
		profiles: profiles,
		requests: requests,
		scorer:   scorer,
		cfg:      cfg,
		ttl:      ttl,
		now:      now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Start creates a fresh session for the user, replacing any prior one, and
// runs its initial load.
func (r *Registry) Start(ctx context.Context, userID string) (*Session, error) {
	session := NewSession(r.profiles, r.requests, r.scorer, userID, r.cfg)

	now := r.now()
	r.mu.Lock()
	r.gcLocked(now)
	r.sessions[userID] = &sessionEntry{session: session, lastSeen: now}
	r.mu.Unlock()

	if err := session.Start(ctx); err != nil {
		return session, err
	}
	return session, nil
}

// Session returns the user's active session and refreshes its expiry.
func (r *Registry) Session(userID string) (*Session, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.gcLocked(now)

	entry, ok := r.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	entry.lastSeen = now
	return entry.session, nil
}

func (r *Registry) gcLocked(now time.Time) {
	for userID, entry := range r.sessions {
		if now.Sub(entry.lastSeen) > r.ttl {
			delete(r.sessions, userID)
		}
	}
}
