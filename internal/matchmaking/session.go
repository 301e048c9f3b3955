package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petbond/backend/internal/logging"
	"github.com/petbond/backend/internal/models"
	"github.com/petbond/backend/internal/repositories"
)

// State identifies where a matchmaking session is in its lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateLoading     State = "loading"
	StateReady       State = "ready"
	StateMatching    State = "matching"
	StatePresenting  State = "presenting"
	StateRequestSent State = "request_sent"
	StateExhausted   State = "exhausted"
	StateError       State = "error"
)

var (
	// ErrProfileNotFound indicates the session owner has no stored profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrAlreadyRequested indicates a request for this pair already exists.
	// It is non-fatal: the session stays in its current state.
	ErrAlreadyRequested = errors.New("friend request already sent")
	// ErrInvalidState indicates the requested operation is not legal from the
	// session's current state.
	ErrInvalidState = errors.New("operation not allowed in current session state")
)

// ProfileSource provides the session owner's profile and the candidate pool.
type ProfileSource interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	ListProfiles(ctx context.Context) ([]models.User, error)
}

// RequestStore provides the friend-request operations the connect action
// needs. The RequestExists pre-check and the subsequent CreateRequest are
// deliberately two calls; the window between them is accepted behavior.
type RequestStore interface {
	RequestExists(ctx context.Context, senderID, receiverID string) (bool, error)
	CreateRequest(ctx context.Context, request models.FriendRequest) error
}

// Scorer is the external compatibility scoring service.
type Scorer interface {
	Score(ctx context.Context, image1, image2 string) (int, error)
}

// Config tunes a session's behavior. Zero values fall back to defaults.
type Config struct {
	// ConnectDelay is the pause after a friend request is sent before
	// candidate selection resumes.
	ConnectDelay time.Duration
	// SessionTTL bounds how long the registry keeps a session no longer
	// being touched. Expired sessions are dropped on the next access.
	SessionTTL time.Duration
	// RandInt returns a uniform value in [0, n). Injectable for tests.
	RandInt func(n int) int
	NowFunc func() time.Time
}

// Match is a presented candidate together with its compatibility score.
type Match struct {
	Candidate  models.User
	Percentage int
}

// Session is one matchmaking run for a single user. It owns its candidate
// pool and seen set; nothing outside the session mutates them. The seen set
// only ever grows for the lifetime of the session.
type Session struct {
	userID   string
	profiles ProfileSource
	requests RequestStore
	scorer   Scorer
	cfg      Config

	mu      sync.Mutex
	state   State
	user    models.User
	pool    []models.User
	seen    map[string]struct{}
	current *Match
	lastErr error
}

// NewSession constructs an idle session for the provided user.
func NewSession(profiles ProfileSource, requests RequestStore, scorer Scorer, userID string, cfg Config) *Session {
	if cfg.RandInt == nil {
		cfg.RandInt = rand.Intn
	}
	if cfg.NowFunc == nil {
		cfg.NowFunc = func() time.Time { return time.Now().UTC() }
	}
	return &Session{
		userID:   userID,
		profiles: profiles,
		requests: requests,
		scorer:   scorer,
		cfg:      cfg,
		state:    StateIdle,
		seen:     make(map[string]struct{}),
	}
}

// Start loads the session owner's profile and the candidate pool, issuing
// both fetches concurrently and joining them before leaving the loading
// state. It is also the retry path out of the error state.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle && s.state != StateError {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.state)
	}

	s.state = StateLoading
	s.current = nil
	s.lastErr = nil

	ctx, span := logging.StartSpan(ctx, "matchmaking.load")
	defer span.End()

	type userResult struct {
		user models.User
		err  error
	}
	type poolResult struct {
		pool []models.User
		err  error
	}

	userCh := make(chan userResult, 1)
	poolCh := make(chan poolResult, 1)

	go func() {
		user, err := s.profiles.FindByID(ctx, s.userID)
		userCh <- userResult{user: user, err: err}
	}()
	go func() {
		pool, err := s.profiles.ListProfiles(ctx)
		poolCh <- poolResult{pool: pool, err: err}
	}()

	ur := <-userCh
	pr := <-poolCh

	if ur.err != nil {
		if errors.Is(ur.err, repositories.ErrNotFound) {
			return s.fail(fmt.Errorf("%w: %s", ErrProfileNotFound, s.userID))
		}
		return s.fail(fmt.Errorf("load profile: %w", ur.err))
	}
	if pr.err != nil {
		return s.fail(fmt.Errorf("load candidates: %w", pr.err))
	}

	s.user = ur.user
	s.pool = pr.pool
	s.state = StateReady
	return nil
}

// Next begins (or resumes) candidate selection from the ready state.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.state)
	}

	return s.advance(ctx)
}

// Skip discards the presented candidate, marks it seen and selects another.
func (s *Session) Skip(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePresenting || s.current == nil {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.state)
	}

	s.seen[s.current.Candidate.ID] = struct{}{}
	s.current = nil
	return s.advance(ctx)
}

// Connect sends a friend request to the presented candidate, embedding both
// parties' profile snapshots and the match score. When a request for the
// pair already exists the session stays in presenting and ErrAlreadyRequested
// is returned as a notice, not a failure. After a successful send the session
// waits the configured delay and resumes selection.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePresenting || s.current == nil {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.state)
	}

	candidate := s.current.Candidate

	exists, err := s.requests.RequestExists(ctx, s.user.ID, candidate.ID)
	if err != nil {
		return s.fail(fmt.Errorf("check existing request: %w", err))
	}
	if exists {
		return ErrAlreadyRequested
	}

	request := models.FriendRequest{
		ID:              uuid.NewString(),
		SenderID:        s.user.ID,
		Sender:          snapshotOf(s.user),
		ReceiverID:      candidate.ID,
		Receiver:        snapshotOf(candidate),
		Status:          models.RequestStatusPending,
		MatchPercentage: s.current.Percentage,
		CreatedAt:       s.cfg.NowFunc(),
	}

	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return s.fail(fmt.Errorf("create friend request: %w", err))
	}

	s.seen[candidate.ID] = struct{}{}
	s.current = nil
	s.state = StateRequestSent

	if s.cfg.ConnectDelay > 0 {
		// Wait without the lock so request_sent stays observable through
		// State and Current for the duration of the pause.
		s.mu.Unlock()
		timer := time.NewTimer(s.cfg.ConnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.mu.Lock()
			return s.fail(ctx.Err())
		case <-timer.C:
		}
		s.mu.Lock()
		if s.state != StateRequestSent {
			return nil
		}
	}

	return s.advance(ctx)
}

// advance picks the next candidate and scores it. Callers hold the lock.
func (s *Session) advance(ctx context.Context) error {
	s.state = StateMatching

	eligible := s.eligible()
	if len(eligible) == 0 {
		s.state = StateExhausted
		return nil
	}

	candidate := eligible[s.cfg.RandInt(len(eligible))]

	score, err := s.scorer.Score(ctx, s.user.Pet.ImageURL, candidate.Pet.ImageURL)
	if err != nil {
		return s.fail(fmt.Errorf("score candidate: %w", err))
	}

	s.current = &Match{Candidate: candidate, Percentage: score}
	s.state = StatePresenting
	return nil
}

// eligible is the candidate pool minus the session owner and every candidate
// already seen this session.
func (s *Session) eligible() []models.User {
	var out []models.User
	for _, candidate := range s.pool {
		if candidate.ID == s.user.ID {
			continue
		}
		if _, ok := s.seen[candidate.ID]; ok {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

func (s *Session) fail(err error) error {
	s.state = StateError
	s.lastErr = err
	return err
}

// State reports the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the presented match, if any.
func (s *Session) Current() (Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Match{}, false
	}
	return *s.current, true
}

// Err returns the failure that moved the session into the error state.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func snapshotOf(user models.User) models.ProfileSnapshot {
	return models.ProfileSnapshot{
		Name:     user.Name,
		Email:    user.Email,
		PetImage: user.Pet.ImageURL,
		PetBreed: user.Pet.Breed,
		PetAge:   user.Pet.Age,
		PetType:  user.Pet.Type,
	}
}
