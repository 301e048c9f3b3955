package handlers

import (
	"errors"
	"net/http"

	"github.com/petbond/backend/internal/logging"
	"github.com/petbond/backend/internal/matchmaking"
	"github.com/petbond/backend/internal/matchscore"
)

// MatchmakingHandler exposes the candidate matching workflow over HTTP. Every
// endpoint operates on the caller's own session, resolved from the bearer
// token.
type MatchmakingHandler struct {
	Sessions    SessionManager
	Matchmaking Matchmaker
}

// Start handles POST /api/v1/matchmaking/start. It creates a fresh session
// for the caller, replacing any previous one, and loads the candidate pool.
func (h MatchmakingHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := identify(w, r, h.Sessions)
	if !ok {
		return
	}

	if h.Matchmaking == nil {
		logger.Error("matchmaker unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "matchmaking unavailable"})
		return
	}

	session, err := h.Matchmaking.Start(ctx, userID)
	if err != nil {
		if errors.Is(err, matchmaking.ErrProfileNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "profile not found"})
			return
		}
		logger.Error("matchmaking start failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to start matchmaking"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, sessionPayload(session))
}

// State handles GET /api/v1/matchmaking. It reports the caller's session
// state and the presented candidate, if any.
func (h MatchmakingHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	userID, ok := identify(w, r, h.Sessions)
	if !ok {
		return
	}

	session, ok := h.session(w, r, userID)
	if !ok {
		return
	}

	respondJSON(ctx, w, http.StatusOK, sessionPayload(session))
}

// Next handles POST /api/v1/matchmaking/next. It begins candidate selection
// on a freshly loaded session.
func (h MatchmakingHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(session *matchmaking.Session) error {
		return session.Next(r.Context())
	})
}

// Skip handles POST /api/v1/matchmaking/skip. The presented candidate is
// discarded for the rest of the session.
func (h MatchmakingHandler) Skip(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(session *matchmaking.Session) error {
		return session.Skip(r.Context())
	})
}

// Connect handles POST /api/v1/matchmaking/connect. It sends a friend
// request to the presented candidate and resumes selection.
func (h MatchmakingHandler) Connect(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(session *matchmaking.Session) error {
		return session.Connect(r.Context())
	})
}

func (h MatchmakingHandler) act(w http.ResponseWriter, r *http.Request, op func(*matchmaking.Session) error) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := identify(w, r, h.Sessions)
	if !ok {
		return
	}

	session, ok := h.session(w, r, userID)
	if !ok {
		return
	}

	if err := op(session); err != nil {
		switch {
		case errors.Is(err, matchmaking.ErrAlreadyRequested):
			// Non-fatal: the presentation is unchanged.
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "friend request already sent"})
		case errors.Is(err, matchmaking.ErrInvalidState):
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, matchscore.ErrScorerUnavailable), errors.Is(err, matchscore.ErrInvalidScore):
			logger.Error("scoring service failed", "error", err, "userId", userID)
			respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "matching service unavailable, retry via start"})
		default:
			logger.Error("matchmaking operation failed", "error", err, "userId", userID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "matchmaking operation failed"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, sessionPayload(session))
}

func (h MatchmakingHandler) session(w http.ResponseWriter, r *http.Request, userID string) (*matchmaking.Session, bool) {
	ctx := r.Context()

	if h.Matchmaking == nil {
		logging.FromContext(ctx).Error("matchmaker unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "matchmaking unavailable"})
		return nil, false
	}

	session, err := h.Matchmaking.Session(userID)
	if err != nil {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "no active matchmaking session, call start first"})
		return nil, false
	}
	return session, true
}

type sessionView struct {
	State string     `json:"state"`
	Match *matchView `json:"match,omitempty"`
	Error string     `json:"error,omitempty"`
}

type matchView struct {
	Candidate       candidateView `json:"candidate"`
	MatchPercentage int           `json:"matchPercentage"`
}

type candidateView struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Pet  petView `json:"pet"`
}

func sessionPayload(session *matchmaking.Session) sessionView {
	view := sessionView{State: string(session.State())}

	if match, ok := session.Current(); ok {
		view.Match = &matchView{
			Candidate: candidateView{
				ID:   match.Candidate.ID,
				Name: match.Candidate.Name,
				Pet: petView{
					Name:     match.Candidate.Pet.Name,
					Type:     match.Candidate.Pet.Type,
					Breed:    match.Candidate.Pet.Breed,
					Age:      match.Candidate.Pet.Age,
					Color:    match.Candidate.Pet.Color,
					BirdType: match.Candidate.Pet.BirdType,
					ImageURL: match.Candidate.Pet.ImageURL,
				},
			},
			MatchPercentage: match.Percentage,
		}
	}

	if err := session.Err(); err != nil {
		view.Error = err.Error()
	}

	return view
}
