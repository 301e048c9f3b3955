package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/petbond/backend/internal/logging"
	"github.com/petbond/backend/internal/models"
	"github.com/petbond/backend/internal/repositories"
)

// FriendHandler provides friend-request listing and response endpoints.
type FriendHandler struct {
	Friends  FriendStore
	Sessions SessionManager
}

// List handles GET /api/v1/friends requests. The response groups pending
// requests addressed to the caller, pending requests the caller sent, and
// established friendships.
func (h FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := identify(w, r, h.Sessions)
	if !ok {
		return
	}

	if h.Friends == nil {
		logger.Error("friend store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend services unavailable"})
		return
	}

	received, err := h.Friends.ListPendingForReceiver(ctx, userID)
	if err != nil {
		logger.Error("list received requests failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load friend requests"})
		return
	}

	sent, err := h.Friends.ListPendingFromSender(ctx, userID)
	if err != nil {
		logger.Error("list sent requests failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load friend requests"})
		return
	}

	friends, err := h.Friends.ListFriends(ctx, userID)
	if err != nil {
		logger.Error("list friends failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load friends"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, friendListResponse{
		Received: requestViews(received),
		Sent:     requestViews(sent),
		Friends:  friendViews(friends),
	})
}

// Respond handles POST /api/v1/friends/respond requests. Only the receiver
// of a pending request may accept or reject it.
func (h FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
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

	if h.Friends == nil {
		logger.Error("friend store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend services unavailable"})
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid respond payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.RequestID = strings.TrimSpace(req.RequestID)
	req.Action = strings.TrimSpace(strings.ToLower(req.Action))
	if req.RequestID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "requestId is required"})
		return
	}

	var status string
	switch req.Action {
	case "accept":
		status = models.RequestStatusAccepted
	case "reject":
		status = models.RequestStatusRejected
	default:
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "action must be accept or reject"})
		return
	}

	request, err := h.Friends.FindRequest(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "friend request not found"})
			return
		}
		logger.Error("find request failed", "error", err, "requestId", req.RequestID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load friend request"})
		return
	}

	if request.ReceiverID != userID {
		logger.Warn("respond on foreign request", "requestId", req.RequestID, "userId", userID)
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the receiver may respond to a request"})
		return
	}

	if request.Status != models.RequestStatusPending {
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "friend request already resolved"})
		return
	}

	if err := h.Friends.UpdateStatus(ctx, req.RequestID, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "friend request not found"})
			return
		}
		logger.Error("update request failed", "error", err, "requestId", req.RequestID, "status", status)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update friend request"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": status})
}

type respondRequest struct {
	RequestID string `json:"requestId"`
	Action    string `json:"action"`
}

type friendListResponse struct {
	Received []requestView `json:"received"`
	Sent     []requestView `json:"sent"`
	Friends  []friendView  `json:"friends"`
}

type requestView struct {
	ID              string       `json:"id"`
	SenderID        string       `json:"senderId"`
	Sender          snapshotView `json:"sender"`
	ReceiverID      string       `json:"receiverId"`
	Receiver        snapshotView `json:"receiver"`
	Status          string       `json:"status"`
	MatchPercentage int          `json:"matchPercentage"`
	CreatedAt       time.Time    `json:"createdAt"`
}

type snapshotView struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PetImage string `json:"petImage,omitempty"`
	PetBreed string `json:"petBreed,omitempty"`
	PetAge   string `json:"petAge,omitempty"`
	PetType  string `json:"petType,omitempty"`
}

type friendView struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PetImage string `json:"petImage,omitempty"`
	PetBreed string `json:"petBreed,omitempty"`
	PetAge   string `json:"petAge,omitempty"`
	PetType  string `json:"petType,omitempty"`
}

func requestViews(requests []models.FriendRequest) []requestView {
	out := make([]requestView, 0, len(requests))
	for _, request := range requests {
		out = append(out, requestView{
			ID:              request.ID,
			SenderID:        request.SenderID,
			Sender:          snapshotPayload(request.Sender),
			ReceiverID:      request.ReceiverID,
			Receiver:        snapshotPayload(request.Receiver),
			Status:          request.Status,
			MatchPercentage: request.MatchPercentage,
			CreatedAt:       request.CreatedAt,
		})
	}
	return out
}

func snapshotPayload(snapshot models.ProfileSnapshot) snapshotView {
	return snapshotView{
		Name:     snapshot.Name,
		Email:    snapshot.Email,
		PetImage: snapshot.PetImage,
		PetBreed: snapshot.PetBreed,
		PetAge:   snapshot.PetAge,
		PetType:  snapshot.PetType,
	}
}

func friendViews(friends []models.Friend) []friendView {
	out := make([]friendView, 0, len(friends))
	for _, friend := range friends {
		out = append(out, friendView{
			UserID:   friend.UserID,
			Name:     friend.Name,
			Email:    friend.Email,
			PetImage: friend.PetImage,
			PetBreed: friend.PetBreed,
			PetAge:   friend.PetAge,
			PetType:  friend.PetType,
		})
	}
	return out
}
