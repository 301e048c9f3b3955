package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/petbond/backend/internal/auth"
	"github.com/petbond/backend/internal/models"
	"github.com/petbond/backend/internal/repositories"
)

type inMemoryFriendStore struct {
	requests map[string]models.FriendRequest
}

func newInMemoryFriendStore(requests ...models.FriendRequest) *inMemoryFriendStore {
	store := &inMemoryFriendStore{requests: make(map[string]models.FriendRequest)}
	for _, request := range requests {
		store.requests[request.ID] = request
	}
	return store
}

func (s *inMemoryFriendStore) FindRequest(_ context.Context, requestID string) (models.FriendRequest, error) {
	request, ok := s.requests[requestID]
	if !ok {
		return models.FriendRequest{}, repositories.ErrNotFound
	}
	return request, nil
}

func (s *inMemoryFriendStore) UpdateStatus(_ context.Context, requestID, status string) error {
	request, ok := s.requests[requestID]
	if !ok {
		return repositories.ErrNotFound
	}
	request.Status = status
	s.requests[requestID] = request
	return nil
}

func (s *inMemoryFriendStore) ListPendingForReceiver(_ context.Context, userID string) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, request := range s.requests {
		if request.ReceiverID == userID && request.Status == models.RequestStatusPending {
			out = append(out, request)
		}
	}
	return out, nil
}

func (s *inMemoryFriendStore) ListPendingFromSender(_ context.Context, userID string) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, request := range s.requests {
		if request.SenderID == userID && request.Status == models.RequestStatusPending {
			out = append(out, request)
		}
	}
	return out, nil
}

func (s *inMemoryFriendStore) ListFriends(_ context.Context, userID string) ([]models.Friend, error) {
	var out []models.Friend
	for _, request := range s.requests {
		if request.Status != models.RequestStatusAccepted {
			continue
		}
		switch userID {
		case request.SenderID:
			out = append(out, models.Friend{UserID: request.ReceiverID, Name: request.Receiver.Name, Email: request.Receiver.Email})
		case request.ReceiverID:
			out = append(out, models.Friend{UserID: request.SenderID, Name: request.Sender.Name, Email: request.Sender.Email})
		}
	}
	return out, nil
}

// authedRequest builds a request carrying a freshly issued bearer token.
func authedRequest(t *testing.T, manager *auth.Manager, userID, method, target string, body []byte) *http.Request {
	t.Helper()

	tokens, err := manager.Issue(context.Background(), userID)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	return req
}

func pendingRequest(id, senderID, receiverID string) models.FriendRequest {
	return models.FriendRequest{
		ID:         id,
		SenderID:   senderID,
		Sender:     models.ProfileSnapshot{Name: senderID + "-name", Email: senderID + "@example.com"},
		ReceiverID: receiverID,
		Receiver:   models.ProfileSnapshot{Name: receiverID + "-name", Email: receiverID + "@example.com"},
		Status:     models.RequestStatusPending,
		CreatedAt:  time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFriendHandlerList(t *testing.T) {
	manager := newTestManager()

	accepted := pendingRequest("req-3", "user-c", "user-a")
	accepted.Status = models.RequestStatusAccepted

	store := newInMemoryFriendStore(
		pendingRequest("req-1", "user-b", "user-a"),
		pendingRequest("req-2", "user-a", "user-d"),
		accepted,
	)
	handler := FriendHandler{Friends: store, Sessions: manager}

	req := authedRequest(t, manager, "user-a", http.MethodGet, "/api/v1/friends", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp friendListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Received) != 1 || resp.Received[0].ID != "req-1" {
		t.Fatalf("unexpected received requests: %+v", resp.Received)
	}
	if len(resp.Sent) != 1 || resp.Sent[0].ID != "req-2" {
		t.Fatalf("unexpected sent requests: %+v", resp.Sent)
	}
	if len(resp.Friends) != 1 || resp.Friends[0].UserID != "user-c" {
		t.Fatalf("unexpected friends: %+v", resp.Friends)
	}
}

func TestFriendHandlerListUnauthorized(t *testing.T) {
	handler := FriendHandler{Friends: newInMemoryFriendStore(), Sessions: newTestManager()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/friends", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestFriendHandlerRespond(t *testing.T) {
	cases := []struct {
		name       string
		action     string
		wantStatus string
	}{
		{name: "accept", action: "accept", wantStatus: models.RequestStatusAccepted},
		{name: "reject", action: "reject", wantStatus: models.RequestStatusRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			manager := newTestManager()
			store := newInMemoryFriendStore(pendingRequest("req-1", "user-b", "user-a"))
			handler := FriendHandler{Friends: store, Sessions: manager}

			body, err := json.Marshal(respondRequest{RequestID: "req-1", Action: tc.action})
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			req := authedRequest(t, manager, "user-a", http.MethodPost, "/api/v1/friends/respond", body)
			rec := httptest.NewRecorder()

			handler.Respond(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
			}

			updated, err := store.FindRequest(context.Background(), "req-1")
			if err != nil {
				t.Fatalf("find request: %v", err)
			}
			if updated.Status != tc.wantStatus {
				t.Fatalf("expected status %s got %s", tc.wantStatus, updated.Status)
			}
		})
	}
}

func TestFriendHandlerRespondOnlyReceiver(t *testing.T) {
	manager := newTestManager()
	store := newInMemoryFriendStore(pendingRequest("req-1", "user-b", "user-a"))
	handler := FriendHandler{Friends: store, Sessions: manager}

	body, err := json.Marshal(respondRequest{RequestID: "req-1", Action: "accept"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// The sender must not be able to accept their own request.
	req := authedRequest(t, manager, "user-b", http.MethodPost, "/api/v1/friends/respond", body)
	rec := httptest.NewRecorder()

	handler.Respond(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}

	unchanged, err := store.FindRequest(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("find request: %v", err)
	}
	if unchanged.Status != models.RequestStatusPending {
		t.Fatalf("expected request untouched, got %s", unchanged.Status)
	}
}

func TestFriendHandlerRespondValidation(t *testing.T) {
	manager := newTestManager()

	resolved := pendingRequest("req-2", "user-b", "user-a")
	resolved.Status = models.RequestStatusAccepted
	store := newInMemoryFriendStore(pendingRequest("req-1", "user-b", "user-a"), resolved)
	handler := FriendHandler{Friends: store, Sessions: manager}

	cases := []struct {
		name string
		req  respondRequest
		want int
	}{
		{name: "unknown action", req: respondRequest{RequestID: "req-1", Action: "maybe"}, want: http.StatusBadRequest},
		{name: "missing id", req: respondRequest{Action: "accept"}, want: http.StatusBadRequest},
		{name: "missing request", req: respondRequest{RequestID: "req-404", Action: "accept"}, want: http.StatusNotFound},
		{name: "already resolved", req: respondRequest{RequestID: "req-2", Action: "reject"}, want: http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := json.Marshal(tc.req)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			req := authedRequest(t, manager, "user-a", http.MethodPost, "/api/v1/friends/respond", body)
			rec := httptest.NewRecorder()

			handler.Respond(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected status %d got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}
