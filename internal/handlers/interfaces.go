package handlers

import (
	"context"
	"io"

	"github.com/petbond/backend/internal/matchmaking"
	"github.com/petbond/backend/internal/models"
)

// UserStore captures the persistence operations required by the auth and
// post handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
}

// SessionManager issues, refreshes and resolves authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Identify(ctx context.Context, accessToken string) (string, error)
}

// FriendStore captures the operations required by the friend handlers.
type FriendStore interface {
	FindRequest(ctx context.Context, requestID string) (models.FriendRequest, error)
	UpdateStatus(ctx context.Context, requestID, status string) error
	ListPendingForReceiver(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListPendingFromSender(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListFriends(ctx context.Context, userID string) ([]models.Friend, error)
}

// PostStore captures persistence for the community feed.
type PostStore interface {
	Create(ctx context.Context, post models.Post) error
	List(ctx context.Context) ([]models.Post, error)
}

// ImageStorage persists uploaded pet images and returns their public location.
type ImageStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Matchmaker manages per-user matchmaking sessions.
type Matchmaker interface {
	Start(ctx context.Context, userID string) (*matchmaking.Session, error)
	Session(userID string) (*matchmaking.Session, error)
}
