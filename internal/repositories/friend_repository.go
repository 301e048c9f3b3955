package repositories

import (
	"context"

	"github.com/petbond/backend/internal/models"
)

// FriendRepository defines data access for friend requests and the friend
// relationships accepted requests turn into.
type FriendRepository interface {
	CreateRequest(ctx context.Context, request models.FriendRequest) error
	// RequestExists reports whether any request, resolved or not, exists for
	// the ordered (sender, receiver) pair. Callers use it as a pre-check
	// before CreateRequest; the check-then-create sequence is not atomic.
	RequestExists(ctx context.Context, senderID, receiverID string) (bool, error)
	FindRequest(ctx context.Context, requestID string) (models.FriendRequest, error)
	UpdateStatus(ctx context.Context, requestID, status string) error
	ListPendingForReceiver(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListPendingFromSender(ctx context.Context, userID string) ([]models.FriendRequest, error)
	// ListFriends returns the other party of every accepted request involving
	// the user, built from the snapshots stored on those requests.
	ListFriends(ctx context.Context, userID string) ([]models.Friend, error)
}
