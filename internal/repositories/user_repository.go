package repositories

import (
	"context"

	"github.com/petbond/backend/internal/models"
)

// UserRepository defines the data access contract for user profiles.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	// ListProfiles returns every profile. The matchmaking candidate pool is
	// small enough that no pagination is offered.
	ListProfiles(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user models.User) error
}
