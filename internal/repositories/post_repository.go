package repositories

import (
	"context"

	"github.com/petbond/backend/internal/models"
)

// PostRepository exposes data access for the community feed.
type PostRepository interface {
	Create(ctx context.Context, post models.Post) error
	// List returns posts ordered by creation time, newest first.
	List(ctx context.Context) ([]models.Post, error)
}
