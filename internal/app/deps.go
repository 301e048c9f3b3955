package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/petbond/backend/internal/auth"
	"github.com/petbond/backend/internal/config"
	"github.com/petbond/backend/internal/db"
	"github.com/petbond/backend/internal/handlers"
	"github.com/petbond/backend/internal/matchmaking"
	"github.com/petbond/backend/internal/matchscore"
	"github.com/petbond/backend/internal/middleware"
	"github.com/petbond/backend/internal/repositories"
	"github.com/petbond/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	friends := repositories.NewPostgresFriendRepository(pool)
	posts := repositories.NewPostgresPostRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)

	scorer := matchscore.NewCachingScorer(
		matchscore.NewClient(cfg.MatchServiceURL, cfg.MatchTimeout),
		cfg.ScoreCacheTTL,
	)

	registry := matchmaking.NewRegistry(users, friends, scorer, matchmaking.Config{
		ConnectDelay: cfg.ConnectDelay,
		SessionTTL:   cfg.SessionTTL,
	})

	deps := handlers.Dependencies{
		Users:       users,
		Sessions:    auth.NewManager(15*time.Minute, 24*time.Hour, sessionStore),
		Friends:     friends,
		Posts:       posts,
		Matchmaking: registry,
		Limiter:     middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
	}

	if strings.TrimSpace(cfg.ObjectStore.Bucket) != "" {
		images, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, fmt.Errorf("configure image storage: %w", err)
		}
		deps.Images = images
	}

	return deps, nil
}
