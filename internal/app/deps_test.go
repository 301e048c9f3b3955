package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petbond/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		MatchServiceURL: "http://127.0.0.1:5000",
		MatchTimeout:    time.Second,
		ScoreCacheTTL:   time.Minute,
		ConnectDelay:    time.Millisecond,
		ObjectStore:     config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Sessions == nil {
		t.Fatal("expected session manager to be configured")
	}
	if deps.Friends == nil {
		t.Fatal("expected friend repository to be configured")
	}
	if deps.Posts == nil {
		t.Fatal("expected post repository to be configured")
	}
	if deps.Matchmaking == nil {
		t.Fatal("expected matchmaking registry to be configured")
	}
	if deps.Images == nil {
		t.Fatal("expected image storage to be configured")
	}
	if deps.Limiter == nil {
		t.Fatal("expected rate limiter to be configured")
	}
}

func TestBuildDependenciesWithoutObjectStore(t *testing.T) {
	deps, err := buildDependencies(context.Background(), fakePool{}, config.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.Images != nil {
		t.Fatal("expected image storage to be skipped without a bucket")
	}
}
