package matchscore

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubScorer struct {
	score int
	err   error
	calls int
}

func (s *stubScorer) Score(context.Context, string, string) (int, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.score, nil
}

func TestCachingScorerScore(t *testing.T) {
	base := &stubScorer{score: 91}
	cache := NewCachingScorer(base, time.Minute)

	ctx := context.Background()

	score, err := cache.Score(ctx, "a.jpg", "b.jpg")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score != 91 {
		t.Fatalf("unexpected score: %d", score)
	}
	if base.calls != 1 {
		t.Fatalf("expected base called once got %d", base.calls)
	}

	if _, err := cache.Score(ctx, "a.jpg", "b.jpg"); err != nil {
		t.Fatalf("score: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected cached result got %d calls", base.calls)
	}

	// A different ordered pair is a different key.
	if _, err := cache.Score(ctx, "b.jpg", "a.jpg"); err != nil {
		t.Fatalf("score: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected cache miss for reversed pair got %d calls", base.calls)
	}
}

func TestCachingScorerErrors(t *testing.T) {
	cache := NewCachingScorer(nil, time.Minute)
	if _, err := cache.Score(context.Background(), "a.jpg", "b.jpg"); !errors.Is(err, ErrScorerUnavailable) {
		t.Fatalf("expected scorer unavailable got %v", err)
	}

	base := &stubScorer{err: errors.New("boom")}
	cache = NewCachingScorer(base, time.Minute)
	if _, err := cache.Score(context.Background(), "a.jpg", "b.jpg"); err == nil {
		t.Fatal("expected error")
	}
	// Failures are not cached.
	if _, err := cache.Score(context.Background(), "a.jpg", "b.jpg"); err == nil {
		t.Fatal("expected error")
	}
	if base.calls != 2 {
		t.Fatalf("expected 2 calls got %d", base.calls)
	}
}

func TestCachingScorerExpiry(t *testing.T) {
	base := &stubScorer{score: 70}
	cache := NewCachingScorer(base, time.Millisecond)

	if _, err := cache.Score(context.Background(), "a.jpg", "b.jpg"); err != nil {
		t.Fatalf("score: %v", err)
	}

	time.Sleep(2 * time.Millisecond)

	if _, err := cache.Score(context.Background(), "a.jpg", "b.jpg"); err != nil {
		t.Fatalf("score: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected cache miss after expiry got %d calls", base.calls)
	}
}

func TestCachingScorerDefaultTTL(t *testing.T) {
	cache := NewCachingScorer(&stubScorer{}, 0)
	if cache.ttl <= 0 {
		t.Fatalf("expected ttl to default positive got %v", cache.ttl)
	}
}
