package matchscore

import "context"

// Scorer returns a compatibility score between 0 and 100 for a pair of pet
// images.
type Scorer interface {
	Score(ctx context.Context, image1, image2 string) (int, error)
}
