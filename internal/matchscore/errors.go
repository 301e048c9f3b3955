package matchscore

import "errors"

var (
	// ErrScorerUnavailable indicates the scoring service is unconfigured,
	// unreachable or answered with a non-200 status.
	ErrScorerUnavailable = errors.New("match scorer unavailable")
	// ErrInvalidScore indicates the scoring service returned a score outside 0-100.
	ErrInvalidScore = errors.New("match score out of range")
)
