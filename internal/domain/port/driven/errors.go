package driven

import "errors"

// Sentinel errors shared by the driven ports. Day-level failures use
// ErrSourceUnavailable; repository-level failures use ErrNotFound or
// ErrRateLimited.
var (
	// ErrSourceUnavailable indicates an upstream day-level fetch failed.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrNotFound indicates the requested repository does not exist upstream.
	ErrNotFound = errors.New("repository not found")

	// ErrRateLimited indicates the upstream API refused the call due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoCandidateHistory indicates no candidate list is recorded for a day.
	ErrNoCandidateHistory = errors.New("no candidate history for day")

	// ErrIncompleteLookbackWindow indicates at least one day of a slot's
	// lookback window has no obtainable candidate list. The slot stays
	// Collected and is retried on a later run.
	ErrIncompleteLookbackWindow = errors.New("incomplete lookback window")

	// ErrSlotNotFound indicates no unlabeled slot exists for a collection date.
	ErrSlotNotFound = errors.New("unlabeled slot not found")
)
