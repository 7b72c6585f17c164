package entity

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("action forbidden")
	ErrAlreadySold      = errors.New("listing already sold")
	ErrSelfPurchase     = errors.New("cannot purchase own listing")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUnavailable      = errors.New("store temporarily unavailable")

	// ErrPartialFailure is returned only by follow/unfollow when the mirror
	// write could not be completed after retries. The caller must re-query
	// the relationship state rather than trust either outcome.
	ErrPartialFailure = errors.New("relationship state uncertain")
)
