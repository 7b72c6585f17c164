package repository

import "errors"

var (
	ErrNotFound = errors.New("repository: record not found")

	// ErrConflict signals that a conditional write did not apply because
	// the document was no longer in the expected state.
	ErrConflict = errors.New("repository: conflicting concurrent update")

	ErrDuplicate = errors.New("repository: record already exists")
)
