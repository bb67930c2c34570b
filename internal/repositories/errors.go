package repositories

import "errors"

// Sentinel errors shared by all repository implementations. Callers
// distinguish them with errors.Is; anything else from a repository is a
// storage failure.
var (
	// ErrNotFound indicates a lookup by id or unique code matched no record.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateCode indicates a write was rejected by the unique index on
	// the product code. This is a commit-time conflict, distinct from a
	// validation failure: it is how a lost check-then-insert race surfaces.
	ErrDuplicateCode = errors.New("unique code already exists")
)
