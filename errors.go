package bitcache

import "errors"

var (
	// ErrConflict signals that the remote advanced between acquire and
	// publish. It is transient: publish workflows recover by retrying
	// against a fresh session.
	ErrConflict = errors.New("bitcache: remote advanced, publish rejected")

	// ErrRetryExhausted is returned when every publish attempt hit
	// ErrConflict.
	ErrRetryExhausted = errors.New("bitcache: publish retries exhausted")

	// ErrNotFound is returned when a digest has no entry in the index.
	ErrNotFound = errors.New("bitcache: digest not found")

	// ErrArtifactMissing signals an index entry whose binary is absent
	// from the store tree. Reported, never auto-repaired.
	ErrArtifactMissing = errors.New("bitcache: artifact missing from store")

	// ErrCorruptMetadata is returned when the metadata document exists
	// but cannot be parsed. A corrupt index is never reset to empty.
	ErrCorruptMetadata = errors.New("bitcache: corrupt metadata index")
)
