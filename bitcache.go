package bitcache

import "context"

// Store opens sessions against a remote artifact store. The workflows in
// this package depend only on this interface; the git-backed implementation
// lives in internal/gitstore.
type Store interface {
	// Acquire fetches a fresh working copy of the store's current state
	// and loads its metadata index. Every call observes the remote tip as
	// of that moment — sessions are never reused across operations.
	Acquire(ctx context.Context) (Session, error)
}

// Session is one ephemeral, exclusively-owned working copy of the store.
// It is valid from Acquire until Release, which must be called on every
// exit path and may be called more than once.
type Session interface {
	// Metadata returns the index loaded at acquire time. The session owns
	// it; mutations become durable only through Publish.
	Metadata() *Metadata

	// WriteArtifact materializes data at relPath under the working copy
	// root, creating parent directories as needed. Overwrites.
	WriteArtifact(relPath string, data []byte) error

	// ReadArtifact returns the bytes stored at relPath.
	// ErrArtifactMissing if the tree has no file there.
	ReadArtifact(relPath string) ([]byte, error)

	// StatArtifact probes relPath without reading it.
	StatArtifact(relPath string) (size int64, exists bool)

	// Publish serializes the metadata index into the working copy, commits
	// all changes, and attempts to advance the remote. ErrConflict if the
	// remote moved since Acquire; the remote is never force-overwritten.
	// Publishing a working copy with no changes succeeds without a commit.
	Publish(ctx context.Context, message string) error

	// Release deletes the working copy. Idempotent.
	Release() error
}
