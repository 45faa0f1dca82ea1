package bitcache

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// fakeRemote simulates the shared remote store for workflow tests. Each
// Acquire hands out a session holding a deep copy of the remote state, the
// way a fresh clone would. Publish either accepts the session's state as the
// new remote state, or rejects it with ErrConflict while an "interleaved"
// concurrent writer advances the remote — the race the retry loop exists for.
type fakeRemote struct {
	meta  *Metadata
	files map[string][]byte

	// rejectNext rejects this many publishes before accepting.
	rejectNext int
	// interleaved is applied to the remote on every rejected publish,
	// simulating the concurrent writer that won the race.
	interleaved func(r *fakeRemote)
	// acquireErr makes Acquire fail outright.
	acquireErr error
	// publishErr makes every session's Publish fail with a non-conflict
	// error (an unreachable remote at push time).
	publishErr error

	acquired []*fakeSession
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{meta: NewMetadata(), files: make(map[string][]byte)}
}

func (r *fakeRemote) Acquire(ctx context.Context) (Session, error) {
	if r.acquireErr != nil {
		return nil, r.acquireErr
	}
	sess := &fakeSession{
		remote:     r,
		meta:       &Metadata{Entries: maps.Clone(r.meta.Entries)},
		files:      maps.Clone(r.files),
		publishErr: r.publishErr,
	}
	r.acquired = append(r.acquired, sess)
	return sess, nil
}

// allReleased reports whether every session handed out was released.
func (r *fakeRemote) allReleased() bool {
	for _, sess := range r.acquired {
		if !sess.released {
			return false
		}
	}
	return true
}

type fakeSession struct {
	remote     *fakeRemote
	meta       *Metadata
	files      map[string][]byte
	released   bool
	publishErr error
}

func (s *fakeSession) Metadata() *Metadata { return s.meta }

func (s *fakeSession) WriteArtifact(relPath string, data []byte) error {
	if s.released {
		return errors.New("write on released session")
	}
	s.files[relPath] = append([]byte(nil), data...)
	return nil
}

func (s *fakeSession) ReadArtifact(relPath string) ([]byte, error) {
	data, ok := s.files[relPath]
	if !ok {
		return nil, fmt.Errorf("%s: %w", relPath, ErrArtifactMissing)
	}
	return data, nil
}

func (s *fakeSession) StatArtifact(relPath string) (int64, bool) {
	data, ok := s.files[relPath]
	return int64(len(data)), ok
}

func (s *fakeSession) Publish(ctx context.Context, message string) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	if s.remote.rejectNext > 0 {
		s.remote.rejectNext--
		if s.remote.interleaved != nil {
			s.remote.interleaved(s.remote)
		}
		return fmt.Errorf("push: %w", ErrConflict)
	}
	s.remote.meta = &Metadata{Entries: maps.Clone(s.meta.Entries)}
	s.remote.files = maps.Clone(s.files)
	return nil
}

func (s *fakeSession) Release() error {
	s.released = true
	return nil
}
