// Package gitstore implements the bitcache store on a remote git repository.
//
// Every Acquire clones the remote into a fresh temporary directory; the
// session works on that clone and Publish advances the remote with a plain
// (never forced) push. A rejected fast-forward surfaces as
// bitcache.ErrConflict, which the publish workflow turns into a retry with a
// fresh clone. There is no cached state between sessions.
package gitstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aweris/bitcache"
)

// DefaultTimeout bounds the network operations (clone and push).
const DefaultTimeout = 120 * time.Second

// Store opens git-backed sessions against one remote repository.
type Store struct {
	remoteURL string
	sshKey    string
	timeout   time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithSSHKey routes git's SSH transport through the given private key file.
// The key reference is handed to the transport unmodified; the store never
// reads it.
func WithSSHKey(path string) Option {
	return func(s *Store) { s.sshKey = path }
}

// WithTimeout bounds clone and push. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// New returns a store for the given remote URL.
func New(remoteURL string, opts ...Option) *Store {
	s := &Store{remoteURL: remoteURL, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) env() []string {
	if s.sshKey == "" {
		return nil
	}
	return []string{fmt.Sprintf("GIT_SSH_COMMAND=ssh -i %s -o IdentitiesOnly=yes", s.sshKey)}
}

// networkCtx applies the store's timeout to a network-bound git command.
func (s *Store) networkCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Acquire clones the remote's default branch into a fresh temporary
// directory and loads the metadata index. The returned session exclusively
// owns the directory until Release.
func (s *Store) Acquire(ctx context.Context) (bitcache.Session, error) {
	dir, err := os.MkdirTemp("", "bitcache-*")
	if err != nil {
		return nil, fmt.Errorf("create working copy dir: %w", err)
	}

	cloneCtx, cancel := s.networkCtx(ctx)
	defer cancel()

	if _, err := runGit(cloneCtx, s.env(), "clone", "--quiet", s.remoteURL, dir); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("clone %s: %w", s.remoteURL, err)
	}

	sess := &session{
		store: s,
		dir:   dir,
		git:   runner{dir: dir, env: s.env()},
	}

	// Commit identity is per-clone so publishes work on machines without
	// global git configuration.
	for _, kv := range [][2]string{
		{"user.name", "bitcache"},
		{"user.email", "bitcache@localhost"},
	} {
		if _, err := sess.git.run(ctx, "config", kv[0], kv[1]); err != nil {
			sess.Release()
			return nil, fmt.Errorf("configure working copy: %w", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, bitcache.MetadataFilename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		sess.Release()
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	meta, err := bitcache.LoadMetadata(data)
	if err != nil {
		sess.Release()
		return nil, err
	}
	sess.meta = meta

	return sess, nil
}

// session is one working copy of the store. Mutating operations are strictly
// sequential within an invocation; read-only probes (StatArtifact,
// ReadArtifact) may run concurrently.
type session struct {
	store    *Store
	dir      string
	git      runner
	meta     *bitcache.Metadata
	released bool
}

func (s *session) Metadata() *bitcache.Metadata { return s.meta }

func (s *session) WriteArtifact(relPath string, data []byte) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("write artifact %s: %w", relPath, err)
	}
	return nil
}

func (s *session) ReadArtifact(relPath string) ([]byte, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", relPath, bitcache.ErrArtifactMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", relPath, err)
	}
	return data, nil
}

func (s *session) StatArtifact(relPath string) (int64, bool) {
	full, err := s.resolve(relPath)
	if err != nil {
		return 0, false
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}

// resolve maps a store-relative slash path onto the working copy, rejecting
// anything that would escape it.
func (s *session) resolve(relPath string) (string, error) {
	rel := filepath.FromSlash(relPath)
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("artifact path %q escapes the store", relPath)
	}
	return filepath.Join(s.dir, rel), nil
}

// Publish serializes the index, commits everything, and pushes. A push
// rejected because the remote advanced returns bitcache.ErrConflict; nothing
// is ever forced. A working copy with no effective changes publishes as a
// no-op.
func (s *session) Publish(ctx context.Context, message string) error {
	data, err := s.meta.Serialize()
	if err != nil {
		return err
	}
	metaPath := filepath.Join(s.dir, bitcache.MetadataFilename)
	current, readErr := os.ReadFile(metaPath)
	switch {
	case errors.Is(readErr, fs.ErrNotExist) && s.meta.Len() == 0:
		// Never materialize an empty index just by publishing.
	case readErr == nil && bytes.Equal(current, data):
		// Canonical serialization: unchanged index, no spurious diff.
	default:
		if err := os.WriteFile(metaPath, data, 0644); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
	}

	if _, err := s.git.run(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}

	status, err := s.git.run(ctx, "status", "--porcelain")
	if err != nil {
		return fmt.Errorf("inspect working copy: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		return nil
	}

	if _, err := s.git.run(ctx, "commit", "--quiet", "-m", message); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	pushCtx, cancel := s.store.networkCtx(ctx)
	defer cancel()

	if _, err := s.git.run(pushCtx, "push", "--quiet", "origin", "HEAD"); err != nil {
		if nonFastForward(err) {
			return fmt.Errorf("push to %s: %w", s.store.remoteURL, bitcache.ErrConflict)
		}
		return fmt.Errorf("push to %s: %w", s.store.remoteURL, err)
	}
	return nil
}

// Release deletes the working copy. Safe to call more than once.
func (s *session) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	return os.RemoveAll(s.dir)
}
