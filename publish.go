package bitcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aweris/bitcache/internal/compression"
)

// PublishRequest names the inputs of one publish: the source file to hash,
// the binary it produced, and the store-relative directory to file it under.
type PublishRequest struct {
	SourcePath    string
	BitstreamPath string
	TargetDir     string
}

// PublishResult reports what a successful publish wrote.
type PublishResult struct {
	Digest   Digest
	Entry    Entry
	Attempts int
}

// Publish hashes the source, stores the binary in the remote store, and
// records the digest → artifact mapping in the metadata index.
//
// The digest and the binary payload are computed once and stay fixed for the
// whole call. Each attempt acquires a fresh session, re-applies the same
// write and upsert (idempotent: same key, same record), and tries to push.
// A conflict — the remote advanced since the clone — discards the session
// and starts over; every other failure is fatal. Attempts are bounded;
// exceeding the bound returns ErrRetryExhausted.
func Publish(ctx context.Context, store Store, req PublishRequest, opts ...Option) (*PublishResult, error) {
	o := defaultWorkflowOptions()
	for _, opt := range opts {
		opt(o)
	}

	digest, err := DigestFile(req.SourcePath)
	if err != nil {
		return nil, err
	}

	payload, err := os.ReadFile(req.BitstreamPath)
	if err != nil {
		return nil, fmt.Errorf("read bitstream %s: %w", req.BitstreamPath, err)
	}

	name := filepath.Base(req.BitstreamPath)
	encoding := ""
	if o.Compress {
		codec, err := compression.NewCodec(o.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("init compression: %w", err)
		}
		var shrunk bool
		payload, shrunk = codec.Compress(payload)
		codec.Close()
		if shrunk {
			name += ".zst"
			encoding = CompressionZstd
		}
	}

	relPath := path.Join(filepath.ToSlash(req.TargetDir), name)
	entry := Entry{
		MD5:         string(digest),
		BinaryPath:  relPath,
		SourceFile:  filepath.Base(req.SourcePath),
		Compression: encoding,
	}
	message := fmt.Sprintf("Add bitstream for source MD5: %s", digest)

	log := o.Logger.With("digest", digest, "path", relPath)

	for attempt := 1; attempt <= o.MaxAttempts; attempt++ {
		entry.Timestamp = o.Clock().UTC().Format(time.RFC3339)

		err := publishOnce(ctx, store, relPath, payload, entry, message)
		if err == nil {
			log.Debug("published", "attempt", attempt)
			return &PublishResult{Digest: digest, Entry: entry, Attempts: attempt}, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}

		log.Debug("publish conflict, retrying", "attempt", attempt)
		if attempt < o.MaxAttempts {
			if err := sleepCtx(ctx, o.Backoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts", ErrRetryExhausted, digest, o.MaxAttempts)
}

// publishOnce runs one acquire/write/upsert/publish cycle. The session is
// released on every path out.
func publishOnce(ctx context.Context, store Store, relPath string, payload []byte, entry Entry, message string) (err error) {
	sess, err := store.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := sess.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if err := sess.WriteArtifact(relPath, payload); err != nil {
		return err
	}
	sess.Metadata().Upsert(entry)

	return sess.Publish(ctx, message)
}

// sleepCtx pauses between attempts without outliving the context.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
