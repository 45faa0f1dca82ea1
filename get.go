package bitcache

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aweris/bitcache/internal/compression"
)

// GetRequest asks for the artifact published under a source digest.
type GetRequest struct {
	Digest Digest
	// DestDir is where the binary lands, under its own filename.
	// Empty means the current directory.
	DestDir string
}

// GetResult reports what was retrieved and where it was written.
type GetResult struct {
	Entry Entry
	Path  string
}

// Get resolves a digest through the metadata index and copies the artifact
// out of the store. Read-only: no retry loop, nothing is written back to the
// remote, and the destination is only touched once the artifact bytes are
// fully in hand — a failed get leaves the destination directory unmodified.
func Get(ctx context.Context, store Store, req GetRequest, opts ...Option) (res *GetResult, err error) {
	o := defaultWorkflowOptions()
	for _, opt := range opts {
		opt(o)
	}

	sess, err := store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := sess.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	entry, ok := sess.Metadata().Lookup(req.Digest)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.Digest)
	}

	data, err := sess.ReadArtifact(entry.BinaryPath)
	if err != nil {
		return nil, err
	}

	name := path.Base(entry.BinaryPath)
	if entry.Compression == CompressionZstd {
		codec, err := compression.NewCodec(0)
		if err != nil {
			return nil, fmt.Errorf("init compression: %w", err)
		}
		data, err = codec.Decompress(data)
		codec.Close()
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", entry.BinaryPath, err)
		}
		name = strings.TrimSuffix(name, ".zst")
	}

	destDir := req.DestDir
	if destDir == "" {
		destDir = "."
	}
	dest := filepath.Join(destDir, name)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", dest, err)
	}

	o.Logger.Debug("retrieved", "digest", req.Digest, "path", dest)
	return &GetResult{Entry: entry, Path: dest}, nil
}
