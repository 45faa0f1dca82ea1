package bitcache

import (
	"log/slog"
	"time"
)

// DefaultMaxAttempts bounds the publish retry loop. Conflicts are expected
// to be rare and short-lived; a handful of fresh clones is enough.
const DefaultMaxAttempts = 4

// DefaultBackoff is the pause between publish attempts.
const DefaultBackoff = 500 * time.Millisecond

// DefaultConcurrency is the number of parallel checks during verify.
const DefaultConcurrency = 4

// Options configures the workflows.
type Options struct {
	MaxAttempts      int
	Backoff          time.Duration
	Logger           *slog.Logger
	Clock            func() time.Time
	Compress         bool
	CompressionLevel int
	Concurrency      int
}

// Option is a functional option for Publish, Get, and Verify.
type Option func(*Options)

func defaultWorkflowOptions() *Options {
	return &Options{
		MaxAttempts:      DefaultMaxAttempts,
		Backoff:          DefaultBackoff,
		Logger:           slog.New(slog.DiscardHandler),
		Clock:            time.Now,
		CompressionLevel: 2,
		Concurrency:      DefaultConcurrency,
	}
}

// WithMaxAttempts bounds the publish conflict retry loop.
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxAttempts = n
		}
	}
}

// WithBackoff sets the pause between publish attempts.
func WithBackoff(d time.Duration) Option {
	return func(o *Options) {
		if d >= 0 {
			o.Backoff = d
		}
	}
}

// WithLogger sets the structured logger. Workflows log retries and progress
// at debug level; by default everything is discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithClock overrides the timestamp source for published entries.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Clock = now
		}
	}
}

// WithCompression stores published binaries zstd-compressed.
// Level 1 is fastest, 3 strongest; 2 is the default tradeoff.
func WithCompression(level int) Option {
	return func(o *Options) {
		o.Compress = true
		if level >= 1 && level <= 3 {
			o.CompressionLevel = level
		}
	}
}

// WithConcurrency sets the number of parallel checks during verify.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}
