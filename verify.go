package bitcache

import (
	"context"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// VerifyReport lists index entries whose binaries are absent from the store
// tree. An inconsistent store is reported, never auto-repaired.
type VerifyReport struct {
	Checked int
	Missing []Entry
}

// OK reports whether every index entry has its binary in the tree.
func (r *VerifyReport) OK() bool { return len(r.Missing) == 0 }

// Verify acquires a read-only session and checks every metadata entry
// against the working tree, with a bounded number of parallel probes.
func Verify(ctx context.Context, store Store, opts ...Option) (report *VerifyReport, err error) {
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

	meta := sess.Metadata()
	report = &VerifyReport{Checked: meta.Len()}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(o.Concurrency).WithContext(ctx)

	for _, entry := range meta.All() {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, exists := sess.StatArtifact(entry.BinaryPath); !exists {
				mu.Lock()
				report.Missing = append(report.Missing, entry)
				mu.Unlock()
				o.Logger.Debug("missing artifact", "digest", entry.MD5, "path", entry.BinaryPath)
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Missing, func(i, j int) bool {
		return report.Missing[i].MD5 < report.Missing[j].MD5
	})
	return report, nil
}
