package bitcache

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// MetadataFilename is the fixed path of the serialized index, relative to
// the store root.
const MetadataFilename = "bitcache_metadata.json"

// CompressionZstd marks an entry whose binary is stored zstd-compressed.
const CompressionZstd = "zstd"

// Entry is one artifact record in the index, keyed by the digest of the
// source that produced the binary.
type Entry struct {
	// MD5 repeats the entry's key so records are self-describing.
	MD5 string `json:"md5"`
	// BinaryPath is the artifact's path relative to the store root.
	// Stable once written; never reused for a different digest.
	BinaryPath string `json:"binary_path"`
	// SourceFile is the original source filename, display only.
	SourceFile string `json:"source_file"`
	// Timestamp is the last publish time, RFC 3339 UTC.
	Timestamp string `json:"timestamp"`
	// Compression names the storage encoding of the binary, if any.
	Compression string `json:"compression,omitempty"`
}

// Metadata is the digest → record index persisted at MetadataFilename in the
// store root. Digests are unique keys: publishing an existing digest
// overwrites its record. Entries are never deleted by this tool.
type Metadata struct {
	Entries map[Digest]Entry `json:"entries"`
}

// NewMetadata returns an empty index.
func NewMetadata() *Metadata {
	return &Metadata{Entries: make(map[Digest]Entry)}
}

// LoadMetadata deserializes an index document. Empty input yields an empty
// index; malformed input yields ErrCorruptMetadata — a store whose index no
// longer parses must be repaired by hand, not silently reset.
func LoadMetadata(data []byte) (*Metadata, error) {
	if len(data) == 0 {
		return NewMetadata(), nil
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptMetadata, err)
	}
	if m.Entries == nil {
		m.Entries = make(map[Digest]Entry)
	}
	return &m, nil
}

// Serialize renders the index canonically: identical logical content always
// produces identical bytes, so republishing an unchanged index yields no
// spurious diff.
func (m *Metadata) Serialize() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize metadata: %w", err)
	}
	return append(data, '\n'), nil
}

// Upsert inserts or replaces the record for e's digest.
func (m *Metadata) Upsert(e Entry) {
	m.Entries[Digest(e.MD5)] = e
}

// Lookup returns the record for digest, if present.
func (m *Metadata) Lookup(digest Digest) (Entry, bool) {
	e, ok := m.Entries[digest]
	return e, ok
}

// Len returns the number of records.
func (m *Metadata) Len() int {
	return len(m.Entries)
}

// All iterates records in digest order.
func (m *Metadata) All() iter.Seq2[Digest, Entry] {
	digests := make([]Digest, 0, len(m.Entries))
	for d := range m.Entries {
		digests = append(digests, d)
	}
	slices.Sort(digests)
	return func(yield func(Digest, Entry) bool) {
		for _, d := range digests {
			if !yield(d, m.Entries[d]) {
				return
			}
		}
	}
}

// Equal reports whether two indexes hold the same records.
func (m *Metadata) Equal(other *Metadata) bool {
	if len(m.Entries) != len(other.Entries) {
		return false
	}
	for d, e := range m.Entries {
		if oe, ok := other.Entries[d]; !ok || oe != e {
			return false
		}
	}
	return true
}
