package bitcache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestStability(t *testing.T) {
	content := []byte("module top; endmodule\n")

	a := writeFixture(t, "one.v", content)
	b := writeFixture(t, "completely_different_name.sv", content)

	da, err := DigestFile(a)
	require.NoError(t, err)
	db, err := DigestFile(b)
	require.NoError(t, err)

	assert.Equal(t, da, db, "digest depends on bytes, not filename")
	assert.Equal(t, da, DigestBytes(content))
	assert.Len(t, string(da), 32, "hex MD5 is 32 characters")
}

func TestDigestKnownValue(t *testing.T) {
	// md5("hello world")
	assert.Equal(t, Digest("5eb63bbbe01eeed093cb22bb8f5acdc3"), DigestBytes([]byte("hello world")))
}

func TestDigestDistinctFixtures(t *testing.T) {
	fixtures := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("b"),
		[]byte("module top; endmodule\n"),
		[]byte("module top; endmodule"),
		bytes.Repeat([]byte{0x00}, 1024),
		bytes.Repeat([]byte{0xff}, 1024),
	}

	seen := make(map[Digest]int)
	for i, f := range fixtures {
		d := DigestBytes(f)
		if prev, ok := seen[d]; ok {
			t.Fatalf("fixtures %d and %d collide on %s", prev, i, d)
		}
		seen[d] = i
	}
}

func TestDigestReader(t *testing.T) {
	content := []byte("streamed content")
	d, err := DigestReader(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, DigestBytes(content), d)
}

func TestDigestFileUnreadable(t *testing.T) {
	_, err := DigestFile(filepath.Join(t.TempDir(), "does-not-exist.v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist.v", "error must name the file")
}

func TestDigestFileMatchesReader(t *testing.T) {
	content := bytes.Repeat([]byte("abc123"), 4096)
	path := writeFixture(t, "big.bin", content)

	fromFile, err := DigestFile(path)
	require.NoError(t, err)
	assert.Equal(t, DigestBytes(content), fromFile)

	// Unchanged after an unrelated file appears next to it.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "noise"), []byte("x"), 0644))
	again, err := DigestFile(path)
	require.NoError(t, err)
	assert.Equal(t, fromFile, again)
}
