package compression

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	codec, err := NewCodec(2)
	require.NoError(t, err)
	defer codec.Close()

	payload := bytes.Repeat([]byte("bitstream configuration frame "), 1024)

	compressed, shrunk := codec.Compress(payload)
	require.True(t, shrunk)
	assert.Less(t, len(compressed), len(payload))

	restored, err := codec.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, payload, restored)
}

func TestCompressSkipsSmallPayloads(t *testing.T) {
	codec, err := NewCodec(1)
	require.NoError(t, err)
	defer codec.Close()

	payload := []byte("short")
	out, shrunk := codec.Compress(payload)
	assert.False(t, shrunk)
	assert.Equal(t, payload, out)
}

func TestCompressSkipsIncompressible(t *testing.T) {
	codec, err := NewCodec(3)
	require.NoError(t, err)
	defer codec.Close()

	// Pseudorandom bytes do not shrink; the codec must hand them back raw.
	payload := make([]byte, 4096)
	rng := rand.New(rand.NewSource(42))
	rng.Read(payload)

	out, shrunk := codec.Compress(payload)
	assert.False(t, shrunk)
	assert.Equal(t, payload, out)
}

func TestDecompressRejectsGarbage(t *testing.T) {
	codec, err := NewCodec(2)
	require.NoError(t, err)
	defer codec.Close()

	_, err = codec.Decompress([]byte("this was never a zstd frame"))
	assert.Error(t, err)
}

func TestLevels(t *testing.T) {
	payload := bytes.Repeat([]byte("frame data "), 2048)

	for _, level := range []int{1, 2, 3} {
		codec, err := NewCodec(level)
		require.NoError(t, err)

		compressed, shrunk := codec.Compress(payload)
		require.True(t, shrunk, "level %d", level)

		restored, err := codec.Decompress(compressed)
		require.NoError(t, err, "level %d", level)
		assert.Equal(t, payload, restored, "level %d", level)
		codec.Close()
	}
}
