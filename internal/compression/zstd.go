// Package compression wraps zstd for artifact storage. Compression is
// opt-in per publish and recorded in the metadata entry, so a reader always
// knows how a binary was stored.
package compression

import (
	"github.com/klauspost/compress/zstd"
)

// minCompressSize skips payloads too small to be worth a zstd frame.
const minCompressSize = 128

// Codec compresses and decompresses artifact payloads.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec creates a codec at the given level (1 fastest, 2 default,
// 3 strongest).
func NewCodec(level int) (*Codec, error) {
	var encoderLevel zstd.EncoderLevel
	switch level {
	case 1:
		encoderLevel = zstd.SpeedFastest
	case 3:
		encoderLevel = zstd.SpeedBetterCompression
	default:
		encoderLevel = zstd.SpeedDefault
	}

	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(encoderLevel),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, err
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, err
	}

	return &Codec{encoder: encoder, decoder: decoder}, nil
}

// Compress returns the compressed payload and true, or the original payload
// and false when the input is too small or does not shrink. The caller
// records which case happened; storing an artifact raw is always valid.
func (c *Codec) Compress(data []byte) ([]byte, bool) {
	if len(data) < minCompressSize {
		return data, false
	}

	compressed := c.encoder.EncodeAll(data, make([]byte, 0, len(data)))
	if len(compressed) >= len(data) {
		return data, false
	}
	return compressed, true
}

// Decompress restores a payload stored compressed. Unlike Compress this is
// strict: the caller only asks for decompression when the metadata entry
// says the binary was compressed, so a decode failure means a damaged store.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	return c.decoder.DecodeAll(data, nil)
}

// Close releases encoder and decoder resources.
func (c *Codec) Close() error {
	if c.encoder != nil {
		c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
	return nil
}
