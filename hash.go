package bitcache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Digest is the hex-encoded MD5 of a source file's bytes. It is the primary
// key for artifact lookup: same bytes, same digest, regardless of filename.
type Digest string

// DigestReader hashes everything readable from r.
func DigestReader(r io.Reader) (Digest, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// DigestFile hashes the contents of the file at path.
func DigestFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read source %s: %w", path, err)
	}
	defer f.Close()

	d, err := DigestReader(f)
	if err != nil {
		return "", fmt.Errorf("hash source %s: %w", path, err)
	}
	return d, nil
}

// DigestBytes hashes an in-memory byte slice.
func DigestBytes(data []byte) Digest {
	h := md5.Sum(data)
	return Digest(hex.EncodeToString(h[:]))
}
