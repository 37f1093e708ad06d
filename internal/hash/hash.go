// Package hash computes artifact digests.
//
// Every artifact that gets uploaded is fingerprinted with SHA-256 and the
// digest recorded in the release receipt, so operators can later verify
// what a given release actually shipped.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Hasher provides an abstraction for artifact digest computation.
type Hasher interface {
	// HashFile computes the hex-encoded digest of the file at the given path.
	HashFile(path string) (string, error)
}

// SHA256Hasher implements Hasher using crypto/sha256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashFile computes the SHA-256 digest of the file at the given path.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to read artifact: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// FakeHasher implements Hasher with predetermined digests for testing.
type FakeHasher struct {
	digests map[string]string
	err     error
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{digests: make(map[string]string)}
}

// SetDigest sets the digest returned for a specific path.
func (h *FakeHasher) SetDigest(path, digest string) {
	h.digests[path] = digest
}

// SetError makes every HashFile call fail with err.
func (h *FakeHasher) SetError(err error) {
	h.err = err
}

// HashFile returns the predetermined digest for the given path.
func (h *FakeHasher) HashFile(path string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	if d, ok := h.digests[path]; ok {
		return d, nil
	}
	return "fakedigest", nil
}
