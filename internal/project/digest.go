package project

import (
	"crypto/sha256"
	"os"
)

// Digest is a fixed 256-bit content hash. Watch mode compares digests
// instead of mtimes so touch without change never triggers a rebuild.
type Digest [32]byte

// HashBytes digests raw content.
func HashBytes(content []byte) Digest {
	return sha256.Sum256(content)
}

// HashFile digests the content of one file.
func HashFile(path string) (Digest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return HashBytes(content), nil
}
