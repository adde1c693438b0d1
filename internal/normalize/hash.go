package normalize

import (
	"crypto/sha256"
	"fmt"
)

// ContentHash computes the hex-encoded SHA-256 of an in-memory upload.
func ContentHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
