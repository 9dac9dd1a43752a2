// Package checksum derives stable identifiers for source documents.
package checksum

import (
	"crypto/sha1" //nolint:gosec // identifier, not a security boundary
	"encoding/hex"
	"path/filepath"
)

// ID returns the hex SHA-1 of a document path. Separators are normalised to
// forward slashes so the same tree yields the same ids on every platform.
func ID(path string) string {
	h := sha1.Sum([]byte(filepath.ToSlash(path))) //nolint:gosec
	return hex.EncodeToString(h[:])
}
