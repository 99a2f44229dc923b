// Package ingest loads extracted document tables and text chunks into the
// row store and the vector store.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// fileKeyLen is the hex prefix length of the content hash. Short enough to
// read in logs, long enough to never collide in practice.
const fileKeyLen = 24

// ComputeFileKey derives a stable identifier from file content: the first 24
// hex characters of its SHA-256. Re-ingesting identical content always maps
// to the same key.
func ComputeFileKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil))[:fileKeyLen], nil
}

// NormalizePath renders a path as lower-case absolute with forward slashes,
// for stable source_path values across platforms.
func NormalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return strings.ToLower(filepath.ToSlash(abs))
}
