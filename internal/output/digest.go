package output

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// Digest computes a deterministic SHA256 digest over the rendered tree.
// The digest is independent of file order.
//
// Algorithm:
//  1. Sort files by path
//  2. Write each path, a NUL byte, the content and a newline
//  3. SHA256 the result → "sha256:<hex>"
func (f Files) Digest() string {
	sorted := make(Files, len(f))
	copy(sorted, f)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	h := sha256.New()
	for _, file := range sorted {
		h.Write([]byte(file.Path))
		h.Write([]byte{0})
		h.Write(file.Content)
		h.Write([]byte("\n"))
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil))
}
