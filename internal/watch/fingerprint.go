package watch

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Fingerprints remembers a content hash per file so that events which do
// not change a file's bytes (touch, chmod, editor save without edits) can
// be skipped.
type Fingerprints struct {
	mu   sync.Mutex
	sums map[string]uint64
}

// NewFingerprints creates an empty fingerprint set.
func NewFingerprints() *Fingerprints {
	return &Fingerprints{sums: make(map[string]uint64)}
}

// Sum returns the fingerprint of data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Update records data as the content of path and reports whether it differs
// from the previously recorded content. The first update of a path always
// reports a change.
func (f *Fingerprints) Update(path string, data []byte) bool {
	sum := Sum(data)

	f.mu.Lock()
	defer f.mu.Unlock()

	prev, ok := f.sums[path]
	f.sums[path] = sum

	return !ok || prev != sum
}

// UpdateFile reads path and records its content. A file that no longer
// exists is forgotten and reported as changed.
func (f *Fingerprints) UpdateFile(path string) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied input path
	if err != nil {
		if os.IsNotExist(err) {
			f.Forget(path)
			return true, nil
		}

		return false, fmt.Errorf("fingerprinting %s: %w", path, err)
	}

	return f.Update(path, data), nil
}

// Forget drops the recorded fingerprint of path.
func (f *Fingerprints) Forget(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.sums, path)
}
