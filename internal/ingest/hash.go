package ingest

import (
	"fmt"
	"os"

	"github.com/zeebo/xxh3"
)

// hashFile renders the xxh3-128 content hash of path as 32 lowercase hex
// digits, the identity ingestion deduplicates photos on.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	sum := xxh3.Hash128(data)
	return fmt.Sprintf("%016x%016x", sum.Hi, sum.Lo), nil
}
