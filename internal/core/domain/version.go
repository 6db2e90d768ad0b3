package domain

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// ResourceVersion computes a deterministic hash of a user's generated
// resource ids. It is recomputed from current state on every use rather than
// stored, so it can never drift from the store. The result is insensitive to
// input order and duplicates.
func ResourceVersion(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	h := xxhash.New()
	for _, id := range sorted {
		_, _ = h.WriteString(id)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
