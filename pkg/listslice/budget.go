package listslice

import "google.golang.org/protobuf/encoding/protowire"

const (
	// DefaultMaxBytes is the per-transaction budget used when none is set.
	DefaultMaxBytes = 64 * 1024
	// ElementOverhead is added to every element's size estimate so the
	// budget never under-counts wire cost.
	ElementOverhead = 4

	chunkHeaderSize = 4 + 1
	handleSize      = 16
)

// SizeBudget tracks the bytes committed to the chunk being built. The chunk
// header and a continuation handle are committed up front, and every element
// is charged its length prefix plus ElementOverhead on top of its encoding.
type SizeBudget struct {
	limit int
	used  int
}

// NewSizeBudget returns a budget for one chunk of at most limit bytes.
func NewSizeBudget(limit int) *SizeBudget {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	return &SizeBudget{limit: limit, used: chunkHeaderSize + handleSize}
}

// ElementCost is the budgeted size of an element encoding to n bytes.
func ElementCost(n int) int {
	return protowire.SizeBytes(n) + ElementOverhead
}

// WouldFit reports whether an element encoding to n bytes keeps the chunk
// within limit.
func (b *SizeBudget) WouldFit(n int) bool { return b.used+ElementCost(n) <= b.limit }

// Commit charges an element encoding to n bytes against the chunk.
func (b *SizeBudget) Commit(n int) { b.used += ElementCost(n) }

// Limit returns the chunk limit.
func (b *SizeBudget) Limit() int { return b.limit }
