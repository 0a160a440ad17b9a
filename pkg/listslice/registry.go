package listslice

import (
	"github.com/rs/zerolog"

	"github.com/nihilian/ncheditor/internal/lru"
)

// DefaultPendingTransfers is the registry capacity used when none is set.
const DefaultPendingTransfers = 64

type pending interface {
	next(reg *Registry) (Chunk, error)
	remaining() int
}

// Registry holds the parked remainders of in-flight transfers on the
// sending side. It is bounded: once full, the least recently parked
// transfer is dropped and its handle stops resolving.
type Registry struct {
	cache *lru.Cache[Handle, pending]
	log   zerolog.Logger
}

// NewRegistry returns a registry holding at most capacity pending transfers.
func NewRegistry(capacity int, logger zerolog.Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultPendingTransfers
	}
	r := &Registry{log: logger}
	r.cache = lru.New(capacity, func(h Handle, p pending) {
		r.log.Warn().Str("handle", h.String()).Int("remaining", p.remaining()).Msg("continuation evicted")
	})
	return r
}

func (r *Registry) park(p pending) Handle {
	h := NewHandle()
	r.cache.Put(h, p)
	return h
}

// Redeem consumes h and returns the next chunk of its transfer. The chunk
// carries a fresh handle when elements still remain after it.
func (r *Registry) Redeem(h Handle) (Chunk, error) {
	p, ok := r.cache.Take(h)
	if !ok {
		return Chunk{}, ErrUnknownContinuation
	}
	return p.next(r)
}

// Release drops h without producing a chunk.
func (r *Registry) Release(h Handle) bool {
	_, ok := r.cache.Take(h)
	return ok
}

// Pending returns the number of parked transfers.
func (r *Registry) Pending() int { return r.cache.Len() }
