package listslice

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Options configure how a transfer is cut into chunks.
type Options struct {
	// MaxBytes is the per-transaction budget. <=0 means DefaultMaxBytes.
	MaxBytes int
	// WarnElementBytes is the element cost above which an OversizedElement
	// diagnostic is recorded. <=0 means MaxBytes.
	WarnElementBytes int
	// Logger receives diagnostics at warn level. Optional.
	Logger *zerolog.Logger
}

func (o Options) normalized() Options {
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.WarnElementBytes <= 0 {
		o.WarnElementBytes = o.MaxBytes
	}
	return o
}

// Result is the outcome of writing the first chunk of a transfer.
type Result struct {
	Chunk       Chunk
	Payload     []byte
	Diagnostics []OversizedElement
}

// Sender delivers the first chunk of a transfer.
type Sender interface {
	SendInitial(ctx context.Context, payload []byte) error
}

// Puller redeems a continuation handle for the next encoded chunk.
type Puller interface {
	PullContinuation(ctx context.Context, h Handle) ([]byte, error)
}

// Transport is the bounded request/response channel a transfer rides on.
type Transport interface {
	Sender
	Puller
}

// PullFunc adapts a function to Puller.
type PullFunc func(ctx context.Context, h Handle) ([]byte, error)

func (f PullFunc) PullContinuation(ctx context.Context, h Handle) ([]byte, error) { return f(ctx, h) }

// ListTransfer wraps a caller-owned list for a single transmission. The
// list is never modified; callers must not modify it while a transfer that
// references it is still pending.
type ListTransfer[T any] struct {
	list        []T
	codec       ElementCodec[T]
	inlineLimit int
	written     bool
}

// New returns a transfer over list.
func New[T any](list []T, codec ElementCodec[T]) *ListTransfer[T] {
	return &ListTransfer[T]{list: list, codec: codec, inlineLimit: math.MaxInt}
}

// SetInlineCountLimit caps the number of elements placed in the first
// chunk regardless of the byte budget. Negative means unbounded.
func (t *ListTransfer[T]) SetInlineCountLimit(n int) {
	if n < 0 {
		n = math.MaxInt
	}
	t.inlineLimit = n
}

// List returns the wrapped list.
func (t *ListTransfer[T]) List() []T { return t.list }

// Len returns the number of elements in the transfer.
func (t *ListTransfer[T]) Len() int { return len(t.list) }

// Write encodes the first chunk. Elements that do not fit are parked in reg
// behind a continuation handle. Write may be called once; later calls fail
// with ErrReuse.
func (t *ListTransfer[T]) Write(reg *Registry, opts Options) (Result, error) {
	if t.written {
		return Result{}, ErrReuse
	}
	t.written = true

	cur := &cursor[T]{list: t.list, codec: t.codec, opts: opts.normalized()}
	if len(t.list) > 0 {
		cur.guard = newTypeGuard(t.codec.TypeOf(t.list[0]))
	}
	chunk, diags, err := cur.fill(t.inlineLimit)
	if err != nil {
		return Result{}, err
	}
	if cur.more() {
		if reg == nil {
			return Result{}, errors.New("listslice: list does not fit one chunk and no registry was given")
		}
		chunk.HasMore = true
		chunk.Next = reg.park(cur)
	}
	payload, err := chunk.MarshalBinary()
	if err != nil {
		return Result{}, err
	}
	return Result{Chunk: chunk, Payload: payload, Diagnostics: diags}, nil
}

// Send writes the first chunk and hands it to s. If delivery fails the
// parked remainder is released.
func (t *ListTransfer[T]) Send(ctx context.Context, s Sender, reg *Registry, opts Options) (Result, error) {
	res, err := t.Write(reg, opts)
	if err != nil {
		return Result{}, err
	}
	if err := s.SendInitial(ctx, res.Payload); err != nil {
		if res.Chunk.HasMore && reg != nil {
			reg.Release(res.Chunk.Next)
		}
		return Result{}, fmt.Errorf("%w: send initial: %w", ErrTransportFailure, err)
	}
	return res, nil
}

// cursor is the unsent tail of a transfer. It is what a continuation
// handle refers to.
type cursor[T any] struct {
	list  []T
	pos   int
	carry []byte // encoding of list[pos] when it was cut off by the budget
	codec ElementCodec[T]
	guard typeGuard
	opts  Options
}

func (c *cursor[T]) more() bool { return c.pos < len(c.list) }

func (c *cursor[T]) logger() *zerolog.Logger { return c.opts.Logger }

// fill builds one chunk of at most limit elements. The size of each element
// is measured before it is committed; an element is only placed over budget
// when it is alone in the chunk.
func (c *cursor[T]) fill(limit int) (Chunk, []OversizedElement, error) {
	budget := NewSizeBudget(c.opts.MaxBytes)
	var chunk Chunk
	var diags []OversizedElement
	for c.more() && len(chunk.Elements) < limit {
		b := c.carry
		if b == nil {
			v := c.list[c.pos]
			if err := c.guard.check(c.pos, c.codec.TypeOf(v)); err != nil {
				return Chunk{}, nil, err
			}
			enc, err := c.codec.Encode(v)
			if err != nil {
				return Chunk{}, nil, fmt.Errorf("listslice: encode element %d: %w", c.pos, err)
			}
			b = enc
		}
		cost := ElementCost(len(b))
		fits := budget.WouldFit(len(b))
		if !fits && len(chunk.Elements) > 0 {
			c.carry = b
			break
		}
		switch {
		case !fits:
			diags = append(diags, OversizedElement{Index: c.pos, Size: cost, Limit: budget.Limit()})
		case cost > c.opts.WarnElementBytes:
			diags = append(diags, OversizedElement{Index: c.pos, Size: cost, Limit: c.opts.WarnElementBytes})
		}
		budget.Commit(len(b))
		chunk.Elements = append(chunk.Elements, b)
		c.carry = nil
		c.pos++
	}
	if l := c.logger(); l != nil {
		for _, d := range diags {
			l.Warn().Int("index", d.Index).Int("size", d.Size).Int("limit", d.Limit).Msg("oversized list element")
		}
	}
	return chunk, diags, nil
}

// next produces the chunk a redeemed handle stands for, parking any
// further remainder in reg.
func (c *cursor[T]) next(reg *Registry) (Chunk, error) {
	chunk, _, err := c.fill(math.MaxInt)
	if err != nil {
		return Chunk{}, err
	}
	if c.more() {
		chunk.HasMore = true
		chunk.Next = reg.park(c)
	}
	return chunk, nil
}

func (c *cursor[T]) remaining() int { return len(c.list) - c.pos }
