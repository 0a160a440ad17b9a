package listslice

import (
	"context"
	"errors"
	"fmt"
)

// Read decodes payload as the first chunk of a transfer and pulls every
// following chunk through p, in order, until a chunk without a
// continuation arrives. The element type is fixed by the first decoded
// element; any element of another type aborts the read with
// ErrTypeMismatch. On any error no elements are returned.
func Read[T any](ctx context.Context, payload []byte, codec ElementCodec[T], p Puller) ([]T, error) {
	var guard typeGuard
	out := []T{}
	seen := make(map[Handle]struct{})
	for {
		var c Chunk
		if err := c.UnmarshalBinary(payload); err != nil {
			return nil, err
		}
		for _, b := range c.Elements {
			v, err := codec.Decode(b)
			if err != nil {
				return nil, fmt.Errorf("%w: element %d: %w", ErrMalformedChunk, len(out), err)
			}
			if err := guard.check(len(out), codec.TypeOf(v)); err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if !c.HasMore {
			return out, nil
		}
		if _, dup := seen[c.Next]; dup {
			return nil, fmt.Errorf("%w: continuation %s repeated", ErrMalformedChunk, c.Next)
		}
		seen[c.Next] = struct{}{}
		if p == nil {
			return nil, transportErr("pull", c.Next, errors.New("no puller"))
		}
		if err := ctx.Err(); err != nil {
			return nil, transportErr("pull", c.Next, err)
		}
		next, err := p.PullContinuation(ctx, c.Next)
		if err != nil {
			return nil, transportErr("pull", c.Next, err)
		}
		payload = next
	}
}
