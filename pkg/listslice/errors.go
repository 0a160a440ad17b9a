package listslice

import (
	"errors"
	"fmt"
)

var (
	// ErrReuse is returned when a ListTransfer is written a second time.
	ErrReuse = errors.New("listslice: transfer already written")
	// ErrTypeMismatch reports an element whose type differs from the
	// transfer's established element type.
	ErrTypeMismatch = errors.New("listslice: element type mismatch")
	// ErrTransportFailure wraps any failed send or continuation pull.
	ErrTransportFailure = errors.New("listslice: transport failure")
	// ErrOversizedElement is informational: an element exceeded the per
	// chunk budget and was sent on its own.
	ErrOversizedElement = errors.New("listslice: element exceeds transaction budget")
	// ErrMalformedChunk reports a chunk that does not follow the wire format.
	ErrMalformedChunk = errors.New("listslice: malformed chunk")
	// ErrUnknownContinuation is returned by Registry.Redeem for handles that
	// were never issued, were already redeemed, or were evicted.
	ErrUnknownContinuation = errors.New("listslice: unknown continuation")
)

// TypeMismatchError carries the position and types of a rejected element.
type TypeMismatchError struct {
	Index    int
	Expected TypeID
	Actual   TypeID
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("listslice: element %d has type %q, transfer type is %q", e.Index, e.Actual, e.Expected)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// OversizedElement is the diagnostic recorded when a single element costs
// more than the warning threshold. Index is the position in the source list.
type OversizedElement struct {
	Index int
	Size  int
	Limit int
}

func (o OversizedElement) Error() string {
	return fmt.Sprintf("listslice: element %d is %d bytes, limit %d", o.Index, o.Size, o.Limit)
}

func (o OversizedElement) Unwrap() error { return ErrOversizedElement }

func transportErr(op string, h Handle, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrTransportFailure, op, h, err)
}
