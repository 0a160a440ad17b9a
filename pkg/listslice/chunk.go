package listslice

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Handle is an opaque, single-use reference to the rest of a transfer.
type Handle [handleSize]byte

// NewHandle returns a fresh random handle.
func NewHandle() Handle { return Handle(uuid.New()) }

// HandleFromBytes converts a wire value back into a Handle.
func HandleFromBytes(b []byte) (Handle, error) {
	var h Handle
	if len(b) != handleSize {
		return h, fmt.Errorf("%w: handle is %d bytes", ErrMalformedChunk, len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (h Handle) String() string { return uuid.UUID(h).String() }

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h == Handle{} }

// Chunk is one wire-level unit of a transfer: encoded elements in order,
// and a continuation handle when more elements remain.
//
// Wire layout: [count uint32 BE][hasMore 0|1][count length-delimited
// elements][16-byte handle, only when hasMore].
type Chunk struct {
	Elements [][]byte
	HasMore  bool
	Next     Handle
}

// Size returns the encoded size of c.
func (c Chunk) Size() int {
	n := chunkHeaderSize
	for _, e := range c.Elements {
		n += protowire.SizeBytes(len(e))
	}
	if c.HasMore {
		n += handleSize
	}
	return n
}

// MarshalBinary encodes c in the chunk wire layout.
func (c Chunk) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, c.Size())
	b = binary.BigEndian.AppendUint32(b, uint32(len(c.Elements)))
	if c.HasMore {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	for _, e := range c.Elements {
		b = protowire.AppendBytes(b, e)
	}
	if c.HasMore {
		b = append(b, c.Next[:]...)
	}
	return b, nil
}

// UnmarshalBinary decodes a chunk. Element slices alias data.
func (c *Chunk) UnmarshalBinary(data []byte) error {
	if len(data) < chunkHeaderSize {
		return fmt.Errorf("%w: short header (%d bytes)", ErrMalformedChunk, len(data))
	}
	count := binary.BigEndian.Uint32(data[:4])
	var hasMore bool
	switch data[4] {
	case 0:
	case 1:
		hasMore = true
	default:
		return fmt.Errorf("%w: hasMore byte %#x", ErrMalformedChunk, data[4])
	}
	rest := data[chunkHeaderSize:]
	// every element costs at least its one-byte length prefix
	if uint64(count) > uint64(len(rest)) {
		return fmt.Errorf("%w: count %d exceeds payload", ErrMalformedChunk, count)
	}
	elems := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		v, n := protowire.ConsumeBytes(rest)
		if n < 0 {
			return fmt.Errorf("%w: element %d: %v", ErrMalformedChunk, i, protowire.ParseError(n))
		}
		elems = append(elems, v)
		rest = rest[n:]
	}
	var next Handle
	if hasMore {
		if len(rest) < handleSize {
			return fmt.Errorf("%w: missing continuation handle", ErrMalformedChunk)
		}
		copy(next[:], rest[:handleSize])
		rest = rest[handleSize:]
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformedChunk, len(rest))
	}
	c.Elements, c.HasMore, c.Next = elems, hasMore, next
	return nil
}
