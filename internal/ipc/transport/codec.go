package transport

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameBytes is the hard ceiling on a single frame.
const MaxFrameBytes = 16 << 20

var ErrFrameTooLarge = errors.New("transport: frame too large")

// WriteFrame writes a varint length-prefixed frame to w.
func WriteFrame(w io.Writer, b []byte) error {
	if len(b) > MaxFrameBytes {
		return fmt.Errorf("%w: %d", ErrFrameTooLarge, len(b))
	}
	var lenbuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenbuf[:], uint64(len(b)))
	if _, err := w.Write(lenbuf[:n]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadFrame reads a single length-prefixed frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	ln, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	if ln > MaxFrameBytes {
		return nil, fmt.Errorf("%w: %d", ErrFrameTooLarge, ln)
	}
	buf := make([]byte, ln)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

type byteReader interface {
	io.Reader
	io.ByteReader
}
