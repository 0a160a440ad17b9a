package listslice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type item interface{ label() string }

type word struct{ S string }

func (w word) label() string { return w.S }

type number struct{ N int }

func (n number) label() string { return strconv.Itoa(n.N) }

// itemCodec tags each element with a one-byte kind.
type itemCodec struct{}

func (itemCodec) Encode(v item) ([]byte, error) {
	switch x := v.(type) {
	case word:
		return append([]byte{'w'}, x.S...), nil
	case number:
		return append([]byte{'n'}, strconv.Itoa(x.N)...), nil
	default:
		return nil, fmt.Errorf("unsupported %T", v)
	}
}

func (itemCodec) Decode(b []byte) (item, error) {
	if len(b) == 0 {
		return nil, errors.New("empty element")
	}
	switch b[0] {
	case 'w':
		return word{S: string(b[1:])}, nil
	case 'n':
		n, err := strconv.Atoi(string(b[1:]))
		if err != nil {
			return nil, err
		}
		return number{N: n}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", b[0])
	}
}

func (itemCodec) TypeOf(v item) TypeID {
	switch v.(type) {
	case word:
		return "word"
	case number:
		return "number"
	default:
		return TypeID(fmt.Sprintf("%T", v))
	}
}

// fixedWord returns a word whose encoding is exactly size bytes.
func fixedWord(tag string, size int) word {
	return word{S: tag + strings.Repeat(".", size-1-len(tag))}
}

// registryPuller redeems handles straight from reg and records every
// payload it hands back.
type registryPuller struct {
	reg      *Registry
	payloads [][]byte
}

func (p *registryPuller) PullContinuation(_ context.Context, h Handle) ([]byte, error) {
	c, err := p.reg.Redeem(h)
	if err != nil {
		return nil, err
	}
	b, err := c.MarshalBinary()
	if err != nil {
		return nil, err
	}
	p.payloads = append(p.payloads, b)
	return b, nil
}

func mustMarshal(c Chunk) []byte {
	b, err := c.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return b
}

func encodeAll(vs ...item) [][]byte {
	out := make([][]byte, 0, len(vs))
	for _, v := range vs {
		b, err := itemCodec{}.Encode(v)
		if err != nil {
			panic(err)
		}
		out = append(out, b)
	}
	return out
}
