// Package parcel encodes api records as protobuf wire messages so they can
// travel as elements of a chunked list transfer.
package parcel

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/nihilian/ncheditor/pkg/api"
	"github.com/nihilian/ncheditor/pkg/listslice"
)

var (
	ErrCorrupt     = errors.New("parcel: corrupt record")
	ErrUnknownKind = errors.New("parcel: unknown record kind")
)

// Envelope field numbers.
const (
	fieldKind protowire.Number = 1
	fieldBody protowire.Number = 2
)

// Codec implements listslice.ElementCodec for api.Record.
type Codec struct{}

var _ listslice.ElementCodec[api.Record] = Codec{}

func (Codec) TypeOf(r api.Record) listslice.TypeID {
	if r == nil {
		return ""
	}
	return listslice.TypeID(r.Kind())
}

func (Codec) Encode(r api.Record) ([]byte, error) {
	var body []byte
	switch v := r.(type) {
	case *api.Channel:
		if v == nil {
			return nil, fmt.Errorf("%w: nil channel", ErrCorrupt)
		}
		body = MarshalChannel(v)
	case *api.ChannelGroup:
		if v == nil {
			return nil, fmt.Errorf("%w: nil group", ErrCorrupt)
		}
		body = MarshalGroup(v)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, r)
	}
	b := protowire.AppendTag(nil, fieldKind, protowire.BytesType)
	b = protowire.AppendString(b, string(r.Kind()))
	b = protowire.AppendTag(b, fieldBody, protowire.BytesType)
	b = protowire.AppendBytes(b, body)
	return b, nil
}

func (Codec) Decode(b []byte) (api.Record, error) {
	var (
		kind string
		body []byte
	)
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if typ != protowire.BytesType {
			return skip, nil
		}
		switch num {
		case fieldKind:
			s, n := protowire.ConsumeString(v)
			kind = s
			return n, nil
		case fieldBody:
			p, n := protowire.ConsumeBytes(v)
			body = p
			return n, nil
		}
		return skip, nil
	})
	if err != nil {
		return nil, err
	}
	switch api.Kind(kind) {
	case api.KindChannel:
		return UnmarshalChannel(body)
	case api.KindGroup:
		return UnmarshalGroup(body)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// skip tells walk to step over a field the visitor does not consume.
const skip = math.MinInt32

// walk visits every field of a message. fn returns the number of bytes it
// consumed from v, or skip.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
		}
		b = b[n:]
		used, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if used == skip {
			used = protowire.ConsumeFieldValue(num, typ, b)
		}
		if used < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrCorrupt, num, protowire.ParseError(used))
		}
		b = b[used:]
	}
	return nil
}
