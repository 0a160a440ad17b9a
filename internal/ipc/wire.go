package ipc

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/nihilian/ncheditor/internal/parcel"
	"github.com/nihilian/ncheditor/pkg/listslice"
)

var ErrBadFrame = errors.New("ipc: malformed frame")

const (
	msgName protowire.Number = iota + 1
	msgPackage
	msgID
	msgUser
	msgIncludeDeleted
	msgFields
	msgHandle
	msgRecord
	msgIfFingerprint
	msgAppID
)

const (
	respOK protowire.Number = iota + 1
	respMsg
	respRecord
	respChunk
	respUID
)

const (
	kvKey protowire.Number = iota + 1
	kvValue
)

var codec parcel.Codec

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, p []byte) []byte {
	if len(p) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, p)
}

func appendInt(b []byte, num protowire.Number, v int) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v)))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

// MarshalBinary encodes m as a protobuf message.
func (m Message) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendString(b, msgName, m.Name)
	b = appendString(b, msgPackage, m.Package)
	b = appendString(b, msgID, m.ID)
	b = appendInt(b, msgUser, m.User)
	b = appendBool(b, msgIncludeDeleted, m.IncludeDeleted)
	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var kv []byte
		kv = appendString(kv, kvKey, k)
		kv = protowire.AppendTag(kv, kvValue, protowire.BytesType)
		kv = protowire.AppendString(kv, m.Fields[k])
		b = protowire.AppendTag(b, msgFields, protowire.BytesType)
		b = protowire.AppendBytes(b, kv)
	}
	if !m.Handle.IsZero() {
		b = appendBytes(b, msgHandle, m.Handle[:])
	}
	if m.Record != nil {
		rb, err := codec.Encode(m.Record)
		if err != nil {
			return nil, err
		}
		b = appendBytes(b, msgRecord, rb)
	}
	b = appendString(b, msgIfFingerprint, m.IfFingerprint)
	b = appendInt(b, msgAppID, m.AppID)
	return b, nil
}

// UnmarshalBinary decodes a message produced by MarshalBinary.
func (m *Message) UnmarshalBinary(data []byte) error {
	*m = Message{}
	return walk(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case msgName, msgPackage, msgID, msgIfFingerprint:
			s, n := consumeString(typ, v)
			switch num {
			case msgName:
				m.Name = s
			case msgPackage:
				m.Package = s
			case msgID:
				m.ID = s
			case msgIfFingerprint:
				m.IfFingerprint = s
			}
			return n, nil
		case msgUser, msgAppID:
			x, n := consumeVarint(typ, v)
			if num == msgUser {
				m.User = int(protowire.DecodeZigZag(x))
			} else {
				m.AppID = int(protowire.DecodeZigZag(x))
			}
			return n, nil
		case msgIncludeDeleted:
			x, n := consumeVarint(typ, v)
			m.IncludeDeleted = protowire.DecodeBool(x)
			return n, nil
		case msgFields:
			p, n := consumeBytes(typ, v)
			if n < 0 {
				return n, nil
			}
			var key, val string
			err := walk(p, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
				s, n := consumeString(typ, v)
				switch num {
				case kvKey:
					key = s
				case kvValue:
					val = s
				default:
					return skip, nil
				}
				return n, nil
			})
			if err != nil {
				return 0, err
			}
			if m.Fields == nil {
				m.Fields = map[string]string{}
			}
			m.Fields[key] = val
			return n, nil
		case msgHandle:
			p, n := consumeBytes(typ, v)
			if n < 0 {
				return n, nil
			}
			h, err := listslice.HandleFromBytes(p)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrBadFrame, err)
			}
			m.Handle = h
			return n, nil
		case msgRecord:
			p, n := consumeBytes(typ, v)
			if n < 0 {
				return n, nil
			}
			r, err := codec.Decode(p)
			if err != nil {
				return 0, err
			}
			m.Record = r
			return n, nil
		}
		return skip, nil
	})
}

// MarshalBinary encodes r as a protobuf message.
func (r Response) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendBool(b, respOK, r.OK)
	b = appendString(b, respMsg, r.Msg)
	if r.Record != nil {
		rb, err := codec.Encode(r.Record)
		if err != nil {
			return nil, err
		}
		b = appendBytes(b, respRecord, rb)
	}
	b = appendBytes(b, respChunk, r.Chunk)
	b = appendInt(b, respUID, r.UID)
	return b, nil
}

// UnmarshalBinary decodes a response produced by MarshalBinary.
func (r *Response) UnmarshalBinary(data []byte) error {
	*r = Response{}
	return walk(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case respOK:
			x, n := consumeVarint(typ, v)
			r.OK = protowire.DecodeBool(x)
			return n, nil
		case respMsg:
			s, n := consumeString(typ, v)
			r.Msg = s
			return n, nil
		case respRecord:
			p, n := consumeBytes(typ, v)
			if n < 0 {
				return n, nil
			}
			rec, err := codec.Decode(p)
			if err != nil {
				return 0, err
			}
			r.Record = rec
			return n, nil
		case respChunk:
			p, n := consumeBytes(typ, v)
			r.Chunk = append([]byte(nil), p...)
			return n, nil
		case respUID:
			x, n := consumeVarint(typ, v)
			r.UID = int(protowire.DecodeZigZag(x))
			return n, nil
		}
		return skip, nil
	})
}

const skip = math.MinInt32

// errWireType is returned through the consume helpers as a negative length.
const errWireType = -1

func consumeString(typ protowire.Type, v []byte) (string, int) {
	if typ != protowire.BytesType {
		return "", errWireType
	}
	return protowire.ConsumeString(v)
}

func consumeBytes(typ protowire.Type, v []byte) ([]byte, int) {
	if typ != protowire.BytesType {
		return nil, errWireType
	}
	return protowire.ConsumeBytes(v)
}

func consumeVarint(typ protowire.Type, v []byte) (uint64, int) {
	if typ != protowire.VarintType {
		return 0, errWireType
	}
	return protowire.ConsumeVarint(v)
}

func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrBadFrame, protowire.ParseError(n))
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
			return fmt.Errorf("%w: field %d", ErrBadFrame, num)
		}
		b = b[used:]
	}
	return nil
}
