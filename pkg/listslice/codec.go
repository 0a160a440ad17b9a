package listslice

// TypeID names the concrete type of an element. Two elements share a type
// exactly when their TypeIDs are equal.
type TypeID string

// ElementCodec converts elements of T to and from bytes and reports the
// concrete type of a value. T is typically an interface implemented by
// several concrete types, any one of which may form a transfer.
type ElementCodec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(b []byte) (T, error)
	TypeOf(v T) TypeID
}
