// Package listslice moves a large, homogeneous, ordered list across a
// request/response channel whose single transaction has a capped size.
//
// The producer wraps a list in a ListTransfer and writes it once. The first
// chunk carries as many elements as fit the byte budget (and the optional
// inline count limit); the remainder is parked in a Registry behind a
// single-use Handle. The consumer calls Read with the first chunk and a
// Puller, which redeems handles one round trip at a time until a chunk
// arrives with hasMore unset.
//
// Every element of one transfer must share a single concrete type. The type
// is fixed by the first element and checked again on the receiving side for
// every element, inline or pulled.
package listslice
