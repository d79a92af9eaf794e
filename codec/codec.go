// Package codec turns cache values into the bytes a store holds and back.
// Every serializer in the cache implements the one Codec interface; the core
// never sees a concrete format.
package codec

// Codec converts values of type V to and from their stored byte form. A
// Decode that cannot produce a V returns an error; the cache treats such
// entries as absent rather than failing the read.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
