package codec

import "fmt"

// Limit rejects payloads larger than Max bytes before they reach the inner
// codec's Decode. A shared store can hand back entries written by anyone; the
// cap keeps an oversized payload from being parsed at all. Encode passes
// through untouched. Max <= 0 disables the check.
type Limit[V any] struct {
	Inner Codec[V]
	Max   int
}

var _ Codec[struct{}] = Limit[struct{}]{}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.Max > 0 && len(b) > c.Max {
		var zero V
		return zero, fmt.Errorf("payload of %d bytes exceeds the %d byte decode limit", len(b), c.Max)
	}
	return c.Inner.Decode(b)
}
