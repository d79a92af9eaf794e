package codec

import (
	"bytes"
	"testing"
)

type note struct {
	ID   string `json:"id" msgpack:"id" cbor:"id"`
	Body string `json:"body" msgpack:"body" cbor:"body"`
}

func TestMsgpackRoundTrip(t *testing.T) {
	c := Msgpack[note]{}
	in := note{ID: "n1", Body: "remember the milk"}

	b, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

// Deterministic mode must produce the same bytes for equal values even when
// the value is a map, where plain encoding order is not defined.
func TestCBORDeterministicIsStable(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	v := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}

	first, err := c.Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := c.Encode(map[string]int{"d": 4, "c": 3, "b": 2, "a": 1})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding varied: %x vs %x", first, again)
		}
	}

	out, err := c.Decode(first)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != len(v) || out["a"] != 1 || out["d"] != 4 {
		t.Fatalf("round trip = %v, want %v", out, v)
	}
}

func TestLimitRejectsOversizedPayload(t *testing.T) {
	c := Limit[string]{Inner: String{}, Max: 4}

	if _, err := c.Decode([]byte("hello!")); err == nil {
		t.Fatalf("Decode accepted a payload over the limit")
	}
	out, err := c.Decode([]byte("hi"))
	if err != nil || out != "hi" {
		t.Fatalf("Decode under the limit = (%q, %v)", out, err)
	}

	// Encode is not capped
	b, err := c.Encode("well over four bytes")
	if err != nil || len(b) <= 4 {
		t.Fatalf("Encode = (%q, %v)", b, err)
	}
}
