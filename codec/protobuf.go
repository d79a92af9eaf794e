package codec

import "google.golang.org/protobuf/proto"

// Protobuf serializes proto messages. Decode needs a fresh message of the
// concrete type to unmarshal into, so the codec carries a constructor:
//
//	codec.NewProtobuf(func() *userpb.User { return &userpb.User{} })
type Protobuf[M proto.Message] struct {
	ctor func() M
}

func NewProtobuf[M proto.Message](ctor func() M) Protobuf[M] {
	return Protobuf[M]{ctor: ctor}
}

func (c Protobuf[M]) Encode(m M) ([]byte, error) { return proto.Marshal(m) }

func (c Protobuf[M]) Decode(b []byte) (M, error) {
	m := c.ctor()
	err := proto.Unmarshal(b, m)
	return m, err
}
