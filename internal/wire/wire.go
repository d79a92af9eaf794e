// Package wire frames the cache's bookkeeping entries (the dirty-key list
// and the instance-set marker) for storage in the same key space as ordinary
// values. The framing is private to kvcache; foreign bytes under the reserved
// keys decode as ErrCorrupt.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	version    byte = 1
	kindList   byte = 1
	kindMarker byte = 2
)

var (
	ErrCorrupt = errors.New("kvcache: corrupt bookkeeping entry")
	magic4     = [...]byte{'K', 'V', 'C', 'H'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// List: magic(4) | ver(1) | kind(1=list) | n(u32 be) | { klen(u16 be) | key(klen) } * n
//
// Empty keys are legal; a key over 64 KiB does not fit the length field and
// is an error, never a panic.
func EncodeList(keys []string) ([]byte, error) {
	total := 4 + 1 + 1 + 4
	for _, k := range keys {
		if len(k) > 0xFFFF {
			return nil, fmt.Errorf("kvcache: key of %d bytes exceeds list frame limit", len(k))
		}
		total += 2 + len(k)
	}

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindList)

	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint32(u4[:], uint32(len(keys)))
	buf.Write(u4[:])

	for _, k := range keys {
		binary.BigEndian.PutUint16(u2[:], uint16(len(k)))
		buf.Write(u2[:])
		buf.WriteString(k)
	}

	return buf.Bytes(), nil
}

func DecodeList(b []byte) ([]string, error) {
	const hdr = 4 + 1 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindList {
		return nil, ErrCorrupt
	}

	off := 6

	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// Every entry occupies at least its 2-byte length field. A count the
	// remaining bytes cannot hold is corruption; reject it before the count
	// sizes any allocation.
	if n < 0 || n > (len(b)-off)/2 {
		return nil, ErrCorrupt
	}

	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if off+2 > len(b) {
			return nil, ErrCorrupt
		}
		klen := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if klen > len(b)-off { // overflow-safe bound check
			return nil, ErrCorrupt
		}
		keys = append(keys, string(b[off:off+klen]))
		off += klen
	}

	return keys, nil
}

// Marker: magic(4) | ver(1) | kind(1=marker). Presence is the whole payload.
func EncodeMarker() []byte {
	return []byte{magic4[0], magic4[1], magic4[2], magic4[3], version, kindMarker}
}

func IsMarker(b []byte) bool {
	return len(b) == 6 && hasMagic(b) && b[4] == version && b[5] == kindMarker
}
