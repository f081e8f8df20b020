package oto

import (
	"encoding/binary"
)

// Int8BufferTo16BitLE appends 8-bit samples to dst as 16-bit little-endian
// integers, scaling them to the full 16-bit range.
func Int8BufferTo16BitLE(dst []byte, buffer []int8) []byte {
	for _, v := range buffer {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(int16(v)<<8))
	}
	return dst
}
