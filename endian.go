package speedy

import "encoding/binary"

// Endianness selects the byte order used for every multi-byte value in one
// encode or decode operation. It is the codec's context: both ends of the
// wire must agree on it out of band, the stream itself carries no marker.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

// ByteOrder returns the corresponding encoding/binary order.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// nativeIsLittle probes the host byte order by value; NativeEndian is a
// distinct ByteOrder and never compares equal to LittleEndian/BigEndian.
var nativeIsLittle = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// NeedsSwap reports whether the wire order differs from the native order.
func (e Endianness) NeedsSwap() bool {
	return (e == LittleEndian) != nativeIsLittle
}

func (e Endianness) String() string {
	if e == BigEndian {
		return "BigEndian"
	}
	return "LittleEndian"
}
