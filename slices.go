package speedy

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"golang.org/x/exp/constraints"
)

// Every variable-length payload shares one wire shape: a u32 element count in
// the context byte order, then count*elementSize raw payload bytes. There is
// no 64-bit length variant.

// readLength decodes the u32 count prefix.
func (r *Reader) readLength() int {
	var n uint32
	r.ReadUint32(&n)
	if r.err != nil {
		return 0
	}
	if uint64(n) > uint64(math.MaxInt) {
		r.err = fmt.Errorf("%w: %d elements", ErrLengthOverflow, n)
		return 0
	}
	return int(n)
}

// writeLength encodes the u32 count prefix, rejecting lengths a u32 cannot hold.
func (w *Writer) writeLength(n int) bool {
	if w.err != nil {
		return false
	}
	if n < 0 || uint64(n) > math.MaxUint32 {
		w.err = fmt.Errorf("%w: %d elements", ErrLengthOverflow, n)
		return false
	}
	w.WriteUint32(uint32(n))
	return w.err == nil
}

// ReadByteSlice decodes a length-prefixed byte payload into an owned slice.
// An empty payload decodes to nil.
func (r *Reader) ReadByteSlice(dest *[]byte) {
	n := r.readLength()
	if !r.ensure(n) {
		return
	}
	if n == 0 {
		*dest = nil
		return
	}
	if b := r.readAlloc(n); r.err == nil {
		*dest = b
	}
}

// ReadByteSliceView decodes a length-prefixed byte payload as a view into the
// backing buffer when the source is buffer-backed, avoiding the copy. The
// view is valid only while the backing buffer is. Stream-backed sources fall
// back to an owned copy; the wire shape is identical either way.
func (r *Reader) ReadByteSliceView(dest *[]byte) {
	n := r.readLength()
	if !r.ensure(n) {
		return
	}
	if n == 0 {
		*dest = nil
		return
	}
	if r.buf != nil {
		b, _ := r.buf.Next(n)
		r.count += int64(n)
		*dest = b
		return
	}
	if b := r.readAlloc(n); r.err == nil {
		*dest = b
	}
}

// WriteByteSlice encodes a length-prefixed byte payload. Borrowed and owned
// slices produce identical bytes.
func (w *Writer) WriteByteSlice(p []byte) {
	if w.writeLength(len(p)) {
		w.WriteBytes(p)
	}
}

// ReadInt8Slice decodes the byte-vector wire layout and converts each element
// to its signed value. The conversion is a lossless single-byte bit-pattern
// reinterpretation, so the layout is byte-identical to ReadByteSlice.
func (r *Reader) ReadInt8Slice(dest *[]int8) {
	var raw []byte
	r.ReadByteSliceView(&raw)
	if r.err != nil {
		return
	}
	if len(raw) == 0 {
		*dest = nil
		return
	}
	out := make([]int8, len(raw))
	for i, b := range raw {
		out[i] = int8(b)
	}
	*dest = out
}

// WriteInt8Slice encodes signed bytes using the byte-vector wire layout.
func (w *Writer) WriteInt8Slice(v []int8) {
	if !w.writeLength(len(v)) {
		return
	}
	p, scratch := getScratch(min(len(v), chunkSize))
	defer putScratch(p)
	for idx := 0; idx < len(v) && w.err == nil; {
		batch := min(len(v)-idx, len(scratch))
		for i := 0; i < batch; i++ {
			scratch[i] = byte(v[idx+i])
		}
		_, _ = w.Write(scratch[:batch])
		idx += batch
	}
}

// ReadString decodes a length-prefixed UTF-8 payload. Invalid UTF-8 fails
// with ErrInvalidUTF8; the string is never substituted or truncated.
func (r *Reader) ReadString(dest *string) {
	var raw []byte
	r.ReadByteSliceView(&raw)
	if r.err != nil {
		return
	}
	if !utf8.Valid(raw) {
		r.err = ErrInvalidUTF8
		return
	}
	*dest = string(raw)
}

// WritePrefixedString encodes a string with the byte-vector wire layout.
// (WriteString is the raw, unprefixed io.StringWriter method.)
func (w *Writer) WritePrefixedString(s string) {
	if w.writeLength(len(s)) {
		_, _ = w.WriteString(s)
	}
}

type numeric interface {
	constraints.Integer | constraints.Float
}

// readNumericSlice decodes a length-prefixed vector of multi-byte numerics.
// The raw wire bytes are read in bulk and then converted in one pass per
// element width, rather than swapped inside a scalar read loop. Buffer-backed
// sources convert straight out of the backing buffer; stream-backed sources
// stage through a pooled scratch buffer in element-aligned chunks, growing
// the result only as bytes actually arrive.
func readNumericSlice[T numeric](r *Reader, width int, get func(binary.ByteOrder, []byte) T) []T {
	n := r.readLength()
	if r.err != nil {
		return nil
	}
	if n > math.MaxInt/width {
		r.err = fmt.Errorf("%w: %d elements of %d bytes", ErrLengthOverflow, n, width)
		return nil
	}
	if n == 0 || !r.ensure(n*width) {
		return nil
	}
	if r.buf != nil {
		raw, _ := r.buf.Next(n * width)
		r.count += int64(n * width)
		out := make([]T, n)
		for i := range out {
			out[i] = get(r.bo, raw[i*width:])
		}
		return out
	}
	p, scratch := getScratch(min(n*width, chunkSize))
	defer putScratch(p)
	out := make([]T, 0, min(n, chunkSize/width))
	for len(out) < n {
		batch := min(n-len(out), len(scratch)/width)
		chunk := scratch[:batch*width]
		if r.fill(chunk) != nil {
			return nil
		}
		for i := 0; i < batch; i++ {
			out = append(out, get(r.bo, chunk[i*width:]))
		}
	}
	return out
}

// writeNumericSlice encodes a length-prefixed vector of multi-byte numerics,
// staging elements into a pooled scratch buffer so the sink sees a few large
// writes instead of one per element.
func writeNumericSlice[T numeric](w *Writer, v []T, width int, put func(binary.ByteOrder, []byte, T)) {
	if !w.writeLength(len(v)) {
		return
	}
	if len(v) == 0 {
		return
	}
	p, scratch := getScratch(min(len(v)*width, chunkSize))
	defer putScratch(p)
	for idx := 0; idx < len(v) && w.err == nil; {
		batch := min(len(v)-idx, len(scratch)/width)
		chunk := scratch[:batch*width]
		for i := 0; i < batch; i++ {
			put(w.bo, chunk[i*width:], v[idx+i])
		}
		_, _ = w.Write(chunk)
		idx += batch
	}
}

// --- Per-width vector operations ---

func (r *Reader) ReadUint16Slice(dest *[]uint16) {
	if out := readNumericSlice(r, 2, func(bo binary.ByteOrder, b []byte) uint16 { return bo.Uint16(b) }); r.err == nil {
		*dest = out
	}
}

func (r *Reader) ReadUint32Slice(dest *[]uint32) {
	if out := readNumericSlice(r, 4, func(bo binary.ByteOrder, b []byte) uint32 { return bo.Uint32(b) }); r.err == nil {
		*dest = out
	}
}

func (r *Reader) ReadUint64Slice(dest *[]uint64) {
	if out := readNumericSlice(r, 8, func(bo binary.ByteOrder, b []byte) uint64 { return bo.Uint64(b) }); r.err == nil {
		*dest = out
	}
}

func (r *Reader) ReadInt16Slice(dest *[]int16) {
	if out := readNumericSlice(r, 2, func(bo binary.ByteOrder, b []byte) int16 { return int16(bo.Uint16(b)) }); r.err == nil {
		*dest = out
	}
}

func (r *Reader) ReadInt32Slice(dest *[]int32) {
	if out := readNumericSlice(r, 4, func(bo binary.ByteOrder, b []byte) int32 { return int32(bo.Uint32(b)) }); r.err == nil {
		*dest = out
	}
}

func (r *Reader) ReadInt64Slice(dest *[]int64) {
	if out := readNumericSlice(r, 8, func(bo binary.ByteOrder, b []byte) int64 { return int64(bo.Uint64(b)) }); r.err == nil {
		*dest = out
	}
}

func (r *Reader) ReadFloat32Slice(dest *[]float32) {
	if out := readNumericSlice(r, 4, func(bo binary.ByteOrder, b []byte) float32 { return math.Float32frombits(bo.Uint32(b)) }); r.err == nil {
		*dest = out
	}
}

func (r *Reader) ReadFloat64Slice(dest *[]float64) {
	if out := readNumericSlice(r, 8, func(bo binary.ByteOrder, b []byte) float64 { return math.Float64frombits(bo.Uint64(b)) }); r.err == nil {
		*dest = out
	}
}

func (w *Writer) WriteUint16Slice(v []uint16) {
	writeNumericSlice(w, v, 2, func(bo binary.ByteOrder, b []byte, x uint16) { bo.PutUint16(b, x) })
}

func (w *Writer) WriteUint32Slice(v []uint32) {
	writeNumericSlice(w, v, 4, func(bo binary.ByteOrder, b []byte, x uint32) { bo.PutUint32(b, x) })
}

func (w *Writer) WriteUint64Slice(v []uint64) {
	writeNumericSlice(w, v, 8, func(bo binary.ByteOrder, b []byte, x uint64) { bo.PutUint64(b, x) })
}

func (w *Writer) WriteInt16Slice(v []int16) {
	writeNumericSlice(w, v, 2, func(bo binary.ByteOrder, b []byte, x int16) { bo.PutUint16(b, uint16(x)) })
}

func (w *Writer) WriteInt32Slice(v []int32) {
	writeNumericSlice(w, v, 4, func(bo binary.ByteOrder, b []byte, x int32) { bo.PutUint32(b, uint32(x)) })
}

func (w *Writer) WriteInt64Slice(v []int64) {
	writeNumericSlice(w, v, 8, func(bo binary.ByteOrder, b []byte, x int64) { bo.PutUint64(b, uint64(x)) })
}

func (w *Writer) WriteFloat32Slice(v []float32) {
	writeNumericSlice(w, v, 4, func(bo binary.ByteOrder, b []byte, x float32) { bo.PutUint32(b, math.Float32bits(x)) })
}

func (w *Writer) WriteFloat64Slice(v []float64) {
	writeNumericSlice(w, v, 8, func(bo binary.ByteOrder, b []byte, x float64) { bo.PutUint64(b, math.Float64bits(x)) })
}
