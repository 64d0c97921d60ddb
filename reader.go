package speedy

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
)

type source interface {
	io.Reader
	io.ByteReader
}

// Reader is the byte source a decode operation consumes. It wraps either a
// buffer-backed BytesReader (enabling zero-copy views and fail-fast bounds
// checks) or an arbitrary io.Reader (buffered via bufio, bytes materialized
// into owned storage).
//
// The first error encountered is latched and every subsequent operation
// becomes a no-op, so composite decoders can run a straight-line sequence of
// reads and check Err once at the end. A Reader is not safe for concurrent
// use; independent messages need independent Readers.
type Reader struct {
	r     source
	buf   *BytesReader // non-nil when buffer-backed
	count int64        // total bytes consumed
	err   error        // first error encountered
	order Endianness
	bo    binary.ByteOrder
	tmp   [8]byte // staging for scalar reads from streams
}

// NewReader creates a Reader over r using the given byte order.
// A *BytesReader input selects the buffer-backed path; an existing
// *bufio.Reader is used as-is to avoid double-buffering; anything else is
// wrapped in a bufio.Reader.
func NewReader(r io.Reader, e Endianness) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	rd := &Reader{order: e, bo: e.ByteOrder()}
	switch src := r.(type) {
	case *BytesReader:
		rd.r, rd.buf = src, src
	case *bufio.Reader:
		rd.r = src
	default:
		rd.r = bufio.NewReader(r)
	}
	return rd, nil
}

// Endianness returns the byte order this Reader decodes with.
func (r *Reader) Endianness() Endianness { return r.order }

// Count returns the total number of bytes consumed so far.
func (r *Reader) Count() int64 { return r.count }

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// Result returns the total bytes consumed and the final error state.
func (r *Reader) Result() (int64, error) { return r.count, r.err }

// Fail latches err as the Reader's error if none is set yet. Decoder
// implementations use it to surface validation failures.
func (r *Reader) Fail(err error) { r.setError(err) }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	r.setError(err)
	return n, r.err
}

// fill reads exactly len(p) bytes, latching the error state. A premature end
// of input becomes ErrTruncatedData; other I/O errors pass through verbatim.
func (r *Reader) fill(p []byte) error {
	if r.err != nil {
		return r.err
	}
	n, err := io.ReadFull(r.r, p)
	r.count += int64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = fmt.Errorf("%w: need %d bytes, got %d", ErrTruncatedData, len(p), n)
		}
		r.err = err
	}
	return r.err
}

// readFixed consumes exactly n bytes (n <= 8) and returns them in a slice
// valid only until the next read: a view into the backing buffer when
// buffer-backed, the internal staging array otherwise.
func (r *Reader) readFixed(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.buf != nil {
		b, err := r.buf.Next(n)
		if err != nil {
			r.err = fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedData, n, r.buf.Available())
			return nil
		}
		r.count += int64(n)
		return b
	}
	b := r.tmp[:n]
	if r.fill(b) != nil {
		return nil
	}
	return b
}

// ensure fails fast when a buffer-backed source cannot possibly supply n more
// bytes, before anything is allocated or consumed. Stream-backed sources
// cannot know their remaining length and always return true.
func (r *Reader) ensure(n int) bool {
	if r.err != nil {
		return false
	}
	if r.buf != nil && n > r.buf.Available() {
		r.err = fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedData, n, r.buf.Available())
		return false
	}
	return true
}

// readAlloc returns an owned slice of exactly n bytes from the source. A
// stream-backed Reader grows the result in capped chunks as bytes actually
// arrive, so a hostile length prefix cannot force a huge allocation up front.
// The returned slice is never exposed partially filled.
func (r *Reader) readAlloc(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.buf != nil {
		src, err := r.buf.Next(n)
		if err != nil {
			r.err = fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedData, n, r.buf.Available())
			return nil
		}
		r.count += int64(n)
		return append(make([]byte, 0, n), src...)
	}
	out := make([]byte, 0, min(n, chunkSize))
	for len(out) < n {
		step := min(n-len(out), chunkSize)
		out = slices.Grow(out, step)[:len(out)+step]
		if r.fill(out[len(out)-step:]) != nil {
			return nil
		}
	}
	return out
}

// ReadBytes reads n raw bytes verbatim and returns them as an owned slice.
// A negative count latches ErrLengthOverflow, matching the write side.
func (r *Reader) ReadBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 {
		r.err = fmt.Errorf("%w: %d bytes requested", ErrLengthOverflow, n)
		return nil
	}
	if n == 0 {
		return nil
	}
	return r.readAlloc(n)
}

// ReadBytesTo reads exactly len(dest) raw bytes into dest.
func (r *Reader) ReadBytesTo(dest []byte) {
	if len(dest) == 0 {
		return
	}
	r.fill(dest)
}

// --- Primitive read operations ---

func (r *Reader) ReadBool(dest *bool) {
	if b := r.readFixed(1); r.err == nil {
		*dest = b[0] != 0
	}
}

func (r *Reader) ReadUint8(dest *uint8) {
	if b := r.readFixed(1); r.err == nil {
		*dest = b[0]
	}
}

func (r *Reader) ReadUint16(dest *uint16) {
	if b := r.readFixed(2); r.err == nil {
		*dest = r.bo.Uint16(b)
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	if b := r.readFixed(4); r.err == nil {
		*dest = r.bo.Uint32(b)
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	if b := r.readFixed(8); r.err == nil {
		*dest = r.bo.Uint64(b)
	}
}

func (r *Reader) ReadInt8(dest *int8) {
	if b := r.readFixed(1); r.err == nil {
		*dest = int8(b[0])
	}
}

func (r *Reader) ReadInt16(dest *int16) {
	if b := r.readFixed(2); r.err == nil {
		*dest = int16(r.bo.Uint16(b))
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	if b := r.readFixed(4); r.err == nil {
		*dest = int32(r.bo.Uint32(b))
	}
}

func (r *Reader) ReadInt64(dest *int64) {
	if b := r.readFixed(8); r.err == nil {
		*dest = int64(r.bo.Uint64(b))
	}
}

func (r *Reader) ReadFloat32(dest *float32) {
	if b := r.readFixed(4); r.err == nil {
		*dest = math.Float32frombits(r.bo.Uint32(b))
	}
}

func (r *Reader) ReadFloat64(dest *float64) {
	if b := r.readFixed(8); r.err == nil {
		*dest = math.Float64frombits(r.bo.Uint64(b))
	}
}
