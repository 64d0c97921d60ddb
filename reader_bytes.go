package speedy

import "io"

// BytesReader is the buffer-backed byte source. It borrows the slice it is
// given and never writes through it, so independent readers over the same
// immutable buffer are safe concurrently. The caller must keep the buffer
// alive for as long as any zero-copy view taken from it.
type BytesReader struct {
	B []byte // backing slice, borrowed
	N int    // current read position
}

// NewBytesReader creates a new BytesReader over b.
func NewBytesReader(b []byte) *BytesReader {
	return &BytesReader{B: b}
}

// Read implements the [io.Reader] interface.
func (r *BytesReader) Read(p []byte) (int, error) {
	if r.N >= len(r.B) {
		return 0, io.EOF
	}
	n := copy(p, r.B[r.N:])
	r.N += n
	return n, nil
}

// ReadByte implements the [io.ByteReader] interface.
func (r *BytesReader) ReadByte() (byte, error) {
	if r.N >= len(r.B) {
		return 0, io.EOF
	}
	b := r.B[r.N]
	r.N++
	return b, nil
}

// Next consumes the next n bytes and returns them as a view into the backing
// buffer, without copying. It returns io.EOF when fewer than n bytes remain,
// consuming nothing.
func (r *BytesReader) Next(n int) ([]byte, error) {
	if n > len(r.B)-r.N {
		return nil, io.EOF
	}
	b := r.B[r.N : r.N+n]
	r.N += n
	return b, nil
}

// Reset allows the underlying byte slice to be reused.
func (r *BytesReader) Reset() {
	r.N = 0
}

// Len returns the number of bytes read so far.
func (r *BytesReader) Len() int {
	return r.N
}

// Size returns the size of the underlying byte slice.
func (r *BytesReader) Size() int {
	return len(r.B)
}

// Available returns the number of bytes remaining.
func (r *BytesReader) Available() int {
	n := len(r.B) - r.N
	if n <= 0 {
		return 0
	}
	return n
}
