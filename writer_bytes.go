package speedy

import "io"

// BytesWriter is the buffer-backed byte sink. It writes into a pre-allocated
// slice and will not grow it; a write that exceeds the remaining space writes
// as much as it can and returns io.ErrShortWrite.
type BytesWriter struct {
	B []byte // destination slice
	N int    // current write position
}

// NewBytesWriter creates a new BytesWriter over p.
func NewBytesWriter(p []byte) *BytesWriter {
	return &BytesWriter{B: p[:cap(p)]}
}

// Write implements the io.Writer interface.
func (w *BytesWriter) Write(p []byte) (int, error) {
	if len(p) > len(w.B)-w.N {
		n := copy(w.B[w.N:], p)
		w.N += n
		return n, io.ErrShortWrite
	}
	n := copy(w.B[w.N:], p)
	w.N += n
	return n, nil
}

// WriteString implements the io.StringWriter interface.
func (w *BytesWriter) WriteString(s string) (int, error) {
	if len(s) > len(w.B)-w.N {
		n := copy(w.B[w.N:], s)
		w.N += n
		return n, io.ErrShortWrite
	}
	n := copy(w.B[w.N:], s)
	w.N += n
	return n, nil
}

// WriteByte implements the io.ByteWriter interface.
func (w *BytesWriter) WriteByte(c byte) error {
	if w.N >= len(w.B) {
		return io.ErrShortWrite
	}
	w.B[w.N] = c
	w.N++
	return nil
}

// Flush does nothing; the destination is the buffer itself.
func (w *BytesWriter) Flush() error { return nil }

// Reset allows the underlying byte slice to be reused.
func (w *BytesWriter) Reset() { w.N = 0 }

// Len returns the number of bytes written.
func (w *BytesWriter) Len() int { return w.N }

// Size returns the capacity of the underlying byte slice.
func (w *BytesWriter) Size() int { return len(w.B) }

// Available returns the number of bytes available for writing.
func (w *BytesWriter) Available() int { return len(w.B) - w.N }

// Bytes returns a view of the written data.
func (w *BytesWriter) Bytes() []byte { return w.B[:w.N] }
