package speedy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

type sink interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
	Flush() error
}

// bufferSink adapts a bytes.Buffer, which needs no flushing.
type bufferSink struct{ *bytes.Buffer }

func (bufferSink) Flush() error { return nil }

// Writer is the byte sink an encode operation fills. It mirrors Reader:
// first-error latching, a per-operation byte order, and a buffer-backed or
// stream-backed underlying sink.
type Writer struct {
	w     sink
	count int64 // total bytes written
	err   error // first error encountered
	order Endianness
	bo    binary.ByteOrder
	tmp   [8]byte
}

// NewWriter creates a Writer over w using the given byte order. A
// *BytesWriter or *bytes.Buffer is used directly; an existing *bufio.Writer
// is used as-is to avoid double-buffering; anything else is wrapped in a
// bufio.Writer, and the caller must Flush (or use Result) when done.
func NewWriter(w io.Writer, e Endianness) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	wr := &Writer{order: e, bo: e.ByteOrder()}
	switch dst := w.(type) {
	case *BytesWriter:
		wr.w = dst
	case *bytes.Buffer:
		wr.w = bufferSink{dst}
	case *bufio.Writer:
		wr.w = dst
	default:
		wr.w = bufio.NewWriter(w)
	}
	return wr, nil
}

// Endianness returns the byte order this Writer encodes with.
func (w *Writer) Endianness() Endianness { return w.order }

// Count returns the total number of bytes written so far.
func (w *Writer) Count() int64 { return w.count }

// Err returns the first error encountered, if any.
func (w *Writer) Err() error { return w.err }

// Fail latches err as the Writer's error if none is set yet.
func (w *Writer) Fail(err error) { w.setError(err) }

// setError records the first non-nil error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Flush writes any buffered data to the underlying sink.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.setError(w.w.Flush())
	return w.err
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Write implements the io.Writer interface.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteString writes a string's bytes without an intermediate copy.
func (w *Writer) WriteString(s string) (int, error) {
	if s == "" || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.WriteString(s)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteBytes writes a byte slice verbatim.
func (w *Writer) WriteBytes(p []byte) {
	_, _ = w.Write(p)
}

// --- Primitive write operations ---

func (w *Writer) writeByte(b byte) {
	if w.err != nil {
		return
	}
	if err := w.w.WriteByte(b); err != nil {
		w.err = err
		return
	}
	w.count++
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.writeByte(1)
	} else {
		w.writeByte(0)
	}
}

func (w *Writer) WriteUint8(v uint8) { w.writeByte(v) }

func (w *Writer) WriteUint16(v uint16) {
	if w.err != nil {
		return
	}
	w.bo.PutUint16(w.tmp[:2], v)
	_, _ = w.Write(w.tmp[:2])
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	w.bo.PutUint32(w.tmp[:4], v)
	_, _ = w.Write(w.tmp[:4])
}

func (w *Writer) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	w.bo.PutUint64(w.tmp[:8], v)
	_, _ = w.Write(w.tmp[:8])
}

func (w *Writer) WriteInt8(v int8) { w.writeByte(uint8(v)) }

func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }

func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }
