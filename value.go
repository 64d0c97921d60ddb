package speedy

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// Readable is implemented by types that can decode themselves from a Reader.
// Implementations run their reads in sequence and rely on the Reader's
// error latching; they never return errors directly. This is the contract a
// code generator targets; hand-written implementations and the reflection
// fallback in derive.go are interchangeable.
type Readable interface {
	// ReadValue decodes the receiver from r. It must be a no-op when r
	// already carries an error.
	ReadValue(r *Reader)

	// MinimumBytes returns a static lower bound on the wire size of any
	// valid value of this type. It must never exceed the true minimum;
	// variable-length types report only their fixed prefix cost.
	MinimumBytes() int
}

// Writable is implemented by types that can encode themselves into a Writer.
type Writable interface {
	// WriteValue encodes the receiver into w. It must be a no-op when w
	// already carries an error.
	WriteValue(w *Writer)
}

// Decode decodes into v from r. v is either a Readable or a non-nil pointer
// to a type the layout contract covers, in which case the compiled
// reflection codec is used. Errors latch on r.
func Decode(r *Reader, v any) {
	if r.err != nil {
		return
	}
	if rd, ok := v.(Readable); ok {
		rd.ReadValue(r)
		return
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		r.setError(fmt.Errorf("%w, got %T", ErrNotAPointer, v))
		return
	}
	p, err := programFor(rv.Type().Elem())
	if err != nil {
		r.setError(err)
		return
	}
	p.read(r, rv.Elem())
}

// Encode encodes v into w. v is either a Writable or a value (or non-nil
// pointer to one) of a type the layout contract covers. Errors latch on w.
func Encode(w *Writer, v any) {
	if w.err != nil {
		return
	}
	if wr, ok := v.(Writable); ok {
		wr.WriteValue(w)
		return
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			w.setError(fmt.Errorf("%w: nil %T", ErrUnsupportedType, v))
			return
		}
		rv = rv.Elem()
	}
	p, err := programFor(rv.Type())
	if err != nil {
		w.setError(err)
		return
	}
	if !rv.CanAddr() {
		// Delegating codecs need an addressable value to take pointer
		// receivers on.
		tmp := reflect.New(rv.Type())
		tmp.Elem().Set(rv)
		rv = tmp.Elem()
	}
	p.write(w, rv)
}

// MinimumBytes returns v's static minimum wire size, the hint used to reject
// short inputs before decoding starts. Unsupported types report 0.
func MinimumBytes(v any) int {
	if rd, ok := v.(Readable); ok {
		return rd.MinimumBytes()
	}
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return 0
	}
	p, err := programFor(t)
	if err != nil {
		return 0
	}
	return p.min
}

// Unmarshal decodes v from data using the given byte order. Inputs shorter
// than v's minimum wire size are rejected before any byte is consumed.
// Trailing bytes after a complete value are not an error; callers may decode
// several values back to back from one buffer using a shared Reader.
func Unmarshal(data []byte, v any, e Endianness) error {
	if n := MinimumBytes(v); len(data) < n {
		return fmt.Errorf("%w: %d bytes for a value needing at least %d", ErrTruncatedData, len(data), n)
	}
	r, err := NewReader(NewBytesReader(data), e)
	if err != nil {
		return err
	}
	Decode(r, v)
	return r.Err()
}

// Marshal encodes v with the given byte order and returns the wire bytes.
// Encoding the same value with the same order always yields identical bytes.
func Marshal(v any, e Endianness) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, max(MinimumBytes(v), 16)))
	w, err := NewWriter(buf, e)
	if err != nil {
		return nil, err
	}
	Encode(w, v)
	if _, err := w.Result(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFromStream decodes v from a blocking byte stream.
func ReadFromStream(rd io.Reader, v any, e Endianness) error {
	r, err := NewReader(rd, e)
	if err != nil {
		return err
	}
	Decode(r, v)
	return r.Err()
}

// WriteToStream encodes v into a blocking byte stream and flushes.
func WriteToStream(wr io.Writer, v any, e Endianness) error {
	w, err := NewWriter(wr, e)
	if err != nil {
		return err
	}
	Encode(w, v)
	_, err = w.Result()
	return err
}
