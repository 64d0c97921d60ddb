package speedy

import (
	"fmt"
	"math"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// Go has no sum types, so a tagged union is expressed as a closed set of
// variant types behind an interface. On the wire an enum value is a u32
// discriminant in the context byte order followed by the variant's payload,
// encoded exactly as a struct (a unit variant is a zero-field struct and
// contributes zero payload bytes).

// Variant declares one member of an enum's variant set.
type Variant[T any] struct {
	factory  func() T
	tag      uint32
	explicit bool
}

// NewVariant declares a variant by its factory. The factory must return a
// pointer to a fresh payload value (or a Readable/Writable implementation).
// Without an explicit discriminant the variant is numbered sequentially:
// the first variant is 0, each subsequent one is the previous discriminant + 1.
func NewVariant[T any](factory func() T) Variant[T] {
	return Variant[T]{factory: factory}
}

// WithDiscriminant pins an explicit discriminant value. Implicit variants
// that follow continue counting from it.
func (v Variant[T]) WithDiscriminant(tag uint32) Variant[T] {
	v.tag, v.explicit = tag, true
	return v
}

// Enum is a closed, immutable variant set over interface type T. The set is
// fixed at construction; decoding a discriminant outside it is a
// data-validation error, never a fallback.
type Enum[T any] struct {
	factories map[uint32]func() T
	tags      map[reflect.Type]uint32
	min       int
}

// NewEnum builds the variant set, resolving discriminant numbering and
// rejecting duplicates.
func NewEnum[T any](variants ...Variant[T]) (*Enum[T], error) {
	e := &Enum[T]{
		factories: make(map[uint32]func() T, len(variants)),
		tags:      make(map[reflect.Type]uint32, len(variants)),
	}
	next := uint64(0)
	payloadMin := -1
	for _, v := range variants {
		n := next
		if v.explicit {
			n = uint64(v.tag)
		}
		if n > math.MaxUint32 {
			return nil, fmt.Errorf("%w: implicit variant after %d", ErrDiscriminantOverflow, uint32(math.MaxUint32))
		}
		tag := uint32(n)
		next = n + 1
		if _, dup := e.factories[tag]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateDiscriminant, tag)
		}
		proto := v.factory()
		t := reflect.TypeOf(proto)
		if _, dup := e.tags[t]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVariant, t)
		}
		m, err := variantMinimum(proto)
		if err != nil {
			return nil, err
		}
		e.factories[tag] = v.factory
		e.tags[t] = tag
		if payloadMin < 0 || m < payloadMin {
			payloadMin = m
		}
	}
	if payloadMin < 0 {
		payloadMin = 0
	}
	e.min = 4 + payloadMin
	return e, nil
}

func variantMinimum(proto any) (int, error) {
	if rd, ok := proto.(Readable); ok {
		return rd.MinimumBytes(), nil
	}
	t := reflect.TypeOf(proto)
	if t == nil || t.Kind() != reflect.Pointer {
		return 0, fmt.Errorf("%w: variant factories must return pointers, got %T", ErrUnsupportedType, proto)
	}
	p, err := programFor(t.Elem())
	if err != nil {
		return 0, err
	}
	return p.min, nil
}

// MinimumBytes is 4 for the discriminant plus the smallest variant payload
// minimum.
func (e *Enum[T]) MinimumBytes() int { return e.min }

// Read decodes one value of the set. An unknown discriminant latches
// ErrUnknownDiscriminant on r.
func (e *Enum[T]) Read(r *Reader) T {
	var zero T
	var tag uint32
	r.ReadUint32(&tag)
	if r.err != nil {
		return zero
	}
	factory, ok := e.factories[tag]
	if !ok {
		r.err = fmt.Errorf("%w: %d", ErrUnknownDiscriminant, tag)
		return zero
	}
	v := factory()
	Decode(r, v)
	if r.err != nil {
		return zero
	}
	return v
}

// Write encodes v's discriminant and payload. A concrete type outside the
// variant set latches ErrUnknownVariant on w.
func (e *Enum[T]) Write(w *Writer, v T) {
	if w.err != nil {
		return
	}
	tag, ok := e.tags[reflect.TypeOf(v)]
	if !ok {
		w.err = fmt.Errorf("%w: %T", ErrUnknownVariant, v)
		return
	}
	w.WriteUint32(tag)
	Encode(w, v)
}

// enumRuntime is the untyped view of an Enum the reflection codec dispatches
// through for interface-typed struct fields.
type enumRuntime struct {
	min   int
	read  func(*Reader) (reflect.Value, bool)
	write func(*Writer, reflect.Value)
}

var enumRegistry = xsync.NewMap[reflect.Type, *enumRuntime]()

// RegisterEnum publishes e for interface type T so interface-typed fields of
// derived structs decode and encode through it. Register before the first
// decode or encode of any struct containing such a field; registration is
// concurrency-safe.
func RegisterEnum[T any](e *Enum[T]) {
	it := reflect.TypeOf((*T)(nil)).Elem()
	enumRegistry.Store(it, &enumRuntime{
		min: e.min,
		read: func(r *Reader) (reflect.Value, bool) {
			v := e.Read(r)
			if r.err != nil {
				return reflect.Value{}, false
			}
			return reflect.ValueOf(v), true
		},
		write: func(w *Writer, v reflect.Value) {
			if v.IsNil() {
				w.setError(fmt.Errorf("%w: nil interface value", ErrUnknownVariant))
				return
			}
			x, ok := v.Interface().(T)
			if !ok {
				w.setError(fmt.Errorf("%w: %s", ErrUnknownVariant, v.Type()))
				return
			}
			e.Write(w, x)
		},
	})
}
