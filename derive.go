package speedy

import (
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// program is one type's compiled realization of the layout contract: a read
// function, a write function, and the type's minimum wire size. Compiling
// once and caching keeps reflection cost out of the per-value hot path.
type program struct {
	min   int
	read  func(*Reader, reflect.Value)
	write func(*Writer, reflect.Value)
}

var programCache = xsync.NewMap[reflect.Type, *program]()

var (
	readableType = reflect.TypeOf((*Readable)(nil)).Elem()
	writableType = reflect.TypeOf((*Writable)(nil)).Elem()
)

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func programFor(t reflect.Type) (*program, error) {
	if p, ok := programCache.Load(t); ok {
		return p, nil
	}
	c := compiler{built: map[reflect.Type]*program{}}
	p, err := c.compile(t)
	if err != nil {
		return nil, err
	}
	for bt, bp := range c.built {
		programCache.Store(bt, bp)
	}
	return p, nil
}

// compiler tracks in-progress programs so self-referential types (a struct
// holding a slice of itself) compile through a placeholder instead of
// recursing forever. Minimum sizes read through a placeholder may
// underestimate, which the hint contract allows.
type compiler struct {
	built map[reflect.Type]*program
}

func (c *compiler) compile(t reflect.Type) (*program, error) {
	if p, ok := programCache.Load(t); ok {
		return p, nil
	}
	if p, ok := c.built[t]; ok {
		return p, nil
	}
	p := &program{}
	c.built[t] = p
	if err := c.populate(t, p); err != nil {
		delete(c.built, t)
		return nil, err
	}
	return p, nil
}

// sliceProgram bridges a concrete slice codec to reflect, converting through
// the plain slice type so named slice types work too.
func sliceProgram[T any](t reflect.Type, read func(*Reader, *[]T), write func(*Writer, []T)) (func(*Reader, reflect.Value), func(*Writer, reflect.Value)) {
	plain := typeOf[[]T]()
	rf := func(r *Reader, v reflect.Value) {
		var s []T
		read(r, &s)
		if r.err != nil {
			return
		}
		sv := reflect.ValueOf(s)
		if t != plain {
			sv = sv.Convert(t)
		}
		v.Set(sv)
	}
	wf := func(w *Writer, v reflect.Value) {
		if t != plain {
			v = v.Convert(plain)
		}
		write(w, v.Interface().([]T))
	}
	return rf, wf
}

func (c *compiler) populate(t reflect.Type, p *program) error {
	// A hand-written (or generated) codec implementation wins over reflection.
	if pt := reflect.PointerTo(t); pt.Implements(readableType) && pt.Implements(writableType) {
		p.min = reflect.New(t).Interface().(Readable).MinimumBytes()
		p.read = func(r *Reader, v reflect.Value) {
			v.Addr().Interface().(Readable).ReadValue(r)
		}
		p.write = func(w *Writer, v reflect.Value) {
			v.Addr().Interface().(Writable).WriteValue(w)
		}
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		p.min = 1
		p.read = func(r *Reader, v reflect.Value) {
			var x bool
			r.ReadBool(&x)
			if r.err == nil {
				v.SetBool(x)
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WriteBool(v.Bool()) }

	case reflect.Uint8:
		p.min = 1
		p.read = func(r *Reader, v reflect.Value) {
			var x uint8
			r.ReadUint8(&x)
			if r.err == nil {
				v.SetUint(uint64(x))
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WriteUint8(uint8(v.Uint())) }

	case reflect.Uint16:
		p.min = 2
		p.read = func(r *Reader, v reflect.Value) {
			var x uint16
			r.ReadUint16(&x)
			if r.err == nil {
				v.SetUint(uint64(x))
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WriteUint16(uint16(v.Uint())) }

	case reflect.Uint32:
		p.min = 4
		p.read = func(r *Reader, v reflect.Value) {
			var x uint32
			r.ReadUint32(&x)
			if r.err == nil {
				v.SetUint(uint64(x))
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WriteUint32(uint32(v.Uint())) }

	case reflect.Uint64:
		p.min = 8
		p.read = func(r *Reader, v reflect.Value) {
			var x uint64
			r.ReadUint64(&x)
			if r.err == nil {
				v.SetUint(x)
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WriteUint64(v.Uint()) }

	case reflect.Int8:
		p.min = 1
		p.read = func(r *Reader, v reflect.Value) {
			var x int8
			r.ReadInt8(&x)
			if r.err == nil {
				v.SetInt(int64(x))
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WriteInt8(int8(v.Int())) }

	case reflect.Int16:
		p.min = 2
		p.read = func(r *Reader, v reflect.Value) {
			var x int16
			r.ReadInt16(&x)
			if r.err == nil {
				v.SetInt(int64(x))
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WriteInt16(int16(v.Int())) }

	case reflect.Int32:
		p.min = 4
		p.read = func(r *Reader, v reflect.Value) {
			var x int32
			r.ReadInt32(&x)
			if r.err == nil {
				v.SetInt(int64(x))
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WriteInt32(int32(v.Int())) }

	case reflect.Int64:
		p.min = 8
		p.read = func(r *Reader, v reflect.Value) {
			var x int64
			r.ReadInt64(&x)
			if r.err == nil {
				v.SetInt(x)
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WriteInt64(v.Int()) }

	case reflect.Float32:
		p.min = 4
		p.read = func(r *Reader, v reflect.Value) {
			var x float32
			r.ReadFloat32(&x)
			if r.err == nil {
				v.SetFloat(float64(x))
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WriteFloat32(float32(v.Float())) }

	case reflect.Float64:
		p.min = 8
		p.read = func(r *Reader, v reflect.Value) {
			var x float64
			r.ReadFloat64(&x)
			if r.err == nil {
				v.SetFloat(x)
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WriteFloat64(v.Float()) }

	case reflect.String:
		p.min = 4
		p.read = func(r *Reader, v reflect.Value) {
			var s string
			r.ReadString(&s)
			if r.err == nil {
				v.SetString(s)
			}
		}
		p.write = func(w *Writer, v reflect.Value) { w.WritePrefixedString(v.String()) }

	case reflect.Slice:
		p.min = 4
		switch t.Elem() {
		case typeOf[uint8]():
			p.read, p.write = sliceProgram(t, (*Reader).ReadByteSlice, (*Writer).WriteByteSlice)
		case typeOf[int8]():
			p.read, p.write = sliceProgram(t, (*Reader).ReadInt8Slice, (*Writer).WriteInt8Slice)
		case typeOf[uint16]():
			p.read, p.write = sliceProgram(t, (*Reader).ReadUint16Slice, (*Writer).WriteUint16Slice)
		case typeOf[int16]():
			p.read, p.write = sliceProgram(t, (*Reader).ReadInt16Slice, (*Writer).WriteInt16Slice)
		case typeOf[uint32]():
			p.read, p.write = sliceProgram(t, (*Reader).ReadUint32Slice, (*Writer).WriteUint32Slice)
		case typeOf[int32]():
			p.read, p.write = sliceProgram(t, (*Reader).ReadInt32Slice, (*Writer).WriteInt32Slice)
		case typeOf[uint64]():
			p.read, p.write = sliceProgram(t, (*Reader).ReadUint64Slice, (*Writer).WriteUint64Slice)
		case typeOf[int64]():
			p.read, p.write = sliceProgram(t, (*Reader).ReadInt64Slice, (*Writer).WriteInt64Slice)
		case typeOf[float32]():
			p.read, p.write = sliceProgram(t, (*Reader).ReadFloat32Slice, (*Writer).WriteFloat32Slice)
		case typeOf[float64]():
			p.read, p.write = sliceProgram(t, (*Reader).ReadFloat64Slice, (*Writer).WriteFloat64Slice)
		default:
			// Slice of composites: u32 count, then each element's encoding.
			ep, err := c.compile(t.Elem())
			if err != nil {
				return err
			}
			elem := t.Elem()
			p.read = func(r *Reader, v reflect.Value) {
				n := r.readLength()
				if !r.ensure(n * ep.min) {
					return
				}
				if n == 0 {
					v.Set(reflect.Zero(t))
					return
				}
				s := reflect.MakeSlice(t, 0, min(n, 4096))
				for i := 0; i < n && r.err == nil; i++ {
					ev := reflect.New(elem).Elem()
					ep.read(r, ev)
					if r.err == nil {
						s = reflect.Append(s, ev)
					}
				}
				if r.err == nil {
					v.Set(s)
				}
			}
			p.write = func(w *Writer, v reflect.Value) {
				if !w.writeLength(v.Len()) {
					return
				}
				for i := 0; i < v.Len() && w.err == nil; i++ {
					ep.write(w, v.Index(i))
				}
			}
		}

	case reflect.Array:
		ep, err := c.compile(t.Elem())
		if err != nil {
			return err
		}
		n := t.Len()
		p.min = n * ep.min
		p.read = func(r *Reader, v reflect.Value) {
			for i := 0; i < n && r.err == nil; i++ {
				ep.read(r, v.Index(i))
			}
		}
		p.write = func(w *Writer, v reflect.Value) {
			for i := 0; i < n && w.err == nil; i++ {
				ep.write(w, v.Index(i))
			}
		}

	case reflect.Struct:
		// Exported fields in declaration order, concatenated: no padding, no
		// field tags on the wire. A zero-field struct encodes to zero bytes.
		type field struct {
			index int
			prog  *program
		}
		var fields []field
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" || f.Tag.Get("speedy") == "-" {
				continue
			}
			fp, err := c.compile(f.Type)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", t, f.Name, err)
			}
			fields = append(fields, field{i, fp})
			p.min += fp.min
		}
		p.read = func(r *Reader, v reflect.Value) {
			for _, f := range fields {
				if r.err != nil {
					return
				}
				f.prog.read(r, v.Field(f.index))
			}
		}
		p.write = func(w *Writer, v reflect.Value) {
			for _, f := range fields {
				if w.err != nil {
					return
				}
				f.prog.write(w, v.Field(f.index))
			}
		}

	case reflect.Interface:
		rt, ok := enumRegistry.Load(t)
		if !ok {
			return fmt.Errorf("%w: interface %s has no registered enum", ErrUnsupportedType, t)
		}
		p.min = rt.min
		p.read = func(r *Reader, v reflect.Value) {
			if x, ok := rt.read(r); ok {
				v.Set(x)
			}
		}
		p.write = rt.write

	case reflect.Int, reflect.Uint, reflect.Uintptr:
		return fmt.Errorf("%w: %s has platform-dependent width, use a fixed-width type", ErrUnsupportedType, t)

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return nil
}
