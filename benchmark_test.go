package speedy

import (
	"encoding/binary"
	"testing"
)

type benchPayload struct {
	ID      uint32
	Val1    uint64
	Val2    uint64
	Val3    uint64
	IsAlive bool
	Tags    []uint16
}

func BenchmarkMarshal(b *testing.B) {
	v := benchPayload{ID: 1, Val1: 100, Tags: []uint16{1, 2, 3, 4}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Marshal(v, LittleEndian)
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	v := benchPayload{ID: 1, Val1: 100, Tags: []uint16{1, 2, 3, 4}}
	data, _ := Marshal(v, LittleEndian)
	var decoded benchPayload
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Unmarshal(data, &decoded, LittleEndian)
	}
}

func BenchmarkNumericSliceEncode(b *testing.B) {
	v := make([]uint64, 1024)
	for i := range v {
		v[i] = uint64(i)
	}
	buf := make([]byte, 4+len(v)*8)
	bw := NewBytesWriter(buf)
	w, _ := NewWriter(bw, LittleEndian)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bw.Reset()
		w.WriteUint64Slice(v)
	}
}

func BenchmarkNumericSliceDecode(b *testing.B) {
	v := make([]uint64, 1024)
	for i := range v {
		v[i] = uint64(i)
	}
	var buf [4 + 1024*8]byte
	binary.LittleEndian.PutUint32(buf[:], 1024)
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[4+i*8:], x)
	}
	br := NewBytesReader(buf[:])
	r, _ := NewReader(br, LittleEndian)
	var out []uint64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		br.Reset()
		r.ReadUint64Slice(&out)
	}
}
