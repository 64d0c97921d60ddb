package speedy

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// plainReader hides the concrete type so NewReader takes the stream path.
type plainReader struct{ r io.Reader }

func (p plainReader) Read(b []byte) (int, error) { return p.r.Read(b) }

// plainWriter hides the concrete type so NewWriter takes the stream path.
type plainWriter struct{ w io.Writer }

func (p plainWriter) Write(b []byte) (int, error) { return p.w.Write(b) }

// backings returns one buffer-backed and one stream-backed Reader over the
// same bytes, so every test runs against both realizations.
func backings(t *testing.T, data []byte, e Endianness) map[string]*Reader {
	t.Helper()
	br, err := NewReader(NewBytesReader(data), e)
	require.NoError(t, err)
	sr, err := NewReader(plainReader{bytes.NewReader(data)}, e)
	require.NoError(t, err)
	return map[string]*Reader{"buffer": br, "stream": sr}
}

type ReaderTestSuite struct {
	suite.Suite
}

func (s *ReaderTestSuite) TestConstructor() {
	_, err := NewReader(nil, LittleEndian)
	s.Assert().ErrorIs(err, ErrNilIO)

	r, err := NewReader(NewBytesReader([]byte{1}), BigEndian)
	s.Require().NoError(err)
	s.Assert().Equal(BigEndian, r.Endianness())
}

func (s *ReaderTestSuite) TestScalarsLittleEndian() {
	data := []byte{
		0x01,       // bool
		0xAA,       // uint8
		0xCC, 0xBB, // uint16
		0x00, 0xFF, 0xEE, 0xDD, // uint32
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // uint64
		0xFF,       // int8
		0xFE, 0xFF, // int16
		0x00, 0x00, 0xC0, 0x3F, // float32 1.5
	}
	for name, r := range backings(s.T(), data, LittleEndian) {
		s.T().Run(name, func(t *testing.T) {
			var (
				b   bool
				u8  uint8
				u16 uint16
				u32 uint32
				u64 uint64
				i8  int8
				i16 int16
				f32 float32
			)
			r.ReadBool(&b)
			r.ReadUint8(&u8)
			r.ReadUint16(&u16)
			r.ReadUint32(&u32)
			r.ReadUint64(&u64)
			r.ReadInt8(&i8)
			r.ReadInt16(&i16)
			r.ReadFloat32(&f32)

			require.NoError(t, r.Err())
			assert.True(t, b)
			assert.Equal(t, uint8(0xAA), u8)
			assert.Equal(t, uint16(0xBBCC), u16)
			assert.Equal(t, uint32(0xDDEEFF00), u32)
			assert.Equal(t, uint64(0x0102030405060708), u64)
			assert.Equal(t, int8(-1), i8)
			assert.Equal(t, int16(-2), i16)
			assert.Equal(t, float32(1.5), f32)
			assert.EqualValues(t, len(data), r.Count())
		})
	}
}

func (s *ReaderTestSuite) TestScalarsBigEndian() {
	data := []byte{
		0xBB, 0xCC, // uint16
		0xDD, 0xEE, 0xFF, 0x00, // uint32
		0x3F, 0xF0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // float64 1.0
	}
	for name, r := range backings(s.T(), data, BigEndian) {
		s.T().Run(name, func(t *testing.T) {
			var (
				u16 uint16
				u32 uint32
				f64 float64
			)
			r.ReadUint16(&u16)
			r.ReadUint32(&u32)
			r.ReadFloat64(&f64)

			require.NoError(t, r.Err())
			assert.Equal(t, uint16(0xBBCC), u16)
			assert.Equal(t, uint32(0xDDEEFF00), u32)
			assert.Equal(t, 1.0, f64)
		})
	}
}

func (s *ReaderTestSuite) TestTruncatedInput() {
	for name, r := range backings(s.T(), []byte{1, 2, 3}, LittleEndian) {
		s.T().Run(name, func(t *testing.T) {
			var u32 uint32
			r.ReadUint32(&u32)
			require.Error(t, r.Err())
			assert.ErrorIs(t, r.Err(), ErrTruncatedData)
			assert.Zero(t, u32, "destination must stay unchanged on a failed read")
		})
	}
}

func (s *ReaderTestSuite) TestReadAfterErrorIsNoOp() {
	for name, r := range backings(s.T(), []byte{1, 2}, LittleEndian) {
		s.T().Run(name, func(t *testing.T) {
			var u32 uint32
			var u8 uint8
			r.ReadUint32(&u32)
			first := r.Err()
			require.Error(t, first)

			r.ReadUint8(&u8)
			assert.Equal(t, first, r.Err(), "the latched error must not change")
			assert.Zero(t, u8)
		})
	}
}

func (s *ReaderTestSuite) TestIOErrorPassesThrough() {
	boom := errors.New("connection reset")
	r, err := NewReader(plainReader{iotest{err: boom}}, LittleEndian)
	s.Require().NoError(err)

	var u16 uint16
	r.ReadUint16(&u16)
	s.Assert().ErrorIs(r.Err(), boom)
	s.Assert().NotErrorIs(r.Err(), ErrTruncatedData)
}

func (s *ReaderTestSuite) TestReadBytesIsOwned() {
	data := []byte{1, 2, 3, 4}
	r, err := NewReader(NewBytesReader(data), LittleEndian)
	s.Require().NoError(err)

	got := r.ReadBytes(4)
	s.Require().NoError(r.Err())
	s.Require().Equal([]byte{1, 2, 3, 4}, got)

	data[0] = 99
	s.Assert().Equal(byte(1), got[0], "ReadBytes must copy out of the backing buffer")
}

func (s *ReaderTestSuite) TestReadBytesRejectsNegativeCount() {
	r, err := NewReader(NewBytesReader([]byte{1, 2, 3}), LittleEndian)
	s.Require().NoError(err)

	s.Assert().Nil(r.ReadBytes(-1))
	s.Assert().ErrorIs(r.Err(), ErrLengthOverflow)
	s.Assert().Zero(r.Count(), "nothing may be consumed on a rejected count")
}

func (s *ReaderTestSuite) TestReadBytesTo() {
	for name, r := range backings(s.T(), []byte{9, 8, 7}, LittleEndian) {
		s.T().Run(name, func(t *testing.T) {
			dest := make([]byte, 3)
			r.ReadBytesTo(dest)
			require.NoError(t, r.Err())
			assert.Equal(t, []byte{9, 8, 7}, dest)
		})
	}
}

func (s *ReaderTestSuite) TestFailLatchesValidationErrors() {
	r, err := NewReader(NewBytesReader([]byte{1, 2}), LittleEndian)
	s.Require().NoError(err)

	r.Fail(ErrInvalidUTF8)
	var u8 uint8
	r.ReadUint8(&u8)
	s.Assert().ErrorIs(r.Err(), ErrInvalidUTF8)
	s.Assert().Zero(u8)
}

// iotest is an io.Reader that always fails with the given error.
type iotest struct{ err error }

func (i iotest) Read([]byte) (int, error) { return 0, i.err }

func TestReader(t *testing.T) {
	suite.Run(t, new(ReaderTestSuite))
}
