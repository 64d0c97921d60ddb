package speedy

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type WriterTestSuite struct {
	suite.Suite
	buf    *bytes.Buffer
	writer *Writer
}

// SetupTest runs before each test in the suite, ensuring a clean state.
func (s *WriterTestSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.writer, _ = NewWriter(s.buf, LittleEndian)
}

func (s *WriterTestSuite) TestConstructor() {
	_, err := NewWriter(nil, LittleEndian)
	s.Assert().ErrorIs(err, ErrNilIO)
}

func (s *WriterTestSuite) TestBasicWrites() {
	s.writer.WriteBool(true)
	s.writer.WriteUint8(0xAA)
	s.writer.WriteUint16(0xBBCC)
	s.writer.WriteUint32(0xDDEEFF00)
	s.writer.WriteUint64(0x0102030405060708)
	s.writer.WriteInt8(-1)
	s.writer.WriteInt16(-2)
	s.writer.WriteFloat32(1.5)
	s.writer.WriteBytes([]byte{5, 6, 7})

	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(1+1+2+4+8+1+2+4+3, n)
	s.Assert().EqualValues(s.buf.Len(), s.writer.Count())

	expected := []byte{
		0x01,
		0xAA,
		0xCC, 0xBB,
		0x00, 0xFF, 0xEE, 0xDD,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		0xFF,
		0xFE, 0xFF,
		0x00, 0x00, 0xC0, 0x3F,
		5, 6, 7,
	}
	s.Assert().Equal(expected, s.buf.Bytes())
}

func (s *WriterTestSuite) TestBigEndianWrites() {
	w, err := NewWriter(s.buf, BigEndian)
	s.Require().NoError(err)

	w.WriteUint16(0xBBCC)
	w.WriteUint32(0xDDEEFF00)
	w.WriteFloat64(1.0)

	_, err = w.Result()
	s.Require().NoError(err)
	expected := []byte{
		0xBB, 0xCC,
		0xDD, 0xEE, 0xFF, 0x00,
		0x3F, 0xF0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	s.Assert().Equal(expected, s.buf.Bytes())
}

func (s *WriterTestSuite) TestShortBufferLatches() {
	w, err := NewWriter(NewBytesWriter(make([]byte, 5)), LittleEndian)
	s.Require().NoError(err)

	w.WriteUint32(0x11223344) // fits
	w.WriteUint32(0xAABBCCDD) // overflows the fixed buffer
	first := w.Err()
	s.Require().Error(first)
	s.Assert().ErrorIs(first, io.ErrShortWrite)

	// Subsequent writes must be no-ops with the original error preserved.
	w.WriteUint8(0xFF)
	s.Assert().Equal(first, w.Err())
}

func (s *WriterTestSuite) TestStreamPathFlushes() {
	var sinkBuf bytes.Buffer
	w, err := NewWriter(plainWriter{&sinkBuf}, LittleEndian)
	s.Require().NoError(err)

	w.WriteUint32(0xDDEEFF00)
	s.Assert().Zero(sinkBuf.Len(), "bytes stay buffered until Flush")

	n, err := w.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(4, n)
	s.Assert().Equal([]byte{0x00, 0xFF, 0xEE, 0xDD}, sinkBuf.Bytes())
}

func (s *WriterTestSuite) TestFailLatches() {
	s.writer.Fail(ErrLengthOverflow)
	s.writer.WriteUint64(7)
	_, err := s.writer.Result()
	s.Assert().ErrorIs(err, ErrLengthOverflow)
	s.Assert().Zero(s.buf.Len())
}

func TestWriter(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

func TestBytesWriterBounds(t *testing.T) {
	w := NewBytesWriter(make([]byte, 3))

	n, err := w.Write([]byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = w.Write([]byte{3, 4})
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte{1, 2, 3}, w.Bytes())
	assert.Zero(t, w.Available())
}
