package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter(make([]byte, 0, 64))
	w.WriteUint8(5)
	w.WriteUint32(1_000_000)
	w.WriteUint16(42)
	w.WriteBytes([]byte("hi"))
	w.WriteUint64(1234567890123)

	r := NewReader(w.Bytes())
	opcode, err := r.ReadUint8(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), opcode)

	id, err := r.ReadUint32(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1_000_000), id)

	count, err := r.ReadUint16(5)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), count)

	desc, err := r.ReadBytes(7, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), desc)

	ts, err := r.ReadUint64(9)
	require.NoError(t, err)
	assert.Equal(t, uint64(1234567890123), ts)
}

func TestReaderOutOfBoundsIsMalformed(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, err := r.ReadUint32(0)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = r.ReadUint8(3)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = r.ReadBytes(1, 10)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestWriterWouldExceed(t *testing.T) {
	w := NewWriter(make([]byte, 0, MaxDatagram))
	assert.False(t, w.WouldExceed(MaxDatagram))
	assert.True(t, w.WouldExceed(MaxDatagram+1))

	w.WriteBytes(make([]byte, MaxDatagram-1))
	assert.False(t, w.WouldExceed(1))
	assert.True(t, w.WouldExceed(2))
}

func TestNewWriterTruncatesSuppliedBuffer(t *testing.T) {
	buf := []byte{9, 9, 9, 9}
	w := NewWriter(buf)
	assert.Equal(t, 0, w.Len())
	w.WriteUint8(1)
	assert.Equal(t, 1, w.Len())
}
