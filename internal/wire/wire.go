// Package wire implements the fixed-width, big-endian byte codec shared by
// every request and response of the ticket protocol. It performs no
// allocation beyond the caller-supplied buffer: Writer appends into a
// slice the caller owns, and Reader only ever slices the buffer it was
// given.
package wire

import (
	"encoding/binary"
	"errors"
)

// ErrMalformed is returned by every Reader method when the requested
// window falls outside the bytes actually received.
var ErrMalformed = errors.New("wire: malformed request")

// MaxDatagram is the UDP payload ceiling for IPv4 (65535 minus the 8-byte
// UDP header and worst-case 20-byte IP header omitted, matching the
// historical practical limit used by the protocol this server speaks).
const MaxDatagram = 65507

// Writer appends fixed-width fields to a byte slice in network order.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer that appends into buf, reusing its backing
// array. The caller-supplied buf is truncated to zero length first.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf[:0]}
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteUint16 appends v as two big-endian bytes.
func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint32 appends v as four big-endian bytes.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint64 appends v as eight big-endian bytes.
func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteBytes appends p verbatim, with no length prefix.
func (w *Writer) WriteBytes(p []byte) {
	w.buf = append(w.buf, p...)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WouldExceed reports whether appending n more bytes would push the
// buffer past MaxDatagram.
func (w *Writer) WouldExceed(n int) bool {
	return len(w.buf)+n > MaxDatagram
}

// Reader reads fixed-width fields from a received datagram, bounds
// checking every access against the datagram's actual length.
type Reader struct {
	buf []byte
}

// NewReader wraps buf for offset-indexed reads.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of bytes available to read.
func (r *Reader) Len() int {
	return len(r.buf)
}

func (r *Reader) window(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(r.buf) {
		return nil, ErrMalformed
	}
	return r.buf[offset : offset+length], nil
}

// ReadUint8 reads one byte at offset.
func (r *Reader) ReadUint8(offset int) (uint8, error) {
	b, err := r.window(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads two big-endian bytes at offset.
func (r *Reader) ReadUint16(offset int) (uint16, error) {
	b, err := r.window(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadUint32 reads four big-endian bytes at offset.
func (r *Reader) ReadUint32(offset int) (uint32, error) {
	b, err := r.window(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadUint64 reads eight big-endian bytes at offset.
func (r *Reader) ReadUint64(offset int) (uint64, error) {
	b, err := r.window(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadBytes returns the length bytes starting at offset. The returned
// slice aliases the reader's underlying buffer; callers that need to
// retain it past the buffer's reuse must copy it.
func (r *Reader) ReadBytes(offset, length int) ([]byte, error) {
	return r.window(offset, length)
}
