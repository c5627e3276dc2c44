package smpp

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Cursor reads primitive SMPP wire types from a borrowed byte slice without copying until a
// caller explicitly asks for an owned string or octet string. All integers are big-endian (§4.1).
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps b for sequential reads. b is borrowed, not copied.
func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Pos returns the current read offset, useful for error messages.
func (c *Cursor) Pos() int {
	return c.pos
}

func (c *Cursor) take(n int) ([]byte, error) {
	if c.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d, have %d at offset %d", ErrInsufficientBytes, n, c.Remaining(), c.pos)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadUint8 reads one unsigned byte.
func (c *Cursor) ReadUint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a big-endian 16-bit unsigned integer.
func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadUint32 reads a big-endian 32-bit unsigned integer.
func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadOctetString returns exactly n raw bytes, or ErrInsufficientBytes.
func (c *Cursor) ReadOctetString(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadCOctetString scans for a NUL terminator within the next maxLen bytes (NUL included in the
// count) and returns the string without the terminator. Every byte before the NUL must be
// printable ASCII (0x20-0x7E); the string may be empty (a lone 0x00 byte), per spec §4.1.
func (c *Cursor) ReadCOctetString(maxLen int) (string, error) {
	limit := maxLen
	if c.Remaining() < limit {
		limit = c.Remaining()
	}
	nulAt := -1
	for i := 0; i < limit; i++ {
		if c.buf[c.pos+i] == 0x00 {
			nulAt = i
			break
		}
	}
	if nulAt == -1 {
		if c.Remaining() < maxLen {
			return "", fmt.Errorf("%w: scanned %d bytes, none left", ErrUnterminatedString, limit)
		}
		return "", fmt.Errorf("%w: no NUL within %d bytes", ErrStringTooLong, maxLen)
	}
	for i := 0; i < nulAt; i++ {
		if b := c.buf[c.pos+i]; b < 0x20 || b > 0x7E {
			return "", fmt.Errorf("%w: byte 0x%02X at offset %d", ErrInvalidAscii, b, c.pos+i)
		}
	}
	s := string(c.buf[c.pos : c.pos+nulAt])
	c.pos += nulAt + 1
	return s, nil
}

// ReadTLVs repeatedly decodes tag/length/value triples until the cursor is exhausted.
// It fails with ErrTruncated if a declared TLV length runs past the remaining bytes.
func (c *Cursor) ReadTLVs() ([]TLV, error) {
	var tlvs []TLV
	for c.Remaining() > 0 {
		if c.Remaining() < 4 {
			return nil, fmt.Errorf("%w: %d bytes left, need 4 for tag+length", ErrTruncated, c.Remaining())
		}
		tag, err := c.ReadUint16()
		if err != nil {
			return nil, err
		}
		length, err := c.ReadUint16()
		if err != nil {
			return nil, err
		}
		value, err := c.ReadOctetString(int(length))
		if err != nil {
			return nil, fmt.Errorf("%w: tlv tag 0x%04X declared length %d: %v", ErrTruncated, tag, length, err)
		}
		tlvs = append(tlvs, TLV{Tag: tag, Length: length, Value: value})
	}
	return tlvs, nil
}

// Writer builds an SMPP PDU body by appending primitive values to an in-memory buffer.
// Write methods never fail; callers validate lengths before calling them (§4.2).
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer. Callers that know the final size may preallocate with Grow.
func NewWriter() *Writer {
	return &Writer{}
}

// Grow reserves n additional bytes of capacity.
func (w *Writer) Grow(n int) {
	w.buf.Grow(n)
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteUint8 appends one byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf.WriteByte(v)
}

// WriteUint16 appends a big-endian 16-bit integer.
func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// WriteUint32 appends a big-endian 32-bit integer.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteOctetString appends b verbatim with no length prefix or terminator.
func (w *Writer) WriteOctetString(b []byte) {
	w.buf.Write(b)
}

// WriteCOctetString appends s followed by a mandatory NUL terminator. The caller must already
// have validated len(s)+1 <= the field's maximum (§4.2); this method does not re-validate.
func (w *Writer) WriteCOctetString(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0x00)
}

// WriteTLV appends a single tag/length/value triple.
func (w *Writer) WriteTLV(t TLV) {
	w.WriteUint16(t.Tag)
	w.WriteUint16(uint16(len(t.Value)))
	w.buf.Write(t.Value)
}

// WriteTLVs appends each TLV in order.
func (w *Writer) WriteTLVs(tlvs []TLV) {
	for _, t := range tlvs {
		w.WriteTLV(t)
	}
}

// validateCOctetString checks s fits within maxLen (NUL included) and is printable ASCII,
// mirroring the decode-side checks so the same rule applies on encode (§4.2).
func validateCOctetString(field, s string, maxLen int) error {
	if len(s)+1 > maxLen {
		return fmt.Errorf("%w: field %q length %d exceeds max %d", ErrStringTooLong, field, len(s), maxLen-1)
	}
	for i := 0; i < len(s); i++ {
		if b := s[i]; b < 0x20 || b > 0x7E {
			return fmt.Errorf("%w: field %q byte 0x%02X at index %d", ErrInvalidAscii, field, b, i)
		}
	}
	return nil
}
