package smpp

import "fmt"

// Header is the fixed 16-octet SMPP PDU header (§3): four big-endian uint32 fields.
type Header struct {
	CommandLength  uint32
	CommandID      uint32
	CommandStatus  uint32
	SequenceNumber uint32
}

// HeaderSize is the wire size of Header in octets.
const HeaderSize = 16

// IsResponse reports whether CommandID has the high bit set (a response command id).
func (h Header) IsResponse() bool {
	return h.CommandID&CommandGenericNack != 0
}

// ResponseCommandID returns the command id a response to a request with this header must carry.
func (h Header) ResponseCommandID() uint32 {
	return h.CommandID | CommandGenericNack
}

// decodeHeader reads a Header from the first HeaderSize bytes of b.
func decodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrInsufficientBytes, HeaderSize, len(b))
	}
	c := NewCursor(b[:HeaderSize])
	var h Header
	h.CommandLength, _ = c.ReadUint32()
	h.CommandID, _ = c.ReadUint32()
	h.CommandStatus, _ = c.ReadUint32()
	h.SequenceNumber, _ = c.ReadUint32()
	return h, nil
}

// encodeHeader writes h into w.
func encodeHeader(w *Writer, h Header) {
	w.WriteUint32(h.CommandLength)
	w.WriteUint32(h.CommandID)
	w.WriteUint32(h.CommandStatus)
	w.WriteUint32(h.SequenceNumber)
}
