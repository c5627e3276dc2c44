package smpp

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameReaderReadsBackToBackFrames(t *testing.T) {
	first, err := Encode(NewRequest(1, &EnquireLink{}))
	require.NoError(t, err)
	second, err := Encode(NewRequest(2, &Unbind{}))
	require.NoError(t, err)

	fr := NewFrameReader(bytes.NewReader(append(first, second...)), 0)

	got, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, first, got)

	got, err = fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, second, got)

	_, err = fr.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

// slowReader yields one byte per Read call, exercising the incremental assembly path.
type slowReader struct {
	buf []byte
}

func (r *slowReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		return 0, io.EOF
	}
	p[0] = r.buf[0]
	r.buf = r.buf[1:]
	return 1, nil
}

func TestFrameReaderHandlesFragmentedStream(t *testing.T) {
	frame, err := Encode(NewRequest(9, &EnquireLink{}))
	require.NoError(t, err)

	fr := NewFrameReader(&slowReader{buf: frame}, 0)
	got, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, frame, got)
}

func TestFrameReaderRejectsOversizedFrame(t *testing.T) {
	w := NewWriter()
	encodeHeader(w, Header{CommandLength: 2048, CommandID: CommandSubmitSM, SequenceNumber: 5})
	fr := NewFrameReader(bytes.NewReader(w.Bytes()), 1024)

	_, err := fr.ReadFrame()
	var fe *FrameError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Equal(t, uint32(5), fe.SequenceNumber)
}

func TestFrameReaderRejectsCommandLengthBelowHeader(t *testing.T) {
	w := NewWriter()
	encodeHeader(w, Header{CommandLength: 8, CommandID: CommandSubmitSM, SequenceNumber: 3})
	fr := NewFrameReader(bytes.NewReader(w.Bytes()), 0)

	_, err := fr.ReadFrame()
	var fe *FrameError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, ErrInvalidCommandLength)
	assert.Equal(t, uint32(3), fe.SequenceNumber)
}

func TestFrameWriterRetriesShortWrites(t *testing.T) {
	var out bytes.Buffer
	fw := NewFrameWriter(&shortWriter{w: &out})
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	require.NoError(t, fw.WriteFrame(buf))
	assert.Equal(t, buf, out.Bytes())
}

// shortWriter accepts at most two bytes per Write call.
type shortWriter struct {
	w io.Writer
}

func (s *shortWriter) Write(p []byte) (int, error) {
	if len(p) > 2 {
		p = p[:2]
	}
	return s.w.Write(p)
}
