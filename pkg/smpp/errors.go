package smpp

import (
	"errors"
	"fmt"
)

// Frame/codec errors (spec §4.1, §4.3, §7.2-§7.3). Checked with errors.Is.
var (
	ErrInsufficientBytes    = errors.New("smpp: insufficient bytes remaining")
	ErrUnterminatedString   = errors.New("smpp: c-octet string missing NUL terminator")
	ErrStringTooLong        = errors.New("smpp: c-octet string exceeds maximum length")
	ErrInvalidAscii         = errors.New("smpp: non-printable byte in c-octet string")
	ErrTrailingBytes        = errors.New("smpp: body has unconsumed trailing bytes")
	ErrTruncated            = errors.New("smpp: body truncated before declared length")
	ErrFrameTooLarge        = errors.New("smpp: command_length exceeds max_frame_size")
	ErrInvalidCommandLength = errors.New("smpp: command_length out of range [16, 65536]")
	ErrUnknownCommandID     = errors.New("smpp: unrecognized command_id")
	ErrDuplicateTLV         = errors.New("smpp: duplicate non-repeatable TLV tag")

	// Session/runtime errors (§7.1, §7.4, §5).
	ErrOrphanResponse       = errors.New("smpp: response matched no pending request")
	ErrTimeout              = errors.New("smpp: request timed out waiting for response")
	ErrSessionClosed        = errors.New("smpp: session is closed")
	ErrBackpressure         = errors.New("smpp: flow control token unavailable and rate is zero")
	ErrUnsupportedInVersion = errors.New("smpp: PDU not supported under negotiated version")
	ErrIllegalState         = errors.New("smpp: PDU not legal in current session state")
	ErrMismatchedResponse   = errors.New("smpp: response command_id does not match request")
)

// InvalidEnumError reports an out-of-range enumerated octet (§4.2 validation policy).
type InvalidEnumError struct {
	Field string
	Value uint32
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("smpp: invalid value %d for field %q", e.Value, e.Field)
}

// ProtocolViolationError covers state/command-id mismatches that are logged but non-fatal (§7.4).
type ProtocolViolationError struct {
	Reason string
}

func (e *ProtocolViolationError) Error() string {
	return "smpp: protocol violation: " + e.Reason
}

// FrameError wraps a frame-level decode failure with the sequence number recovered from the
// still-readable header, so the connection runtime can answer with a targeted generic_nack
// before closing (§4.3 step 2, §7.2). SequenceNumber is 0 when the header itself is unreadable.
type FrameError struct {
	Err            error
	SequenceNumber uint32
}

func (e *FrameError) Error() string { return e.Err.Error() }
func (e *FrameError) Unwrap() error { return e.Err }

// StatusError wraps a nonzero command_status returned by the peer (§7.5). It is not fatal to
// the session; it is handed back to the caller of SendRequest.
type StatusError struct {
	Status uint32
}

func (e *StatusError) Error() string {
	if name, ok := statusNames[e.Status]; ok {
		return fmt.Sprintf("smpp: peer returned %s (0x%08X)", name, e.Status)
	}
	return fmt.Sprintf("smpp: peer returned status 0x%08X", e.Status)
}

// NewStatusError returns nil for StatusOK and a *StatusError otherwise, so callers can write
// `if err := NewStatusError(resp.Header.CommandStatus); err != nil { ... }`.
func NewStatusError(status uint32) error {
	if status == StatusOK {
		return nil
	}
	return &StatusError{Status: status}
}

// isFatalFrameError reports whether err (typically unwrapped from a *FrameError) closes the
// session per §4.3/§7.2, versus being confined to the offending frame per §7.3.
func isFatalFrameError(err error) bool {
	return errors.Is(err, ErrFrameTooLarge) || errors.Is(err, ErrInvalidCommandLength)
}

// nackStatusFor maps a decode error to the generic_nack command_status the connection runtime
// replies with (§7.3). Errors with no specific mapping fall back to ESME_RSYSERR.
func nackStatusFor(err error) uint32 {
	var invalidEnum *InvalidEnumError
	switch {
	case errors.Is(err, ErrUnknownCommandID):
		return StatusInvCmdID
	case errors.Is(err, ErrFrameTooLarge), errors.Is(err, ErrInvalidCommandLength):
		return StatusInvCmdLen
	case errors.Is(err, ErrStringTooLong), errors.Is(err, ErrTrailingBytes), errors.Is(err, ErrTruncated), errors.Is(err, ErrInsufficientBytes):
		return StatusInvMsgLen
	case errors.Is(err, ErrInvalidAscii), errors.Is(err, ErrUnterminatedString), errors.Is(err, ErrDuplicateTLV):
		return StatusInvOptParamVal
	case errors.As(err, &invalidEnum):
		return StatusInvOptParamVal
	default:
		return StatusSysErr
	}
}
