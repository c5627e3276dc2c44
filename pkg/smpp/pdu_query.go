package smpp

import "fmt"

// QuerySM asks the SMSC for the current state of a previously submitted message (§4.2).
type QuerySM struct {
	MessageID string
	Source    Address
}

func (*QuerySM) CommandID() uint32 { return CommandQuerySM }

func (q *QuerySM) Marshal(w *Writer) {
	w.WriteCOctetString(q.MessageID)
	q.Source.marshal(w)
}

func (q *QuerySM) Unmarshal(c *Cursor) error {
	var err error
	if q.MessageID, err = c.ReadCOctetString(MaxMessageIDLength); err != nil {
		return err
	}
	return q.Source.unmarshal(c, MaxAddressLength)
}

func (q *QuerySM) Validate() error {
	if err := validateCOctetString("message_id", q.MessageID, MaxMessageIDLength); err != nil {
		return err
	}
	return q.Source.validate("source_addr")
}

// QuerySMResp reports a message's final_date/message_state/error_code (§4.2).
type QuerySMResp struct {
	MessageID    string
	FinalDate    string
	MessageState uint8
	ErrorCode    uint8
}

func (*QuerySMResp) CommandID() uint32 { return CommandQuerySMResp }

func (q *QuerySMResp) Marshal(w *Writer) {
	w.WriteCOctetString(q.MessageID)
	w.WriteCOctetString(q.FinalDate)
	w.WriteUint8(q.MessageState)
	w.WriteUint8(q.ErrorCode)
}

func (q *QuerySMResp) Unmarshal(c *Cursor) error {
	if c.Remaining() == 0 {
		return nil
	}
	var err error
	if q.MessageID, err = c.ReadCOctetString(MaxMessageIDLength); err != nil {
		return err
	}
	if q.FinalDate, err = c.ReadCOctetString(MaxDateTimeLength); err != nil {
		return err
	}
	if q.MessageState, err = c.ReadUint8(); err != nil {
		return err
	}
	q.ErrorCode, err = c.ReadUint8()
	return err
}

func (q *QuerySMResp) Validate() error {
	if err := validateCOctetString("message_id", q.MessageID, MaxMessageIDLength); err != nil {
		return err
	}
	if len(q.FinalDate) != 0 && len(q.FinalDate) != MaxDateTimeLength-1 {
		return fmt.Errorf("%w: final_date must be empty or %d chars", ErrStringTooLong, MaxDateTimeLength-1)
	}
	return nil
}

func init() {
	register(CommandQuerySM, func() Body { return &QuerySM{} })
	register(CommandQuerySMResp, func() Body { return &QuerySMResp{} })
}
