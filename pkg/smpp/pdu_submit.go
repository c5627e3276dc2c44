package smpp

import "fmt"

// smFields is the mandatory-field layout shared, byte-for-byte, by submit_sm and deliver_sm
// (§4.2: "deliver_sm: identical field layout to submit_sm"). Consolidating it here replaces the
// ~150 lines of duplicated Marshal/Unmarshal the teacher carried for the two PDUs.
type smFields struct {
	ServiceType          string
	Source               Address
	Dest                 Address
	EsmClass             uint8
	ProtocolID           uint8
	PriorityFlag         uint8
	ScheduleDeliveryTime string
	ValidityPeriod       string
	RegisteredDelivery   uint8
	ReplaceIfPresentFlag uint8
	DataCoding           uint8
	SmDefaultMsgID       uint8
	ShortMessage         ShortMessage
	TLVs                 []TLV
}

func (f *smFields) marshal(w *Writer) {
	w.WriteCOctetString(f.ServiceType)
	f.Source.marshal(w)
	f.Dest.marshal(w)
	w.WriteUint8(f.EsmClass)
	w.WriteUint8(f.ProtocolID)
	w.WriteUint8(f.PriorityFlag)
	w.WriteCOctetString(f.ScheduleDeliveryTime)
	w.WriteCOctetString(f.ValidityPeriod)
	w.WriteUint8(f.RegisteredDelivery)
	w.WriteUint8(f.ReplaceIfPresentFlag)
	w.WriteUint8(f.DataCoding)
	w.WriteUint8(f.SmDefaultMsgID)
	w.WriteUint8(uint8(len(f.ShortMessage)))
	w.WriteOctetString(f.ShortMessage)
	w.WriteTLVs(f.TLVs)
}

func (f *smFields) unmarshal(c *Cursor) error {
	var err error
	if f.ServiceType, err = c.ReadCOctetString(MaxServiceTypeLength); err != nil {
		return err
	}
	if err = f.Source.unmarshal(c, MaxAddressLength); err != nil {
		return err
	}
	if err = f.Dest.unmarshal(c, MaxAddressLength); err != nil {
		return err
	}
	if f.EsmClass, err = c.ReadUint8(); err != nil {
		return err
	}
	if f.ProtocolID, err = c.ReadUint8(); err != nil {
		return err
	}
	if f.PriorityFlag, err = c.ReadUint8(); err != nil {
		return err
	}
	if f.ScheduleDeliveryTime, err = c.ReadCOctetString(MaxDateTimeLength); err != nil {
		return err
	}
	if f.ValidityPeriod, err = c.ReadCOctetString(MaxDateTimeLength); err != nil {
		return err
	}
	if f.RegisteredDelivery, err = c.ReadUint8(); err != nil {
		return err
	}
	if f.ReplaceIfPresentFlag, err = c.ReadUint8(); err != nil {
		return err
	}
	if f.DataCoding, err = c.ReadUint8(); err != nil {
		return err
	}
	if f.SmDefaultMsgID, err = c.ReadUint8(); err != nil {
		return err
	}
	smLength, err := c.ReadUint8()
	if err != nil {
		return err
	}
	if f.ShortMessage, err = c.ReadOctetString(int(smLength)); err != nil {
		return err
	}
	tlvs, err := c.ReadTLVs()
	if err != nil {
		return err
	}
	f.TLVs, err = dedupeTLVs(tlvs)
	return err
}

// validate checks the fields whose bounds are version-independent. priorityMax lets callers
// apply a structural ceiling; the stricter v3.4 (3) vs v5.0 (4) ceiling from §9 is version-
// sensitive and enforced by the session layer at send time (connection.go's priorityFlagOf),
// since a codec-level Validate has no session/version context.
func (f *smFields) validate(priorityMax uint8) error {
	if err := validateCOctetString("service_type", f.ServiceType, MaxServiceTypeLength); err != nil {
		return err
	}
	if err := f.Source.validate("source_addr"); err != nil {
		return err
	}
	if err := f.Dest.validate("destination_addr"); err != nil {
		return err
	}
	if f.PriorityFlag > priorityMax {
		return &InvalidEnumError{Field: "priority_flag", Value: uint32(f.PriorityFlag)}
	}
	if f.ReplaceIfPresentFlag > 1 {
		return &InvalidEnumError{Field: "replace_if_present_flag", Value: uint32(f.ReplaceIfPresentFlag)}
	}
	if len(f.ScheduleDeliveryTime) != 0 && len(f.ScheduleDeliveryTime) != MaxDateTimeLength-1 {
		return fmt.Errorf("%w: schedule_delivery_time must be empty or %d chars", ErrStringTooLong, MaxDateTimeLength-1)
	}
	if len(f.ValidityPeriod) != 0 && len(f.ValidityPeriod) != MaxDateTimeLength-1 {
		return fmt.Errorf("%w: validity_period must be empty or %d chars", ErrStringTooLong, MaxDateTimeLength-1)
	}
	if len(f.ShortMessage) > MaxShortMessageLength {
		return fmt.Errorf("%w: short_message length %d exceeds %d", ErrStringTooLong, len(f.ShortMessage), MaxShortMessageLength)
	}
	return nil
}

// SubmitSM is sent by an ESME to submit a message for delivery (§4.2).
type SubmitSM struct{ smFields }

func (*SubmitSM) CommandID() uint32 { return CommandSubmitSM }
func (s *SubmitSM) Marshal(w *Writer) { s.smFields.marshal(w) }
func (s *SubmitSM) Unmarshal(c *Cursor) error { return s.smFields.unmarshal(c) }
func (s *SubmitSM) Validate() error { return s.smFields.validate(PriorityLevel4) }

// DeliverSM carries an inbound message or delivery receipt from SMSC to ESME (§4.2); shares
// submit_sm's exact wire layout.
type DeliverSM struct{ smFields }

func (*DeliverSM) CommandID() uint32 { return CommandDeliverSM }
func (d *DeliverSM) Marshal(w *Writer) { d.smFields.marshal(w) }
func (d *DeliverSM) Unmarshal(c *Cursor) error { return d.smFields.unmarshal(c) }
func (d *DeliverSM) Validate() error { return d.smFields.validate(PriorityLevel4) }

// IsDeliveryReceipt reports whether esm_class's message-type bits (2-5) mark this as a delivery
// receipt rather than a regular inbound message (§4.2, §9 supplemental: receipt parsing).
func (d *DeliverSM) IsDeliveryReceipt() bool {
	return d.EsmClass&0x3C == 0x04
}

// smRespFields is the message_id-only body shared by submit_sm_resp, deliver_sm_resp, and
// data_sm_resp (§4.2: "If command_status != 0, body is empty/single NUL", §3 invariant 6).
type smRespFields struct {
	MessageID string
	TLVs      []TLV
}

func (f *smRespFields) marshal(w *Writer) {
	w.WriteCOctetString(f.MessageID)
	w.WriteTLVs(f.TLVs)
}

func (f *smRespFields) unmarshal(c *Cursor) error {
	// An error response carries no body at all, or a single NUL (§3 invariant 6).
	if c.Remaining() == 0 {
		return nil
	}
	var err error
	if f.MessageID, err = c.ReadCOctetString(MaxMessageIDLength); err != nil {
		return err
	}
	tlvs, err := c.ReadTLVs()
	if err != nil {
		return err
	}
	f.TLVs, err = dedupeTLVs(tlvs)
	return err
}

func (f *smRespFields) validate() error {
	return validateCOctetString("message_id", f.MessageID, MaxMessageIDLength)
}

// SubmitSMResp acknowledges SubmitSM.
type SubmitSMResp struct{ smRespFields }

func (*SubmitSMResp) CommandID() uint32 { return CommandSubmitSMResp }
func (s *SubmitSMResp) Marshal(w *Writer) { s.smRespFields.marshal(w) }
func (s *SubmitSMResp) Unmarshal(c *Cursor) error { return s.smRespFields.unmarshal(c) }
func (s *SubmitSMResp) Validate() error { return s.smRespFields.validate() }

// DeliverSMResp acknowledges DeliverSM.
type DeliverSMResp struct{ smRespFields }

func (*DeliverSMResp) CommandID() uint32 { return CommandDeliverSMResp }
func (d *DeliverSMResp) Marshal(w *Writer) { d.smRespFields.marshal(w) }
func (d *DeliverSMResp) Unmarshal(c *Cursor) error { return d.smRespFields.unmarshal(c) }
func (d *DeliverSMResp) Validate() error { return d.smRespFields.validate() }

func init() {
	register(CommandSubmitSM, func() Body { return &SubmitSM{} })
	register(CommandSubmitSMResp, func() Body { return &SubmitSMResp{} })
	register(CommandDeliverSM, func() Body { return &DeliverSM{} })
	register(CommandDeliverSMResp, func() Body { return &DeliverSMResp{} })
}
