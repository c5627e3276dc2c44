package smpp

import "fmt"

// CancelSM withdraws a previously submitted, not-yet-delivered message (§4.2).
type CancelSM struct {
	ServiceType string
	MessageID   string
	Source      Address
	Dest        Address
}

func (*CancelSM) CommandID() uint32 { return CommandCancelSM }

func (c *CancelSM) Marshal(w *Writer) {
	w.WriteCOctetString(c.ServiceType)
	w.WriteCOctetString(c.MessageID)
	c.Source.marshal(w)
	c.Dest.marshal(w)
}

func (c *CancelSM) Unmarshal(cur *Cursor) error {
	var err error
	if c.ServiceType, err = cur.ReadCOctetString(MaxServiceTypeLength); err != nil {
		return err
	}
	if c.MessageID, err = cur.ReadCOctetString(MaxMessageIDLength); err != nil {
		return err
	}
	if err = c.Source.unmarshal(cur, MaxAddressLength); err != nil {
		return err
	}
	return c.Dest.unmarshal(cur, MaxAddressLength)
}

func (c *CancelSM) Validate() error {
	if err := validateCOctetString("service_type", c.ServiceType, MaxServiceTypeLength); err != nil {
		return err
	}
	if err := validateCOctetString("message_id", c.MessageID, MaxMessageIDLength); err != nil {
		return err
	}
	if err := c.Source.validate("source_addr"); err != nil {
		return err
	}
	return c.Dest.validate("destination_addr")
}

// CancelSMResp acknowledges CancelSM; no mandatory fields.
type CancelSMResp struct{ emptyBody }

func (*CancelSMResp) CommandID() uint32 { return CommandCancelSMResp }

// ReplaceSM replaces the content/attributes of a previously submitted message (§4.2).
type ReplaceSM struct {
	MessageID            string
	Source               Address
	ScheduleDeliveryTime string
	ValidityPeriod       string
	RegisteredDelivery   uint8
	SmDefaultMsgID       uint8
	ShortMessage         ShortMessage
}

func (*ReplaceSM) CommandID() uint32 { return CommandReplaceSM }

func (r *ReplaceSM) Marshal(w *Writer) {
	w.WriteCOctetString(r.MessageID)
	r.Source.marshal(w)
	w.WriteCOctetString(r.ScheduleDeliveryTime)
	w.WriteCOctetString(r.ValidityPeriod)
	w.WriteUint8(r.RegisteredDelivery)
	w.WriteUint8(r.SmDefaultMsgID)
	w.WriteUint8(uint8(len(r.ShortMessage)))
	w.WriteOctetString(r.ShortMessage)
}

func (r *ReplaceSM) Unmarshal(c *Cursor) error {
	var err error
	if r.MessageID, err = c.ReadCOctetString(MaxMessageIDLength); err != nil {
		return err
	}
	if err = r.Source.unmarshal(c, MaxAddressLength); err != nil {
		return err
	}
	if r.ScheduleDeliveryTime, err = c.ReadCOctetString(MaxDateTimeLength); err != nil {
		return err
	}
	if r.ValidityPeriod, err = c.ReadCOctetString(MaxDateTimeLength); err != nil {
		return err
	}
	if r.RegisteredDelivery, err = c.ReadUint8(); err != nil {
		return err
	}
	if r.SmDefaultMsgID, err = c.ReadUint8(); err != nil {
		return err
	}
	smLength, err := c.ReadUint8()
	if err != nil {
		return err
	}
	r.ShortMessage, err = c.ReadOctetString(int(smLength))
	return err
}

func (r *ReplaceSM) Validate() error {
	if err := validateCOctetString("message_id", r.MessageID, MaxMessageIDLength); err != nil {
		return err
	}
	if err := r.Source.validate("source_addr"); err != nil {
		return err
	}
	if len(r.ShortMessage) > MaxShortMessageLength {
		return fmt.Errorf("%w: short_message length %d exceeds %d", ErrStringTooLong, len(r.ShortMessage), MaxShortMessageLength)
	}
	return nil
}

// ReplaceSMResp acknowledges ReplaceSM; no mandatory fields.
type ReplaceSMResp struct{ emptyBody }

func (*ReplaceSMResp) CommandID() uint32 { return CommandReplaceSMResp }

func init() {
	register(CommandCancelSM, func() Body { return &CancelSM{} })
	register(CommandCancelSMResp, func() Body { return &CancelSMResp{} })
	register(CommandReplaceSM, func() Body { return &ReplaceSM{} })
	register(CommandReplaceSMResp, func() Body { return &ReplaceSMResp{} })
}
