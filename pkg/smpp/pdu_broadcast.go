package smpp

// BroadcastSM schedules a v5.0 cell-broadcast message (§4.2). broadcast_area_identifier,
// broadcast_content_type, broadcast_rep_num, and broadcast_frequency_interval are mandatory but
// travel as TLVs per the v5.0 tables; broadcast_area_identifier may repeat (§3 invariant 5).
type BroadcastSM struct {
	ServiceType          string
	Source               Address
	MessageID            string
	PriorityFlag         uint8
	ScheduleDeliveryTime string
	ValidityPeriod       string
	ReplaceIfPresentFlag uint8
	DataCoding           uint8
	SmDefaultMsgID       uint8
	TLVs                 []TLV
}

func (*BroadcastSM) CommandID() uint32 { return CommandBroadcastSM }

func (b *BroadcastSM) Marshal(w *Writer) {
	w.WriteCOctetString(b.ServiceType)
	b.Source.marshal(w)
	w.WriteCOctetString(b.MessageID)
	w.WriteUint8(b.PriorityFlag)
	w.WriteCOctetString(b.ScheduleDeliveryTime)
	w.WriteCOctetString(b.ValidityPeriod)
	w.WriteUint8(b.ReplaceIfPresentFlag)
	w.WriteUint8(b.DataCoding)
	w.WriteUint8(b.SmDefaultMsgID)
	w.WriteTLVs(b.TLVs)
}

func (b *BroadcastSM) Unmarshal(c *Cursor) error {
	var err error
	if b.ServiceType, err = c.ReadCOctetString(MaxServiceTypeLength); err != nil {
		return err
	}
	if err = b.Source.unmarshal(c, MaxAddressLength); err != nil {
		return err
	}
	if b.MessageID, err = c.ReadCOctetString(MaxMessageIDLength); err != nil {
		return err
	}
	if b.PriorityFlag, err = c.ReadUint8(); err != nil {
		return err
	}
	if b.ScheduleDeliveryTime, err = c.ReadCOctetString(MaxDateTimeLength); err != nil {
		return err
	}
	if b.ValidityPeriod, err = c.ReadCOctetString(MaxDateTimeLength); err != nil {
		return err
	}
	if b.ReplaceIfPresentFlag, err = c.ReadUint8(); err != nil {
		return err
	}
	if b.DataCoding, err = c.ReadUint8(); err != nil {
		return err
	}
	smDefaultMsgID, err := c.ReadUint8()
	if err != nil {
		return err
	}
	b.SmDefaultMsgID = smDefaultMsgID
	tlvs, err := c.ReadTLVs()
	if err != nil {
		return err
	}
	b.TLVs, err = dedupeTLVs(tlvs)
	return err
}

func (b *BroadcastSM) Validate() error {
	if err := validateCOctetString("service_type", b.ServiceType, MaxServiceTypeLength); err != nil {
		return err
	}
	if err := b.Source.validate("source_addr"); err != nil {
		return err
	}
	if err := validateCOctetString("message_id", b.MessageID, MaxMessageIDLength); err != nil {
		return err
	}
	if b.ReplaceIfPresentFlag > 1 {
		return &InvalidEnumError{Field: "replace_if_present_flag", Value: uint32(b.ReplaceIfPresentFlag)}
	}
	for _, required := range []uint16{TagBroadcastAreaIdentifier, TagBroadcastContentType, TagBroadcastRepNum, TagBroadcastFrequencyInterval} {
		if _, ok := findTLV(b.TLVs, required); !ok {
			return &ProtocolViolationError{Reason: "broadcast_sm missing mandatory TLV"}
		}
	}
	return nil
}

// AreaIdentifiers returns every broadcast_area_identifier TLV value, in order.
func (b *BroadcastSM) AreaIdentifiers() [][]byte {
	var out [][]byte
	for _, t := range b.TLVs {
		if t.Tag == TagBroadcastAreaIdentifier {
			out = append(out, t.Value)
		}
	}
	return out
}

// BroadcastSMResp acknowledges BroadcastSM.
type BroadcastSMResp struct{ smRespFields }

func (*BroadcastSMResp) CommandID() uint32 { return CommandBroadcastSMResp }
func (b *BroadcastSMResp) Marshal(w *Writer) { b.smRespFields.marshal(w) }
func (b *BroadcastSMResp) Unmarshal(c *Cursor) error { return b.smRespFields.unmarshal(c) }
func (b *BroadcastSMResp) Validate() error { return b.smRespFields.validate() }

// CancelBroadcastSM stops an in-progress broadcast (§4.2, v5.0).
type CancelBroadcastSM struct {
	ServiceType string
	MessageID   string
	Source      Address
	TLVs        []TLV
}

func (*CancelBroadcastSM) CommandID() uint32 { return CommandCancelBroadcastSM }

func (c *CancelBroadcastSM) Marshal(w *Writer) {
	w.WriteCOctetString(c.ServiceType)
	w.WriteCOctetString(c.MessageID)
	c.Source.marshal(w)
	w.WriteTLVs(c.TLVs)
}

func (c *CancelBroadcastSM) Unmarshal(cur *Cursor) error {
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
	tlvs, err := cur.ReadTLVs()
	if err != nil {
		return err
	}
	c.TLVs, err = dedupeTLVs(tlvs)
	return err
}

func (c *CancelBroadcastSM) Validate() error {
	if err := validateCOctetString("service_type", c.ServiceType, MaxServiceTypeLength); err != nil {
		return err
	}
	if err := validateCOctetString("message_id", c.MessageID, MaxMessageIDLength); err != nil {
		return err
	}
	return c.Source.validate("source_addr")
}

// CancelBroadcastSMResp acknowledges CancelBroadcastSM; no mandatory fields.
type CancelBroadcastSMResp struct{ emptyBody }

func (*CancelBroadcastSMResp) CommandID() uint32 { return CommandCancelBroadcastSMResp }

// QueryBroadcastSM asks for the status of an in-progress broadcast (§4.2, v5.0).
type QueryBroadcastSM struct {
	MessageID string
	Source    Address
}

func (*QueryBroadcastSM) CommandID() uint32 { return CommandQueryBroadcastSM }

func (q *QueryBroadcastSM) Marshal(w *Writer) {
	w.WriteCOctetString(q.MessageID)
	q.Source.marshal(w)
}

func (q *QueryBroadcastSM) Unmarshal(c *Cursor) error {
	var err error
	if q.MessageID, err = c.ReadCOctetString(MaxMessageIDLength); err != nil {
		return err
	}
	return q.Source.unmarshal(c, MaxAddressLength)
}

func (q *QueryBroadcastSM) Validate() error {
	if err := validateCOctetString("message_id", q.MessageID, MaxMessageIDLength); err != nil {
		return err
	}
	return q.Source.validate("source_addr")
}

// QueryBroadcastSMResp reports a broadcast's message_state plus per-area TLVs (§4.2);
// broadcast_area_success may repeat, one per area. Other tags, broadcast_error_status
// included, follow the non-repeatable rule of dedupeTLVs.
type QueryBroadcastSMResp struct {
	MessageID    string
	MessageState uint8
	TLVs         []TLV
}

func (*QueryBroadcastSMResp) CommandID() uint32 { return CommandQueryBroadcastSMResp }

func (q *QueryBroadcastSMResp) Marshal(w *Writer) {
	w.WriteCOctetString(q.MessageID)
	w.WriteUint8(q.MessageState)
	w.WriteTLVs(q.TLVs)
}

func (q *QueryBroadcastSMResp) Unmarshal(c *Cursor) error {
	if c.Remaining() == 0 {
		return nil
	}
	var err error
	if q.MessageID, err = c.ReadCOctetString(MaxMessageIDLength); err != nil {
		return err
	}
	if q.MessageState, err = c.ReadUint8(); err != nil {
		return err
	}
	tlvs, err := c.ReadTLVs()
	if err != nil {
		return err
	}
	q.TLVs, err = dedupeTLVs(tlvs)
	return err
}

func (q *QueryBroadcastSMResp) Validate() error {
	return validateCOctetString("message_id", q.MessageID, MaxMessageIDLength)
}

func init() {
	register(CommandBroadcastSM, func() Body { return &BroadcastSM{} })
	register(CommandBroadcastSMResp, func() Body { return &BroadcastSMResp{} })
	register(CommandCancelBroadcastSM, func() Body { return &CancelBroadcastSM{} })
	register(CommandCancelBroadcastSMResp, func() Body { return &CancelBroadcastSMResp{} })
	register(CommandQueryBroadcastSM, func() Body { return &QueryBroadcastSM{} })
	register(CommandQueryBroadcastSMResp, func() Body { return &QueryBroadcastSMResp{} })
}
