package smpp

// DataSM is the interactive-session alternative to submit_sm/deliver_sm: no inline
// short_message, the payload travels in the message_payload TLV instead (§4.2).
type DataSM struct {
	ServiceType        string
	Source             Address
	Dest               Address
	EsmClass           uint8
	RegisteredDelivery uint8
	DataCoding         uint8
	TLVs               []TLV
}

func (*DataSM) CommandID() uint32 { return CommandDataSM }

func (d *DataSM) Marshal(w *Writer) {
	w.WriteCOctetString(d.ServiceType)
	d.Source.marshal(w)
	d.Dest.marshal(w)
	w.WriteUint8(d.EsmClass)
	w.WriteUint8(d.RegisteredDelivery)
	w.WriteUint8(d.DataCoding)
	w.WriteTLVs(d.TLVs)
}

func (d *DataSM) Unmarshal(c *Cursor) error {
	var err error
	if d.ServiceType, err = c.ReadCOctetString(MaxServiceTypeLength); err != nil {
		return err
	}
	if err = d.Source.unmarshal(c, MaxAddressLength); err != nil {
		return err
	}
	if err = d.Dest.unmarshal(c, MaxAddressLength); err != nil {
		return err
	}
	if d.EsmClass, err = c.ReadUint8(); err != nil {
		return err
	}
	if d.RegisteredDelivery, err = c.ReadUint8(); err != nil {
		return err
	}
	if d.DataCoding, err = c.ReadUint8(); err != nil {
		return err
	}
	tlvs, err := c.ReadTLVs()
	if err != nil {
		return err
	}
	d.TLVs, err = dedupeTLVs(tlvs)
	return err
}

func (d *DataSM) Validate() error {
	if err := validateCOctetString("service_type", d.ServiceType, MaxServiceTypeLength); err != nil {
		return err
	}
	if err := d.Source.validate("source_addr"); err != nil {
		return err
	}
	return d.Dest.validate("destination_addr")
}

// MessagePayload returns the message_payload TLV value, if present.
func (d *DataSM) MessagePayload() ([]byte, bool) {
	if t, ok := findTLV(d.TLVs, TagMessagePayload); ok {
		return t.Value, true
	}
	return nil, false
}

// DataSMResp acknowledges DataSM; identical wire shape to submit_sm_resp (§4.2).
type DataSMResp struct{ smRespFields }

func (*DataSMResp) CommandID() uint32 { return CommandDataSMResp }
func (d *DataSMResp) Marshal(w *Writer) { d.smRespFields.marshal(w) }
func (d *DataSMResp) Unmarshal(c *Cursor) error { return d.smRespFields.unmarshal(c) }
func (d *DataSMResp) Validate() error { return d.smRespFields.validate() }

func init() {
	register(CommandDataSM, func() Body { return &DataSM{} })
	register(CommandDataSMResp, func() Body { return &DataSMResp{} })
}
