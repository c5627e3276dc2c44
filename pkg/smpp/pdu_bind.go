package smpp

// bindFields holds the mandatory fields shared by all three bind_* request shapes (§4.2). Each
// bind role gets its own named type below so CommandID() is correct per-instance instead of the
// single hardcoded-transceiver bug this was grounded on in the teacher's original registry.
type bindFields struct {
	SystemID     string
	Password     string
	SystemType   string
	InterfaceVer uint8
	AddrTON      uint8
	AddrNPI      uint8
	AddressRange string
}

func (b *bindFields) marshal(w *Writer) {
	w.WriteCOctetString(b.SystemID)
	w.WriteCOctetString(b.Password)
	w.WriteCOctetString(b.SystemType)
	w.WriteUint8(b.InterfaceVer)
	w.WriteUint8(b.AddrTON)
	w.WriteUint8(b.AddrNPI)
	w.WriteCOctetString(b.AddressRange)
}

func (b *bindFields) unmarshal(c *Cursor) error {
	var err error
	if b.SystemID, err = c.ReadCOctetString(MaxSystemIDLength); err != nil {
		return err
	}
	if b.Password, err = c.ReadCOctetString(MaxPasswordLength); err != nil {
		return err
	}
	if b.SystemType, err = c.ReadCOctetString(MaxSystemTypeLength); err != nil {
		return err
	}
	if b.InterfaceVer, err = c.ReadUint8(); err != nil {
		return err
	}
	if b.AddrTON, err = c.ReadUint8(); err != nil {
		return err
	}
	if b.AddrNPI, err = c.ReadUint8(); err != nil {
		return err
	}
	if b.AddressRange, err = c.ReadCOctetString(MaxAddressRangeLength); err != nil {
		return err
	}
	return nil
}

func (b *bindFields) validate() error {
	if err := validateCOctetString("system_id", b.SystemID, MaxSystemIDLength); err != nil {
		return err
	}
	if err := validateCOctetString("password", b.Password, MaxPasswordLength); err != nil {
		return err
	}
	if err := validateCOctetString("system_type", b.SystemType, MaxSystemTypeLength); err != nil {
		return err
	}
	return validateCOctetString("address_range", b.AddressRange, MaxAddressRangeLength)
}

// BindTransmitter opens an ESME-to-SMSC session able to submit messages.
type BindTransmitter struct{ bindFields }

func (*BindTransmitter) CommandID() uint32 { return CommandBindTransmitter }
func (b *BindTransmitter) Marshal(w *Writer) { b.bindFields.marshal(w) }
func (b *BindTransmitter) Unmarshal(c *Cursor) error { return b.bindFields.unmarshal(c) }
func (b *BindTransmitter) Validate() error { return b.bindFields.validate() }

// BindReceiver opens a session able to receive deliver_sm/data_sm.
type BindReceiver struct{ bindFields }

func (*BindReceiver) CommandID() uint32 { return CommandBindReceiver }
func (b *BindReceiver) Marshal(w *Writer) { b.bindFields.marshal(w) }
func (b *BindReceiver) Unmarshal(c *Cursor) error { return b.bindFields.unmarshal(c) }
func (b *BindReceiver) Validate() error { return b.bindFields.validate() }

// BindTransceiver opens a session able to do both.
type BindTransceiver struct{ bindFields }

func (*BindTransceiver) CommandID() uint32 { return CommandBindTransceiver }
func (b *BindTransceiver) Marshal(w *Writer) { b.bindFields.marshal(w) }
func (b *BindTransceiver) Unmarshal(c *Cursor) error { return b.bindFields.unmarshal(c) }
func (b *BindTransceiver) Validate() error { return b.bindFields.validate() }

// bindRespFields holds the shared bind_*_resp shape: system_id plus the optional
// sc_interface_version TLV used for version negotiation (§4.7).
type bindRespFields struct {
	SystemID string
	TLVs     []TLV
}

// SCInterfaceVersion returns the negotiated peer interface version, if the TLV was present.
func (b *bindRespFields) SCInterfaceVersion() (uint8, bool) {
	if t, ok := findTLV(b.TLVs, TagSCInterfaceVersion); ok && len(t.Value) == 1 {
		return t.Value[0], true
	}
	return 0, false
}

func (b *bindRespFields) marshal(w *Writer) {
	w.WriteCOctetString(b.SystemID)
	w.WriteTLVs(b.TLVs)
}

func (b *bindRespFields) unmarshal(c *Cursor) error {
	// A rejected bind's response may omit the body entirely (§3 invariant 6).
	if c.Remaining() == 0 {
		return nil
	}
	var err error
	if b.SystemID, err = c.ReadCOctetString(MaxSystemIDLength); err != nil {
		return err
	}
	tlvs, err := c.ReadTLVs()
	if err != nil {
		return err
	}
	b.TLVs, err = dedupeTLVs(tlvs)
	return err
}

func (b *bindRespFields) validate() error {
	return validateCOctetString("system_id", b.SystemID, MaxSystemIDLength)
}

// BindTransmitterResp, BindReceiverResp, BindTransceiverResp each carry a fixed command id paired
// with their request counterpart, per §3 invariant 4.
type BindTransmitterResp struct{ bindRespFields }

func (*BindTransmitterResp) CommandID() uint32 { return CommandBindTransmitterResp }
func (b *BindTransmitterResp) Marshal(w *Writer) { b.bindRespFields.marshal(w) }
func (b *BindTransmitterResp) Unmarshal(c *Cursor) error { return b.bindRespFields.unmarshal(c) }
func (b *BindTransmitterResp) Validate() error { return b.bindRespFields.validate() }

type BindReceiverResp struct{ bindRespFields }

func (*BindReceiverResp) CommandID() uint32 { return CommandBindReceiverResp }
func (b *BindReceiverResp) Marshal(w *Writer) { b.bindRespFields.marshal(w) }
func (b *BindReceiverResp) Unmarshal(c *Cursor) error { return b.bindRespFields.unmarshal(c) }
func (b *BindReceiverResp) Validate() error { return b.bindRespFields.validate() }

type BindTransceiverResp struct{ bindRespFields }

func (*BindTransceiverResp) CommandID() uint32 { return CommandBindTransceiverResp }
func (b *BindTransceiverResp) Marshal(w *Writer) { b.bindRespFields.marshal(w) }
func (b *BindTransceiverResp) Unmarshal(c *Cursor) error { return b.bindRespFields.unmarshal(c) }
func (b *BindTransceiverResp) Validate() error { return b.bindRespFields.validate() }

// Outbind is sent by an SMSC to invite an ESME to bind back to it (§4.2); it has no response.
type Outbind struct {
	SystemID string
	Password string
}

func (*Outbind) CommandID() uint32 { return CommandOutbind }

func (o *Outbind) Marshal(w *Writer) {
	w.WriteCOctetString(o.SystemID)
	w.WriteCOctetString(o.Password)
}

func (o *Outbind) Unmarshal(c *Cursor) error {
	var err error
	if o.SystemID, err = c.ReadCOctetString(MaxSystemIDLength); err != nil {
		return err
	}
	o.Password, err = c.ReadCOctetString(MaxPasswordLength)
	return err
}

func (o *Outbind) Validate() error {
	if err := validateCOctetString("system_id", o.SystemID, MaxSystemIDLength); err != nil {
		return err
	}
	return validateCOctetString("password", o.Password, MaxPasswordLength)
}

func init() {
	register(CommandBindTransmitter, func() Body { return &BindTransmitter{} })
	register(CommandBindReceiver, func() Body { return &BindReceiver{} })
	register(CommandBindTransceiver, func() Body { return &BindTransceiver{} })
	register(CommandBindTransmitterResp, func() Body { return &BindTransmitterResp{} })
	register(CommandBindReceiverResp, func() Body { return &BindReceiverResp{} })
	register(CommandBindTransceiverResp, func() Body { return &BindTransceiverResp{} })
	register(CommandOutbind, func() Body { return &Outbind{} })
}
