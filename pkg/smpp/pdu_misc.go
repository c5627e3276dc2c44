package smpp

// emptyBody is embedded by every PDU with no mandatory fields and no TLVs (§4.2).
type emptyBody struct{}

func (emptyBody) Marshal(*Writer) {}

func (emptyBody) Unmarshal(c *Cursor) error {
	if c.Remaining() != 0 {
		return ErrTrailingBytes
	}
	return nil
}

// Unbind requests termination of the session (§4.4).
type Unbind struct{ emptyBody }

func (*Unbind) CommandID() uint32 { return CommandUnbind }

// UnbindResp acknowledges Unbind.
type UnbindResp struct{ emptyBody }

func (*UnbindResp) CommandID() uint32 { return CommandUnbindResp }

// EnquireLink is the keep-alive probe (§4.5).
type EnquireLink struct{ emptyBody }

func (*EnquireLink) CommandID() uint32 { return CommandEnquireLink }

// EnquireLinkResp acknowledges EnquireLink.
type EnquireLinkResp struct{ emptyBody }

func (*EnquireLinkResp) CommandID() uint32 { return CommandEnquireLinkResp }

// GenericNack rejects a malformed or illegal-for-state frame (§4.3, §4.4). Its body is always
// empty; command_status carries the reason.
type GenericNack struct{ emptyBody }

func (*GenericNack) CommandID() uint32 { return CommandGenericNack }

// AlertNotification is an unsolicited SMSC->ESME notice that a subscriber became available
// (§4.2). It has no response.
type AlertNotification struct {
	Source   Address
	EsmeAddr Address
	TLVs     []TLV
}

func (*AlertNotification) CommandID() uint32 { return CommandAlertNotification }

func (a *AlertNotification) Marshal(w *Writer) {
	a.Source.marshal(w)
	a.EsmeAddr.marshal(w)
	w.WriteTLVs(a.TLVs)
}

func (a *AlertNotification) Unmarshal(c *Cursor) error {
	if err := a.Source.unmarshal(c, MaxAddressLength); err != nil {
		return err
	}
	if err := a.EsmeAddr.unmarshal(c, MaxAddressLength); err != nil {
		return err
	}
	tlvs, err := c.ReadTLVs()
	if err != nil {
		return err
	}
	a.TLVs, err = dedupeTLVs(tlvs)
	return err
}

func (a *AlertNotification) Validate() error {
	if err := a.Source.validate("source_addr"); err != nil {
		return err
	}
	return a.EsmeAddr.validate("esme_addr")
}

// MsAvailabilityStatus returns the optional ms_availability_status TLV value, if present.
func (a *AlertNotification) MsAvailabilityStatus() (uint8, bool) {
	if t, ok := findTLV(a.TLVs, TagMsAvailabilityStatus); ok && len(t.Value) == 1 {
		return t.Value[0], true
	}
	return 0, false
}

func init() {
	register(CommandUnbind, func() Body { return &Unbind{} })
	register(CommandUnbindResp, func() Body { return &UnbindResp{} })
	register(CommandEnquireLink, func() Body { return &EnquireLink{} })
	register(CommandEnquireLinkResp, func() Body { return &EnquireLinkResp{} })
	register(CommandGenericNack, func() Body { return &GenericNack{} })
	register(CommandAlertNotification, func() Body { return &AlertNotification{} })
}
