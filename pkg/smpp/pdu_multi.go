package smpp

// DestinationAddress is one entry in submit_multi's destination list: either a single SME
// address or a distribution list name, selected by Flag (§4.2).
type DestinationAddress struct {
	Flag   uint8
	SME    Address
	DLName string
}

func (d DestinationAddress) marshal(w *Writer) {
	w.WriteUint8(d.Flag)
	switch d.Flag {
	case DestFlagDistributionList:
		w.WriteCOctetString(d.DLName)
	default:
		d.SME.marshal(w)
	}
}

func (d *DestinationAddress) unmarshal(c *Cursor) error {
	flag, err := c.ReadUint8()
	if err != nil {
		return err
	}
	d.Flag = flag
	switch flag {
	case DestFlagDistributionList:
		d.DLName, err = c.ReadCOctetString(MaxAddressLength)
		return err
	case DestFlagSMEAddress:
		return d.SME.unmarshal(c, MaxAddressLength)
	default:
		return &InvalidEnumError{Field: "dest_flag", Value: uint32(flag)}
	}
}

// UnsuccessSME is one entry in submit_multi_resp's failure list (§4.2).
type UnsuccessSME struct {
	Addr        Address
	ErrorStatus uint32
}

func (u UnsuccessSME) marshal(w *Writer) {
	u.Addr.marshal(w)
	w.WriteUint32(u.ErrorStatus)
}

func (u *UnsuccessSME) unmarshal(c *Cursor) error {
	if err := u.Addr.unmarshal(c, MaxAddressLength); err != nil {
		return err
	}
	status, err := c.ReadUint32()
	if err != nil {
		return err
	}
	u.ErrorStatus = status
	return nil
}

// SubmitMulti is submit_sm generalized to many destinations in one request (§4.2).
type SubmitMulti struct {
	ServiceType          string
	Source               Address
	Destinations         []DestinationAddress
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

func (*SubmitMulti) CommandID() uint32 { return CommandSubmitMulti }

func (s *SubmitMulti) Marshal(w *Writer) {
	w.WriteCOctetString(s.ServiceType)
	s.Source.marshal(w)
	w.WriteUint8(uint8(len(s.Destinations)))
	for _, d := range s.Destinations {
		d.marshal(w)
	}
	w.WriteUint8(s.EsmClass)
	w.WriteUint8(s.ProtocolID)
	w.WriteUint8(s.PriorityFlag)
	w.WriteCOctetString(s.ScheduleDeliveryTime)
	w.WriteCOctetString(s.ValidityPeriod)
	w.WriteUint8(s.RegisteredDelivery)
	w.WriteUint8(s.ReplaceIfPresentFlag)
	w.WriteUint8(s.DataCoding)
	w.WriteUint8(s.SmDefaultMsgID)
	w.WriteUint8(uint8(len(s.ShortMessage)))
	w.WriteOctetString(s.ShortMessage)
	w.WriteTLVs(s.TLVs)
}

func (s *SubmitMulti) Unmarshal(c *Cursor) error {
	var err error
	if s.ServiceType, err = c.ReadCOctetString(MaxServiceTypeLength); err != nil {
		return err
	}
	if err = s.Source.unmarshal(c, MaxAddressLength); err != nil {
		return err
	}
	numDests, err := c.ReadUint8()
	if err != nil {
		return err
	}
	s.Destinations = make([]DestinationAddress, numDests)
	for i := range s.Destinations {
		if err = s.Destinations[i].unmarshal(c); err != nil {
			return err
		}
	}
	if s.EsmClass, err = c.ReadUint8(); err != nil {
		return err
	}
	if s.ProtocolID, err = c.ReadUint8(); err != nil {
		return err
	}
	if s.PriorityFlag, err = c.ReadUint8(); err != nil {
		return err
	}
	if s.ScheduleDeliveryTime, err = c.ReadCOctetString(MaxDateTimeLength); err != nil {
		return err
	}
	if s.ValidityPeriod, err = c.ReadCOctetString(MaxDateTimeLength); err != nil {
		return err
	}
	if s.RegisteredDelivery, err = c.ReadUint8(); err != nil {
		return err
	}
	if s.ReplaceIfPresentFlag, err = c.ReadUint8(); err != nil {
		return err
	}
	if s.DataCoding, err = c.ReadUint8(); err != nil {
		return err
	}
	if s.SmDefaultMsgID, err = c.ReadUint8(); err != nil {
		return err
	}
	smLength, err := c.ReadUint8()
	if err != nil {
		return err
	}
	if s.ShortMessage, err = c.ReadOctetString(int(smLength)); err != nil {
		return err
	}
	tlvs, err := c.ReadTLVs()
	if err != nil {
		return err
	}
	s.TLVs, err = dedupeTLVs(tlvs)
	return err
}

func (s *SubmitMulti) Validate() error {
	if err := validateCOctetString("service_type", s.ServiceType, MaxServiceTypeLength); err != nil {
		return err
	}
	if err := s.Source.validate("source_addr"); err != nil {
		return err
	}
	if len(s.Destinations) < 1 || len(s.Destinations) > MaxDestinationsPerSubmitMulti {
		return &InvalidEnumError{Field: "number_of_dests", Value: uint32(len(s.Destinations))}
	}
	if s.PriorityFlag > PriorityLevel4 {
		return &InvalidEnumError{Field: "priority_flag", Value: uint32(s.PriorityFlag)}
	}
	if s.ReplaceIfPresentFlag > 1 {
		return &InvalidEnumError{Field: "replace_if_present_flag", Value: uint32(s.ReplaceIfPresentFlag)}
	}
	return nil
}

// SubmitMultiResp reports per-destination failures for a SubmitMulti request (§4.2).
type SubmitMultiResp struct {
	MessageID    string
	UnsuccessSME []UnsuccessSME
	TLVs         []TLV
}

func (*SubmitMultiResp) CommandID() uint32 { return CommandSubmitMultiResp }

func (s *SubmitMultiResp) Marshal(w *Writer) {
	w.WriteCOctetString(s.MessageID)
	w.WriteUint8(uint8(len(s.UnsuccessSME)))
	for _, u := range s.UnsuccessSME {
		u.marshal(w)
	}
	w.WriteTLVs(s.TLVs)
}

func (s *SubmitMultiResp) Unmarshal(c *Cursor) error {
	if c.Remaining() == 0 {
		return nil
	}
	var err error
	if s.MessageID, err = c.ReadCOctetString(MaxMessageIDLength); err != nil {
		return err
	}
	noUnsuccess, err := c.ReadUint8()
	if err != nil {
		return err
	}
	s.UnsuccessSME = make([]UnsuccessSME, noUnsuccess)
	for i := range s.UnsuccessSME {
		if err = s.UnsuccessSME[i].unmarshal(c); err != nil {
			return err
		}
	}
	tlvs, err := c.ReadTLVs()
	if err != nil {
		return err
	}
	s.TLVs, err = dedupeTLVs(tlvs)
	return err
}

func (s *SubmitMultiResp) Validate() error {
	return validateCOctetString("message_id", s.MessageID, MaxMessageIDLength)
}

func init() {
	register(CommandSubmitMulti, func() Body { return &SubmitMulti{} })
	register(CommandSubmitMultiResp, func() Body { return &SubmitMultiResp{} })
}
