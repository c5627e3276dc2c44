package smpp

// TLV is an optional Tag-Length-Value parameter (§3). Immutable once constructed; owned
// exclusively by the PDU that carries it.
type TLV struct {
	Tag    uint16
	Length uint16
	Value  []byte
}

// NewTLV builds a TLV from a tag and raw value, computing Length from len(value).
func NewTLV(tag uint16, value []byte) TLV {
	return TLV{Tag: tag, Length: uint16(len(value)), Value: value}
}

// repeatableTags lists TLV tags the spec permits to appear more than once in a single PDU
// (§3 invariant 5). Everything else is first-occurrence-wins; a later duplicate is an error.
var repeatableTags = map[uint16]bool{
	TagBroadcastAreaIdentifier: true, // broadcast_sm: one or more broadcast areas
	TagBroadcastAreaSuccess:    true, // query_broadcast_sm_resp: one per broadcast area
}

// dedupeTLVs enforces the duplicate-tag policy while preserving encounter order. Vendor-specific
// tags (0x1400-0x3FFF) are always treated as opaque and pass the same rule as any other tag
// unless explicitly listed as repeatable.
func dedupeTLVs(tlvs []TLV) ([]TLV, error) {
	seen := make(map[uint16]bool, len(tlvs))
	out := make([]TLV, 0, len(tlvs))
	for _, t := range tlvs {
		if seen[t.Tag] && !repeatableTags[t.Tag] {
			return nil, ErrDuplicateTLV
		}
		seen[t.Tag] = true
		out = append(out, t)
	}
	return out, nil
}

// findTLV returns the first TLV with the given tag, if present.
func findTLV(tlvs []TLV, tag uint16) (TLV, bool) {
	for _, t := range tlvs {
		if t.Tag == tag {
			return t, true
		}
	}
	return TLV{}, false
}
