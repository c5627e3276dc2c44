// Package version implements SMPP interface version negotiation (spec §4.7): the effective
// protocol version a session runs under is the minimum of what the ESME requested and what the
// SMSC reports back in the bind response's sc_interface_version TLV, and it gates which PDUs
// are usable for the life of the session.
package version

import "fmt"

// Version is one of the SMPP interface_version octet values a session can negotiate.
type Version uint8

const (
	V34 Version = 0x34
	V50 Version = 0x50
)

func (v Version) String() string {
	switch v {
	case V34:
		return "3.4"
	case V50:
		return "5.0"
	default:
		return fmt.Sprintf("0x%02X", uint8(v))
	}
}

// Negotiate returns the effective version for a session given what was requested on bind and
// what the peer reported via sc_interface_version (peerReported=0, ok=false when the TLV was
// absent, in which case the peer is assumed to speak the requested version verbatim).
func Negotiate(requested Version, peerReported uint8, ok bool) Version {
	if !ok {
		return requested
	}
	if Version(peerReported) < requested {
		return Version(peerReported)
	}
	return requested
}

// v50OnlyCommandIDs lists the v5.0-only PDUs (spec §4.2 "v5.0 broadcast_sm, ..."); attempting to
// send one of these under a v3.4-effective session fails locally (§4.7, ErrUnsupportedInVersion).
var v50OnlyCommandIDs = map[uint32]bool{
	0x00000111: true, // broadcast_sm
	0x00000112: true, // query_broadcast_sm
	0x00000113: true, // cancel_broadcast_sm
}

// SupportsCommand reports whether commandID is usable under the effective version v.
func SupportsCommand(v Version, commandID uint32) bool {
	if v >= V50 {
		return true
	}
	return !v50OnlyCommandIDs[commandID&0x7FFFFFFF]
}

// MaxPriorityFlag returns the highest legal priority_flag value for v (spec §9: v3.4 allows
// 0..3, v5.0 extends to 0..4).
func MaxPriorityFlag(v Version) uint8 {
	if v >= V50 {
		return 4
	}
	return 3
}
