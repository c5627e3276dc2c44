package smpp

import (
	"sync"
	"time"
)

// BindRole is the role an ESME requests when binding (§3, §4.4).
type BindRole uint8

const (
	// RoleTransmitter may only submit outbound requests.
	RoleTransmitter BindRole = iota
	// RoleReceiver may only receive inbound requests.
	RoleReceiver
	// RoleTransceiver may do both.
	RoleTransceiver
)

func (r BindRole) String() string {
	switch r {
	case RoleTransmitter:
		return "transmitter"
	case RoleReceiver:
		return "receiver"
	case RoleTransceiver:
		return "transceiver"
	default:
		return "unknown"
	}
}

// bindCommandID returns the bind_* command id this role sends on connect.
func (r BindRole) bindCommandID() uint32 {
	switch r {
	case RoleReceiver:
		return CommandBindReceiver
	case RoleTransceiver:
		return CommandBindTransceiver
	default:
		return CommandBindTransmitter
	}
}

// State is a session's position in the bind lifecycle (§4.4).
type State uint8

const (
	StateOpen State = iota
	StateBoundTX
	StateBoundRX
	StateBoundTRX
	StateUnbound
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateBoundTX:
		return "BOUND_TX"
	case StateBoundRX:
		return "BOUND_RX"
	case StateBoundTRX:
		return "BOUND_TRX"
	case StateUnbound:
		return "UNBOUND"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// legalOutbound and legalInbound encode the PDU-legality table of §4.4, keyed by state then
// command id. Responses are always legal whatever the table says; the *_resp entries under
// BOUND_RX only restate that.
var legalOutbound = map[State]map[uint32]bool{
	StateOpen: {
		CommandBindTransmitter: true,
		CommandBindReceiver:    true,
		CommandBindTransceiver: true,
	},
	StateBoundTX: {
		CommandSubmitSM:          true,
		CommandSubmitMulti:       true,
		CommandDataSM:            true,
		CommandQuerySM:           true,
		CommandCancelSM:          true,
		CommandReplaceSM:         true,
		CommandEnquireLink:       true,
		CommandUnbind:            true,
		CommandBroadcastSM:       true, // v5.0 only; version.SupportsCommand gates the rest
		CommandCancelBroadcastSM: true,
		CommandQueryBroadcastSM:  true,
	},
	StateBoundRX: {
		CommandDeliverSMResp: true,
		CommandDataSMResp:    true,
		CommandEnquireLink:   true,
		CommandUnbind:        true,
	},
	StateUnbound: {},
}

func init() {
	trx := make(map[uint32]bool)
	for id, ok := range legalOutbound[StateBoundTX] {
		trx[id] = ok
	}
	for id, ok := range legalOutbound[StateBoundRX] {
		trx[id] = ok
	}
	legalOutbound[StateBoundTRX] = trx
}

var legalInbound = map[State]map[uint32]bool{
	StateOpen: {
		CommandOutbind:     true,
		CommandGenericNack: true,
	},
	StateBoundTX: {
		CommandAlertNotification: true,
		CommandEnquireLink:       true,
	},
	StateBoundRX: {
		CommandDeliverSM:         true,
		CommandDataSM:            true,
		CommandAlertNotification: true,
	},
	StateUnbound: {},
}

func init() {
	trx := make(map[uint32]bool)
	for id, ok := range legalInbound[StateBoundTX] {
		trx[id] = ok
	}
	for id, ok := range legalInbound[StateBoundRX] {
		trx[id] = ok
	}
	legalInbound[StateBoundTRX] = trx
}

// isOutboundLegal reports whether the session may send command id in state s (§4.4). Responses
// and unbind_resp/enquire_link_resp are always legal since they only ever answer a peer request.
func isOutboundLegal(s State, commandID uint32) bool {
	if commandID&CommandGenericNack != 0 {
		return true
	}
	table, ok := legalOutbound[s]
	if !ok {
		return false
	}
	return table[commandID]
}

// isInboundLegal reports whether receiving command id is legal in state s.
func isInboundLegal(s State, commandID uint32) bool {
	if commandID&CommandGenericNack != 0 {
		return true // a response to something we sent; correlation decides relevance
	}
	table, ok := legalInbound[s]
	if !ok {
		return false
	}
	return table[commandID]
}

// pendingRequest is one outstanding request awaiting a correlated response (§3 PendingRequest).
type pendingRequest struct {
	commandID uint32
	deadline  time.Time
	sink      chan pendingResult
}

type pendingResult struct {
	pdu *PDU
	err error
}

// sequenceAllocator assigns strictly increasing sequence numbers, wrapping to 1 after
// 0x7FFFFFFF (§4.4), guarded by its own mutex so it can be shared independently of the session's
// broader state lock.
type sequenceAllocator struct {
	mu   sync.Mutex
	next uint32
}

func newSequenceAllocator() *sequenceAllocator {
	return &sequenceAllocator{next: 1}
}

func (a *sequenceAllocator) allocate() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.next
	if a.next == 0x7FFFFFFF {
		a.next = 1
	} else {
		a.next++
	}
	return n
}
