package smpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateLegality(t *testing.T) {
	cases := []struct {
		name      string
		state     State
		commandID uint32
		outbound  bool
		legal     bool
	}{
		{"bind legal in open", StateOpen, CommandBindTransmitter, true, true},
		{"submit illegal in open", StateOpen, CommandSubmitSM, true, false},
		{"submit legal in bound_tx", StateBoundTX, CommandSubmitSM, true, true},
		{"submit illegal in bound_rx", StateBoundRX, CommandSubmitSM, true, false},
		{"submit legal in bound_trx", StateBoundTRX, CommandSubmitSM, true, true},
		{"unbind legal in bound_tx", StateBoundTX, CommandUnbind, true, true},
		{"unbind legal in bound_rx", StateBoundRX, CommandUnbind, true, true},
		{"submit illegal in unbound", StateUnbound, CommandSubmitSM, true, false},
		{"submit illegal in closed", StateClosed, CommandSubmitSM, true, false},
		{"responses always legal outbound", StateBoundRX, CommandDeliverSMResp, true, true},
		{"deliver_sm inbound legal in bound_rx", StateBoundRX, CommandDeliverSM, false, true},
		{"deliver_sm inbound illegal in bound_tx", StateBoundTX, CommandDeliverSM, false, false},
		{"deliver_sm inbound legal in bound_trx", StateBoundTRX, CommandDeliverSM, false, true},
		{"alert legal inbound in bound_tx", StateBoundTX, CommandAlertNotification, false, true},
		{"outbind legal inbound in open", StateOpen, CommandOutbind, false, true},
		{"deliver_sm inbound illegal in open", StateOpen, CommandDeliverSM, false, false},
		{"responses always legal inbound", StateOpen, CommandSubmitSMResp, false, true},
		{"enquire_link inbound legal in bound_trx via tx union", StateBoundTRX, CommandEnquireLink, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.outbound {
				assert.Equal(t, tc.legal, isOutboundLegal(tc.state, tc.commandID))
			} else {
				assert.Equal(t, tc.legal, isInboundLegal(tc.state, tc.commandID))
			}
		})
	}
}

func TestSequenceAllocatorMonotonic(t *testing.T) {
	a := newSequenceAllocator()
	prev := uint32(0)
	for i := 0; i < 1000; i++ {
		n := a.allocate()
		assert.Greater(t, n, prev)
		prev = n
	}
}

func TestSequenceAllocatorWrapsAfterMax(t *testing.T) {
	a := newSequenceAllocator()
	a.next = 0x7FFFFFFF
	assert.Equal(t, uint32(0x7FFFFFFF), a.allocate())
	assert.Equal(t, uint32(1), a.allocate())
	assert.Equal(t, uint32(2), a.allocate())
}

func TestBindRoleCommandID(t *testing.T) {
	assert.Equal(t, CommandBindTransmitter, RoleTransmitter.bindCommandID())
	assert.Equal(t, CommandBindReceiver, RoleReceiver.bindCommandID())
	assert.Equal(t, CommandBindTransceiver, RoleTransceiver.bindCommandID())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "BOUND_TRX", StateBoundTRX.String())
	assert.Equal(t, "CLOSED", StateClosed.String())
}
