package smpp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPeer plays the SMSC side of a net.Pipe connection. Its read/write methods return errors
// instead of failing the test directly so they are safe to call from peer goroutines.
type testPeer struct {
	fr *FrameReader
	fw *FrameWriter
}

func newTestPeer(conn net.Conn) *testPeer {
	return &testPeer{fr: NewFrameReader(conn, 0), fw: NewFrameWriter(conn)}
}

func (p *testPeer) read() (*PDU, error) {
	frame, err := p.fr.ReadFrame()
	if err != nil {
		return nil, err
	}
	return Decode(frame)
}

func (p *testPeer) write(pdu *PDU) error {
	buf, err := Encode(pdu)
	if err != nil {
		return err
	}
	return p.fw.WriteFrame(buf)
}

func (p *testPeer) reply(req *PDU, status uint32, body Body) error {
	return p.write(NewResponse(req, status, body))
}

func testConfig(role BindRole) SessionConfig {
	cfg := DefaultSessionConfig()
	cfg.Address = "127.0.0.1:2775"
	cfg.SystemID = "test"
	cfg.Password = "pw"
	cfg.BindRole = role
	cfg.ResponseTimeout = 2 * time.Second
	return cfg
}

// pipeSession wires a session to an in-memory peer, started but not yet bound.
func pipeSession(t *testing.T, cfg SessionConfig) (*Session, *testPeer) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	s := newSession(clientConn, cfg, nil, nil)
	s.start()
	t.Cleanup(func() {
		s.closeWithError(nil)
		serverConn.Close()
	})
	return s, newTestPeer(serverConn)
}

// bindSession answers the session's bind request as an accepting SMSC and returns the request
// the peer saw.
func bindSession(t *testing.T, s *Session, peer *testPeer, respBody Body) *PDU {
	t.Helper()
	seen := make(chan *PDU, 1)
	go func() {
		req, err := peer.read()
		if err != nil {
			close(seen)
			return
		}
		peer.reply(req, StatusOK, respBody)
		seen <- req
	}()
	require.NoError(t, s.bind(context.Background()))
	req, ok := <-seen
	require.True(t, ok, "peer never saw the bind request")
	return req
}

func TestSessionBindUnbindLifecycle(t *testing.T) {
	s, peer := pipeSession(t, testConfig(RoleTransmitter))

	bindReq := bindSession(t, s, peer, &BindTransmitterResp{bindRespFields{SystemID: "SMSC1"}})
	assert.Equal(t, CommandBindTransmitter, bindReq.Header.CommandID)
	assert.Equal(t, uint32(1), bindReq.Header.SequenceNumber)
	bindBody := bindReq.Body.(*BindTransmitter)
	assert.Equal(t, "test", bindBody.SystemID)
	assert.Equal(t, "pw", bindBody.Password)
	assert.Equal(t, InterfaceVersion34, bindBody.InterfaceVer)
	assert.Equal(t, StateBoundTX, s.State())

	unbindSeen := make(chan *PDU, 1)
	go func() {
		req, err := peer.read()
		if err != nil {
			close(unbindSeen)
			return
		}
		peer.reply(req, StatusOK, &UnbindResp{})
		unbindSeen <- req
	}()
	require.NoError(t, s.UnbindAndClose(context.Background()))

	unbindReq, ok := <-unbindSeen
	require.True(t, ok)
	assert.Equal(t, CommandUnbind, unbindReq.Header.CommandID)
	assert.Equal(t, uint32(2), unbindReq.Header.SequenceNumber)
	assert.Equal(t, StateClosed, s.State())
}

func TestSessionSubmitReceivesResponse(t *testing.T) {
	s, peer := pipeSession(t, testConfig(RoleTransmitter))
	bindSession(t, s, peer, &BindTransmitterResp{bindRespFields{SystemID: "SMSC1"}})

	go func() {
		req, err := peer.read()
		if err != nil {
			return
		}
		peer.reply(req, StatusOK, &SubmitSMResp{smRespFields{MessageID: GenerateMessageID()}})
	}()

	submit := &SubmitSM{smFields{
		Source:       Address{Addr: "12345"},
		Dest:         Address{Addr: "67890"},
		ShortMessage: ShortMessage("Hello"),
	}}
	req := NewRequest(0, submit)
	resp, err := s.SendRequest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, CommandSubmitSMResp, resp.Header.CommandID)
	assert.Equal(t, req.Header.SequenceNumber, resp.Header.SequenceNumber)
	assert.NotEmpty(t, resp.Body.(*SubmitSMResp).MessageID)
}

func TestSessionGenericNackOnUnknownCommandID(t *testing.T) {
	_, peer := pipeSession(t, testConfig(RoleTransmitter))

	garbage := NewWriter()
	encodeHeader(garbage, Header{CommandLength: 16, CommandID: 0xDEADBEEF, SequenceNumber: 7})
	require.NoError(t, peer.fw.WriteFrame(garbage.Bytes()))

	nack, err := peer.read()
	require.NoError(t, err)
	assert.Equal(t, CommandGenericNack, nack.Header.CommandID)
	assert.Equal(t, StatusInvCmdID, nack.Header.CommandStatus)
	assert.Equal(t, uint32(7), nack.Header.SequenceNumber)
}

func TestSessionRequestTimeout(t *testing.T) {
	cfg := testConfig(RoleTransmitter)
	cfg.ResponseTimeout = 100 * time.Millisecond
	s, peer := pipeSession(t, cfg)
	bindSession(t, s, peer, &BindTransmitterResp{bindRespFields{SystemID: "SMSC1"}})

	go func() {
		peer.read() // swallow the submit, never answer
	}()

	submit := &SubmitSM{smFields{Source: Address{Addr: "1"}, Dest: Address{Addr: "2"}}}
	_, err := s.SendRequest(context.Background(), NewRequest(0, submit))
	assert.ErrorIs(t, err, ErrTimeout)

	s.mu.Lock()
	pending := len(s.pending)
	s.mu.Unlock()
	assert.Zero(t, pending, "timed-out request must leave the pending table")
	assert.Equal(t, StateBoundTX, s.State(), "timeout is per-request, the session stays bound")
}

func TestSessionIdempotentUnbindAndClose(t *testing.T) {
	s, peer := pipeSession(t, testConfig(RoleTransmitter))
	bindSession(t, s, peer, &BindTransmitterResp{bindRespFields{SystemID: "SMSC1"}})

	commands := make(chan uint32, 8)
	go func() {
		defer close(commands)
		for {
			req, err := peer.read()
			if err != nil {
				return
			}
			commands <- req.Header.CommandID
			if req.Header.CommandID == CommandUnbind {
				peer.reply(req, StatusOK, &UnbindResp{})
			}
		}
	}()

	require.NoError(t, s.UnbindAndClose(context.Background()))
	require.NoError(t, s.UnbindAndClose(context.Background()))
	assert.Equal(t, StateClosed, s.State())

	unbinds := 0
	for id := range commands {
		if id == CommandUnbind {
			unbinds++
		}
	}
	assert.Equal(t, 1, unbinds, "a second close must not produce duplicate wire traffic")
}

func TestSessionAnswersInboundEnquireLink(t *testing.T) {
	s, peer := pipeSession(t, testConfig(RoleTransmitter))
	bindSession(t, s, peer, &BindTransmitterResp{bindRespFields{SystemID: "SMSC1"}})

	require.NoError(t, peer.write(NewRequest(42, &EnquireLink{})))
	resp, err := peer.read()
	require.NoError(t, err)
	assert.Equal(t, CommandEnquireLinkResp, resp.Header.CommandID)
	assert.Equal(t, StatusOK, resp.Header.CommandStatus)
	assert.Equal(t, uint32(42), resp.Header.SequenceNumber)
}

func TestSessionDropsOrphanResponse(t *testing.T) {
	s, peer := pipeSession(t, testConfig(RoleTransmitter))
	bindSession(t, s, peer, &BindTransmitterResp{bindRespFields{SystemID: "SMSC1"}})

	orphan := &PDU{
		Header: Header{CommandID: CommandSubmitSMResp, SequenceNumber: 999},
		Body:   &SubmitSMResp{smRespFields{MessageID: "stale"}},
	}
	require.NoError(t, peer.write(orphan))

	// The session must survive the orphan and keep answering traffic.
	go func() {
		req, err := peer.read()
		if err != nil {
			return
		}
		peer.reply(req, StatusOK, &EnquireLinkResp{})
	}()
	_, err := s.SendRequest(context.Background(), NewRequest(0, &EnquireLink{}))
	require.NoError(t, err)
	assert.Equal(t, StateBoundTX, s.State())
}

func TestSessionRejectsIllegalSendForState(t *testing.T) {
	s, peer := pipeSession(t, testConfig(RoleReceiver))
	bindSession(t, s, peer, &BindReceiverResp{bindRespFields{SystemID: "SMSC1"}})
	require.Equal(t, StateBoundRX, s.State())

	submit := &SubmitSM{smFields{Source: Address{Addr: "1"}, Dest: Address{Addr: "2"}}}
	_, err := s.SendRequest(context.Background(), NewRequest(0, submit))
	var violation *ProtocolViolationError
	assert.ErrorAs(t, err, &violation)
	assert.Equal(t, StateBoundRX, s.State(), "illegal PDUs are dropped without state change")
}

func TestSessionNacksIllegalInboundForState(t *testing.T) {
	s, peer := pipeSession(t, testConfig(RoleTransmitter))
	bindSession(t, s, peer, &BindTransmitterResp{bindRespFields{SystemID: "SMSC1"}})

	// deliver_sm is not legal inbound on a transmitter-bound session.
	deliver := &DeliverSM{smFields{Source: Address{Addr: "1"}, Dest: Address{Addr: "2"}}}
	require.NoError(t, peer.write(NewRequest(11, deliver)))

	nack, err := peer.read()
	require.NoError(t, err)
	assert.Equal(t, CommandGenericNack, nack.Header.CommandID)
	assert.Equal(t, StatusInvBnd, nack.Header.CommandStatus)
	assert.Equal(t, uint32(11), nack.Header.SequenceNumber)
	assert.Equal(t, StateBoundTX, s.State())
}

func TestSessionNextIncomingAndRespond(t *testing.T) {
	s, peer := pipeSession(t, testConfig(RoleReceiver))
	bindSession(t, s, peer, &BindReceiverResp{bindRespFields{SystemID: "SMSC1"}})

	deliver := &DeliverSM{smFields{
		Source:       Address{Addr: "555"},
		Dest:         Address{Addr: "666"},
		ShortMessage: ShortMessage("inbound"),
	}}
	require.NoError(t, peer.write(NewRequest(5, deliver)))

	pdu, err := s.NextIncoming(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CommandDeliverSM, pdu.Header.CommandID)
	assert.Equal(t, ShortMessage("inbound"), pdu.Body.(*DeliverSM).ShortMessage)

	resp := &PDU{
		Header: Header{CommandID: CommandDeliverSMResp, CommandStatus: StatusOK},
		Body:   &DeliverSMResp{smRespFields{MessageID: GenerateMessageID()}},
	}
	onWireCh := make(chan *PDU, 1)
	go func() {
		onWire, err := peer.read()
		if err != nil {
			close(onWireCh)
			return
		}
		onWireCh <- onWire
	}()

	require.NoError(t, s.Respond(context.Background(), pdu.Header.SequenceNumber, resp))

	onWire, ok := <-onWireCh
	require.True(t, ok, "peer never saw the response")
	assert.Equal(t, CommandDeliverSMResp, onWire.Header.CommandID)
	assert.Equal(t, uint32(5), onWire.Header.SequenceNumber)

	// Answering the same sequence twice is an orphan.
	err = s.Respond(context.Background(), pdu.Header.SequenceNumber, resp)
	assert.ErrorIs(t, err, ErrOrphanResponse)
}

func TestSessionVersionNegotiationGatesBroadcast(t *testing.T) {
	cfg := testConfig(RoleTransmitter)
	cfg.InterfaceVersion = InterfaceVersion50
	s, peer := pipeSession(t, cfg)

	resp := &BindTransmitterResp{bindRespFields{
		SystemID: "SMSC1",
		TLVs:     []TLV{NewTLV(TagSCInterfaceVersion, []byte{InterfaceVersion34})},
	}}
	bindSession(t, s, peer, resp)

	assert.Equal(t, InterfaceVersion34, s.Version(), "effective version is min(requested, peer)")

	broadcast := &BroadcastSM{Source: Address{Addr: "1"}, MessageID: "m"}
	_, err := s.SendRequest(context.Background(), NewRequest(0, broadcast))
	assert.ErrorIs(t, err, ErrUnsupportedInVersion)
}

func TestSessionVersionKeptWhenPeerReportsNothing(t *testing.T) {
	cfg := testConfig(RoleTransmitter)
	cfg.InterfaceVersion = InterfaceVersion50
	s, peer := pipeSession(t, cfg)
	bindSession(t, s, peer, &BindTransmitterResp{bindRespFields{SystemID: "SMSC1"}})
	assert.Equal(t, InterfaceVersion50, s.Version())
}

func TestSessionCloseFailsOutstandingWaiters(t *testing.T) {
	s, peer := pipeSession(t, testConfig(RoleTransmitter))
	bindSession(t, s, peer, &BindTransmitterResp{bindRespFields{SystemID: "SMSC1"}})

	done := make(chan error, 1)
	go func() {
		submit := &SubmitSM{smFields{Source: Address{Addr: "1"}, Dest: Address{Addr: "2"}}}
		_, err := s.SendRequest(context.Background(), NewRequest(0, submit))
		done <- err
	}()

	// Wait for the submit to register, then tear the session down under it.
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.pending) > 0
	}, time.Second, 5*time.Millisecond)
	go peer.read()
	s.closeWithError(nil)

	err := <-done
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionSendAfterCloseFails(t *testing.T) {
	s, _ := pipeSession(t, testConfig(RoleTransmitter))
	s.closeWithError(nil)
	_, err := s.SendRequest(context.Background(), NewRequest(0, &EnquireLink{}))
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionPriorityFlagVersionCeiling(t *testing.T) {
	s, peer := pipeSession(t, testConfig(RoleTransmitter)) // v3.4
	bindSession(t, s, peer, &BindTransmitterResp{bindRespFields{SystemID: "SMSC1"}})

	submit := &SubmitSM{smFields{
		Source: Address{Addr: "1"}, Dest: Address{Addr: "2"}, PriorityFlag: PriorityLevel4,
	}}
	_, err := s.SendRequest(context.Background(), NewRequest(0, submit))
	var enumErr *InvalidEnumError
	require.ErrorAs(t, err, &enumErr)
	assert.Equal(t, "priority_flag", enumErr.Field)
}
