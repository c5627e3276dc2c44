package smpp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oarkflow/smpp-server/internal/errorrecovery"
	"github.com/oarkflow/smpp-server/internal/flowcontrol"
	"github.com/oarkflow/smpp-server/internal/logger"
	"github.com/oarkflow/smpp-server/internal/metrics"
	"github.com/oarkflow/smpp-server/internal/version"
)

// GenerateMessageID returns a locally-synthesized message_id suitable for a submit_sm_resp or
// data_sm_resp built by the application side of the session (§3 PendingRequest; the wire id
// itself is opaque to the protocol, spec §4.2).
func GenerateMessageID() string {
	return uuid.NewString()
}

// inboundBacklog bounds how many undelivered inbound requests NextIncoming will buffer before
// the reader falls back to auto-responding on the application's behalf (§4.5: "automatic
// response generation available when the application registers no handler" — interpreted here
// as "the application isn't draining NextIncoming").
const inboundBacklog = 64

// awaitingResponse is the correlation-table entry for an inbound request the application must
// answer via Respond (§6).
type awaitingResponse struct {
	commandID uint32
}

// Session is the connection runtime (C5): it owns the transport and drives the reader and
// writer activities described in spec §4.5 and §5, multiplexing concurrent logical requests
// over one ordered TCP stream.
type Session struct {
	ID  string
	cfg SessionConfig

	conn net.Conn
	fr   *FrameReader
	fw   *FrameWriter

	seq *sequenceAllocator

	mu      sync.Mutex
	state   State
	version uint8

	pending  map[uint32]*pendingRequest
	awaiting map[uint32]awaitingResponse

	inbound   chan *PDU
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error

	writeActivity chan struct{}

	limiter *flowcontrol.Limiter
	metrics *metrics.Collector
	logger  *slog.Logger
}

// Dial implements connect_and_bind (§6): it opens the transport, performs the bind handshake
// for cfg.BindRole, negotiates the effective protocol version (§4.7), and starts the reader,
// writer, and enquire-link activities.
func Dial(ctx context.Context, cfg SessionConfig) (*Session, error) {
	return dialWithDeps(ctx, cfg, nil, nil)
}

// DialWithObservability is Dial plus an explicit metrics collector and logger, for callers that
// run many sessions in one process and want them reported through a shared Collector (§6, §2
// ambient stack). A nil collector or logger behaves like Dial.
func DialWithObservability(ctx context.Context, cfg SessionConfig, m *metrics.Collector, log *slog.Logger) (*Session, error) {
	return dialWithDeps(ctx, cfg, m, log)
}

// dialWithDeps is the shared core of Dial/DialWithObservability; a nil logger falls back to
// slog.Default and a nil metrics collector disables metrics reporting.
func dialWithDeps(ctx context.Context, cfg SessionConfig, m *metrics.Collector, log *slog.Logger) (*Session, error) {
	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = DefaultMaxFrameSize
	}
	if log == nil {
		log = slog.Default()
	}
	var d net.Dialer
	conn, err := errorrecovery.Dial(ctx, errorrecovery.DefaultDialConfig(), func(ctx context.Context) (net.Conn, error) {
		return d.DialContext(ctx, "tcp", cfg.Address)
	})
	if err != nil {
		return nil, fmt.Errorf("smpp: dial %s: %w", cfg.Address, err)
	}
	s := newSession(conn, cfg, m, log)
	s.start()

	if err := s.bind(ctx); err != nil {
		s.closeWithError(err)
		return nil, err
	}
	return s, nil
}

func newSession(conn net.Conn, cfg SessionConfig, m *metrics.Collector, log *slog.Logger) *Session {
	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = DefaultMaxFrameSize
	}
	if log == nil {
		log = slog.Default()
	}
	id := uuid.NewString()
	s := &Session{
		ID:            id,
		cfg:           cfg,
		conn:          conn,
		fr:            NewFrameReader(conn, cfg.MaxFrameSize),
		fw:            NewFrameWriter(conn),
		seq:           newSequenceAllocator(),
		state:         StateOpen,
		version:       cfg.InterfaceVersion,
		pending:       make(map[uint32]*pendingRequest),
		awaiting:      make(map[uint32]awaitingResponse),
		inbound:       make(chan *PDU, inboundBacklog),
		done:          make(chan struct{}),
		writeActivity: make(chan struct{}, 1),
		metrics:       m,
		logger:        logger.Session(log, id, cfg.BindRole.String()),
	}
	if cfg.InterfaceVersion >= InterfaceVersion50 && cfg.MaxRatePerSecond > 0 {
		s.limiter = flowcontrol.NewLimiter(cfg.MaxRatePerSecond)
	}
	return s
}

func (s *Session) start() {
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	go s.readLoop()
	go s.enquireLinkLoop()
}

// bind sends the bind_* request for cfg.BindRole and applies the resulting state transition and
// version negotiation (§4.4, §4.7).
func (s *Session) bind(ctx context.Context) error {
	var body Body
	switch s.cfg.BindRole {
	case RoleReceiver:
		body = &BindReceiver{bindFields{
			SystemID: s.cfg.SystemID, Password: s.cfg.Password, SystemType: s.cfg.SystemType,
			InterfaceVer: s.cfg.InterfaceVersion, AddrTON: s.cfg.AddrTON, AddrNPI: s.cfg.AddrNPI,
			AddressRange: s.cfg.AddressRange,
		}}
	case RoleTransceiver:
		body = &BindTransceiver{bindFields{
			SystemID: s.cfg.SystemID, Password: s.cfg.Password, SystemType: s.cfg.SystemType,
			InterfaceVer: s.cfg.InterfaceVersion, AddrTON: s.cfg.AddrTON, AddrNPI: s.cfg.AddrNPI,
			AddressRange: s.cfg.AddressRange,
		}}
	default:
		body = &BindTransmitter{bindFields{
			SystemID: s.cfg.SystemID, Password: s.cfg.Password, SystemType: s.cfg.SystemType,
			InterfaceVer: s.cfg.InterfaceVersion, AddrTON: s.cfg.AddrTON, AddrNPI: s.cfg.AddrNPI,
			AddressRange: s.cfg.AddressRange,
		}}
	}

	resp, err := s.SendRequest(ctx, NewRequest(0, body))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if resp.Header.CommandStatus != StatusOK {
		s.state = StateClosed
		return NewStatusError(resp.Header.CommandStatus)
	}
	switch s.cfg.BindRole {
	case RoleReceiver:
		s.state = StateBoundRX
	case RoleTransceiver:
		s.state = StateBoundTRX
	default:
		s.state = StateBoundTX
	}

	peerVersion, ok := uint8(0), false
	if br, isResp := resp.Body.(*BindReceiverResp); isResp {
		peerVersion, ok = br.SCInterfaceVersion()
	} else if br, isResp := resp.Body.(*BindTransceiverResp); isResp {
		peerVersion, ok = br.SCInterfaceVersion()
	} else if br, isResp := resp.Body.(*BindTransmitterResp); isResp {
		peerVersion, ok = br.SCInterfaceVersion()
	}
	effective := version.Negotiate(version.Version(s.cfg.InterfaceVersion), peerVersion, ok)
	s.version = uint8(effective)
	return nil
}

// SendRequest implements session.send_request (§6): it allocates a sequence number, registers a
// PendingRequest, writes the frame, and blocks until the correlated response arrives, the
// request's deadline passes, ctx is cancelled, or the session closes.
func (s *Session) SendRequest(ctx context.Context, req *PDU) (*PDU, error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if req.Header.SequenceNumber == 0 {
		req.Header.SequenceNumber = s.seq.allocate()
	}
	if !isOutboundLegal(s.state, req.Header.CommandID) {
		s.mu.Unlock()
		return nil, &ProtocolViolationError{Reason: fmt.Sprintf("command 0x%08X not legal to send in state %s", req.Header.CommandID, s.state)}
	}
	if !version.SupportsCommand(version.Version(s.version), req.Header.CommandID) {
		s.mu.Unlock()
		return nil, ErrUnsupportedInVersion
	}
	if pf, ok := priorityFlagOf(req.Body); ok {
		if max := version.MaxPriorityFlag(version.Version(s.version)); pf > max {
			s.mu.Unlock()
			return nil, &InvalidEnumError{Field: "priority_flag", Value: uint32(pf)}
		}
	}
	sink := make(chan pendingResult, 1)
	deadline := time.Now().Add(s.cfg.ResponseTimeout)
	s.pending[req.Header.SequenceNumber] = &pendingRequest{
		commandID: req.Header.CommandID,
		deadline:  deadline,
		sink:      sink,
	}
	s.reportPendingLocked()
	s.mu.Unlock()

	if s.limiter != nil && isFlowControlledSubmit(req.Header.CommandID) {
		if err := s.limiter.Acquire(ctx); err != nil {
			s.removePending(req.Header.SequenceNumber)
			if errors.Is(err, flowcontrol.ErrBackpressure) {
				return nil, ErrBackpressure
			}
			return nil, err
		}
	}

	if err := s.writeFrame(req); err != nil {
		s.removePending(req.Header.SequenceNumber)
		return nil, err
	}

	timer := time.NewTimer(s.cfg.ResponseTimeout)
	defer timer.Stop()
	select {
	case result := <-sink:
		return result.pdu, result.err
	case <-timer.C:
		s.removePending(req.Header.SequenceNumber)
		return nil, ErrTimeout
	case <-ctx.Done():
		s.removePending(req.Header.SequenceNumber)
		return nil, ctx.Err()
	case <-s.done:
		return nil, s.closeErrOrDefault()
	}
}

// priorityFlagOf extracts priority_flag from the PDU bodies that carry one, so SendRequest can
// apply the version-sensitive ceiling of §9 (v3.4: 0..3, v5.0: 0..4) that the codec's own
// Validate cannot, since it has no session/version context.
func priorityFlagOf(body Body) (uint8, bool) {
	switch b := body.(type) {
	case *SubmitSM:
		return b.PriorityFlag, true
	case *DeliverSM:
		return b.PriorityFlag, true
	case *SubmitMulti:
		return b.PriorityFlag, true
	default:
		return 0, false
	}
}

func isFlowControlledSubmit(commandID uint32) bool {
	switch commandID {
	case CommandSubmitSM, CommandSubmitMulti, CommandDataSM:
		return true
	default:
		return false
	}
}

func (s *Session) removePending(seq uint32) {
	s.mu.Lock()
	delete(s.pending, seq)
	s.reportPendingLocked()
	s.mu.Unlock()
}

func (s *Session) reportPendingLocked() {
	if s.metrics != nil {
		s.metrics.SetPending(s.ID, len(s.pending))
	}
}

// NextIncoming implements session.next_incoming (§6): one pull of the lazy sequence of
// deliver_sm / data_sm / alert_notification PDUs the peer has sent. It returns ErrSessionClosed
// once the session closes and its buffered backlog is drained.
func (s *Session) NextIncoming(ctx context.Context) (*PDU, error) {
	select {
	case pdu := <-s.inbound:
		return pdu, nil
	case <-s.done:
		select {
		case pdu := <-s.inbound:
			return pdu, nil
		default:
		}
		return nil, s.closeErrOrDefault()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Respond implements session.respond (§6): the application answers a correlated inbound request
// previously delivered by NextIncoming.
func (s *Session) Respond(ctx context.Context, sequenceNumber uint32, resp *PDU) error {
	s.mu.Lock()
	aw, ok := s.awaiting[sequenceNumber]
	if !ok {
		s.mu.Unlock()
		return ErrOrphanResponse
	}
	delete(s.awaiting, sequenceNumber)
	s.mu.Unlock()

	if resp.Header.CommandID != aw.commandID|CommandGenericNack {
		return ErrMismatchedResponse
	}
	resp.Header.SequenceNumber = sequenceNumber
	return s.writeFrame(resp)
}

// UnbindAndClose implements session.unbind_and_close (§6, §5): it sends unbind, awaits
// unbind_resp up to response_timeout, then closes the transport regardless. Idempotent: a
// second call observes the already-closed state and returns nil without duplicate wire traffic.
func (s *Session) UnbindAndClose(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ResponseTimeout)
	defer cancel()
	_, err := s.SendRequest(ctx, NewRequest(0, &Unbind{}))
	s.closeWithError(nil)
	if err != nil && !errors.Is(err, ErrSessionClosed) {
		return err
	}
	return nil
}

// State returns the session's current lifecycle state (§4.4).
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version returns the effective negotiated interface version (§4.7).
func (s *Session) Version() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Session) writeFrame(pdu *PDU) error {
	buf, err := Encode(pdu)
	if err != nil {
		if s.metrics != nil {
			s.metrics.PDU(pdu.Header.CommandID, "out", "error")
		}
		return err
	}
	if err := s.fw.WriteFrame(buf); err != nil {
		if s.metrics != nil {
			s.metrics.PDU(pdu.Header.CommandID, "out", "error")
		}
		s.closeWithError(fmt.Errorf("smpp: write: %w", err))
		return s.closeErrOrDefault()
	}
	if s.metrics != nil {
		s.metrics.PDU(pdu.Header.CommandID, "out", "ok")
	}
	select {
	case s.writeActivity <- struct{}{}:
	default:
	}
	return nil
}

// readLoop is the reader activity of §4.5: it frames and decodes inbound bytes, correlates
// responses, and classifies requests as auto-answered, queued for the application, or protocol
// violations.
func (s *Session) readLoop() {
	for {
		frame, err := s.fr.ReadFrame()
		if err != nil {
			var fe *FrameError
			if errors.As(err, &fe) && !isFatalFrameError(fe.Unwrap()) {
				s.sendNack(fe.SequenceNumber, nackStatusFor(fe.Unwrap()))
				continue
			}
			if errors.As(err, &fe) {
				s.sendNack(fe.SequenceNumber, nackStatusFor(fe.Unwrap()))
			}
			s.closeWithError(err)
			return
		}

		pdu, err := Decode(frame)
		if err != nil {
			var fe *FrameError
			if errors.As(err, &fe) {
				s.sendNack(fe.SequenceNumber, nackStatusFor(fe.Unwrap()))
				if isFatalFrameError(fe.Unwrap()) {
					s.closeWithError(err)
					return
				}
				continue
			}
			s.closeWithError(err)
			return
		}
		if s.metrics != nil {
			s.metrics.PDU(pdu.Header.CommandID, "in", "ok")
		}
		s.handleInbound(pdu)
	}
}

func (s *Session) handleInbound(pdu *PDU) {
	h := pdu.Header
	if h.IsResponse() {
		s.dispatchResponse(pdu)
		return
	}

	s.mu.Lock()
	state := s.state
	legal := isInboundLegal(state, h.CommandID)
	s.mu.Unlock()
	if !legal {
		s.sendNack(h.SequenceNumber, StatusInvBnd)
		return
	}

	switch h.CommandID {
	case CommandEnquireLink:
		s.writeFrame(NewResponse(pdu, StatusOK, &EnquireLinkResp{}))
		return
	case CommandUnbind:
		s.writeFrame(NewResponse(pdu, StatusOK, &UnbindResp{}))
		s.mu.Lock()
		s.state = StateUnbound
		s.mu.Unlock()
		s.closeWithError(nil)
		return
	case CommandAlertNotification, CommandOutbind:
		// Neither has a response (§4.2); outbind is only ever legal pre-bind and exists to
		// invite the ESME to bind back, not to be answered.
		s.deliverOrDrop(pdu)
		return
	case CommandDeliverSM, CommandDataSM:
		s.deliverRequest(pdu)
		return
	default:
		s.sendNack(h.SequenceNumber, StatusInvCmdID)
	}
}

// deliverRequest queues a request the application must answer via Respond; if the application
// isn't draining NextIncoming (buffer full), the runtime answers on its behalf per §4.5's
// default policy.
func (s *Session) deliverRequest(pdu *PDU) {
	s.mu.Lock()
	s.awaiting[pdu.Header.SequenceNumber] = awaitingResponse{commandID: pdu.Header.CommandID}
	s.mu.Unlock()

	select {
	case s.inbound <- pdu:
	default:
		s.mu.Lock()
		delete(s.awaiting, pdu.Header.SequenceNumber)
		s.mu.Unlock()
		s.autoRespond(pdu)
	}
}

// deliverOrDrop queues a request with no response (alert_notification), dropping it silently if
// the application isn't reading (it is advisory only).
func (s *Session) deliverOrDrop(pdu *PDU) {
	select {
	case s.inbound <- pdu:
	default:
	}
}

func (s *Session) autoRespond(pdu *PDU) {
	switch pdu.Header.CommandID {
	case CommandDeliverSM:
		s.writeFrame(NewResponse(pdu, StatusXTAppn, &DeliverSMResp{}))
	case CommandDataSM:
		s.writeFrame(NewResponse(pdu, StatusXTAppn, &DataSMResp{}))
	}
}

func (s *Session) dispatchResponse(pdu *PDU) {
	s.mu.Lock()
	pr, ok := s.pending[pdu.Header.SequenceNumber]
	if ok {
		delete(s.pending, pdu.Header.SequenceNumber)
		s.reportPendingLocked()
	}
	s.mu.Unlock()

	if !ok {
		s.logger.Warn("orphan response", "sequence_number", pdu.Header.SequenceNumber, "command_id", pdu.Header.CommandID)
		return
	}
	if pdu.Header.CommandID != pr.commandID|CommandGenericNack {
		pr.sink <- pendingResult{err: ErrMismatchedResponse}
		return
	}

	if cs, ok := findTLV(congestionTLVs(pdu), TagCongestionState); ok && len(cs.Value) == 1 {
		s.limiter.ReportCongestion(cs.Value[0])
		if s.metrics != nil {
			s.metrics.SetCongestion(s.ID, s.limiter.Congestion())
		}
	} else if pdu.Header.CommandStatus == StatusThrottled {
		s.limiter.ReportCongestion(100)
		if s.metrics != nil {
			s.metrics.SetCongestion(s.ID, s.limiter.Congestion())
		}
	}

	var err error
	if pdu.Header.CommandStatus != StatusOK {
		err = NewStatusError(pdu.Header.CommandStatus)
	}
	pr.sink <- pendingResult{pdu: pdu, err: err}
}

// congestionTLVs extracts the TLV list from response bodies that may carry congestion_state,
// without requiring every *_resp type to satisfy a shared interface.
func congestionTLVs(pdu *PDU) []TLV {
	switch b := pdu.Body.(type) {
	case *SubmitSMResp:
		return b.TLVs
	case *DataSMResp:
		return b.TLVs
	case *DeliverSMResp:
		return b.TLVs
	case *SubmitMultiResp:
		return b.TLVs
	}
	return nil
}

func (s *Session) sendNack(seq uint32, status uint32) {
	nack := &PDU{
		Header: Header{CommandID: CommandGenericNack, CommandStatus: status, SequenceNumber: seq},
		Body:   &GenericNack{},
	}
	s.writeFrame(nack)
}

// enquireLinkLoop implements the keep-alive timer of §4.5: it fires enquire_link after
// enquire_link_interval of no outbound traffic and declares the session dead if no response
// arrives within response_timeout.
func (s *Session) enquireLinkLoop() {
	interval := s.cfg.EnquireLinkInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-s.writeActivity:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(interval)
		case <-timer.C:
			start := time.Now()
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ResponseTimeout)
			_, err := s.SendRequest(ctx, NewRequest(0, &EnquireLink{}))
			cancel()
			if s.metrics != nil && err == nil {
				s.metrics.ObserveEnquireLinkRTT(time.Since(start))
			}
			if err != nil {
				s.closeWithError(fmt.Errorf("smpp: enquire_link: %w", err))
				return
			}
			timer.Reset(interval)
		}
	}
}

func (s *Session) closeWithError(err error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		if err != nil {
			s.closeErr = err
		}
		pending := s.pending
		s.pending = nil
		s.mu.Unlock()

		for _, pr := range pending {
			pr.sink <- pendingResult{err: ErrSessionClosed}
		}
		close(s.done)
		s.conn.Close()
		if s.metrics != nil {
			s.metrics.SessionClosed()
		}
	})
}

func (s *Session) closeErrOrDefault() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeErr != nil {
		return s.closeErr
	}
	return ErrSessionClosed
}
