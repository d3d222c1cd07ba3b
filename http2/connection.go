package http2

import (
	"strings"

	"github.com/sjanel/aeronet-go/aeroerr"
	"github.com/sjanel/aeronet-go/hpack"
	"github.com/sjanel/aeronet-go/internal/ring"
	"github.com/sjanel/aeronet-go/message"
)

// ConnState is the connection's position in the preface/handshake/drain
// state machine.
type ConnState uint8

const (
	AwaitingPreface ConnState = iota
	AwaitingSettings
	Open
	GoAwaySent
	GoAwayReceived
	Closed
)

// retainedStreams is the size of the closed-stream-ID FIFO (RST_STREAM
// retention window); ~16 entries per the component design.
const retainedStreams = 16

// TunnelHandler services a CONNECT request, given the :authority value
// and the stream it was issued on. The router is never consulted for
// CONNECT: Connection.finishHeaderBlock intercepts it first.
type TunnelHandler func(req *message.Request, stream *Stream) error

// Config bundles the connection-scoped knobs sourced from
// config.ListenerConfig/Http2Config.
type Config struct {
	Local              Settings
	MaxHeaderListBytes int
	ConnectAllowlist   []string
}

// Connection is one HTTP/2 connection's full protocol state: the frame
// dispatch state machine, peer/local SETTINGS, the connection-level flow
// control windows, the single HPACK decoder/encoder pair (HPACK's
// dynamic table is connection-scoped, never per-stream), and every open
// or recently-closed stream.
type Connection struct {
	state ConnState

	local Settings
	peer  Settings

	streams             map[uint32]*Stream
	lastPeerStreamID    uint32
	closedStreams       *ring.Ring
	expectContinuation  bool
	headerBlockStreamID uint32

	connSend flowWindow
	connRecv flowWindow

	decoder *hpack.Decoder
	encoder *hpack.Encoder

	maxHeaderListBytes int
	connectAllowlist   []string

	lastPingPayload [8]byte
	pingOutstanding bool
}

// New returns a freshly constructed Connection awaiting the client
// preface. cfg.Local is the server's own SETTINGS to advertise once the
// handshake reaches AwaitingSettings.
func New(cfg Config) *Connection {
	local := cfg.Local
	return &Connection{
		state:              AwaitingPreface,
		local:              local,
		peer:               DefaultSettings(),
		streams:            make(map[uint32]*Stream),
		closedStreams:      ring.New(retainedStreams),
		connSend:           newFlowWindow(DefaultSettings().InitialWindowSize),
		connRecv:           newFlowWindow(local.InitialWindowSize),
		decoder:            hpack.NewDecoder(cfg.MaxHeaderListBytes),
		encoder:            hpack.NewEncoder(int(local.HeaderTableSize)),
		maxHeaderListBytes: cfg.MaxHeaderListBytes,
		connectAllowlist:   cfg.ConnectAllowlist,
	}
}

// State reports the connection's current handshake/drain state.
func (c *Connection) State() ConnState { return c.state }

// ConsumePreface checks p against the 24-byte client magic and, if it
// matches, transitions AwaitingPreface -> AwaitingSettings and returns the
// server's initial SETTINGS frame to send. It returns a ConnError if p is
// long enough to judge and does not match.
func (c *Connection) ConsumePreface(p []byte) (out []byte, consumed int, err error) {
	if len(p) < len(ClientPreface) {
		if !strings.HasPrefix(ClientPreface, string(p)) {
			return nil, 0, &ConnError{Code: ErrProtocol, Msg: "bad client preface"}
		}
		return nil, 0, nil
	}
	if string(p[:len(ClientPreface)]) != ClientPreface {
		return nil, 0, &ConnError{Code: ErrProtocol, Msg: "bad client preface"}
	}
	c.state = AwaitingSettings
	out = AppendFrameHeader(nil, FrameHeader{Type: FrameSettings, StreamID: 0})
	payload := AppendSettingsPayload(nil, c.local.Entries())
	out = patchLength(out, len(payload))
	out = append(out, payload...)
	return out, len(ClientPreface), nil
}

func patchLength(frame []byte, payloadLen int) []byte {
	frame[0] = byte(payloadLen >> 16)
	frame[1] = byte(payloadLen >> 8)
	frame[2] = byte(payloadLen)
	return frame
}

// Ready is a request that has finished accumulating its header block
// (and, if bounded by Content-Length-equivalent framing, its body) and is
// ready for router dispatch.
type Ready struct {
	StreamID uint32
	Request  *message.Request
}

// HandleFrame processes one fully-read frame (header plus payload) and
// returns any bytes that must be written back (frame ACKs, WINDOW_UPDATE,
// GOAWAY) plus, if this frame completed a request, the Ready value.
func (c *Connection) HandleFrame(fh FrameHeader, payload []byte) (out []byte, ready *Ready, err error) {
	if c.state == Closed {
		return nil, nil, &ConnError{Code: ErrProtocol, Msg: "frame received after close"}
	}

	if c.expectContinuation && fh.Type != FrameContinuation {
		return nil, nil, &ConnError{Code: ErrProtocol, Msg: "expected CONTINUATION"}
	}

	switch fh.Type {
	case FrameSettings:
		return c.handleSettings(fh, payload)
	case FrameHeaders:
		return c.handleHeaders(fh, payload)
	case FrameContinuation:
		return c.handleContinuation(fh, payload)
	case FrameData:
		return c.handleData(fh, payload)
	case FrameWindowUpdate:
		return c.handleWindowUpdate(fh, payload)
	case FrameRSTStream:
		return c.handleRSTStream(fh, payload)
	case FramePing:
		return c.handlePing(fh, payload)
	case FrameGoAway:
		c.state = GoAwayReceived
		return nil, nil, nil
	case FramePriority:
		return nil, nil, nil // priority signaling is accepted and ignored
	default:
		return nil, nil, nil // unknown frame types are ignored per RFC 9113 §4.1
	}
}

func (c *Connection) handleSettings(fh FrameHeader, payload []byte) ([]byte, *Ready, error) {
	if fh.Flags.Has(FlagAck) {
		if len(payload) != 0 {
			return nil, nil, &ConnError{Code: ErrFrameSize, Msg: "SETTINGS ACK must be empty"}
		}
		return nil, nil, nil
	}

	entries, err := ParseSettingsPayload(payload)
	if err != nil {
		return nil, nil, err
	}
	delta, err := c.peer.Apply(entries)
	if err != nil {
		return nil, nil, err
	}
	if delta != 0 {
		for _, s := range c.streams {
			if s.State == StreamClosed {
				continue
			}
			if overflow := s.SendWindow.add(delta); overflow {
				return nil, nil, &StreamError{StreamID: s.ID, Code: ErrFlowControl, Msg: "window overflow after SETTINGS delta"}
			}
		}
	}

	if c.state == AwaitingSettings {
		c.state = Open
	}

	ack := AppendFrameHeader(nil, FrameHeader{Type: FrameSettings, Flags: FlagAck, StreamID: 0})
	return ack, nil, nil
}

func (c *Connection) handleHeaders(fh FrameHeader, payload []byte) ([]byte, *Ready, error) {
	if fh.StreamID == 0 || fh.StreamID%2 == 0 {
		return nil, nil, &ConnError{Code: ErrProtocol, Msg: "HEADERS on an invalid stream ID"}
	}
	if fh.StreamID <= c.lastPeerStreamID {
		if c.closedStreams.Contains(fh.StreamID) {
			return nil, nil, nil // late frame on a retained ID: ignored silently
		}
		return nil, nil, &ConnError{Code: ErrProtocol, Msg: "HEADERS reuses a closed stream ID"}
	}

	rest := stripPriorityAndPadding(fh, payload)
	stream := newStream(fh.StreamID, c.peer.InitialWindowSize, c.local.InitialWindowSize)
	c.streams[fh.StreamID] = stream
	c.lastPeerStreamID = fh.StreamID

	endStream := fh.Flags.Has(FlagEndStream)
	if err := stream.onHeadersReceived(endStream); err != nil {
		return nil, nil, err
	}
	stream.EndStreamOnHeaders = endStream

	stream.headerBlock = append(stream.headerBlock, rest...)

	if !fh.Flags.Has(FlagEndHeaders) {
		c.expectContinuation = true
		c.headerBlockStreamID = fh.StreamID
		return nil, nil, nil
	}

	return c.finishHeaderBlock(stream)
}

func (c *Connection) handleContinuation(fh FrameHeader, payload []byte) ([]byte, *Ready, error) {
	if !c.expectContinuation || fh.StreamID != c.headerBlockStreamID {
		return nil, nil, &ConnError{Code: ErrProtocol, Msg: "unexpected CONTINUATION"}
	}
	stream := c.streams[fh.StreamID]
	stream.headerBlock = append(stream.headerBlock, payload...)

	if len(stream.headerBlock) > c.maxHeaderListBytes {
		stream.reset(ErrCompression)
		c.closedStreams.Add(stream.ID)
		return nil, nil, &StreamError{StreamID: stream.ID, Code: ErrCompression, Msg: "header block exceeds max header list size"}
	}

	if !fh.Flags.Has(FlagEndHeaders) {
		return nil, nil, nil
	}
	c.expectContinuation = false
	return c.finishHeaderBlock(stream)
}

func (c *Connection) finishHeaderBlock(stream *Stream) ([]byte, *Ready, error) {
	fields, err := c.decoder.DecodeHeaderBlock(stream.headerBlock)
	if err != nil {
		return nil, nil, &ConnError{Code: ErrCompression, Msg: "HPACK decode failure"}
	}
	stream.headerBlock = nil

	req := requestFromFields(fields, stream.ID)

	if strings.EqualFold(req.Method, "CONNECT") {
		// The router is never consulted for CONNECT; composition root
		// wiring of TunnelHandler happens one layer up from here, gated
		// by the configured allowlist.
		req.Proto = message.ProtoHTTP2
		return nil, &Ready{StreamID: stream.ID, Request: req}, nil
	}

	if stream.EndStreamOnHeaders {
		return nil, &Ready{StreamID: stream.ID, Request: req}, nil
	}

	// Body arrives as subsequent DATA frames; stash the partial request
	// on the stream and surface Ready once END_STREAM DATA completes it.
	stream.pendingRequest = req
	return nil, nil, nil
}

func requestFromFields(fields []hpack.HeaderField, streamID uint32) *message.Request {
	req := &message.Request{Proto: message.ProtoHTTP2, StreamID: streamID}
	mh := message.NewMapHeaders()
	for _, f := range fields {
		switch f.Name {
		case ":method":
			req.Method = f.Value
		case ":path":
			req.Target = f.Value
			if q := strings.IndexByte(f.Value, '?'); q >= 0 {
				req.Path, req.Query = f.Value[:q], f.Value[q+1:]
			} else {
				req.Path = f.Value
			}
		case ":scheme":
			req.Scheme = f.Value
		case ":authority":
			req.Authority = f.Value
		default:
			mh.Add(f.Name, f.Value)
		}
	}
	req.Headers = mh
	return req
}

func stripPriorityAndPadding(fh FrameHeader, payload []byte) []byte {
	p := payload
	padLen := 0
	if fh.Flags.Has(FlagPadded) && len(p) > 0 {
		padLen = int(p[0])
		p = p[1:]
	}
	if fh.Flags.Has(FlagPriority) && len(p) >= 5 {
		p = p[5:]
	}
	if padLen > 0 && padLen <= len(p) {
		p = p[:len(p)-padLen]
	}
	return p
}

func (c *Connection) handleData(fh FrameHeader, payload []byte) ([]byte, *Ready, error) {
	if overflow := c.connRecv.consume(int64(len(payload))); overflow {
		return nil, nil, &ConnError{Code: ErrFlowControl, Msg: "connection receive window exceeded"}
	}

	stream, ok := c.streams[fh.StreamID]
	if !ok {
		if c.closedStreams.Contains(fh.StreamID) {
			return nil, nil, nil
		}
		return nil, nil, &ConnError{Code: ErrProtocol, Msg: "DATA on unknown stream"}
	}
	if !stream.acceptsFrame(FrameData) {
		return nil, nil, &StreamError{StreamID: fh.StreamID, Code: ErrStreamClosed, Msg: "DATA on a stream that cannot accept it"}
	}
	if overflow := stream.RecvWindow.consume(int64(len(payload))); overflow {
		return nil, nil, &StreamError{StreamID: fh.StreamID, Code: ErrFlowControl, Msg: "stream receive window exceeded"}
	}

	body := stripPriorityAndPadding(fh, payload)
	stream.Body = append(stream.Body, body...)

	endStream := fh.Flags.Has(FlagEndStream)
	stream.onDataReceived(endStream)

	var out []byte
	if c.connRecv.size < windowUpdateThreshold(c.local.InitialWindowSize) {
		increment := int64(c.local.InitialWindowSize) - c.connRecv.size
		c.connRecv.add(increment)
		out = append(out, appendWindowUpdate(nil, 0, uint32(increment))...)
	}
	if stream.RecvWindow.size < windowUpdateThreshold(c.local.InitialWindowSize) {
		increment := int64(c.local.InitialWindowSize) - stream.RecvWindow.size
		stream.RecvWindow.add(increment)
		out = append(out, appendWindowUpdate(nil, fh.StreamID, uint32(increment))...)
	}

	if !endStream {
		return out, nil, nil
	}

	if stream.pendingRequest == nil {
		return out, nil, &ConnError{Code: ErrProtocol, Msg: "DATA END_STREAM without a preceding header block"}
	}
	req := stream.pendingRequest
	req.Body = stream.Body
	stream.pendingRequest = nil
	return out, &Ready{StreamID: stream.ID, Request: req}, nil
}

func appendWindowUpdate(dst []byte, streamID uint32, increment uint32) []byte {
	dst = AppendFrameHeader(dst, FrameHeader{Type: FrameWindowUpdate, StreamID: streamID})
	start := len(dst) - FrameHeaderLen
	dst = patchLengthAt(dst, start, 4)
	var buf [4]byte
	buf[0] = byte(increment >> 24 & 0x7f)
	buf[1] = byte(increment >> 16)
	buf[2] = byte(increment >> 8)
	buf[3] = byte(increment)
	return append(dst, buf[:]...)
}

func patchLengthAt(dst []byte, frameStart, payloadLen int) []byte {
	dst[frameStart] = byte(payloadLen >> 16)
	dst[frameStart+1] = byte(payloadLen >> 8)
	dst[frameStart+2] = byte(payloadLen)
	return dst
}

func (c *Connection) handleWindowUpdate(fh FrameHeader, payload []byte) ([]byte, *Ready, error) {
	if len(payload) != 4 {
		return nil, nil, &ConnError{Code: ErrFrameSize, Msg: "WINDOW_UPDATE payload must be 4 bytes"}
	}
	increment := int64(payload[0]&0x7f)<<24 | int64(payload[1])<<16 | int64(payload[2])<<8 | int64(payload[3])
	if increment == 0 {
		if fh.StreamID == 0 {
			return nil, nil, &ConnError{Code: ErrProtocol, Msg: "WINDOW_UPDATE increment must be > 0"}
		}
		return nil, nil, &StreamError{StreamID: fh.StreamID, Code: ErrProtocol, Msg: "WINDOW_UPDATE increment must be > 0"}
	}

	if fh.StreamID == 0 {
		if overflow := c.connSend.add(increment); overflow {
			return nil, nil, &ConnError{Code: ErrFlowControl, Msg: "connection send window overflow"}
		}
		return nil, nil, nil
	}

	stream, ok := c.streams[fh.StreamID]
	if !ok {
		if c.closedStreams.Contains(fh.StreamID) {
			return nil, nil, nil
		}
		return nil, nil, &ConnError{Code: ErrProtocol, Msg: "WINDOW_UPDATE on unknown stream"}
	}
	if overflow := stream.SendWindow.add(increment); overflow {
		return nil, nil, &StreamError{StreamID: fh.StreamID, Code: ErrFlowControl, Msg: "stream send window overflow"}
	}
	return nil, nil, nil
}

func (c *Connection) handleRSTStream(fh FrameHeader, payload []byte) ([]byte, *Ready, error) {
	if len(payload) != 4 {
		return nil, nil, &ConnError{Code: ErrFrameSize, Msg: "RST_STREAM payload must be 4 bytes"}
	}
	stream, ok := c.streams[fh.StreamID]
	if !ok {
		if c.closedStreams.Contains(fh.StreamID) {
			return nil, nil, nil
		}
		return nil, nil, &ConnError{Code: ErrProtocol, Msg: "RST_STREAM on unknown stream"}
	}
	stream.reset(ErrorCode(uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3])))
	delete(c.streams, fh.StreamID)
	c.closedStreams.Add(fh.StreamID)
	return nil, nil, nil
}

func (c *Connection) handlePing(fh FrameHeader, payload []byte) ([]byte, *Ready, error) {
	if len(payload) != 8 {
		return nil, nil, &ConnError{Code: ErrFrameSize, Msg: "PING payload must be 8 bytes"}
	}
	if fh.Flags.Has(FlagAck) {
		if c.pingOutstanding && string(payload) == string(c.lastPingPayload[:]) {
			c.pingOutstanding = false
		}
		// An ACK that doesn't match (or arrives with none outstanding) is
		// simply ignored, per the component design.
		return nil, nil, nil
	}
	out := AppendFrameHeader(nil, FrameHeader{Type: FramePing, Flags: FlagAck, StreamID: 0})
	out = patchLengthAt(out, 0, 8)
	out = append(out, payload...)
	return out, nil, nil
}

// AppendPing builds a non-ACK PING frame carrying payload and records it
// as the outstanding ping to match against the eventual ACK.
func (c *Connection) AppendPing(dst []byte, payload [8]byte) []byte {
	c.lastPingPayload = payload
	c.pingOutstanding = true
	dst = AppendFrameHeader(dst, FrameHeader{Type: FramePing, StreamID: 0})
	dst = patchLengthAt(dst, len(dst)-FrameHeaderLen, 8)
	return append(dst, payload[:]...)
}

// AppendGoAway builds a GOAWAY frame announcing code as the reason and
// c.lastPeerStreamID as the highest stream the server will still
// process, and transitions the connection to GoAwaySent.
func (c *Connection) AppendGoAway(dst []byte, code ErrorCode) []byte {
	dst = AppendFrameHeader(dst, FrameHeader{Type: FrameGoAway, StreamID: 0})
	start := len(dst) - FrameHeaderLen
	dst = patchLengthAt(dst, start, 8)
	var buf [8]byte
	buf[0] = byte(c.lastPeerStreamID >> 24 & 0x7f)
	buf[1] = byte(c.lastPeerStreamID >> 16)
	buf[2] = byte(c.lastPeerStreamID >> 8)
	buf[3] = byte(c.lastPeerStreamID)
	buf[4] = byte(code >> 24)
	buf[5] = byte(code >> 16)
	buf[6] = byte(code >> 8)
	buf[7] = byte(code)
	dst = append(dst, buf[:]...)
	c.state = GoAwaySent
	return dst
}

// AppendRSTStream builds an outgoing RST_STREAM frame for streamID
// announcing code, and retires the stream the same way an incoming
// RST_STREAM does: closed, dropped from the live map, and remembered in
// the closed-stream retention ring so late frames on it are ignored
// rather than treated as a protocol violation. The connection itself is
// left open — unlike AppendGoAway, this does not change c.state.
func (c *Connection) AppendRSTStream(dst []byte, streamID uint32, code ErrorCode) []byte {
	if stream, ok := c.streams[streamID]; ok {
		stream.reset(code)
		delete(c.streams, streamID)
		c.closedStreams.Add(streamID)
	}

	dst = AppendFrameHeader(dst, FrameHeader{Type: FrameRSTStream, StreamID: streamID})
	start := len(dst) - FrameHeaderLen
	dst = patchLengthAt(dst, start, 4)
	var buf [4]byte
	buf[0] = byte(code >> 24)
	buf[1] = byte(code >> 16)
	buf[2] = byte(code >> 8)
	buf[3] = byte(code)
	return append(dst, buf[:]...)
}

// EncodeResponseHeaders builds the HEADERS frame payload for resp,
// pseudo-headers first, via the connection's shared HPACK encoder.
func (c *Connection) EncodeResponseHeaders(resp *message.Response) []byte {
	fields := make([]hpack.HeaderField, 0, len(resp.Headers)+1)
	fields = append(fields, hpack.HeaderField{Name: ":status", Value: statusString(resp.Status)})
	for _, h := range resp.Headers {
		fields = append(fields, hpack.HeaderField{Name: strings.ToLower(h.Name), Value: h.Value})
	}
	return c.encoder.EncodeHeaderBlock(nil, fields)
}

func statusString(code int) string {
	const digits = "0123456789"
	if code < 100 || code > 999 {
		return "500"
	}
	return string([]byte{digits[code/100], digits[code/10%10], digits[code%10]})
}

// PeerMaxFrameSize reports the largest frame payload the peer has
// advertised it will accept, for chunking outbound DATA frames.
func (c *Connection) PeerMaxFrameSize() uint32 {
	return c.peer.MaxFrameSize
}

// ConnectAllowed reports whether authority is permitted to open a CONNECT
// tunnel under this connection's configured allowlist. An empty allowlist
// permits nothing, matching the "refuse unless explicitly allowed"
// posture decided for CONNECT tunneling.
func (c *Connection) ConnectAllowed(authority string) bool {
	for _, allowed := range c.connectAllowlist {
		if strings.EqualFold(allowed, authority) {
			return true
		}
	}
	return false
}

// AeroerrCode maps a connection/stream error to the classification code
// this module reports through aeroerr for logging and metrics.
func AeroerrCode(err error) aeroerr.CodeError {
	switch err.(type) {
	case *ConnError:
		return aeroerr.HTTP2ConnProtocol
	case *StreamError:
		return aeroerr.HTTP2StreamProtocol
	default:
		return aeroerr.Unknown
	}
}
