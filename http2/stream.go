package http2

import "github.com/sjanel/aeronet-go/message"

// StreamState is a stream's position in the RFC 9113 §5.1 state machine,
// restricted to the subset this server's role (always the "server" peer)
// can occupy: Idle, Open, HalfClosedLocal, HalfClosedRemote, Closed.
type StreamState uint8

const (
	StreamIdle StreamState = iota
	StreamOpen
	StreamHalfClosedLocal
	StreamHalfClosedRemote
	StreamClosed
)

// Stream is one HTTP/2 stream's mutable state: flow-control windows,
// in-progress header-block accumulation, and the request being built from
// the decoded header fields plus any DATA received so far.
type Stream struct {
	ID    uint32
	State StreamState

	SendWindow flowWindow
	RecvWindow flowWindow

	// headerBlock accumulates HEADERS + CONTINUATION payloads until the
	// frame carrying END_HEADERS arrives; it is handed to the
	// connection's single HPACK decoder exactly once.
	headerBlock []byte

	EndStreamOnHeaders bool

	Body []byte

	// pendingRequest holds a header-block-complete, body-incomplete
	// request between the HEADERS block finishing and the DATA frame
	// carrying END_STREAM arriving.
	pendingRequest *message.Request

	closeErr ErrorCode
}

func newStream(id uint32, initialSend, initialRecv uint32) *Stream {
	return &Stream{
		ID:         id,
		State:      StreamIdle,
		SendWindow: newFlowWindow(initialSend),
		RecvWindow: newFlowWindow(initialRecv),
	}
}

// onHeadersReceived transitions Idle -> Open (or HalfClosedRemote if the
// client signaled END_STREAM on the HEADERS frame itself).
func (s *Stream) onHeadersReceived(endStream bool) error {
	if s.State != StreamIdle {
		return &StreamError{StreamID: s.ID, Code: ErrProtocol, Msg: "HEADERS on a non-idle stream"}
	}
	if endStream {
		s.State = StreamHalfClosedRemote
	} else {
		s.State = StreamOpen
	}
	return nil
}

// onDataReceived applies the END_STREAM transition for a received DATA
// frame (Open -> HalfClosedRemote, HalfClosedLocal -> Closed); it is the
// caller's job to have already validated the stream accepts DATA at all.
func (s *Stream) onDataReceived(endStream bool) {
	if !endStream {
		return
	}
	switch s.State {
	case StreamOpen:
		s.State = StreamHalfClosedRemote
	case StreamHalfClosedLocal:
		s.State = StreamClosed
	}
}

// onDataSent applies the END_STREAM transition for a server-sent DATA
// frame (Open -> HalfClosedLocal, HalfClosedRemote -> Closed).
func (s *Stream) onDataSent(endStream bool) {
	if !endStream {
		return
	}
	switch s.State {
	case StreamOpen:
		s.State = StreamHalfClosedLocal
	case StreamHalfClosedRemote:
		s.State = StreamClosed
	}
}

// acceptsFrame reports whether typ may legally arrive while s is in its
// current state (RFC 9113 §5.1's per-state event table, restricted to the
// server-role subset).
func (s *Stream) acceptsFrame(typ FrameType) bool {
	if s.State == StreamClosed {
		return typ == FrameWindowUpdate || typ == FrameRSTStream || typ == FramePriority
	}
	switch typ {
	case FrameData:
		return s.State == StreamOpen || s.State == StreamHalfClosedLocal
	case FrameHeaders, FrameContinuation:
		return s.State == StreamIdle || s.State == StreamOpen || s.State == StreamHalfClosedLocal
	default:
		return true
	}
}

func (s *Stream) reset(code ErrorCode) {
	s.State = StreamClosed
	s.closeErr = code
}
