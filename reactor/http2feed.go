//go:build linux

package reactor

import (
	"github.com/sjanel/aeronet-go/http2"
	"github.com/sjanel/aeronet-go/message"
	"github.com/sjanel/aeronet-go/router"
)

// feedHTTP2 consumes as many complete frames as the buffer holds,
// dispatching a Request to the router each time a stream's header block
// (and body, if any) completes, and queuing each frame handler's direct
// reply (SETTINGS ACK, PING ACK, WINDOW_UPDATE, ...) for the wire.
func (c *Conn) feedHTTP2() (out []byte, closeAfter bool, err error) {
	for {
		if c.readBuf.Len() < http2.FrameHeaderLen {
			return out, false, nil
		}
		fh := http2.ReadFrameHeader(c.readBuf.Bytes())
		total := http2.FrameHeaderLen + int(fh.Length)
		if c.readBuf.Len() < total {
			return out, false, nil
		}

		payload := append([]byte(nil), c.readBuf.Slice(http2.FrameHeaderLen, total)...)
		frameOut, ready, ferr := c.h2.HandleFrame(fh, payload)
		c.readBuf.EraseFront(total)
		out = append(out, frameOut...)

		if ferr != nil {
			if se, ok := ferr.(*http2.StreamError); ok {
				c.logf("warn", "stream %d reset: %s", se.StreamID, se.Msg)
				out = append(out, c.h2.AppendRSTStream(nil, se.StreamID, se.Code)...)
				continue
			}
			c.logf("warn", "connection closing: %s", ferr.Error())
			out = append(out, c.goAwayFor(ferr)...)
			return out, true, nil
		}

		if ready != nil {
			out = append(out, c.handleHTTP2Ready(ready)...)
		}

		if c.h2.State() == http2.GoAwaySent || c.h2.State() == http2.Closed {
			return out, true, nil
		}
	}
}

func (c *Conn) goAwayFor(err error) []byte {
	code := http2.ErrProtocol
	if ce, ok := err.(*http2.ConnError); ok {
		code = ce.Code
	}
	return c.h2.AppendGoAway(nil, code)
}

func (c *Conn) handleHTTP2Ready(ready *http2.Ready) []byte {
	req := ready.Request
	req.RemoteAddr = c.remoteAddr
	if req.Scheme == "" {
		req.Scheme = schemeFor(c.isTLS)
	}

	method, ok := router.ParseMethod(req.Method)
	if !ok {
		return c.h2.AppendGoAway(nil, http2.ErrProtocol)
	}

	resp := c.dispatch(req, method)
	headerBlock := c.h2.EncodeResponseHeaders(resp)
	return appendHTTP2Response(c.h2, ready.StreamID, headerBlock, resp, method == router.MethodHEAD)
}

// appendHTTP2Response builds the HEADERS frame and, for a BodyBytes
// response, one or more DATA frames chunked to the peer's advertised
// MaxFrameSize. suppressBody skips DATA frames for the HEAD fallback,
// which dispatches the matching GET handler. It does not yet consult the
// stream or connection send window before emitting DATA: doing so
// correctly requires buffering unsent body bytes across epoll ticks until
// a WINDOW_UPDATE arrives, which this single-pass, fully-buffered
// response path does not support.
func appendHTTP2Response(conn *http2.Connection, streamID uint32, headerBlock []byte, resp *message.Response, suppressBody bool) []byte {
	var out []byte
	endStream := suppressBody || resp.Kind == message.BodyNone || (resp.Kind == message.BodyBytes && len(resp.Bytes) == 0)

	out = appendH2Frame(out, http2.FrameHeaders, headerFlags(endStream), streamID, headerBlock)

	if suppressBody {
		if resp.Kind == message.BodyFile && resp.File.File != nil {
			resp.File.File.Close()
		}
		return out
	}

	if resp.Kind == message.BodyBytes && len(resp.Bytes) > 0 {
		out = appendDataFrames(out, conn, streamID, resp.Bytes)
	} else if resp.Kind == message.BodyFile && resp.File.Length > 0 {
		out = appendDataFrames(out, conn, streamID, readFileBody(resp.File))
	}

	return out
}

// appendDataFrames splits body across DATA frames no larger than the
// peer's advertised MaxFrameSize, setting END_STREAM on the last one.
func appendDataFrames(dst []byte, conn *http2.Connection, streamID uint32, body []byte) []byte {
	maxFrame := int(conn.PeerMaxFrameSize())
	if maxFrame <= 0 {
		maxFrame = len(body)
	}
	for len(body) > 0 {
		n := len(body)
		if n > maxFrame {
			n = maxFrame
		}
		flags := http2.Flags(0)
		if n == len(body) {
			flags = http2.FlagEndStream
		}
		dst = appendH2Frame(dst, http2.FrameData, flags, streamID, body[:n])
		body = body[n:]
	}
	return dst
}

func headerFlags(endStream bool) http2.Flags {
	f := http2.FlagEndHeaders
	if endStream {
		f |= http2.FlagEndStream
	}
	return f
}

func appendH2Frame(dst []byte, typ http2.FrameType, flags http2.Flags, streamID uint32, payload []byte) []byte {
	dst = http2.AppendFrameHeader(dst, http2.FrameHeader{Type: typ, Flags: flags, StreamID: streamID, Length: uint32(len(payload))})
	return append(dst, payload...)
}
