// Package http2 implements the RFC 9113 connection and stream layer: frame
// header parsing, the preface handshake, SETTINGS negotiation, the
// connection and per-stream state machines, HEADERS/CONTINUATION
// accumulation into one HPACK-decoded header block, DATA flow control at
// both levels, RST_STREAM retention, PING, and GOAWAY.
//
// No HTTP/2 implementation survived retrieval in any complete example
// repo (golang.org/x/net/http2 is deliberately not imported — implementing
// the protocol is the point of this module), so the frame and state-machine
// shapes here are grounded directly on RFC 9113 text, reusing this
// module's own hpack package for header compression and internal/ring for
// closed-stream retention.
package http2
