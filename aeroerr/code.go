package aeroerr

// CodeError is a numeric error classification, partitioned by the
// subsystem that raises it so a log sink or metrics sink can bucket
// failures without string matching.
type CodeError uint16

// Partitions: 1xxx configuration, 2xxx connection-fatal (reactor/transport),
// 3xxx request-scoped (HTTP/1.1 parsing/framing), 4xxx handler-raised,
// 5xxx HTTP/2 connection-fatal, 6xxx HTTP/2 stream-scoped.
const (
	Unknown CodeError = 0

	ConfigInvalid CodeError = 1000
	ConfigTLS     CodeError = 1001

	ConnReset           CodeError = 2000
	ConnTimeout         CodeError = 2001
	ConnBufferOverflow  CodeError = 2002
	ConnHandshakeFailed CodeError = 2003

	RequestHeadTooLarge CodeError = 3000
	RequestMalformed    CodeError = 3001
	RequestBodyTooLarge CodeError = 3002
	RequestBadFraming   CodeError = 3003

	HandlerPanic CodeError = 4000

	HTTP2ConnProtocol     CodeError = 5000
	HTTP2ConnFlowControl  CodeError = 5001
	HTTP2ConnSettings     CodeError = 5002

	HTTP2StreamProtocol    CodeError = 6000
	HTTP2StreamFlowControl CodeError = 6001
	HTTP2StreamRefused     CodeError = 6002
)

// messages holds the default human-readable text per code; a caller
// providing an explicit message via Newf overrides this.
var messages = map[CodeError]string{
	Unknown: "unknown error",

	ConfigInvalid: "invalid configuration",
	ConfigTLS:     "invalid TLS configuration",

	ConnReset:           "connection reset",
	ConnTimeout:         "connection timed out",
	ConnBufferOverflow:  "outbound buffer limit exceeded",
	ConnHandshakeFailed: "TLS handshake failed",

	RequestHeadTooLarge: "request head exceeds configured limit",
	RequestMalformed:    "malformed request",
	RequestBodyTooLarge: "request body exceeds configured limit",
	RequestBadFraming:   "invalid request body framing",

	HandlerPanic: "handler panicked",

	HTTP2ConnProtocol:    "HTTP/2 connection protocol error",
	HTTP2ConnFlowControl: "HTTP/2 connection flow control error",
	HTTP2ConnSettings:    "HTTP/2 invalid SETTINGS value",

	HTTP2StreamProtocol:    "HTTP/2 stream protocol error",
	HTTP2StreamFlowControl: "HTTP/2 stream flow control error",
	HTTP2StreamRefused:     "HTTP/2 stream refused",
}

func (c CodeError) defaultMessage() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return "unknown error"
}
