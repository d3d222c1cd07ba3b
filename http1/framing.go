package http1

import (
	"strconv"
	"strings"

	"github.com/sjanel/aeronet-go/aeroerr"
	"github.com/sjanel/aeronet-go/headers"
)

// BodyFraming discriminates how a request body's length is determined.
type BodyFraming uint8

const (
	// FramingNone means no body is present (GET/HEAD-shaped requests,
	// or any request with neither Content-Length nor Transfer-Encoding).
	FramingNone BodyFraming = iota
	FramingContentLength
	FramingChunked
)

// Framing is the resolved body-length policy for one request head.
type Framing struct {
	Kind          BodyFraming
	ContentLength int64 // valid when Kind == FramingContentLength
}

// DetermineFraming resolves a request's body framing from its headers,
// per RFC 7230 §3.3.3. A request carrying both Transfer-Encoding and
// Content-Length is a request-smuggling signal and is rejected outright
// rather than picking one over the other.
func DetermineFraming(h *headers.List) (Framing, error) {
	te, hasTE := h.Get("transfer-encoding")
	cl, hasCL := h.Get("content-length")

	if hasTE && hasCL {
		return Framing{}, aeroerr.Newf(aeroerr.RequestBadFraming,
			"request carries both Content-Length and Transfer-Encoding")
	}

	if hasTE {
		codings := strings.Split(te, ",")
		last := strings.TrimSpace(codings[len(codings)-1])
		if !strings.EqualFold(last, "chunked") {
			return Framing{}, aeroerr.Newf(aeroerr.RequestBadFraming,
				"unsupported transfer-encoding %q", te)
		}
		return Framing{Kind: FramingChunked}, nil
	}

	if hasCL {
		if strings.ContainsAny(cl, ", ") {
			return Framing{}, aeroerr.Newf(aeroerr.RequestBadFraming,
				"malformed content-length %q", cl)
		}
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			return Framing{}, aeroerr.Newf(aeroerr.RequestBadFraming,
				"malformed content-length %q", cl)
		}
		return Framing{Kind: FramingContentLength, ContentLength: n}, nil
	}

	return Framing{Kind: FramingNone}, nil
}

// Expects100Continue reports whether the request carries "Expect:
// 100-continue", in which case the framework should write a 100
// Continue interim response before reading the body.
func Expects100Continue(h *headers.List) bool {
	v, ok := h.Get("expect")
	return ok && strings.EqualFold(strings.TrimSpace(v), "100-continue")
}
