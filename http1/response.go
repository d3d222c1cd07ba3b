package http1

import (
	"net/http"
	"strconv"

	"github.com/sjanel/aeronet-go/headers"
	"github.com/sjanel/aeronet-go/httpdate"
	"github.com/sjanel/aeronet-go/message"
)

// WriteOptions carries the per-response decisions the serializer needs
// that are not already on message.Response: whether the connection will
// be kept alive, and the shared Date cache.
type WriteOptions struct {
	KeepAlive bool
	Dates     *httpdate.Cache
}

// AppendResponseHead serializes resp's status line and headers onto dst,
// returning the extended slice. It always emits Date and Content-Length
// (or Transfer-Encoding: chunked for a streamed, length-unknown body),
// and Connection per opts.KeepAlive. Reserved headers present in
// resp.Headers are skipped; the caller is expected to have rejected them
// earlier (message.Response.SetHeader's contract), this is a last-ditch
// guard against a misbehaving handler smuggling a framing header.
func AppendResponseHead(dst []byte, resp *message.Response, contentLength int64, chunked bool, opts WriteOptions) []byte {
	dst = append(dst, "HTTP/1.1 "...)
	dst = strconv.AppendInt(dst, int64(resp.Status), 10)
	dst = append(dst, ' ')
	reason := resp.Reason
	if reason == "" {
		reason = http.StatusText(resp.Status)
	}
	dst = append(dst, reason...)
	dst = append(dst, "\r\n"...)

	for _, f := range resp.Headers {
		if headers.IsReserved(f.Name) {
			continue
		}
		dst = appendHeaderLine(dst, f.Name, f.Value)
	}

	dst = appendHeaderLine(dst, "Date", opts.Dates.String())

	switch {
	case chunked:
		dst = appendHeaderLine(dst, "Transfer-Encoding", "chunked")
	case resp.Kind != message.BodyNone:
		dst = append(dst, "Content-Length: "...)
		dst = strconv.AppendInt(dst, contentLength, 10)
		dst = append(dst, "\r\n"...)
	default:
		dst = appendHeaderLine(dst, "Content-Length", "0")
	}

	if len(resp.Trailers) > 0 && chunked {
		dst = append(dst, "Trailer: "...)
		for i, t := range resp.Trailers {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = append(dst, t.Name...)
		}
		dst = append(dst, "\r\n"...)
	}

	if opts.KeepAlive {
		dst = appendHeaderLine(dst, "Connection", "keep-alive")
	} else {
		dst = appendHeaderLine(dst, "Connection", "close")
	}

	dst = append(dst, "\r\n"...)
	return dst
}

func appendHeaderLine(dst []byte, name, value string) []byte {
	dst = append(dst, name...)
	dst = append(dst, ':', ' ')
	dst = append(dst, value...)
	return append(dst, "\r\n"...)
}

// AppendChunk appends one chunked-transfer-encoding chunk (size line,
// CRLF-terminated data, trailing CRLF) for a non-empty payload, or the
// terminating zero-size chunk plus trailers when p is empty and final
// is true.
func AppendChunk(dst []byte, p []byte, final bool, trailers []message.HeaderField) []byte {
	if len(p) > 0 {
		dst = strconv.AppendInt(dst, int64(len(p)), 16)
		dst = append(dst, "\r\n"...)
		dst = append(dst, p...)
		dst = append(dst, "\r\n"...)
	}
	if final {
		dst = append(dst, '0')
		dst = append(dst, "\r\n"...)
		for _, t := range trailers {
			if headers.IsForbiddenTrailer(t.Name) {
				continue
			}
			dst = appendHeaderLine(dst, t.Name, t.Value)
		}
		dst = append(dst, "\r\n"...)
	}
	return dst
}
