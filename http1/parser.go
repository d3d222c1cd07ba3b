package http1

import (
	"bytes"
	"errors"

	"golang.org/x/net/http/httpguts"

	"github.com/sjanel/aeronet-go/aeroerr"
	"github.com/sjanel/aeronet-go/buffer"
	"github.com/sjanel/aeronet-go/headers"
	"github.com/sjanel/aeronet-go/router"
)

// ErrIncomplete is returned by ParseHead when buf does not yet contain a
// full request head; the caller should read more bytes off the socket
// and retry, not treat this as a failed request.
var ErrIncomplete = errors.New("http1: incomplete request head")

// Version is the HTTP version on the request line.
type Version uint8

const (
	Version10 Version = iota
	Version11
)

func (v Version) String() string {
	if v == Version10 {
		return "HTTP/1.0"
	}
	return "HTTP/1.1"
}

// Head is a fully parsed request head: the request line plus the merged
// header list, both still backed by the connection's receive buffer.
type Head struct {
	Method    router.Method
	RawMethod string
	Target    string
	Path      string
	Query     string
	Version   Version

	Headers *headers.List

	// HeadLen is the number of bytes the request line and headers
	// occupied, including the terminating blank line; the caller erases
	// exactly this many bytes from buf once the head (and, if framed by
	// Content-Length, the body) has been consumed.
	HeadLen int
}

// ParseHead scans buf for a complete request head (terminated by a blank
// line) and parses it. It returns ErrIncomplete if buf's live region does
// not yet contain one and is still within maxHeaderBytes; it returns a
// RequestHeadTooLarge aeroerr.Error once the live region reaches
// maxHeaderBytes without a blank line ever appearing.
func ParseHead(buf *buffer.Bytes, maxHeaderBytes int) (*Head, error) {
	data := buf.Bytes()

	limit := len(data)
	if limit > maxHeaderBytes {
		limit = maxHeaderBytes
	}

	idx := bytes.Index(data[:limit], []byte("\r\n\r\n"))
	if idx < 0 {
		if len(data) >= maxHeaderBytes {
			return nil, aeroerr.New(aeroerr.RequestHeadTooLarge)
		}
		return nil, ErrIncomplete
	}

	lines := splitLines(data[:idx])
	if len(lines) == 0 {
		return nil, aeroerr.Newf(aeroerr.RequestMalformed, "empty request line")
	}

	h := &Head{HeadLen: idx + 4}

	if err := parseRequestLine(data, lines[0], h); err != nil {
		return nil, err
	}

	h.Headers = headers.NewList(buf)
	for i := 1; i < len(lines); i++ {
		shift, insertAt, err := parseHeaderLine(data, lines[i], h.Headers)
		if err != nil {
			return nil, err
		}
		if shift == 0 {
			continue
		}
		// A duplicate-header merge just spliced buf's live region,
		// moving every byte at or past insertAt by shift. lines[i+1:]
		// and the terminating blank line are still offsets into the
		// pre-splice data snapshot, so they must be adjusted before the
		// next parseHeaderLine call trusts them, and data itself must be
		// refreshed to see the moved bytes.
		for j := i + 1; j < len(lines); j++ {
			if lines[j][0] >= insertAt {
				lines[j][0] += shift
				lines[j][1] += shift
			}
		}
		if idx >= insertAt {
			idx += shift
			h.HeadLen += shift
		}
		data = buf.Bytes()
	}

	return h, nil
}

// splitLines returns the [start,end) byte ranges of each CRLF-terminated
// line within b, offsets relative to b itself (and therefore directly
// usable as headers.Range values once combined with the same base as the
// caller's buf.Bytes() slice).
func splitLines(b []byte) [][2]int {
	var lines [][2]int
	start := 0
	for i := 0; i+1 < len(b); i++ {
		if b[i] == '\r' && b[i+1] == '\n' {
			lines = append(lines, [2]int{start, i})
			start = i + 2
			i++
		}
	}
	if start < len(b) {
		lines = append(lines, [2]int{start, len(b)})
	}
	return lines
}

func parseRequestLine(data []byte, ln [2]int, h *Head) error {
	line := data[ln[0]:ln[1]]

	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return aeroerr.Newf(aeroerr.RequestMalformed, "malformed request line")
	}
	sp2 := bytes.LastIndexByte(line, ' ')
	if sp2 <= sp1 {
		return aeroerr.Newf(aeroerr.RequestMalformed, "malformed request line")
	}

	method := string(line[:sp1])
	target := string(line[sp1+1 : sp2])
	version := string(line[sp2+1:])

	m, ok := router.ParseMethod(method)
	if !ok {
		return aeroerr.Newf(aeroerr.RequestMalformed, "unrecognized method %q", method)
	}
	h.Method = m
	h.RawMethod = method

	switch version {
	case "HTTP/1.1":
		h.Version = Version11
	case "HTTP/1.0":
		h.Version = Version10
	default:
		return aeroerr.Newf(aeroerr.RequestMalformed, "unsupported version %q", version)
	}

	if target == "" {
		return aeroerr.Newf(aeroerr.RequestMalformed, "empty request target")
	}
	h.Target = target
	if q := bytes.IndexByte([]byte(target), '?'); q >= 0 {
		h.Path, h.Query = target[:q], target[q+1:]
	} else {
		h.Path = target
	}

	return nil
}

// parseHeaderLine parses the header at ln within data and records it in
// hdrs. It returns the shift and insertAt that hdrs.Add reports (see
// headers.List.Add): a non-zero shift means hdrs spliced buf's live
// region as part of a duplicate-header merge, and the caller must apply
// the same adjustment to any other byte ranges it holds into that same
// pre-splice data snapshot.
func parseHeaderLine(data []byte, ln [2]int, hdrs *headers.List) (shift, insertAt int, err error) {
	if ln[1] <= ln[0] {
		return 0, 0, aeroerr.Newf(aeroerr.RequestMalformed, "empty header line")
	}

	line := data[ln[0]:ln[1]]
	if line[0] == ' ' || line[0] == '\t' {
		// obs-fold: a continuation of the previous header value. RFC 7230
		// §3.2.4 says a recipient that does not support it MUST replace
		// it with a single space or reject the message; rejecting is
		// simpler and avoids the request-smuggling class of bugs obs-fold
		// historically enabled.
		return 0, 0, aeroerr.Newf(aeroerr.RequestMalformed, "obsolete line folding is not supported")
	}

	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return 0, 0, aeroerr.Newf(aeroerr.RequestMalformed, "malformed header line")
	}

	name := line[:colon]
	if name[len(name)-1] == ' ' || name[len(name)-1] == '\t' {
		// Whitespace between the field name and the colon is a known
		// smuggling vector (RFC 7230 §3.2.4); reject outright.
		return 0, 0, aeroerr.Newf(aeroerr.RequestMalformed, "whitespace before header colon")
	}
	if !httpguts.ValidHeaderFieldName(string(name)) {
		return 0, 0, aeroerr.Newf(aeroerr.RequestMalformed, "invalid header field name %q", string(name))
	}

	valStart, valEnd := colon+1, len(line)
	for valStart < valEnd && (line[valStart] == ' ' || line[valStart] == '\t') {
		valStart++
	}
	for valEnd > valStart && (line[valEnd-1] == ' ' || line[valEnd-1] == '\t') {
		valEnd--
	}
	value := line[valStart:valEnd]
	if !httpguts.ValidHeaderFieldValue(string(value)) {
		return 0, 0, aeroerr.Newf(aeroerr.RequestMalformed, "invalid header field value for %q", string(name))
	}

	nameRange := headers.Range{Start: ln[0], End: ln[0] + colon}
	valueRange := headers.Range{Start: ln[0] + valStart, End: ln[0] + valEnd}

	shift, insertAt, err = hdrs.Add(nameRange, valueRange)
	if err != nil {
		return 0, 0, aeroerr.Wrapf(aeroerr.RequestMalformed, err, "header %q", string(name))
	}
	return shift, insertAt, nil
}
