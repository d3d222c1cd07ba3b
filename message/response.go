package message

import "os"

// BodyKind discriminates the three response body representations: an
// owned byte sequence, a zero-copy file range, or a writer-driven chunk
// stream (used by streaming handlers; Response itself only models the
// first two, the streaming path writes directly through StreamWriter
// instead of building a Response).
type BodyKind uint8

const (
	BodyNone BodyKind = iota
	BodyBytes
	BodyFile
)

// FileBody describes a zero-copy file-range body.
type FileBody struct {
	File   *os.File
	Offset int64
	Length int64
}

// HeaderField is one ordered response header the handler set.
type HeaderField struct {
	Name  string
	Value string
}

// Response is what a sync handler returns and what a streaming/async
// handler's output is normalized to before serialization. Reserved
// headers must not appear in Headers; the serializer computes them.
type Response struct {
	Status  int
	Reason  string
	Headers []HeaderField

	Kind  BodyKind
	Bytes []byte
	File  FileBody

	Trailers []HeaderField
}

// NewResponse builds a simple byte-body response.
func NewResponse(status int, body []byte) *Response {
	return &Response{Status: status, Kind: BodyBytes, Bytes: body}
}

// SetHeader appends a header, rejecting reserved names is the caller's
// responsibility (enforced centrally in the serializer so both sync and
// streaming paths get one enforcement point).
func (r *Response) SetHeader(name, value string) {
	r.Headers = append(r.Headers, HeaderField{Name: name, Value: value})
}

// AddTrailer appends a trailer header.
func (r *Response) AddTrailer(name, value string) {
	r.Trailers = append(r.Trailers, HeaderField{Name: name, Value: value})
}
