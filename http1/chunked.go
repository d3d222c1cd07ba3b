package http1

import (
	"bytes"
	"strconv"

	"github.com/sjanel/aeronet-go/aeroerr"
	"github.com/sjanel/aeronet-go/message"
)

// DecodeChunkedBody scans data (immediately following the request head)
// for a complete chunked body per RFC 7230 §4.1: a sequence of
// size-in-hex/CRLF/chunk-data/CRLF segments terminated by a zero-size
// chunk and an optional trailer section. It returns ErrIncomplete if data
// does not yet contain the terminating zero chunk.
func DecodeChunkedBody(data []byte, maxBodyBytes int64) (body []byte, trailers []message.HeaderField, consumed int, err error) {
	pos := 0
	for {
		lineEnd := bytes.Index(data[pos:], []byte("\r\n"))
		if lineEnd < 0 {
			return nil, nil, 0, ErrIncomplete
		}
		sizeLine := data[pos : pos+lineEnd]
		if semi := bytes.IndexByte(sizeLine, ';'); semi >= 0 {
			sizeLine = sizeLine[:semi]
		}
		size, err := strconv.ParseInt(string(bytes.TrimSpace(sizeLine)), 16, 64)
		if err != nil || size < 0 {
			return nil, nil, 0, aeroerr.Newf(aeroerr.RequestBadFraming, "malformed chunk size %q", string(sizeLine))
		}
		pos += lineEnd + 2

		if size == 0 {
			trailerStart := pos
			if len(data)-trailerStart >= 2 && data[trailerStart] == '\r' && data[trailerStart+1] == '\n' {
				// Empty trailer section: the zero-size line is followed
				// directly by the terminating CRLF.
				return body, nil, trailerStart + 2, nil
			}
			trailerEnd :=bytes.Index(data[trailerStart:], []byte("\r\n\r\n"))
			if trailerEnd < 0 {
				return nil, nil, 0, ErrIncomplete
			}
			trailerBlock := data[trailerStart : trailerStart+trailerEnd]
			if len(trailerBlock) > 0 {
				trailers, err = parseTrailerBlock(trailerBlock)
				if err != nil {
					return nil, nil, 0, err
				}
			}
			return body, trailers, trailerStart + trailerEnd + 4, nil
		}

		if int64(len(body))+size > maxBodyBytes {
			return nil, nil, 0, aeroerr.New(aeroerr.RequestBodyTooLarge)
		}

		if pos+int(size)+2 > len(data) {
			return nil, nil, 0, ErrIncomplete
		}
		body = append(body, data[pos:pos+int(size)]...)
		pos += int(size)
		if data[pos] != '\r' || data[pos+1] != '\n' {
			return nil, nil, 0, aeroerr.Newf(aeroerr.RequestBadFraming, "chunk data not followed by CRLF")
		}
		pos += 2
	}
}

func parseTrailerBlock(block []byte) ([]message.HeaderField, error) {
	var fields []message.HeaderField
	for _, line := range bytes.Split(block, []byte("\r\n")) {
		if len(line) == 0 {
			continue
		}
		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			return nil, aeroerr.Newf(aeroerr.RequestMalformed, "malformed trailer line")
		}
		name := string(bytes.TrimSpace(line[:colon]))
		value := string(bytes.TrimSpace(line[colon+1:]))
		fields = append(fields, message.HeaderField{Name: name, Value: value})
	}
	return fields, nil
}
