// Package http1 implements the HTTP/1.1 (and HTTP/1.0) request head
// parser, body framing (Content-Length / chunked), response
// serialization, and keep-alive policy. The head parser reads directly
// out of the connection's buffer.Bytes, handing header name/value ranges
// to headers.List so duplicate headers are merged in place rather than
// copied into a separate map.
package http1
