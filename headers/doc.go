// Package headers implements the HTTP/1.1 in-place header merge algorithm,
// the reserved response header set, and the forbidden trailer header set.
//
// Header names and values are modeled as byte-range indices into a shared
// buffer.Bytes rather than Go string/[]byte views: indices stay valid
// across a Splice that moves the underlying bytes, so a merge never needs
// to chase down every live view by pointer.
package headers
