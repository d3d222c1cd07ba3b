// Package hpack implements RFC 7541 header compression: the static and
// dynamic tables, integer and string (plain + Huffman) encoding, and the
// representation types a header block uses (indexed, literal with
// incremental indexing, literal without indexing, never-indexed, and the
// dynamic-table-size-update signal).
//
// No hpack implementation survived retrieval in any complete example repo
// (golang.org/x/net/http2/hpack is deliberately not imported — the whole
// point of this module is to implement HTTP/2 rather than delegate to it),
// so this package is grounded directly on RFC 7541.
package hpack
