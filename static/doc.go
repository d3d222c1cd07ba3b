// Package static serves files from a sandboxed root directory with RFC
// 7232 conditional-request and RFC 7233 single-range semantics, the way a
// reverse proxy's static asset handler would. It builds message.Response
// values for direct registration in a router.Router; it does not touch
// the network itself.
package static
