// Package message defines the protocol-neutral Request/Response model and
// the handler contract (sync, streaming, async) shared by http1, http2 and
// router.
package message
