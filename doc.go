// Package aeronet is the composition root: it wires a router, an optional
// static-file handler, a logging sink, a metrics sink, and an OpenTelemetry
// tracer onto one or more reactor.Group listeners and exposes them as a
// single embeddable Server (or, for multiple bind addresses, a Group of
// Servers) with a uniform start/ready/shutdown lifecycle.
package aeronet
