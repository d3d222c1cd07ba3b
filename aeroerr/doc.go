// Package aeroerr provides the numeric-coded error type used across the
// reactor, HTTP/1.1, HTTP/2 and router packages: a CodeError classification
// similar to an HTTP status code, an automatically captured call-site
// (file and line), and a parent-error chain compatible with the
// standard library's errors.Is/errors.As.
//
// The design (code + stack frame + parent chain, `errors.As`-compatible)
// is adapted from golib's errors package, trimmed to the subset this
// module's call sites actually use: no Return-callback plumbing and no
// gin integration, since neither has a caller here.
package aeroerr
