// Package httpdate formats and parses the RFC 7231 IMF-fixdate used by the
// Date, Last-Modified, If-Modified-Since and If-Unmodified-Since headers,
// and maintains the reactor-local cached Date string refreshed once per
// second.
package httpdate
