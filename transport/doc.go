// Package transport builds the net.Listener a reactor accepts
// connections from: a plain TCP listener with optional SO_REUSEPORT for
// multi-reactor fan-out, or the same listener wrapped in TLS when the
// configured listener enables it. Certificate loading follows the
// load-pair-from-file idiom in this module's certificates package,
// trimmed to the fields config.TLSConfig actually exposes.
package transport
