// Package reactor drives accepted connections through http1/http2 parsing
// and the router without a goroutine per connection. Cleartext
// connections are registered on a Linux epoll set (poller_linux.go) and
// driven non-blocking, one event loop per Reactor; a Group runs several
// Reactors side by side, each with its own epoll set and its own listener
// bound with SO_REUSEPORT, so accepts spread across them without any
// cross-reactor locking.
//
// TLS connections still go through tls.Listener/tls.Conn: reimplementing
// TLS record framing on top of a hand-rolled non-blocking loop was judged
// out of scope (see DESIGN.md). Each accepted TLS connection instead runs
// on its own goroutine that calls the same request-processing function
// the epoll loop calls for cleartext connections, so the protocol logic
// itself is not duplicated between the two I/O strategies.
package reactor
