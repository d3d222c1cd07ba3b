package http1

import "strings"

// KeepAliveDecision is the inputs that determine whether a connection
// persists past the current request/response.
type KeepAliveDecision struct {
	RequestVersion  Version
	ConnectionValue string // the request's Connection header, if any
	HasConnection   bool
	RequestsServed  int
	MaxRequests     int // 0 means unbounded
}

// Persist decides whether the connection stays open for another
// request. HTTP/1.0 defaults to close unless the client opts in with
// "Connection: keep-alive"; HTTP/1.1 defaults to keep-alive unless the
// client (or a per-listener request cap) says otherwise.
func Persist(d KeepAliveDecision) bool {
	if d.MaxRequests > 0 && d.RequestsServed >= d.MaxRequests {
		return false
	}

	if d.HasConnection && hasToken(d.ConnectionValue, "close") {
		return false
	}

	switch d.RequestVersion {
	case Version10:
		return d.HasConnection && hasToken(d.ConnectionValue, "keep-alive")
	default:
		return true
	}
}

func hasToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
