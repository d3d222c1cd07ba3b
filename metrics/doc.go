// Package metrics provides the metrics sink collaborator: counter add,
// gauge set, histogram observe, and timing, bound to
// github.com/prometheus/client_golang when enabled and a no-op
// implementation otherwise.
package metrics
