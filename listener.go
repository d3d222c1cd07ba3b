package aeronet

import (
	"fmt"

	"github.com/sjanel/aeronet-go/config"
	"github.com/sjanel/aeronet-go/metrics"
	"github.com/sjanel/aeronet-go/otelsink"
	"github.com/sjanel/aeronet-go/router"
)

// LogFunc is the logging-sink collaborator: a level-tagged string line.
// nil is a valid value and means "discard".
type LogFunc func(level string, msg string)

// Listener bundles the external-interface surface of one bind address: its
// ListenerConfig, the router that resolves requests on it, and its three
// narrow collaborators (logging, metrics, telemetry). It is a declarative
// value — building the actual reactor happens in NewServer.
type Listener struct {
	Config config.ListenerConfig
	Router *router.Router

	Log     LogFunc
	Metrics metrics.Sink
	Tracer  otelsink.Tracer

	// Instances bounds how many OS-thread reactors share this address via
	// SO_REUSEPORT; <= 0 defaults to GOMAXPROCS (see reactor.NewGroup).
	Instances int
}

func (l Listener) logf(level, format string, args ...any) {
	if l.Log == nil {
		return
	}
	l.Log(level, fmt.Sprintf(format, args...))
}
