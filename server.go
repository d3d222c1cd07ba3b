package aeronet

import (
	"context"
	"sync"

	"github.com/sjanel/aeronet-go/aeroerr"
	"github.com/sjanel/aeronet-go/atomic"
	"github.com/sjanel/aeronet-go/duration"
	"github.com/sjanel/aeronet-go/metrics"
	"github.com/sjanel/aeronet-go/reactor"
)

// Server is one embeddable HTTP/1.1+HTTP/2 listener: the composition-root
// equivalent of httpserver.Server, grounded on its GetName/GetBindable/
// IsRunning/Listen/Restart/Shutdown/WaitNotify shape but rebuilt around
// reactor.Group instead of net/http.Server.
type Server struct {
	l Listener

	group *reactor.Group

	running   atomic.Value[bool]
	ready     chan struct{}
	readyOnce sync.Once

	cancel context.CancelFunc
}

// NewServer validates l.Config, builds the reactor.Group bound to its
// address, and returns a Server ready to Run. The listening socket is
// already bound once NewServer returns successfully — Run only starts
// serving it.
func NewServer(l Listener) (*Server, error) {
	if err := l.Config.Validate(); err != nil {
		l.logf("error", "listener %q: invalid config: %s", l.Config.Name, err.Error())
		return nil, err
	}
	if l.Router == nil {
		return nil, aeroerr.Newf(aeroerr.ConfigInvalid, "listener %q: router is required", l.Config.Name)
	}
	if l.Metrics == nil {
		l.Metrics = metrics.Noop()
	}

	g, err := reactor.NewGroup(l.Config, l.Router, l.Instances, reactor.LogFunc(l.Log))
	if err != nil {
		return nil, err
	}

	return &Server{
		l:       l,
		group:   g,
		running: atomic.NewValue[bool](),
		ready:   make(chan struct{}),
	}, nil
}

// Name returns the listener's configured name.
func (s *Server) Name() string {
	return s.l.Config.Name
}

// Addr returns the listener's configured bind address.
func (s *Server) Addr() string {
	return s.l.Config.Listen
}

// IsRunning reports whether Run is currently serving this listener.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}

// Ready returns a channel closed once Run has started accepting
// connections — the socket itself is already bound before that point (see
// NewServer), so this mainly signals "the event loop goroutine is live".
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Run drives the listener's reactor.Group until ctx is canceled or Shutdown
// is called, whichever comes first. It blocks for the lifetime of the
// server; callers typically run it in its own goroutine or via Group.Run.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	s.running.Store(true)
	defer s.running.Store(false)

	s.readyOnce.Do(func() { close(s.ready) })
	s.l.logf("info", "listener %q starting on %s (keep-alive %s, goaway drain %s)",
		s.Name(), s.Addr(),
		duration.ParseDuration(s.l.Config.KeepAliveTimeout).String(),
		duration.ParseDuration(s.l.Config.Http2.GoAwayDrainTimeout).String())
	s.l.Metrics.GaugeSet("aeronet_listener_up", 1, "listener", s.Name())
	defer s.l.Metrics.GaugeSet("aeronet_listener_up", 0, "listener", s.Name())

	err := s.group.Run(ctx)
	if err != nil {
		s.l.logf("error", "listener %q stopped: %s", s.Name(), err.Error())
	} else {
		s.l.logf("info", "listener %q stopped", s.Name())
	}
	return err
}

// WaitNotify blocks until Run has begun (Ready closed) or ctx is done,
// matching httpserver.Server.WaitNotify's readiness-gate role.
func (s *Server) WaitNotify(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels the listener's Run context. It does not wait for Run to
// return — callers that need that should wait on Run's own return value.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}
