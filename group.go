package aeronet

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sjanel/aeronet-go/atomic"
)

// Group aggregates multiple Servers — one per distinct bind address — under
// a single start/ready/shutdown lifecycle. Grounded on httpserver.PoolServer
// (Add/Get/Has/Len, MapRun, IsRunning, WaitNotify, Listen, Shutdown), with
// the net/http-specific members dropped and Listen replaced by Run. The
// registry itself reuses atomic.MapTyped rather than a mutex-guarded map,
// the same lock-free-map idiom the reactor package uses for its connection
// table.
type Group struct {
	servers atomic.MapTyped[string, *Server]
}

// NewGroup builds a Group from zero or more Servers.
func NewGroup(servers ...*Server) (*Group, error) {
	g := &Group{servers: atomic.NewMapTyped[string, *Server]()}
	for _, s := range servers {
		if err := g.Add(s); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Add registers srv under its Addr, failing if another Server is already
// bound to the same address.
func (g *Group) Add(srv *Server) error {
	if _, loaded := g.servers.LoadOrStore(srv.Addr(), srv); loaded {
		return fmt.Errorf("aeronet: a server is already bound to %s", srv.Addr())
	}
	return nil
}

// Get returns the Server bound to addr, or nil if none is registered.
func (g *Group) Get(addr string) *Server {
	s, _ := g.servers.Load(addr)
	return s
}

// Has reports whether a Server is registered for addr.
func (g *Group) Has(addr string) bool {
	_, ok := g.servers.Load(addr)
	return ok
}

// Len returns the number of registered Servers.
func (g *Group) Len() int {
	return len(g.snapshot())
}

func (g *Group) snapshot() []*Server {
	out := make([]*Server, 0)
	g.servers.Range(func(_ string, s *Server) bool {
		out = append(out, s)
		return true
	})
	return out
}

// IsRunning reports whether every registered Server is currently running
// when asLeast is false, or whether at least one is when asLeast is true —
// mirroring httpserver.PoolServer.IsRunning's two modes.
func (g *Group) IsRunning(asLeast bool) bool {
	servers := g.snapshot()
	if len(servers) == 0 {
		return false
	}
	for _, s := range servers {
		if s.IsRunning() {
			if asLeast {
				return true
			}
		} else if !asLeast {
			return false
		}
	}
	return !asLeast
}

// Run starts every registered Server concurrently, returning once ctx is
// canceled or any Server's Run returns a non-nil error (which also cancels
// the rest via errgroup's derived context).
func (g *Group) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, s := range g.snapshot() {
		s := s
		eg.Go(func() error { return s.Run(ctx) })
	}
	return eg.Wait()
}

// WaitNotify blocks until every registered Server has become ready or ctx
// is done, whichever comes first.
func (g *Group) WaitNotify(ctx context.Context) error {
	for _, s := range g.snapshot() {
		if err := s.WaitNotify(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown cancels every registered Server's Run context.
func (g *Group) Shutdown() {
	for _, s := range g.snapshot() {
		s.Shutdown()
	}
}
