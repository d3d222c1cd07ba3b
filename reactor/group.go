//go:build linux

package reactor

import (
	"context"
	"crypto/tls"
	"net"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/sjanel/aeronet-go/config"
	"github.com/sjanel/aeronet-go/httpdate"
	"github.com/sjanel/aeronet-go/router"
	"github.com/sjanel/aeronet-go/transport"
)

// Group runs Instances independent Reactors bound to the same address via
// SO_REUSEPORT (the kernel load-balances accepts across them), so one
// listener config can use more than one CPU core without a shared-state
// reactor. When cfg.TLS is enabled, Group also owns a tls.Listener and
// runs one goroutine per accepted TLS connection: see the package doc for
// why TLS does not go through the epoll-driven Reactors.
type Group struct {
	cfg       config.ListenerConfig
	router    *router.Router
	Instances int
	log       LogFunc

	reactors []*Reactor
	tlsDates *httpdate.Cache
}

// NewGroup builds a Group. If instances <= 0 it defaults to GOMAXPROCS.
func NewGroup(cfg config.ListenerConfig, rt *router.Router, instances int, log LogFunc) (*Group, error) {
	if instances <= 0 {
		instances = runtime.GOMAXPROCS(0)
	}
	if !cfg.TLS.Enabled() {
		cfg = cfg.Clone()
		cfg.ReusePort = true
	}

	g := &Group{cfg: cfg, router: rt, Instances: instances, log: log, tlsDates: httpdate.NewCache()}

	if !cfg.TLS.Enabled() {
		for i := 0; i < instances; i++ {
			r, err := New(cfg, rt, log)
			if err != nil {
				for _, prior := range g.reactors {
					prior.poller.Close()
					unix.Close(prior.listenFD)
				}
				return nil, err
			}
			g.reactors = append(g.reactors, r)
		}
	}

	return g, nil
}

// Run starts every cleartext Reactor and, when TLS is configured, the TLS
// accept loop, returning once ctx is canceled or any of them fails.
func (g *Group) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	for _, r := range g.reactors {
		r := r
		eg.Go(func() error { return r.Run(ctx) })
	}

	if g.cfg.TLS.Enabled() {
		eg.Go(func() error { return g.runTLS(ctx) })
	}

	return eg.Wait()
}

func (g *Group) runTLS(ctx context.Context) error {
	ln, err := transport.Listen(ctx, g.cfg)
	if err != nil {
		return err
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}
		go g.serveTLS(conn)
	}
}

// serveTLS runs the blocking handshake/Read/Write loop for one TLS
// connection, feeding decrypted bytes through the same Conn.Feed used by
// the cleartext epoll path.
func (g *Group) serveTLS(nc net.Conn) {
	tc, ok := nc.(*tls.Conn)
	if !ok {
		nc.Close()
		return
	}
	defer tc.Close()

	c := newConn(remoteAddrFromNet(tc.RemoteAddr()), g.cfg, g.router, g.tlsDates, g.log)
	c.isTLS = true
	defer c.logf("debug", "tls connection from %s closed after %d request(s)", c.remoteAddr, c.requestsServed)

	buf := make([]byte, 16384)
	for {
		n, err := tc.Read(buf)
		if n > 0 {
			out, closeAfter, ferr := c.Feed(buf[:n])
			if len(out) > 0 {
				if _, werr := tc.Write(out); werr != nil {
					return
				}
			}
			if ferr != nil || closeAfter {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
