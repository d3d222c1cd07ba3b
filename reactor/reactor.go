//go:build linux

package reactor

import (
	"context"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sjanel/aeronet-go/aeroerr"
	"github.com/sjanel/aeronet-go/config"
	"github.com/sjanel/aeronet-go/httpdate"
	"github.com/sjanel/aeronet-go/router"
)

// Reactor owns one epoll instance, one listening socket, and every
// cleartext connection accepted on it. It never runs a connection's
// request processing on a second goroutine: Run is the entire event loop.
type Reactor struct {
	cfg      config.ListenerConfig
	router   *router.Router
	listenFD int
	poller   *Poller
	dates    *httpdate.Cache
	log      LogFunc

	conns map[int32]*Conn

	idleSweepEvery time.Duration
}

// New opens cfg's listening socket and epoll instance. The router must
// already have its routes registered; Reactor only reads from it.
func New(cfg config.ListenerConfig, rt *router.Router, log LogFunc) (*Reactor, error) {
	fd, err := rawListen(cfg.Listen, cfg.ReusePort)
	if err != nil {
		return nil, err
	}

	p, err := NewPoller()
	if err != nil {
		unix.Close(fd)
		return nil, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "create epoll instance")
	}
	if err := p.Add(fd, InterestRead); err != nil {
		p.Close()
		unix.Close(fd)
		return nil, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "register listen fd")
	}

	return &Reactor{
		cfg:            cfg,
		router:         rt,
		listenFD:       fd,
		poller:         p,
		dates:          httpdate.NewCache(),
		log:            log,
		conns:          make(map[int32]*Conn),
		idleSweepEvery: time.Second,
	}, nil
}

// Run drives the event loop until ctx is canceled. It is the reactor: one
// goroutine, accept + read + parse + route + handle + write, all inline.
func (r *Reactor) Run(ctx context.Context) error {
	defer r.poller.Close()
	defer unix.Close(r.listenFD)

	events := make([]Event, 0, 256)
	lastSweep := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		var err error
		events, err = r.poller.Wait(events[:0], 1000)
		if err != nil {
			return aeroerr.Wrapf(aeroerr.ConnReset, err, "epoll_wait")
		}

		now := time.Now()
		r.dates.Refresh(now)

		for _, ev := range events {
			if int(ev.Fd) == r.listenFD {
				r.acceptAll()
				continue
			}
			r.handleConnEvent(ev)
		}

		if now.Sub(lastSweep) >= r.idleSweepEvery {
			r.sweepIdle(now)
			lastSweep = now
		}
	}
}

func (r *Reactor) acceptAll() {
	for {
		connFD, sa, err := unix.Accept(r.listenFD)
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			return
		}
		if err := unix.SetNonblock(connFD, true); err != nil {
			unix.Close(connFD)
			continue
		}
		if err := r.poller.Add(connFD, InterestRead); err != nil {
			unix.Close(connFD)
			continue
		}
		c := newConn(peerAddr(sa), r.cfg, r.router, r.dates, r.log)
		c.fd = connFD
		r.conns[int32(connFD)] = c
	}
}

func (r *Reactor) handleConnEvent(ev Event) {
	c, ok := r.conns[ev.Fd]
	if !ok {
		return
	}
	if ev.Error || ev.HangUp {
		r.closeConn(c)
		return
	}
	if ev.Readable {
		r.readAndProcess(c)
	}
	if ev.Writable && len(c.out) > c.outSent {
		r.flush(c)
	}
}

func (r *Reactor) readAndProcess(c *Conn) {
	var tmp [16384]byte
	for {
		n, err := unix.Read(c.fd, tmp[:])
		if n > 0 {
			out, closeAfter, ferr := c.Feed(tmp[:n])
			c.out = append(c.out, out...)
			if ferr != nil {
				c.closing = true
			}
			if closeAfter {
				c.closing = true
			}
			if maxOut := r.cfg.MaxOutboundBufferBytes; maxOut > 0 && len(c.out)-c.outSent > maxOut {
				c.closing = true
			}
		}
		if err != nil {
			if err == unix.EAGAIN {
				break
			}
			r.closeConn(c)
			return
		}
		if n == 0 {
			r.closeConn(c)
			return
		}
		if n < len(tmp) {
			break
		}
	}
	r.flush(c)
}

func (r *Reactor) flush(c *Conn) {
	for c.outSent < len(c.out) {
		n, err := unix.Write(c.fd, c.out[c.outSent:])
		if n > 0 {
			c.outSent += n
		}
		if err != nil {
			if err == unix.EAGAIN {
				r.poller.Modify(c.fd, InterestRead|InterestWrite)
				return
			}
			r.closeConn(c)
			return
		}
		if n == 0 {
			break
		}
	}

	c.out = c.out[:0]
	c.outSent = 0
	r.poller.Modify(c.fd, InterestRead)

	if c.closing {
		r.closeConn(c)
	}
}

func (r *Reactor) sweepIdle(now time.Time) {
	for fd, c := range r.conns {
		if r.cfg.KeepAliveTimeout > 0 && now.Sub(c.lastActivity) > r.cfg.KeepAliveTimeout {
			r.closeConnFD(fd, c)
		}
	}
}

func (r *Reactor) closeConn(c *Conn) {
	r.closeConnFD(int32(c.fd), c)
}

func (r *Reactor) closeConnFD(fd int32, c *Conn) {
	r.poller.Remove(int(fd))
	unix.Close(int(fd))
	delete(r.conns, fd)
	c.logf("debug", "connection from %s closed after %d request(s)", c.remoteAddr, c.requestsServed)
}

