package transport

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/sjanel/aeronet-go/aeroerr"
	"github.com/sjanel/aeronet-go/config"
)

// Listen builds the net.Listener for cfg: plain TCP, with SO_REUSEPORT
// applied before bind when cfg.ReusePort is set (so multiple reactor
// instances can each own an independent accept queue on the same port),
// then wrapped in TLS if cfg.TLS is enabled.
func Listen(ctx context.Context, cfg config.ListenerConfig) (net.Listener, error) {
	lc := net.ListenConfig{}
	if cfg.ReusePort {
		lc.Control = reusePortControl
	}

	ln, err := lc.Listen(ctx, "tcp", cfg.Listen)
	if err != nil {
		return nil, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "listen on %q", cfg.Listen)
	}

	if !cfg.TLS.Enabled() {
		return ln, nil
	}

	tlsConfig, err := buildTLSConfig(cfg)
	if err != nil {
		ln.Close()
		return nil, err
	}
	return newTLSListener(ln, tlsConfig), nil
}

// reusePortControl sets SO_REUSEADDR and SO_REUSEPORT on the raw socket
// before bind, the standard way of letting several listeners (one per
// reactor) share a single port with the kernel load-balancing accepts.
func reusePortControl(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); e != nil {
			sockErr = e
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
