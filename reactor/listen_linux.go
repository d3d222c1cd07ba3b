//go:build linux

package reactor

import (
	"net"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/sjanel/aeronet-go/aeroerr"
)

// rawListen opens a non-blocking TCP listening socket entirely through
// golang.org/x/sys/unix, bypassing net.Listener/the Go runtime netpoller
// so the resulting fd can be driven exclusively by this package's own
// epoll loop without the two readiness mechanisms fighting over the same
// descriptor.
func rawListen(addr string, reusePort bool) (int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return -1, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "parse listen address %q", addr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return -1, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "parse listen port %q", portStr)
	}

	domain := unix.AF_INET
	ip4 := net.IPv4zero
	if host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			ips, err := net.LookupIP(host)
			if err != nil || len(ips) == 0 {
				return -1, aeroerr.Newf(aeroerr.ConfigInvalid, "resolve listen host %q", host)
			}
			ip = ips[0]
		}
		if v4 := ip.To4(); v4 != nil {
			ip4 = v4
		} else {
			domain = unix.AF_INET6
		}
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return -1, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "socket")
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "SO_REUSEADDR")
	}
	if reusePort {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
			unix.Close(fd)
			return -1, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "SO_REUSEPORT")
		}
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "set non-blocking")
	}

	if domain == unix.AF_INET6 {
		var sa unix.SockaddrInet6
		copy(sa.Addr[:], ip4.To16())
		sa.Port = port
		if err := unix.Bind(fd, &sa); err != nil {
			unix.Close(fd)
			return -1, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "bind %q", addr)
		}
	} else {
		var sa unix.SockaddrInet4
		copy(sa.Addr[:], ip4.To4())
		sa.Port = port
		if err := unix.Bind(fd, &sa); err != nil {
			unix.Close(fd)
			return -1, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "bind %q", addr)
		}
	}

	if err := unix.Listen(fd, 1024); err != nil {
		unix.Close(fd)
		return -1, aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "listen")
	}

	return fd, nil
}

// peerAddr formats the remote address of an accepted connection for
// logging and Request.RemoteAddr, mirroring net.TCPAddr.String.
func peerAddr(sa unix.Sockaddr) string {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		ip := net.IPv4(v.Addr[0], v.Addr[1], v.Addr[2], v.Addr[3])
		return net.JoinHostPort(ip.String(), strconv.Itoa(v.Port))
	case *unix.SockaddrInet6:
		ip := net.IP(v.Addr[:])
		return net.JoinHostPort(ip.String(), strconv.Itoa(v.Port))
	default:
		return ""
	}
}
