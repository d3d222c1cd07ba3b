//go:build linux

package reactor

import (
	"golang.org/x/sys/unix"
)

// Interest is the epoll event mask a registration cares about.
type Interest uint32

const (
	InterestRead  Interest = unix.EPOLLIN
	InterestWrite Interest = unix.EPOLLOUT
)

// Event is one ready fd reported by Wait.
type Event struct {
	Fd        int32
	Readable  bool
	Writable  bool
	Error     bool
	HangUp    bool
}

// Poller wraps a single Linux epoll instance.
type Poller struct {
	epfd int
}

// NewPoller creates an epoll instance.
func NewPoller() (*Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Poller{epfd: fd}, nil
}

// Add registers fd for the given interest set.
func (p *Poller) Add(fd int, interest Interest) error {
	ev := unix.EpollEvent{Events: uint32(interest) | unix.EPOLLRDHUP, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

// Modify changes the interest set for an already-registered fd; used to
// enable EPOLLOUT only while a partial write is pending, and disable it
// again once the outbound queue drains (edge-triggered backpressure
// without a busy poll).
func (p *Poller) Modify(fd int, interest Interest) error {
	ev := unix.EpollEvent{Events: uint32(interest) | unix.EPOLLRDHUP, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

// Remove deregisters fd. Safe to call after the fd has already been
// closed by the caller (ENOENT/EBADF are swallowed).
func (p *Poller) Remove(fd int) error {
	err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.ENOENT || err == unix.EBADF {
		return nil
	}
	return err
}

// Wait blocks up to timeoutMillis (or indefinitely if negative) and
// appends ready events to dst, returning the extended slice.
func (p *Poller) Wait(dst []Event, timeoutMillis int) ([]Event, error) {
	var raw [256]unix.EpollEvent
	n, err := unix.EpollWait(p.epfd, raw[:], timeoutMillis)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, err
	}
	for i := 0; i < n; i++ {
		e := raw[i]
		dst = append(dst, Event{
			Fd:       e.Fd,
			Readable: e.Events&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0,
			Writable: e.Events&unix.EPOLLOUT != 0,
			Error:    e.Events&unix.EPOLLERR != 0,
			HangUp:   e.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
		})
	}
	return dst, nil
}

// Close releases the epoll instance's file descriptor.
func (p *Poller) Close() error {
	return unix.Close(p.epfd)
}
