package compress

import (
	"bytes"
	"fmt"
	"io"
)

// reader and writer adapt a codec library's Read/Write plus an optional
// Close into the io.ReadCloser / io.WriteCloser pair encoding.Coder's
// streaming methods return, matching the shim shape every codec in the
// encoding/ package already uses for libraries whose reader or writer type
// does not itself implement Close.
type reader struct {
	f func(p []byte) (n int, err error)
	c func() error
}

func (r *reader) Read(p []byte) (int, error) {
	if r.f == nil {
		return 0, fmt.Errorf("invalid reader")
	}
	return r.f(p)
}

func (r *reader) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c()
}

type writer struct {
	f func(p []byte) (n int, err error)
	c func() error
}

func (w *writer) Write(p []byte) (int, error) {
	if w.f == nil {
		return 0, fmt.Errorf("invalid writer")
	}
	return w.f(p)
}

func (w *writer) Close() error {
	if w.c == nil {
		return nil
	}
	return w.c()
}

// bufferedDecodeWriter accumulates writes and decodes them all at Close,
// since none of the four codec libraries expose a decode-while-writing
// mode — only decode-while-reading.
type bufferedDecodeWriter struct {
	buf       bytes.Buffer
	out       io.Writer
	newReader func(io.Reader) (io.Reader, error)
}

func (d *bufferedDecodeWriter) Write(p []byte) (int, error) {
	return d.buf.Write(p)
}

func (d *bufferedDecodeWriter) Close() error {
	r, err := d.newReader(&d.buf)
	if err != nil {
		return err
	}
	if rc, ok := r.(io.Closer); ok {
		defer rc.Close()
	}
	_, err = io.Copy(d.out, r)
	return err
}
