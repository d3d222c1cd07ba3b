package compress

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz"
)

// xzCoder has no level knob — the ulikunitz/xz writer only exposes a preset
// dictionary size, not a speed/ratio trade-off like the other three codecs.
type xzCoder struct{}

func newXZ() *xzCoder {
	return &xzCoder{}
}

func (c *xzCoder) Encode(p []byte) []byte {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil
	}
	_, _ = w.Write(p)
	_ = w.Close()
	return buf.Bytes()
}

func (c *xzCoder) Decode(p []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func (c *xzCoder) EncodeReader(r io.Reader) io.ReadCloser {
	pr, pw := io.Pipe()
	xw, err := xz.NewWriter(pw)
	if err != nil {
		_ = pw.CloseWithError(err)
		return pr
	}
	go func() {
		if _, err := io.Copy(xw, r); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if err := xw.Close(); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.Close()
	}()
	return pr
}

func (c *xzCoder) DecodeReader(r io.Reader) io.ReadCloser {
	xr, err := xz.NewReader(r)
	if err != nil {
		return &reader{f: func([]byte) (int, error) { return 0, err }}
	}
	return &reader{f: xr.Read}
}

func (c *xzCoder) EncodeWriter(w io.Writer) io.WriteCloser {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return &writer{f: func([]byte) (int, error) { return 0, err }}
	}
	return xw
}

func (c *xzCoder) DecodeWriter(w io.Writer) io.WriteCloser {
	return &bufferedDecodeWriter{
		out: w,
		newReader: func(r io.Reader) (io.Reader, error) {
			return xz.NewReader(r)
		},
	}
}

func (c *xzCoder) Reset() {}
