package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

type gzCoder struct {
	level int
}

func newGzip(level int) *gzCoder {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	return &gzCoder{level: level}
}

func (c *gzCoder) Encode(p []byte) []byte {
	var buf bytes.Buffer
	w, _ := gzip.NewWriterLevel(&buf, c.level)
	_, _ = w.Write(p)
	_ = w.Close()
	return buf.Bytes()
}

func (c *gzCoder) Decode(p []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (c *gzCoder) EncodeReader(r io.Reader) io.ReadCloser {
	pr, pw := io.Pipe()
	gw, _ := gzip.NewWriterLevel(pw, c.level)
	go func() {
		if _, err := io.Copy(gw, r); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if err := gw.Close(); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.Close()
	}()
	return pr
}

func (c *gzCoder) DecodeReader(r io.Reader) io.ReadCloser {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return &reader{f: func([]byte) (int, error) { return 0, err }}
	}
	return gr
}

func (c *gzCoder) EncodeWriter(w io.Writer) io.WriteCloser {
	gw, _ := gzip.NewWriterLevel(w, c.level)
	return gw
}

func (c *gzCoder) DecodeWriter(w io.Writer) io.WriteCloser {
	return &bufferedDecodeWriter{
		out: w,
		newReader: func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		},
	}
}

func (c *gzCoder) Reset() {}
