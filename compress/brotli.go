package compress

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
)

const (
	brotliMinLevel     = 0
	brotliMaxLevel     = 11
	brotliDefaultLevel = 6
)

type brCoder struct {
	level int
}

func newBrotli(level int) *brCoder {
	if level < brotliMinLevel || level > brotliMaxLevel {
		level = brotliDefaultLevel
	}
	return &brCoder{level: level}
}

func (c *brCoder) Encode(p []byte) []byte {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, c.level)
	_, _ = w.Write(p)
	_ = w.Close()
	return buf.Bytes()
}

func (c *brCoder) Decode(p []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(p))
	return io.ReadAll(r)
}

func (c *brCoder) EncodeReader(r io.Reader) io.ReadCloser {
	pr, pw := io.Pipe()
	bw := brotli.NewWriterLevel(pw, c.level)
	go func() {
		if _, err := io.Copy(bw, r); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if err := bw.Close(); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.Close()
	}()
	return pr
}

func (c *brCoder) DecodeReader(r io.Reader) io.ReadCloser {
	br := brotli.NewReader(r)
	return &reader{f: br.Read}
}

func (c *brCoder) EncodeWriter(w io.Writer) io.WriteCloser {
	return brotli.NewWriterLevel(w, c.level)
}

func (c *brCoder) DecodeWriter(w io.Writer) io.WriteCloser {
	return &bufferedDecodeWriter{
		out: w,
		newReader: func(r io.Reader) (io.Reader, error) {
			return brotli.NewReader(r), nil
		},
	}
}

func (c *brCoder) Reset() {}
