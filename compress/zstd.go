package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
)

type zstdCoder struct {
	level zstd.EncoderLevel
}

func newZstd(level int) *zstdCoder {
	var l zstd.EncoderLevel
	switch {
	case level <= 0:
		l = zstd.SpeedDefault
	case level <= 3:
		l = zstd.SpeedFastest
	case level <= 6:
		l = zstd.SpeedDefault
	case level <= 8:
		l = zstd.SpeedBetterCompression
	default:
		l = zstd.SpeedBestCompression
	}
	return &zstdCoder{level: l}
}

func (c *zstdCoder) Encode(p []byte) []byte {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return nil
	}
	_, _ = w.Write(p)
	_ = w.Close()
	return buf.Bytes()
}

func (c *zstdCoder) Decode(p []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (c *zstdCoder) EncodeReader(r io.Reader) io.ReadCloser {
	pr, pw := io.Pipe()
	zw, err := zstd.NewWriter(pw, zstd.WithEncoderLevel(c.level))
	if err != nil {
		_ = pw.CloseWithError(err)
		return pr
	}
	go func() {
		if _, err := io.Copy(zw, r); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if err := zw.Close(); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.Close()
	}()
	return pr
}

func (c *zstdCoder) DecodeReader(r io.Reader) io.ReadCloser {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return &reader{f: func([]byte) (int, error) { return 0, err }}
	}
	return &reader{
		f: zr.Read,
		c: func() error { zr.Close(); return nil },
	}
}

func (c *zstdCoder) EncodeWriter(w io.Writer) io.WriteCloser {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return &writer{f: func([]byte) (int, error) { return 0, err }}
	}
	return zw
}

func (c *zstdCoder) DecodeWriter(w io.Writer) io.WriteCloser {
	return &bufferedDecodeWriter{
		out: w,
		newReader: func(r io.Reader) (io.Reader, error) {
			return zstd.NewReader(r)
		},
	}
}

func (c *zstdCoder) Reset() {}
