package compress

import (
	"fmt"

	"github.com/sjanel/aeronet-go/encoding"
)

// Codec names one of the compression algorithms this package binds.
type Codec string

const (
	Gzip   Codec = "gzip"
	Zstd   Codec = "zstd"
	Brotli Codec = "br"
	XZ     Codec = "xz"
)

// New returns the encoding.Coder bound to codec at the given compression
// level. Level is algorithm-specific; passing a value outside an algorithm's
// accepted range falls back to that algorithm's default level rather than
// erroring, since a handler negotiating Accept-Encoding has no reasonable
// per-algorithm level table of its own.
func New(codec Codec, level int) (encoding.Coder, error) {
	switch codec {
	case Gzip:
		return newGzip(level), nil
	case Zstd:
		return newZstd(level), nil
	case Brotli:
		return newBrotli(level), nil
	case XZ:
		return newXZ(), nil
	default:
		return nil, fmt.Errorf("compress: unknown codec %q", codec)
	}
}
