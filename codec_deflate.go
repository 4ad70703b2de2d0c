package minizip

import (
	"io"

	"github.com/klauspost/compress/flate"
)

// deflateCompressor and deflateDecompressor wrap klauspost/compress/flate,
// the corpus's preferred deflate implementation over stdlib compress/flate
// (faster decoder, same wire format).
type deflateCompressor struct {
	w *flate.Writer
}

func (c *deflateCompressor) Write(p []byte) (int, error) { return c.w.Write(p) }
func (c *deflateCompressor) Close() error                { return c.w.Close() }

type deflateDecompressor struct {
	r io.ReadCloser
}

func (d *deflateDecompressor) Read(p []byte) (int, error) { return d.r.Read(p) }
func (d *deflateDecompressor) Close() error                { return d.r.Close() }

func init() {
	RegisterCodec(MethodDeflate,
		func(base io.Writer, level int) (Compressor, error) {
			if level <= 0 {
				level = flate.DefaultCompression
			}
			w, err := flate.NewWriter(base, level)
			if err != nil {
				return nil, newError(CodeMem, "deflateCompressor", err)
			}
			return &deflateCompressor{w: w}, nil
		},
		func(base io.Reader, sizes codecSizes) (Decompressor, error) {
			if sizes.compressedSize > 0 {
				base = io.LimitReader(base, sizes.compressedSize)
			}
			return &deflateDecompressor{r: flate.NewReader(base)}, nil
		},
	)
}

// deflateFlagsForLevel maps a compression level to the three general
// purpose flag bits per §4.7: {MAX=8|9, FAST=2, SUPER_FAST=1}.
func deflateFlagsForLevel(level int) uint16 {
	switch {
	case level >= 8:
		return flagDeflateMax
	case level == 2:
		return flagDeflateBit1
	case level == 1:
		return flagDeflateBit2
	default:
		return 0
	}
}
