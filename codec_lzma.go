package minizip

import (
	"encoding/binary"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// ZIP's LZMA method stores a 4-byte header (version hi/lo, properties
// size) before the raw LZMA1 stream, rather than the .lzma container
// ulikunitz/xz/lzma's top-level Reader/Writer expect; we drive the raw
// Reader2/Writer2 constructors directly and frame the header ourselves,
// the same way 7-Zip-oriented consumers of this package do.
const lzmaPropsSize = 5

type lzmaCompressor struct {
	w      io.Writer
	lzw    *lzma.Writer2
	header bool
}

func (c *lzmaCompressor) Write(p []byte) (int, error) {
	if !c.header {
		var h [4]byte
		h[0], h[1] = 9, 20 // LZMA SDK version, arbitrary but conventional
		binary.LittleEndian.PutUint16(h[2:4], lzmaPropsSize)
		if _, err := c.w.Write(h[:]); err != nil {
			return 0, err
		}
		c.header = true
	}
	return c.lzw.Write(p)
}

func (c *lzmaCompressor) Close() error { return c.lzw.Close() }

type lzmaDecompressor struct {
	r   io.Reader
	lzr *lzma.Reader2
}

func (d *lzmaDecompressor) Read(p []byte) (int, error) { return d.lzr.Read(p) }
func (d *lzmaDecompressor) Close() error                { return nil }

func init() {
	RegisterCodec(MethodLZMA,
		func(base io.Writer, level int) (Compressor, error) {
			if level <= 0 {
				level = 6
			}
			cfg := lzma.Writer2Config{}
			lzw, err := cfg.NewWriter2(base)
			if err != nil {
				return nil, newError(CodeMem, "lzmaCompressor", err)
			}
			return &lzmaCompressor{w: base, lzw: lzw}, nil
		},
		func(base io.Reader, sizes codecSizes) (Decompressor, error) {
			var header [4]byte
			if _, err := io.ReadFull(base, header[:]); err != nil {
				return nil, newError(CodeFormat, "lzmaDecompressor", err)
			}
			propsSize := binary.LittleEndian.Uint16(header[2:4])
			props := make([]byte, propsSize)
			if _, err := io.ReadFull(base, props); err != nil {
				return nil, newError(CodeFormat, "lzmaDecompressor", err)
			}

			// sizes.hasEOSMarker distinguishes a marker-terminated stream
			// (unbounded) from one bounded by the known uncompressed size,
			// per §4.7's "LZMA entries lacking LZMA_EOS_MARKER additionally
			// bound the compressor by known input/output sizes".
			cfg := lzma.Reader2Config{EOSMarker: sizes.hasEOSMarker}
			if !sizes.hasEOSMarker && sizes.uncompressedSize > 0 {
				cfg.Size = sizes.uncompressedSize
			}
			lzr, err := cfg.NewReader2(base)
			if err != nil {
				return nil, newError(CodeFormat, "lzmaDecompressor", err)
			}
			return &lzmaDecompressor{r: base, lzr: lzr}, nil
		},
	)
}
