package minizip

import "io"

// Compressor wraps a writer, compressing bytes written to it per some
// method, per the C9 codec registry.
type Compressor interface {
	io.WriteCloser
}

// Decompressor wraps a reader, decompressing bytes read from it.
type Decompressor interface {
	io.ReadCloser
}

// CompressorFactory builds a Compressor writing to base at the given
// level (teacher's compress-level stream property).
type CompressorFactory func(base io.Writer, level int) (Compressor, error)

// DecompressorFactory builds a Decompressor reading from base. sizes
// carries the read-side budget (§4.7): compressed and uncompressed sizes
// known in advance, and whether the LZMA end-of-stream marker is present.
type DecompressorFactory func(base io.Reader, sizes codecSizes) (Decompressor, error)

type codecSizes struct {
	compressedSize   int64
	uncompressedSize int64
	hasEOSMarker     bool
}

type codecEntry struct {
	compress   CompressorFactory
	decompress DecompressorFactory
}

var codecRegistry = map[uint16]codecEntry{}

// RegisterCodec makes method available to OpenEntry (read) and
// CreateEntry (write). Built-in store/deflate/bzip2(decode-only)/lzma are registered by
// default; callers can override or add methods (e.g. under a build tag
// that links in a heavier codec).
func RegisterCodec(method uint16, compress CompressorFactory, decompress DecompressorFactory) {
	codecRegistry[method] = codecEntry{compress: compress, decompress: decompress}
}

func lookupCompressor(method uint16) (CompressorFactory, error) {
	e, ok := codecRegistry[method]
	if !ok || e.compress == nil {
		return nil, newError(CodeSupport, "lookupCompressor", ErrSupport)
	}
	return e.compress, nil
}

func lookupDecompressor(method uint16) (DecompressorFactory, error) {
	e, ok := codecRegistry[method]
	if !ok || e.decompress == nil {
		return nil, newError(CodeSupport, "lookupDecompressor", ErrSupport)
	}
	return e.decompress, nil
}

// nopCloseWriter adapts an io.Writer with no Close to Compressor for the
// store method, where "compression" is the identity transform.
type nopCloseWriter struct{ io.Writer }

func (nopCloseWriter) Close() error { return nil }

type nopCloseReader struct{ io.Reader }

func (nopCloseReader) Close() error { return nil }

func init() {
	RegisterCodec(MethodStore,
		func(base io.Writer, _ int) (Compressor, error) { return nopCloseWriter{base}, nil },
		func(base io.Reader, sizes codecSizes) (Decompressor, error) {
			if sizes.compressedSize > 0 {
				base = io.LimitReader(base, sizes.compressedSize)
			}
			return nopCloseReader{base}, nil
		},
	)
}
