package minizip

import (
	"compress/bzip2"
	"io"
)

// bzip2 has no write-side codec anywhere in the corpus or its transitive
// dependency set (see DESIGN.md); only decompression is registered, so
// writing a bzip2 entry surfaces ErrSupport via the nil CompressorFactory.
func init() {
	RegisterCodec(MethodBzip2,
		nil,
		func(base io.Reader, sizes codecSizes) (Decompressor, error) {
			if sizes.compressedSize > 0 {
				base = io.LimitReader(base, sizes.compressedSize)
			}
			return nopCloseReader{bzip2.NewReader(base)}, nil
		},
	)
}
