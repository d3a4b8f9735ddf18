package psarc

import (
	"bytes"
	"hash/adler32"
	"io"

	"github.com/klauspost/compress/flate"
)

// zlibMagics are the recognized two-byte prefixes of a standalone zlib
// stream, read as a big-endian uint16 regardless of archive
// endianness — the heuristic checks both byte orders explicitly.
var zlibMagics = map[uint16]bool{
	0x78DA: true, 0xDA78: true,
	0x789C: true, 0x9C78: true,
	0x7801: true, 0x0178: true,
}

// isZlibMagic reports whether the first two on-disk bytes of a block match
// a recognized zlib stream header.
func isZlibMagic(b0, b1 byte) bool {
	return zlibMagics[uint16(b0)<<8|uint16(b1)]
}

// compressZlibBlock deflates chunk with klauspost's raw-deflate writer,
// wrapped in an RFC 1950 zlib frame: a 2-byte header, the deflate stream,
// and a 4-byte big-endian Adler-32 trailer. klauspost/compress ships
// no zlib-framed writer of its own, so the framing is built by hand around
// its flate implementation. stored=true means the framed output did not
// reduce the size within maxComp.
func compressZlibBlock(chunk []byte, maxComp int) (out []byte, stored bool, err error) {
	var body bytes.Buffer
	w, err := flate.NewWriter(&body, flate.DefaultCompression)
	if err != nil {
		return nil, false, err
	}
	if _, err := w.Write(chunk); err != nil {
		return nil, false, err
	}
	if err := w.Close(); err != nil {
		return nil, false, err
	}

	framed := make([]byte, 0, 2+body.Len()+4)
	framed = append(framed, 0x78, 0x9C)
	framed = append(framed, body.Bytes()...)
	sum := adler32.Checksum(chunk)
	framed = append(framed, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))

	if len(framed) >= maxComp {
		return nil, true, nil
	}
	return framed, false, nil
}

// decompressZlibBlock inflates a standalone zlib block, verifying its
// Adler-32 trailer against the decompressed result. Unlike the C zlib API's
// uncompress()/Z_BUF_ERROR retry loop, Go's flate.Reader streams
// directly into a buffer sized from the already-known decompressed length,
// so no growing-buffer retry is needed.
func decompressZlibBlock(block []byte, uncompLen int) ([]byte, error) {
	if len(block) < 6 {
		return nil, wrapStatus(StatusDecompressionError, ErrDecompression, io.ErrUnexpectedEOF)
	}
	r := flate.NewReader(bytes.NewReader(block[2 : len(block)-4]))
	defer r.Close()

	out := make([]byte, uncompLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, wrapStatus(StatusDecompressionError, ErrDecompression, err)
	}

	want := adler32.Checksum(out)
	got := uint32(block[len(block)-4])<<24 | uint32(block[len(block)-3])<<16 | uint32(block[len(block)-2])<<8 | uint32(block[len(block)-1])
	if want != got {
		return nil, wrapStatus(StatusDecompressionError, ErrDecompression, nil)
	}
	return out, nil
}
