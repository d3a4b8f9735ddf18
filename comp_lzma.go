package psarc

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// lzmaHeaderSize is the fixed "LZMA-alone" header: 1 properties byte + 4
// bytes little-endian dictionary size + 8 bytes little-endian uncompressed
// length. ulikunitz/xz/lzma's classic Writer/Reader pair emits
// and consumes exactly this framing, so no manual header assembly is
// needed on the write side.
const lzmaHeaderSize = 13

// lzmaDictCap clamps a block's dictionary capacity to what the library
// accepts; a block never needs more dictionary than its own uncompressed
// size.
func lzmaDictCap(maxUncomp int) int {
	d := maxUncomp
	if d < lzma.MinDictCap {
		d = lzma.MinDictCap
	}
	if d > lzma.MaxDictCap {
		d = lzma.MaxDictCap
	}
	return d
}

// compressLzmaBlock encodes chunk at the fixed default-properties preset
// (lc=3, lp=0, pb=2), producing the 13-byte header inline via the
// library's classic writer. stored=true means the framed output did not
// fit within maxComp or was not smaller than chunk itself, so that every
// block kept compressed is strictly shorter than its uncompressed size, as
// Upsync's blockIsCompressed heuristic assumes.
func compressLzmaBlock(chunk []byte, maxComp int) (out []byte, stored bool, err error) {
	var buf bytes.Buffer
	cfg := lzma.WriterConfig{
		Properties: &lzma.Properties{LC: 3, LP: 0, PB: 2},
		DictCap:    lzmaDictCap(len(chunk)),
		Size:       int64(len(chunk)),
	}
	w, err := cfg.NewWriter(&buf)
	if err != nil {
		return nil, false, err
	}
	if _, err := w.Write(chunk); err != nil {
		return nil, false, err
	}
	if err := w.Close(); err != nil {
		return nil, false, err
	}
	if buf.Len() >= maxComp || buf.Len() >= len(chunk) {
		return nil, true, nil
	}
	return buf.Bytes(), false, nil
}

// decompressLzmaBlock decodes one on-disk LZMA block, reading the header
// from block[0:13] and the stream after it, producing exactly uncompLen
// bytes.
func decompressLzmaBlock(block []byte, uncompLen int) ([]byte, error) {
	if len(block) < lzmaHeaderSize {
		return nil, wrapStatus(StatusDecompressionError, ErrDecompression, io.ErrUnexpectedEOF)
	}
	r, err := lzma.NewReader(bytes.NewReader(block))
	if err != nil {
		return nil, wrapStatus(StatusDecompressionError, ErrDecompression, err)
	}
	out := make([]byte, uncompLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, wrapStatus(StatusDecompressionError, ErrDecompression, err)
	}
	return out, nil
}
