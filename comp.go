package psarc

import "io"

// blockEncoder compresses one chunk for a given CompressionKind, returning
// stored=true when the compressed result would not fit within maxComp (and,
// for LZMA, when it is not smaller than the chunk), the per-kind "no gain"
// fallback.
type blockEncoder func(chunk []byte, maxComp int) (out []byte, stored bool, err error)

// blockDecoder decompresses one on-disk block, given the exact number of
// decompressed bytes it is expected to produce.
type blockDecoder func(block []byte, uncompLen int) ([]byte, error)

func encoderFor(kind CompressionKind) blockEncoder {
	switch kind {
	case CompressionLzma:
		return compressLzmaBlock
	case CompressionZlib:
		return compressZlibBlock
	default:
		return nil
	}
}

func decoderFor(kind CompressionKind) blockDecoder {
	switch kind {
	case CompressionLzma:
		return decompressLzmaBlock
	case CompressionZlib:
		return decompressZlibBlock
	default:
		return nil
	}
}

// compressBlocks partitions src into chunks of at most maxUncomp bytes and
// compresses each with kind, falling back to a raw store when the encoder
// reports stored=true. The returned slices are parallel: blockSizes[i]
// is the on-disk byte length of block i within dst, and isCompressed[i]
// reports whether it carries codec framing or is a raw copy of the chunk.
func compressBlocks(kind CompressionKind, src []byte, maxUncomp, maxComp int) (dst []byte, blockSizes []uint32, isCompressed []bool, err error) {
	if maxUncomp <= 0 {
		maxUncomp = len(src)
		if maxUncomp == 0 {
			maxUncomp = 1
		}
	}
	encode := encoderFor(kind)
	for off := 0; off < len(src); off += maxUncomp {
		end := off + maxUncomp
		if end > len(src) {
			end = len(src)
		}
		chunk := src[off:end]

		if encode == nil {
			dst = append(dst, chunk...)
			blockSizes = append(blockSizes, uint32(len(chunk)))
			isCompressed = append(isCompressed, false)
			continue
		}

		out, stored, encErr := encode(chunk, maxComp)
		if encErr != nil {
			return nil, nil, nil, wrapStatus(StatusCompressionError, ErrCompression, encErr)
		}
		if stored {
			dst = append(dst, chunk...)
			blockSizes = append(blockSizes, uint32(len(chunk)))
			isCompressed = append(isCompressed, false)
			continue
		}
		dst = append(dst, out...)
		blockSizes = append(blockSizes, uint32(len(out)))
		isCompressed = append(isCompressed, true)
	}
	return dst, blockSizes, isCompressed, nil
}

// decompressBlocks is compressBlocks' inverse. It walks src block by block
// using blockSizes/isCompressed to locate each on-disk block, decoding
// compressed ones and copying stored ones verbatim. maxUncomp and
// uncompressedSize bound the final block's expected length, matching the
// "last chunk may be shorter" partitioning rule.
func decompressBlocks(kind CompressionKind, src []byte, blockSizes []uint32, isCompressed []bool, maxUncomp int, uncompressedSize int64) ([]byte, error) {
	decode := decoderFor(kind)
	dst := make([]byte, 0, uncompressedSize)
	off := 0
	remaining := uncompressedSize
	for i, size := range blockSizes {
		n := int(size)
		if off+n > len(src) {
			return nil, wrapStatus(StatusDecompressionError, ErrDecompression, io.ErrUnexpectedEOF)
		}
		block := src[off : off+n]
		off += n

		want := maxUncomp
		if int64(want) > remaining || want <= 0 {
			want = int(remaining)
		}

		compressed := decode != nil && i < len(isCompressed) && isCompressed[i]
		if !compressed {
			dst = append(dst, block...)
			remaining -= int64(len(block))
			continue
		}
		out, decErr := decode(block, want)
		if decErr != nil {
			return nil, decErr
		}
		dst = append(dst, out...)
		remaining -= int64(len(out))
	}
	return dst, nil
}
