package psarc

// psarcFileSource is the lazy Source Upsync attaches to every TOC entry
//: a borrowed ByteHandle plus the entry's coordinates into the
// shared block-size table. It never copies bytes until GetData is called.
type psarcFileSource struct {
	handle ByteHandle

	kind      CompressionKind
	blockSize uint32

	blockSizeTable []uint32
	blockOffset    uint32
	fileOffset     uint64
	uncompSize     uint64
}

func newPsarcFileSource(handle ByteHandle, kind CompressionKind, blockSize uint32, blockSizeTable []uint32, blockOffset uint32, fileOffset uint64, uncompSize uint64) *psarcFileSource {
	return &psarcFileSource{
		handle:         handle,
		kind:           kind,
		blockSize:      blockSize,
		blockSizeTable: blockSizeTable,
		blockOffset:    blockOffset,
		fileOffset:     fileOffset,
		uncompSize:     uncompSize,
	}
}

func (s *psarcFileSource) CompressionKind() CompressionKind {
	return s.kind
}

func (s *psarcFileSource) HasUncompressedSize() bool {
	return true
}

func (s *psarcFileSource) UncompressedSize() int64 {
	return int64(s.uncompSize)
}

// GetData seeks to the entry's fileOffset and walks its blocks, reading
// block_sizes[blockOffset+i] raw bytes per iteration until the
// unconditional uncompressedRead += blockSize accounting reaches
// uncompSize — the exact PSArcFile::GetData convention. Each
// block's is-compressed flag is decided by the per-kind heuristic rather
// than trusted wire metadata, since PSARC carries none.
func (s *psarcFileSource) GetData() (*FileData, error) {
	if _, err := s.handle.Seek(int64(s.fileOffset), SeekStart); err != nil {
		return nil, wrapStatus(StatusEndpointError, ErrEndpoint, err)
	}

	var raw []byte
	var blockSizes []uint32
	var isCompressed []bool

	var uncompressedRead uint64
	i := uint32(0)
	for uncompressedRead < s.uncompSize {
		idx := int(s.blockOffset + i)
		if idx >= len(s.blockSizeTable) {
			return nil, wrapStatus(StatusDecompressionError, ErrDecompression, nil)
		}
		size := s.blockSizeTable[idx]
		if size == 0 {
			size = s.blockSize
		}

		buf := make([]byte, size)
		if err := s.handle.Read(buf); err != nil {
			return nil, wrapStatus(StatusEndpointError, ErrEndpoint, err)
		}

		remaining := s.uncompSize - uncompressedRead
		maxPossible := uint64(s.blockSize)
		if remaining < maxPossible {
			maxPossible = remaining
		}

		raw = append(raw, buf...)
		blockSizes = append(blockSizes, size)
		isCompressed = append(isCompressed, blockIsCompressed(s.kind, buf, uint32(maxPossible)))

		uncompressedRead += uint64(s.blockSize)
		i++
	}

	return &FileData{
		bytes:             raw,
		blockSizes:        blockSizes,
		isCompressed:      isCompressed,
		kind:              s.kind,
		maxUncompBlock:    s.blockSize,
		maxCompBlock:      s.blockSize,
		totalUncompressed: int64(s.uncompSize),
	}, nil
}

// blockIsCompressed applies the per-kind heuristic that decides whether an
// on-disk block carries codec framing or is a raw store.
func blockIsCompressed(kind CompressionKind, block []byte, maxPossible uint32) bool {
	switch kind {
	case CompressionLzma:
		return len(block) > 0 && block[0] == 0x5D && uint32(len(block)) < maxPossible
	case CompressionZlib:
		return len(block) >= 2 && isZlibMagic(block[0], block[1])
	default:
		return false
	}
}
