package psarc

// DefaultBlockSize is the block size Settings defaults to, and the
// block size File.LoadCompressed falls back to when compressing on demand
// with no caller-supplied block size.
const DefaultBlockSize = 65536

// FileData holds one representation — compressed or uncompressed — of a
// file body, together with the per-block metadata needed to walk it.
// When kind is CompressionNone the block arrays may be empty even for a
// non-empty body; compressed representations always satisfy
// len(blockSizes) == len(isCompressed) and sum(blockSizes) == len(bytes).
type FileData struct {
	bytes        []byte
	blockSizes   []uint32
	isCompressed []bool

	kind              CompressionKind
	maxUncompBlock    uint32
	maxCompBlock      uint32
	totalUncompressed int64
}

// Bytes returns the representation's raw on-disk (or in-memory, for an
// uncompressed FileData) bytes.
func (fd *FileData) Bytes() []byte {
	if fd == nil {
		return nil
	}
	return fd.bytes
}

func (fd *FileData) compress(kind CompressionKind, blockSize uint32) (*FileData, error) {
	dst, sizes, isComp, err := compressBlocks(kind, fd.bytes, int(blockSize), int(blockSize))
	if err != nil {
		return nil, err
	}
	return &FileData{
		bytes:             dst,
		blockSizes:        sizes,
		isCompressed:      isComp,
		kind:              kind,
		maxUncompBlock:    blockSize,
		maxCompBlock:      blockSize,
		totalUncompressed: int64(len(fd.bytes)),
	}, nil
}

func (fd *FileData) decompress() (*FileData, error) {
	out, err := decompressBlocks(fd.kind, fd.bytes, fd.blockSizes, fd.isCompressed, int(fd.maxUncompBlock), fd.totalUncompressed)
	if err != nil {
		return nil, err
	}
	return &FileData{bytes: out, totalUncompressed: int64(len(out))}, nil
}

// File is one entry in an Archive's directory tree: a path plus up to two
// materialized representations of its body and an optional lazy Source
//. At least one of uncompressed, compressed, source is present
// for any File reachable from an Archive.
type File struct {
	path string

	uncompressed *FileData
	compressed   *FileData

	source             Source
	sourceIsCompressed bool
}

// NewFile wraps literal bytes as a File with no backing Source.
func NewFile(path string, data []byte) *File {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &File{
		path:         path,
		uncompressed: &FileData{bytes: buf, totalUncompressed: int64(len(buf))},
	}
}

// NewLazyFile wraps a Source as a File with no materialized representation
// yet; sourceIsCompressed mirrors Source.CompressionKind() != CompressionNone
// and is cached here to avoid a second interface call on the hot path.
func NewLazyFile(path string, src Source) *File {
	return &File{
		path:               path,
		source:             src,
		sourceIsCompressed: src.CompressionKind() != CompressionNone,
	}
}

// Path returns the File's path as recorded when it was inserted into the
// archive tree.
func (f *File) Path() string {
	return f.path
}

// Bytes returns the File's uncompressed body, loading it first if
// necessary.
func (f *File) Bytes() ([]byte, error) {
	if err := f.LoadUncompressed(); err != nil {
		return nil, err
	}
	return f.uncompressed.Bytes(), nil
}

// LoadUncompressed ensures f.uncompressed is populated, adopting the
// Source's bytes directly when it is already uncompressed, decompressing
// the compressed representation otherwise, and falling back to an empty
// body when nothing is available.
func (f *File) LoadUncompressed() error {
	if f.uncompressed != nil {
		return nil
	}
	if f.source != nil && !f.sourceIsCompressed {
		fd, err := f.source.GetData()
		if err != nil {
			return err
		}
		f.uncompressed = fd
		return nil
	}
	if f.compressed != nil || (f.source != nil && f.sourceIsCompressed) {
		fd := f.compressed
		if fd == nil {
			var err error
			fd, err = f.source.GetData()
			if err != nil {
				return err
			}
		}
		out, err := fd.decompress()
		if err != nil {
			return err
		}
		f.uncompressed = out
		return nil
	}
	f.uncompressed = &FileData{}
	return nil
}

// LoadCompressed ensures f.compressed is populated: adopting the Source's
// bytes directly when it is already compressed, compressing the
// uncompressed representation at preferredKind when that's possible, or
// leaving an empty FileData otherwise.
func (f *File) LoadCompressed(preferredKind CompressionKind) error {
	if f.compressed != nil {
		return nil
	}
	if f.source != nil && f.sourceIsCompressed {
		fd, err := f.source.GetData()
		if err != nil {
			return err
		}
		f.compressed = fd
		return nil
	}
	if f.uncompressed == nil && f.source != nil {
		if err := f.LoadUncompressed(); err != nil {
			return err
		}
	}
	if f.uncompressed != nil && preferredKind != CompressionNone {
		return f.Compress(preferredKind, DefaultBlockSize)
	}
	f.compressed = &FileData{}
	return nil
}

// Compress requires the uncompressed representation (loading it from
// Source first if necessary) and replaces any prior compressed
// representation with a fresh one at the given kind and block size.
func (f *File) Compress(kind CompressionKind, blockSize uint32) error {
	if f.uncompressed == nil {
		if err := f.LoadUncompressed(); err != nil {
			return err
		}
	}
	fd, err := f.uncompressed.compress(kind, blockSize)
	if err != nil {
		return err
	}
	f.compressed = fd
	return nil
}

// Decompress requires the compressed representation (loading it from
// Source first if necessary) and replaces the uncompressed representation
// with the codec's output.
func (f *File) Decompress() error {
	if f.compressed == nil {
		if err := f.LoadCompressed(CompressionLzma); err != nil {
			return err
		}
	}
	fd, err := f.compressed.decompress()
	if err != nil {
		return err
	}
	f.uncompressed = fd
	return nil
}

// ClearCompressed drops the compressed representation; idempotent.
func (f *File) ClearCompressed() {
	f.compressed = nil
}

// ClearUncompressed drops the uncompressed representation; idempotent.
func (f *File) ClearUncompressed() {
	f.uncompressed = nil
}

// UncompressedSize answers from whichever representation already knows the
// answer without decompressing: the uncompressed body, the compressed
// body's recorded total, or the Source's advertised size.
func (f *File) UncompressedSize() int64 {
	if f.uncompressed != nil {
		return int64(len(f.uncompressed.bytes))
	}
	if f.compressed != nil {
		return f.compressed.totalUncompressed
	}
	if f.source != nil && f.source.HasUncompressedSize() {
		return f.source.UncompressedSize()
	}
	return 0
}

// CompressedSize returns the compressed representation's byte length,
// compressing at CompressionLzma by default if none is materialized yet
//.
func (f *File) CompressedSize() (int64, error) {
	if f.compressed == nil {
		if err := f.LoadCompressed(CompressionLzma); err != nil {
			return 0, err
		}
	}
	return int64(len(f.compressed.bytes)), nil
}
