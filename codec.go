package psarc

import (
	"bytes"
	"crypto/md5"
	"log"
	"runtime"
	"strings"
	"unsafe"

	"golang.org/x/sync/errgroup"
)

const headerSize = 32

// hostIsLittleEndian detects the running process's native byte order, used
// by Settings.swap to decide whether EndianHost matches the host without
// the caller needing to know it.
var hostIsLittleEndian = func() bool {
	var i uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&i))
	return b[0] == 1
}()

// header is the decoded form of the archive's fixed 32-byte leader.
type header struct {
	versionMajor    uint16
	versionMinor    uint16
	compression     CompressionKind
	tocLength       uint32
	tocEntrySize    uint32
	tocEntriesCount uint32
	blockSize       uint32
	pathKind        PathKind
}

func decodeHeader(buf []byte) (header, bool, error) {
	if bytes.HasPrefix(buf, []byte("DSAR")) {
		return header{}, false, wrapStatus(StatusDsarUnsupported, ErrDsarUnsupported, nil)
	}
	if !bytes.HasPrefix(buf, []byte("PSAR")) {
		return header{}, false, wrapStatus(StatusBadHeader, ErrBadHeader, nil)
	}

	versionMajor := readU16(buf, 4, false)
	swap := versionMajor > 255
	if swap {
		versionMajor = readU16(buf, 4, true)
	}

	h := header{
		versionMajor:    versionMajor,
		versionMinor:    readU16(buf, 6, swap),
		compression:     compressionKindFromTag(buf[8:12]),
		tocLength:       readU32(buf, 0x0C, swap),
		tocEntrySize:    readU32(buf, 0x10, swap),
		tocEntriesCount: readU32(buf, 0x14, swap),
		blockSize:       readU32(buf, 0x18, swap),
		pathKind:        PathKind(readU32(buf, 0x1C, swap)),
	}
	return h, swap, nil
}

func encodeHeader(h header, swap bool) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], "PSAR")
	writeU16(buf, 4, h.versionMajor, swap)
	writeU16(buf, 6, h.versionMinor, swap)
	tag := h.compression.tag()
	copy(buf[8:12], tag[:])
	writeU32(buf, 0x0C, h.tocLength, swap)
	writeU32(buf, 0x10, h.tocEntrySize, swap)
	writeU32(buf, 0x14, h.tocEntriesCount, swap)
	writeU32(buf, 0x18, h.blockSize, swap)
	writeU32(buf, 0x1C, uint32(h.pathKind), swap)
	return buf
}

// PSArcHandle is the stateful driver of Upsync/Downsync: it holds a
// parsing endpoint, a serialization endpoint, and a target Archive, any of
// which may be set independently before calling Upsync or Downsync. A
// handle may be reused across operations.
type PSArcHandle struct {
	parsing       ByteHandle
	serialization ByteHandle
	archive       *Archive
}

// NewPSArcHandle returns an unconfigured handle.
func NewPSArcHandle() *PSArcHandle {
	return &PSArcHandle{}
}

func (h *PSArcHandle) SetParsingEndpoint(b ByteHandle) {
	h.parsing = b
}

func (h *PSArcHandle) SetSerializationEndpoint(b ByteHandle) {
	h.serialization = b
}

func (h *PSArcHandle) SetArchive(a *Archive) {
	h.archive = a
}

// Archive returns the handle's currently configured archive, if any.
func (h *PSArcHandle) Archive() *Archive {
	return h.archive
}

// Upsync parses the configured parsing endpoint into the configured
// archive. Fails EndpointError if either is unset.
func (h *PSArcHandle) Upsync() error {
	if h.parsing == nil || h.archive == nil {
		return wrapStatus(StatusEndpointError, ErrEndpoint, nil)
	}

	buf := make([]byte, headerSize)
	if _, err := h.parsing.Seek(0, SeekStart); err != nil {
		return wrapStatus(StatusEndpointError, ErrEndpoint, err)
	}
	if err := h.parsing.Read(buf); err != nil {
		return wrapStatus(StatusEndpointError, ErrEndpoint, err)
	}

	hdr, swap, err := decodeHeader(buf)
	if err != nil {
		return err
	}
	log.Printf("psarc: upsync: version %d.%d compression=%s blockSize=%d tocEntries=%d",
		hdr.versionMajor, hdr.versionMinor, hdr.compression, hdr.blockSize, hdr.tocEntriesCount)

	tocBuf := make([]byte, hdr.tocLength)
	if err := h.parsing.Read(tocBuf); err != nil {
		return wrapStatus(StatusEndpointError, ErrEndpoint, err)
	}

	entries := make([]TocEntry, hdr.tocEntriesCount)
	for i := range entries {
		entries[i] = decodeTocEntry(tocBuf, i*int(hdr.tocEntrySize), swap)
	}

	blockSizes := decodeBlockSizeTable(tocBuf, int(hdr.tocEntriesCount)*int(hdr.tocEntrySize), hdr.blockSize, swap)

	if len(entries) == 0 {
		return nil
	}

	manifestEntry := entries[0]
	if manifestEntry.UncompressedSize == 0 {
		// A manifest of size 0 with further TOC entries behind it means the
		// path list needed to attach those files can't be read: a genuine
		// ManifestError. A manifest of size 0 with no further
		// entries is simply the empty-archive case: there
		// is nothing to decompress, so install an empty manifest directly.
		if len(entries) > 1 {
			return wrapStatus(StatusManifestError, ErrManifest, nil)
		}
		h.archive.SetManifest(NewFile("PSArcManifest.bin", nil))
		return nil
	}

	manifestSrc := newPsarcFileSource(h.parsing, hdr.compression, hdr.blockSize, blockSizes,
		manifestEntry.BlockOffset, manifestEntry.FileOffset, manifestEntry.UncompressedSize)
	manifestFile := NewLazyFile("PSArcManifest.bin", manifestSrc)
	if err := manifestFile.LoadUncompressed(); err != nil {
		return wrapStatus(StatusManifestError, ErrManifest, err)
	}
	h.archive.SetManifest(manifestFile)

	paths := splitManifest(manifestFile.uncompressed.bytes)

	for i := 1; i < len(entries); i++ {
		e := entries[i]
		var p string
		if i-1 < len(paths) {
			p = paths[i-1]
		}
		src := newPsarcFileSource(h.parsing, hdr.compression, hdr.blockSize, blockSizes, e.BlockOffset, e.FileOffset, e.UncompressedSize)
		if err := h.archive.AddFile(NewLazyFile(p, src)); err != nil {
			return wrapStatus(StatusInsertError, ErrInsert, err)
		}
	}

	return nil
}

// decodeBlockSizeTable decodes the packed block-size table that follows the
// TOC entries, applying the "0 means blockSize" convention.
func decodeBlockSizeTable(tocBuf []byte, tableOffset int, blockSize uint32, swap bool) []uint32 {
	width := blockByteWidth(blockSize)
	remaining := len(tocBuf) - tableOffset
	if remaining <= 0 || width <= 0 {
		return nil
	}
	count := remaining / width
	out := make([]uint32, count)
	for i := 0; i < count; i++ {
		off := tableOffset + i*width
		var v uint32
		switch width {
		case 2:
			v = uint32(readU16(tocBuf, off, swap))
		case 3:
			v = readU24(tocBuf, off, swap)
		default:
			v = readU32(tocBuf, off, swap)
		}
		if v == 0 {
			v = blockSize
		}
		out[i] = v
	}
	return out
}

func splitManifest(data []byte) []string {
	data = bytes.TrimRight(data, "\x00")
	if len(data) == 0 {
		return nil
	}
	return strings.Split(string(data), "\n")
}

// Downsync serializes the configured archive to the configured
// serialization endpoint under settings. progress, if non-nil, is
// called once per file in write order; it is purely informational.
func (h *PSArcHandle) Downsync(settings Settings, progress func(index int, path string)) error {
	if h.serialization == nil || h.archive == nil {
		return wrapStatus(StatusEndpointError, ErrEndpoint, nil)
	}

	ordered := h.reorderForManifest()

	manifestFile := NewFile("PSArcManifest.bin", buildManifestContent(ordered, settings.PathKind))
	h.archive.SetManifest(manifestFile)

	allFiles := make([]*File, 0, len(ordered)+1)
	allFiles = append(allFiles, manifestFile)
	allFiles = append(allFiles, ordered...)

	if err := compressAll(allFiles, settings); err != nil {
		return err
	}

	type compiled struct {
		data       []byte
		blockSizes []uint32
		uncompSize uint64
	}
	compiledFiles := make([]compiled, len(allFiles))
	totalBlocks := 0
	for i, f := range allFiles {
		fd := f.compressed
		compiledFiles[i] = compiled{
			data:       fd.Bytes(),
			blockSizes: fd.blockSizes,
			uncompSize: uint64(f.UncompressedSize()),
		}
		totalBlocks += len(fd.blockSizes)
	}

	width := blockByteWidth(settings.BlockSize)
	tocLength := uint32(len(allFiles))*settings.TocEntrySize + uint32(totalBlocks*width)
	swap := settings.swap()

	hdr := header{
		versionMajor:    settings.VersionMajor,
		versionMinor:    settings.VersionMinor,
		compression:     settings.Compression,
		tocLength:       tocLength,
		tocEntrySize:    settings.TocEntrySize,
		tocEntriesCount: uint32(len(allFiles)),
		blockSize:       settings.BlockSize,
		pathKind:        settings.PathKind,
	}

	entries := make([]TocEntry, len(allFiles))
	blockSizeTable := make([]uint32, 0, totalBlocks)
	fileOffset := uint64(headerSize) + uint64(tocLength)
	blockOffset := uint32(0)

	for i, f := range allFiles {
		var sum [16]byte
		if i > 0 {
			sum = md5.Sum(compiledFiles[i].data)
		}
		entries[i] = TocEntry{
			MD5:              sum,
			BlockOffset:      blockOffset,
			UncompressedSize: compiledFiles[i].uncompSize,
			FileOffset:       fileOffset,
		}
		blockSizeTable = append(blockSizeTable, compiledFiles[i].blockSizes...)
		blockOffset += uint32(len(compiledFiles[i].blockSizes))
		fileOffset += uint64(len(compiledFiles[i].data))
		if progress != nil {
			progress(i, f.path)
		}
	}

	if _, err := h.serialization.Seek(0, SeekStart); err != nil {
		return wrapStatus(StatusEndpointError, ErrEndpoint, err)
	}
	if err := h.serialization.Write(encodeHeader(hdr, swap)); err != nil {
		return wrapStatus(StatusEndpointError, ErrEndpoint, err)
	}

	tocBuf := make([]byte, len(entries)*int(settings.TocEntrySize))
	for i, e := range entries {
		encodeTocEntry(tocBuf, i*int(settings.TocEntrySize), e, swap)
	}
	if err := h.serialization.Write(tocBuf); err != nil {
		return wrapStatus(StatusEndpointError, ErrEndpoint, err)
	}

	tableBuf := make([]byte, len(blockSizeTable)*width)
	for i, v := range blockSizeTable {
		off := i * width
		switch width {
		case 2:
			writeU16(tableBuf, off, uint16(v), swap)
		case 3:
			writeU24(tableBuf, off, v, swap)
		default:
			writeU32(tableBuf, off, v, swap)
		}
	}
	if err := h.serialization.Write(tableBuf); err != nil {
		return wrapStatus(StatusEndpointError, ErrEndpoint, err)
	}

	for i := range allFiles {
		if err := h.serialization.Write(compiledFiles[i].data); err != nil {
			return wrapStatus(StatusEndpointError, ErrEndpoint, err)
		}
	}

	log.Printf("psarc: downsync: wrote %d files, %d blocks, tocLength=%d", len(allFiles), totalBlocks, tocLength)
	return nil
}

// reorderForManifest runs the reordering step Downsync applies before
// serializing: when a manifest already exists, files it lists come first
// in listed order, followed by any
// files not listed in their natural iteration order.
func (h *PSArcHandle) reorderForManifest() []*File {
	iter := h.archive.Iterate()
	manifest := h.archive.manifest

	nonManifest := make([]*File, 0, len(iter))
	for _, f := range iter {
		if f == manifest {
			continue
		}
		nonManifest = append(nonManifest, f)
	}

	if manifest == nil {
		return nonManifest
	}
	if manifest.uncompressed == nil {
		if err := manifest.LoadUncompressed(); err != nil {
			return nonManifest
		}
	}
	paths := splitManifest(manifest.uncompressed.bytes)
	if len(paths) == 0 {
		return nonManifest
	}

	byPath := make(map[string]*File, len(nonManifest))
	for _, f := range nonManifest {
		byPath[f.path] = f
	}

	ordered := make([]*File, 0, len(nonManifest))
	used := make(map[string]bool, len(paths))
	for _, p := range paths {
		if f, ok := byPath[p]; ok && !used[p] {
			ordered = append(ordered, f)
			used[p] = true
		}
	}
	for _, f := range nonManifest {
		if !used[f.path] {
			ordered = append(ordered, f)
		}
	}
	return ordered
}

func buildManifestContent(files []*File, kind PathKind) []byte {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = kind.render(f.path)
	}
	return []byte(strings.Join(paths, "\n"))
}

// compressAll runs Compress for every file concurrently, the sole parallel
// region in Downsync: each worker only ever touches its own File's
// compressed slot, and the barrier (errgroup.Wait) runs before any
// sequential block-size aggregation begins.
func compressAll(files []*File, settings Settings) error {
	g := new(errgroup.Group)
	g.SetLimit(parallelCompressLimit())
	for _, f := range files {
		f := f
		g.Go(func() error {
			return f.Compress(settings.Compression, settings.BlockSize)
		})
	}
	if err := g.Wait(); err != nil {
		return wrapStatus(StatusCompressionError, ErrCompression, err)
	}
	return nil
}

func parallelCompressLimit() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return n
}

// Upsync is the stateless convenience form of PSArcHandle.Upsync.
func Upsync(parsing ByteHandle, archive *Archive) error {
	h := NewPSArcHandle()
	h.SetParsingEndpoint(parsing)
	h.SetArchive(archive)
	return h.Upsync()
}

// Downsync is the stateless convenience form of PSArcHandle.Downsync.
func Downsync(serialization ByteHandle, archive *Archive, settings Settings, progress func(int, string)) error {
	h := NewPSArcHandle()
	h.SetSerializationEndpoint(serialization)
	h.SetArchive(archive)
	return h.Downsync(settings, progress)
}
