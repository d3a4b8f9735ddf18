package psarc

// tocEntrySize is the on-disk byte length of one TocEntry — the only value
// known to round-trip with real-world archives, though it is still
// Settings-configurable.
const tocEntrySize = 30

// TocEntry is one table-of-contents record: 16-byte MD5 of the
// compressed payload (zero for the manifest), the block index the file's
// blocks start at, its uncompressed size, and its byte offset in the
// archive.
type TocEntry struct {
	MD5               [16]byte
	BlockOffset       uint32
	UncompressedSize  uint64 // u40 on the wire
	FileOffset        uint64 // u40 on the wire
}

// encodeTocEntry writes one 30-byte TOC record into buf[offset:offset+30].
func encodeTocEntry(buf []byte, offset int, e TocEntry, swap bool) {
	copy(buf[offset:offset+16], e.MD5[:])
	writeU32(buf, offset+16, e.BlockOffset, swap)
	writeU40(buf, offset+20, e.UncompressedSize, swap)
	writeU40(buf, offset+25, e.FileOffset, swap)
}

// decodeTocEntry reads one 30-byte TOC record from buf[offset:offset+30].
func decodeTocEntry(buf []byte, offset int, swap bool) TocEntry {
	var e TocEntry
	copy(e.MD5[:], buf[offset:offset+16])
	e.BlockOffset = readU32(buf, offset+16, swap)
	e.UncompressedSize = readU40(buf, offset+20, swap)
	e.FileOffset = readU40(buf, offset+25, swap)
	return e
}
