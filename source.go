package psarc

// Source is a lazy, externally-owned provider of a file's bytes. After
// Upsync, every non-manifest File borrows a Source backed by the archive's
// parsing ByteHandle rather than holding a decoded copy; the byte handle
// must outlive any File that still references it this way.
type Source interface {
	// GetData materializes this source's content as a FileData. The
	// returned kind matches CompressionKind().
	GetData() (*FileData, error)

	// CompressionKind reports whether this source already holds
	// compressed bytes, and which algorithm, or CompressionNone if the
	// source is plain bytes.
	CompressionKind() CompressionKind

	// HasUncompressedSize reports whether UncompressedSize can be
	// answered without materializing the data.
	HasUncompressedSize() bool

	// UncompressedSize returns the decompressed byte length. Only valid
	// when HasUncompressedSize reports true.
	UncompressedSize() int64
}
