package psarc

// Endianness selects the byte order Downsync writes scalars in.
type Endianness int

const (
	// EndianHost writes scalars in the host's native byte order.
	EndianHost Endianness = iota
	EndianLittle
	EndianBig
)

// Settings is the Downsync configuration record. Construct with
// NewSettings and Option functions.
type Settings struct {
	VersionMajor  uint16
	VersionMinor  uint16
	Compression   CompressionKind
	BlockSize     uint32
	TocEntrySize  uint32
	PathKind      PathKind
	Endianness    Endianness
}

// Option configures a Settings value, applied in order over the defaults
// NewSettings establishes.
type Option func(*Settings)

// WithVersion overrides the default versionMajor/versionMinor (1.4).
func WithVersion(major, minor uint16) Option {
	return func(s *Settings) {
		s.VersionMajor = major
		s.VersionMinor = minor
	}
}

// WithCompressionKind overrides the default compression algorithm (Lzma).
func WithCompressionKind(kind CompressionKind) Option {
	return func(s *Settings) {
		s.Compression = kind
	}
}

// WithBlockSize overrides the default block size (65536).
func WithBlockSize(size uint32) Option {
	return func(s *Settings) {
		s.BlockSize = size
	}
}

// WithTocEntrySize overrides the default TOC entry size (30); only 30 is
// known to round-trip with real-world archives.
func WithTocEntrySize(size uint32) Option {
	return func(s *Settings) {
		s.TocEntrySize = size
	}
}

// WithPathKind overrides the default manifest path rendering (Relative).
func WithPathKind(kind PathKind) Option {
	return func(s *Settings) {
		s.PathKind = kind
	}
}

// WithEndianness overrides the default scalar byte order (host-native).
func WithEndianness(e Endianness) Option {
	return func(s *Settings) {
		s.Endianness = e
	}
}

// NewSettings returns a Settings populated with the package defaults
// (versionMajor=1, versionMinor=4, compression=Lzma, blockSize=65536,
// tocEntrySize=30, pathKind=Relative, endianness=host), then applies opts.
func NewSettings(opts ...Option) Settings {
	s := Settings{
		VersionMajor: 1,
		VersionMinor: 4,
		Compression:  CompressionLzma,
		BlockSize:    DefaultBlockSize,
		TocEntrySize: tocEntrySize,
		PathKind:     PathRelative,
		Endianness:   EndianHost,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// swap reports whether scalars must be byte-swapped relative to the host
// when writing under these settings.
func (s Settings) swap() bool {
	switch s.Endianness {
	case EndianLittle:
		return !hostIsLittleEndian
	case EndianBig:
		return hostIsLittleEndian
	default:
		return false
	}
}
