package psarc

import "fmt"

// CompressionKind is the per-archive compression algorithm tag stored at
// header offset 0x08.
type CompressionKind uint32

const (
	CompressionNone CompressionKind = iota
	CompressionZlib
	CompressionLzma
)

func (k CompressionKind) String() string {
	switch k {
	case CompressionNone:
		return "None"
	case CompressionZlib:
		return "Zlib"
	case CompressionLzma:
		return "Lzma"
	default:
		return fmt.Sprintf("CompressionKind(%d)", uint32(k))
	}
}

// tag returns the 4-byte on-disk compression tag; None has no canonical
// tag, so it is written
// as "none" to keep the header field printable.
func (k CompressionKind) tag() [4]byte {
	switch k {
	case CompressionZlib:
		return [4]byte{'z', 'l', 'i', 'b'}
	case CompressionLzma:
		return [4]byte{'l', 'z', 'm', 'a'}
	default:
		return [4]byte{'n', 'o', 'n', 'e'}
	}
}

func compressionKindFromTag(tag []byte) CompressionKind {
	switch string(tag[:4]) {
	case "zlib":
		return CompressionZlib
	case "lzma":
		return CompressionLzma
	default:
		return CompressionNone
	}
}

// PathKind controls how manifest paths are rendered by Downsync.
type PathKind uint32

const (
	PathRelative PathKind = iota
	PathIgnoreCase
	PathAbsolute
)

func (k PathKind) String() string {
	switch k {
	case PathRelative:
		return "Relative"
	case PathIgnoreCase:
		return "IgnoreCase"
	case PathAbsolute:
		return "Absolute"
	default:
		return fmt.Sprintf("PathKind(%d)", uint32(k))
	}
}

// render applies the path kind to a manifest path entry.
func (k PathKind) render(path string) string {
	switch k {
	case PathAbsolute:
		if len(path) > 0 && path[0] == '/' {
			return path
		}
		return "/" + path
	case PathIgnoreCase:
		return toLowerASCII(path)
	default:
		if len(path) > 0 && path[0] == '/' {
			return path[1:]
		}
		return path
	}
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
