package psarc_test

import (
	"bytes"
	"testing"

	"github.com/psarc-go/psarc"
)

func TestFileUncompressedSizeNoDecompress(t *testing.T) {
	f := psarc.NewFile("a/b.bin", []byte{0x00, 0x01, 0x02, 0x03})
	if got := f.UncompressedSize(); got != 4 {
		t.Errorf("UncompressedSize() = %d, want 4", got)
	}
}

func TestFileCompressDecompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("payload-bytes "), 10000)
	f := psarc.NewFile("big.bin", data)

	if err := f.Compress(psarc.CompressionLzma, 65536); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	f.ClearUncompressed()

	if err := f.Decompress(); err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	out, err := f.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("round trip mismatch")
	}
}

func TestFileCompressedSizeDefaultsToLzma(t *testing.T) {
	f := psarc.NewFile("x.bin", []byte("some small file content"))
	size, err := f.CompressedSize()
	if err != nil {
		t.Fatalf("CompressedSize: %v", err)
	}
	if size == 0 {
		t.Error("expected non-zero compressed size")
	}
}

func TestFileClearCompressedIdempotent(t *testing.T) {
	f := psarc.NewFile("x.bin", []byte("content"))
	if _, err := f.CompressedSize(); err != nil {
		t.Fatalf("CompressedSize: %v", err)
	}
	f.ClearCompressed()
	f.ClearCompressed()
}
