package psarc

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestLzmaBlockRoundTrip(t *testing.T) {
	chunk := []byte("the quick brown fox jumps over the lazy dog, repeated. " +
		"the quick brown fox jumps over the lazy dog, repeated.")
	out, stored, err := compressLzmaBlock(chunk, 1<<20)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if stored {
		t.Fatalf("expected compressible text to not be stored raw")
	}
	got, err := decompressLzmaBlock(out, len(chunk))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, chunk) {
		t.Errorf("round trip mismatch: got %q, want %q", got, chunk)
	}
}

func TestZlibBlockRoundTrip(t *testing.T) {
	chunk := bytes.Repeat([]byte("abcdefgh"), 512)
	out, stored, err := compressZlibBlock(chunk, 1<<20)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if stored {
		t.Fatalf("expected compressible data to not be stored raw")
	}
	if !isZlibMagic(out[0], out[1]) {
		t.Errorf("compressed block does not start with a recognized zlib magic: %x %x", out[0], out[1])
	}
	got, err := decompressZlibBlock(out, len(chunk))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, chunk) {
		t.Errorf("round trip mismatch")
	}
}

func TestCompressBlocksNoGainStoresRaw(t *testing.T) {
	random := make([]byte, 100000)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("rand: %v", err)
	}

	dst, sizes, isComp, err := compressBlocks(CompressionLzma, random, 65536, 65536)
	if err != nil {
		t.Fatalf("compressBlocks: %v", err)
	}

	out, err := decompressBlocks(CompressionLzma, dst, sizes, isComp, 65536, int64(len(random)))
	if err != nil {
		t.Fatalf("decompressBlocks: %v", err)
	}
	if !bytes.Equal(out, random) {
		t.Errorf("round trip mismatch on random data")
	}
}

func TestCompressDecompressBlocksRoundTrip(t *testing.T) {
	for _, kind := range []CompressionKind{CompressionNone, CompressionZlib, CompressionLzma} {
		src := bytes.Repeat([]byte("hello world, this is a test payload. "), 5000)
		dst, sizes, isComp, err := compressBlocks(kind, src, 65536, 65536)
		if err != nil {
			t.Fatalf("kind=%s compress: %v", kind, err)
		}
		if len(sizes) != len(isComp) {
			t.Errorf("kind=%s: len(blockSizes)=%d != len(isCompressed)=%d", kind, len(sizes), len(isComp))
		}
		var sum int
		for _, s := range sizes {
			sum += int(s)
		}
		if sum != len(dst) {
			t.Errorf("kind=%s: sum(blockSizes)=%d != len(dst)=%d", kind, sum, len(dst))
		}

		out, err := decompressBlocks(kind, dst, sizes, isComp, 65536, int64(len(src)))
		if err != nil {
			t.Fatalf("kind=%s decompress: %v", kind, err)
		}
		if !bytes.Equal(out, src) {
			t.Errorf("kind=%s: round trip mismatch", kind)
		}
	}
}

func TestBlockIsCompressedHeuristics(t *testing.T) {
	if blockIsCompressed(CompressionLzma, []byte{0x5D, 1, 2, 3}, 10) != true {
		t.Error("expected LZMA block with 0x5D prefix and short size to be marked compressed")
	}
	if blockIsCompressed(CompressionLzma, []byte{0x5D, 1, 2, 3}, 4) != false {
		t.Error("expected LZMA block matching max size to be marked stored")
	}
	if !blockIsCompressed(CompressionZlib, []byte{0x78, 0x9C, 0, 0}, 100) {
		t.Error("expected zlib magic to be detected")
	}
	if blockIsCompressed(CompressionZlib, []byte{0x00, 0x01}, 100) {
		t.Error("expected non-magic bytes to be marked stored")
	}
	if blockIsCompressed(CompressionNone, []byte{0x5D, 1, 2, 3}, 4) {
		t.Error("CompressionNone should never mark a block compressed")
	}
}
