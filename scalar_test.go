package psarc

import "testing"

func TestBlockByteWidth(t *testing.T) {
	cases := []struct {
		blockSize uint32
		want      int
	}{
		{1024, 2},
		{65536, 2},
		{65537, 3},
		{16777216, 3},
		{16777217, 4},
	}
	for _, c := range cases {
		if got := blockByteWidth(c.blockSize); got != c.want {
			t.Errorf("blockByteWidth(%d) = %d, want %d", c.blockSize, got, c.want)
		}
	}
}

func TestScalarRoundTrip(t *testing.T) {
	for _, swap := range []bool{false, true} {
		buf := make([]byte, 16)
		writeU16(buf, 0, 0xBEEF, swap)
		if got := readU16(buf, 0, swap); got != 0xBEEF {
			t.Errorf("u16 swap=%v: got %#x", swap, got)
		}

		writeU24(buf, 2, 0x123456, swap)
		if got := readU24(buf, 2, swap); got != 0x123456 {
			t.Errorf("u24 swap=%v: got %#x", swap, got)
		}

		writeU32(buf, 6, 0xDEADBEEF, swap)
		if got := readU32(buf, 6, swap); got != 0xDEADBEEF {
			t.Errorf("u32 swap=%v: got %#x", swap, got)
		}
	}
}

func TestU40RoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	var max uint64 = (1 << 40) - 1
	for _, swap := range []bool{false, true} {
		writeU40(buf, 0, max, swap)
		if got := readU40(buf, 0, swap); got != max {
			t.Errorf("u40 swap=%v: got %#x, want %#x", swap, got, max)
		}
	}
}

func TestU40Truncates(t *testing.T) {
	buf := make([]byte, 8)
	writeU40(buf, 0, 1<<40|0xFF, false)
	if got := readU40(buf, 0, false); got != 0xFF {
		t.Errorf("expected truncation to 0xff, got %#x", got)
	}
}

func TestU24Truncates(t *testing.T) {
	buf := make([]byte, 4)
	writeU24(buf, 0, 1<<24|0xABCDEF, false)
	if got := readU24(buf, 0, false); got != 0xABCDEF {
		t.Errorf("expected truncation, got %#x", got)
	}
}
