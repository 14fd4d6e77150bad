package main

import "testing"

func TestFnv1aBytesEmptyIsOffsetBasis(t *testing.T) {
	if got := fnv1aBytes(nil); got != fnv1a64OffsetBasis {
		t.Fatalf("fnv1aBytes(nil) = 0x%x, want offset basis 0x%x", got, fnv1a64OffsetBasis)
	}
}

func TestFnv1aBytesConcatenationEqualsExtension(t *testing.T) {
	a := []byte("hello ")
	b := []byte("world")
	whole := fnv1aBytes(append(append([]byte{}, a...), b...))

	h := fnv1a64OffsetBasis
	for _, buf := range [][]byte{a, b} {
		for _, by := range buf {
			h ^= uint64(by)
			h *= fnv1a64Prime
		}
	}
	if whole != h {
		t.Fatalf("concatenation hash 0x%x != manually extended hash 0x%x", whole, h)
	}
}

func TestFnv1aExtendMatchesByteExtension(t *testing.T) {
	base := fnv1aBytes([]byte("seed"))
	extended := fnv1aExtend(base, 0x0102030405060708)

	var manual = base
	bytes := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01} // little-endian
	for _, b := range bytes {
		manual ^= uint64(b)
		manual *= fnv1a64Prime
	}
	if extended != manual {
		t.Fatalf("fnv1aExtend = 0x%x, want 0x%x", extended, manual)
	}
}

func TestHashPixelRowsOrientation(t *testing.T) {
	// Two rows, width 1 (4 bytes/row), stride 4.
	pixels := []byte{
		1, 2, 3, 4, // row 0
		5, 6, 7, 8, // row 1
	}
	topDown := hashPixelRows(pixels, 1, 2, 4, false)
	bottomUp := hashPixelRows(pixels, 1, 2, 4, true)
	if topDown == bottomUp {
		t.Fatalf("orientation should change the hash for asymmetric rows")
	}

	manualTopDown := fnv1aBytes(pixels)
	if topDown != manualTopDown {
		t.Fatalf("top-down hash = 0x%x, want 0x%x", topDown, manualTopDown)
	}
}

func TestHashTrackerRecordAndReport(t *testing.T) {
	tr := NewHashTracker("bo_hash", ReportBoth, true)
	h0 := fnv1aBytes([]byte("frame0"))
	h1 := fnv1aBytes([]byte("frame1"))
	tr.Record(h0)
	tr.Record(h1)

	final, ok := tr.Final()
	if !ok || final != h1 {
		t.Fatalf("final = 0x%x (ok=%v), want 0x%x", final, ok, h1)
	}

	wantAgg := fnv1aExtend(fnv1aExtend(fnv1a64OffsetBasis, h0), h1)
	if tr.Aggregate() != wantAgg {
		t.Fatalf("aggregate = 0x%x, want 0x%x", tr.Aggregate(), wantAgg)
	}

	line := tr.ReportLine()
	want := "bo_hash_final=0x" + hex16(h1) + " bo_hash_aggregate=0x" + hex16(wantAgg)
	if line != want {
		t.Fatalf("report line = %q, want %q", line, want)
	}
}

func TestHashTrackerDisabledNeverRecords(t *testing.T) {
	tr := NewHashTracker("hash", ReportBoth, false)
	tr.Record(12345)
	if _, ok := tr.Final(); ok {
		t.Fatalf("disabled tracker should never report a final hash")
	}
	if tr.ReportLine() != "" {
		t.Fatalf("disabled tracker should produce no report line")
	}
}

func hex16(v uint64) string {
	const digits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = digits[v&0xF]
		v >>= 4
	}
	return string(buf)
}
