package bytewindow

import "testing"

func TestReadGUIDMixedMatchesPSMAPI(t *testing.T) {
	raw := []byte{0x28, 0x03, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46}
	w := New(raw)
	got, err := w.ReadGUIDMixed(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "{00020328-0000-0000-C000-000000000046}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReadFILETIMEZeroIsUnset(t *testing.T) {
	raw := make([]byte, 8)
	w := New(raw)
	_, ok, err := w.ReadFILETIME(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected a zero FILETIME to be reported as unset")
	}
}

func TestReadFILETIMENonzero(t *testing.T) {
	raw := make([]byte, 8)
	// One hour after the Unix epoch, expressed in 100ns intervals since
	// 1601-01-01.
	var v uint64 = filetimeEpochOffset100ns + 10000000*3600
	for i := 0; i < 8; i++ {
		raw[i] = byte(v >> (8 * i))
	}
	w := New(raw)
	tm, ok, err := w.ReadFILETIME(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a nonzero FILETIME to be reported as set")
	}
	if tm.Unix() != 3600 {
		t.Fatalf("got unix %d, want 3600", tm.Unix())
	}
}

func TestSliceOutOfRange(t *testing.T) {
	w := New([]byte{1, 2, 3})
	if _, err := w.Slice(2, 5); err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := w.Slice(-1, 1); err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange for negative offset, got %v", err)
	}
}

func TestReadU16LELittleEndian(t *testing.T) {
	w := New([]byte{0x34, 0x12})
	v, err := w.ReadU16LE(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x1234 {
		t.Fatalf("got %#x, want %#x", v, 0x1234)
	}
}
