package nameid

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/outlookcore/msgpst/internal/bytewindow"
	"github.com/outlookcore/msgpst/internal/cfb"
	"github.com/outlookcore/msgpst/props"
	"github.com/outlookcore/msgpst/warn"
)

// sectorContainer lays out each stream at its own whole sector, with
// MiniCutoff 0 so ReadEntryStream always takes the FAT path regardless of
// stream size — the same trick internal/msgprop's tests use to avoid
// standing up a real mini stream.
func sectorContainer(streams map[int][]byte) *cfb.Container {
	h := &cfb.Header{MajorVersion: 3, SectorSize: 512, MiniCutoff: 0}
	maxSector := 0
	for sid := range streams {
		if sid > maxSector {
			maxSector = sid
		}
	}
	blob := make([]byte, int(h.SectorOffset(cfb.SectorID(maxSector)))+h.SectorSize)
	fat := cfb.SectorTable{}
	for sid, data := range streams {
		off := h.SectorOffset(cfb.SectorID(sid))
		copy(blob[off:], data)
		fat[cfb.SectorID(sid)] = cfb.SectorEndChain
	}
	return &cfb.Container{
		Window: bytewindow.New(blob),
		Header: h,
		FAT:    fat,
	}
}

func utf16leBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:], u)
	}
	return out
}

func TestBuildResolvesNumericAndNamedProperties(t *testing.T) {
	customGUID := make([]byte, 16)
	for i := range customGUID {
		customGUID[i] = byte(i + 1)
	}
	guidStream := make([]byte, 512)
	copy(guidStream, customGUID)

	name := utf16leBytes("MyProp")
	stringStream := make([]byte, 512)
	binary.LittleEndian.PutUint32(stringStream[0:], uint32(len(name)))
	copy(stringStream[4:], name)

	entryStream := make([]byte, 512)
	// entry 0: numeric property 0x0011, guidIndex 0 (PS_MAPI), not a string.
	binary.LittleEndian.PutUint32(entryStream[0:], 0x0011)
	binary.LittleEndian.PutUint32(entryStream[4:], 0)
	// entry 1: named property "MyProp" at string-table offset 0, guidIndex 2
	// (the first entry of the custom GUID table), a string.
	binary.LittleEndian.PutUint32(entryStream[8:], 0)
	binary.LittleEndian.PutUint32(entryStream[12:], (2<<1)|1)

	c := sectorContainer(map[int][]byte{
		0: guidStream,
		1: entryStream,
		2: stringStream,
	})
	c.Dirents = []*cfb.Dirent{
		{SID: 0, Type: cfb.TypeStorage, Children: []int{1, 2, 3}},
		{SID: 1, Name: streamGUIDs, Type: cfb.TypeStream, StartSector: 0, Size: 16},
		{SID: 2, Name: streamEntries, Type: cfb.TypeStream, StartSector: 1, Size: 16},
		{SID: 3, Name: streamStrings, Type: cfb.TypeStream, StartSector: 2, Size: uint64(4 + len(name))},
	}

	result, warnings := Build(c, c.Dirents[0])
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}

	numeric, ok := result[0x8000]
	if !ok {
		t.Fatalf("expected a resolved entry at pseudo-code 0x8000")
	}
	want := props.NumericKeyIn(0x0011, props.PS_MAPI)
	if numeric != want {
		t.Fatalf("got %+v, want %+v", numeric, want)
	}

	named, ok := result[0x8001]
	if !ok {
		t.Fatalf("expected a resolved entry at pseudo-code 0x8001")
	}
	wantGUID := bytewindow.FormatGUIDMixed(customGUID)
	wantNamed := props.NamedKey("MyProp", wantGUID)
	if named != wantNamed {
		t.Fatalf("got %+v, want %+v", named, wantNamed)
	}
}

func TestBuildWithNoEntryStreamYieldsEmptyMapNoWarnings(t *testing.T) {
	c := &cfb.Container{Dirents: []*cfb.Dirent{
		{SID: 0, Type: cfb.TypeStorage},
	}}
	result, warnings := Build(c, c.Dirents[0])
	if len(result) != 0 {
		t.Fatalf("expected an empty map, got %+v", result)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", warnings)
	}
}

func TestBuildUnresolvableStringOffsetDegradesToWarning(t *testing.T) {
	stringStream := make([]byte, 512) // no valid length-prefixed entry at offset 0

	entryStream := make([]byte, 512)
	// A string-typed entry pointing at an offset with nothing but zeros:
	// readNameAtOffset will read a declared length of 0, then try to read
	// 0 bytes of UTF-16 — which succeeds trivially — so instead point past
	// the end of the table entirely to force a real failure.
	binary.LittleEndian.PutUint32(entryStream[0:], 1000)
	binary.LittleEndian.PutUint32(entryStream[4:], (0<<1)|1)

	c := sectorContainer(map[int][]byte{
		0: entryStream,
		1: stringStream,
	})
	c.Dirents = []*cfb.Dirent{
		{SID: 0, Type: cfb.TypeStorage, Children: []int{1, 2}},
		{SID: 1, Name: streamEntries, Type: cfb.TypeStream, StartSector: 0, Size: 8},
		{SID: 2, Name: streamStrings, Type: cfb.TypeStream, StartSector: 1, Size: 512},
	}

	result, warnings := Build(c, c.Dirents[0])
	if len(result) != 0 {
		t.Fatalf("expected no resolved entries out of an unresolvable string offset, got %+v", result)
	}
	if !warnings.HasCode(warn.CodeNameidParseFailed) {
		t.Fatalf("expected a nameid_parse_failed warning, got %+v", warnings)
	}
}

func TestParseGUIDTableNilDirentYieldsNilTable(t *testing.T) {
	if got := parseGUIDTable(&cfb.Container{}, nil); got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}

func TestResolveGUIDPredefinedIndices(t *testing.T) {
	if got := resolveGUID(0, nil); got != props.PS_MAPI {
		t.Fatalf("got %q, want PS_MAPI", got)
	}
	if got := resolveGUID(1, nil); got != props.PS_PUBLIC_STRINGS {
		t.Fatalf("got %q, want PS_PUBLIC_STRINGS", got)
	}
}

func TestResolveGUIDOutOfRangeFallsBackToPSMAPI(t *testing.T) {
	if got := resolveGUID(5, []string{"only-one"}); got != props.PS_MAPI {
		t.Fatalf("got %q, want PS_MAPI fallback for an out-of-range index", got)
	}
}

func TestReadNameAtOffsetRoundTrips(t *testing.T) {
	name := utf16leBytes("hello")
	table := make([]byte, 4+len(name))
	binary.LittleEndian.PutUint32(table[0:], uint32(len(name)))
	copy(table[4:], name)

	got, ok := readNameAtOffset(table, 0)
	if !ok {
		t.Fatalf("expected readNameAtOffset to succeed")
	}
	if got != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestReadNameAtOffsetOutOfBoundsFails(t *testing.T) {
	if _, ok := readNameAtOffset(nil, 0); ok {
		t.Fatalf("expected readNameAtOffset to fail on an empty table")
	}
}
