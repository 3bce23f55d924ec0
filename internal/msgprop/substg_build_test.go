package msgprop

import (
	"testing"

	"github.com/outlookcore/msgpst/internal/bytewindow"
	"github.com/outlookcore/msgpst/internal/cfb"
	"github.com/outlookcore/msgpst/internal/mapi"
	"github.com/outlookcore/msgpst/props"
	"github.com/outlookcore/msgpst/warn"
)

// sectorContainer builds a minimal Container whose streams are each backed
// by one full 512-byte sector at a distinct offset, addressable through an
// ordinary FAT chain (no mini stream involved).
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

func TestDecodeSubstgsMultiValueOrderedLastWins(t *testing.T) {
	idx0 := make([]byte, 512)
	copy(idx0, []byte("a"))
	idx1a := make([]byte, 512)
	copy(idx1a, []byte("b"))
	idx1b := make([]byte, 512)
	copy(idx1b, []byte("b-overwritten"))

	c := sectorContainer(map[int][]byte{0: idx0, 1: idx1a, 2: idx1b})
	c.Dirents = []*cfb.Dirent{
		{SID: 0, Type: cfb.TypeStorage, Children: []int{1, 2, 3}},
		{SID: 1, Name: "__substg1.0_1000101E-00000001", Type: cfb.TypeStream, StartSector: 1, Size: 1},
		{SID: 2, Name: "__substg1.0_1000101E-00000000", Type: cfb.TypeStream, StartSector: 0, Size: 1},
		{SID: 3, Name: "__substg1.0_1000101E-00000001", Type: cfb.TypeStream, StartSector: 2, Size: 13},
	}

	ps := props.NewPropertySet()
	var warnings warn.List
	decodeSubstgs(c, c.Dirents[0], nil, ps, &warnings)

	v, ok := ps.GetByCode(0x1000)
	if !ok {
		t.Fatalf("expected multi-value property to decode")
	}
	if len(v.Multi) != 2 {
		t.Fatalf("got %d values, want 2", len(v.Multi))
	}
	if v.Multi[0] != "a" || v.Multi[1] != "b-overwritten" {
		t.Fatalf("got %v, want [a b-overwritten]", v.Multi)
	}
}

func TestDecodeSubstgsOverridesInline(t *testing.T) {
	data := make([]byte, 512)
	copy(data, []byte("substg wins"))

	c := sectorContainer(map[int][]byte{0: data})
	c.Dirents = []*cfb.Dirent{
		{SID: 0, Type: cfb.TypeStorage, Children: []int{1}},
		{SID: 1, Name: "__substg1.0_0037001E", Type: cfb.TypeStream, StartSector: 0, Size: 11},
	}

	ps := props.NewPropertySet()
	key := props.NumericKey(0x0037)
	ps.Set(key, props.Value{Type: mapi.PtString8, Single: "inline value"})

	var warnings warn.List
	decodeSubstgs(c, c.Dirents[0], nil, ps, &warnings)

	v, _ := ps.Get(key)
	got, _ := v.Single.(string)
	if got != "substg wins" {
		t.Fatalf("got %q, want substg to override inline value", got)
	}
}
