package cfb

import (
	"encoding/binary"
	"testing"

	"github.com/outlookcore/msgpst/internal/bytewindow"
)

func TestParseDirentsClampsOversizedNameSize(t *testing.T) {
	h := &Header{MajorVersion: 3, SectorSize: 512, DirStartSector: 0}
	fat := SectorTable{0: SectorEndChain}

	blob := make([]byte, 512+512)
	rec := blob[512 : 512+128]
	binary.LittleEndian.PutUint16(rec[64:], 0xFFFF) // bogus oversized name_size
	rec[66] = byte(TypeRoot)
	binary.LittleEndian.PutUint32(rec[68:], uint32(noStream))
	binary.LittleEndian.PutUint32(rec[72:], uint32(noStream))
	binary.LittleEndian.PutUint32(rec[76:], uint32(noStream))

	dirents := ParseDirents(bytewindow.New(blob), h, fat)
	if len(dirents) != 4 {
		t.Fatalf("got %d dirents, want 4 (one 512-byte sector / 128)", len(dirents))
	}
	if len([]rune(dirents[0].Name)) > 31 {
		t.Fatalf("name_size 0xFFFF was not clamped to 64 bytes, got %d runes", len([]rune(dirents[0].Name)))
	}
}

func TestParseDirentsZeroNameSize(t *testing.T) {
	h := &Header{MajorVersion: 3, SectorSize: 512, DirStartSector: 0}
	fat := SectorTable{0: SectorEndChain}

	blob := make([]byte, 512+512)
	rec := blob[512 : 512+128]
	rec[66] = byte(TypeStream)

	dirents := ParseDirents(bytewindow.New(blob), h, fat)
	if dirents[0].Name != "" {
		t.Fatalf("expected empty name for name_size 0, got %q", dirents[0].Name)
	}
}
