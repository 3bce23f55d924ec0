// Package cfb implements MS-CFB Compound File Binary parsing: the fixed
// header, the FAT/MiniFAT sector allocation tables, and the directory tree.
// This is the foundation the MSG property store (internal/msgprop, the msg
// package) is built on.
package cfb

import (
	"github.com/outlookcore/msgpst/cerr"
	"github.com/outlookcore/msgpst/internal/bytewindow"
)

// SectorID indexes the CFB data space. The four high values below are
// sentinels, never real sector indices.
type SectorID uint32

const (
	SectorFree     SectorID = 0xFFFFFFFF
	SectorEndChain SectorID = 0xFFFFFFFE
	SectorFATSect  SectorID = 0xFFFFFFFD
	SectorDIFSect  SectorID = 0xFFFFFFFC
)

var cfbMagic = [8]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

const (
	headerSize        = 512
	headerByteOrder   = 0xFFFE
	maxDifatInHeader  = 109
	requiredMiniCutoff = 4096
)

// Header is the parsed 512-byte CFB header.
type Header struct {
	MajorVersion  uint16
	SectorShift   uint16
	SectorSize    int
	MiniShift     uint16
	MiniSectorSize int
	MiniCutoff    uint32

	DirStartSector SectorID
	MiniFATStart   SectorID
	MiniFATCount   uint32
	DifatStart     SectorID
	DifatCount     uint32

	FATSectorCount uint32

	// HeaderDifat holds up to 109 embedded DIFAT entries, with FREE/ENDCHAIN
	// entries already stripped.
	HeaderDifat []SectorID
}

// ParseHeader parses and validates the fixed 512-byte header.
func ParseHeader(w *bytewindow.Window) (*Header, error) {
	if w.Len() < headerSize {
		return nil, cerr.ErrDataTooShort
	}
	magic, err := w.Slice(0, 8)
	if err != nil {
		return nil, cerr.Io(err)
	}
	for i := 0; i < 8; i++ {
		if magic[i] != cfbMagic[i] {
			return nil, cerr.ErrInvalidMagic
		}
	}

	byteOrder, err := w.ReadU16LE(28)
	if err != nil {
		return nil, cerr.Io(err)
	}
	if byteOrder != headerByteOrder {
		return nil, cerr.ErrInvalidByteOrder
	}

	majorVersion, err := w.ReadU16LE(26)
	if err != nil {
		return nil, cerr.Io(err)
	}
	if majorVersion != 3 && majorVersion != 4 {
		return nil, cerr.ErrUnsupportedVersion
	}

	sectorShift, err := w.ReadU16LE(30)
	if err != nil {
		return nil, cerr.Io(err)
	}
	if majorVersion == 3 && sectorShift != 9 {
		return nil, cerr.ErrInvalidSectorShift
	}
	if majorVersion == 4 && sectorShift != 12 {
		return nil, cerr.ErrInvalidSectorShift
	}

	miniShift, err := w.ReadU16LE(32)
	if err != nil {
		return nil, cerr.Io(err)
	}
	if miniShift != 6 {
		return nil, cerr.ErrInvalidSectorShift
	}

	// Mini cutoff lives at offset 56 in the MS-CFB layout and must equal 4096.
	miniCutoff, err := w.ReadU32LE(56)
	if err != nil {
		return nil, cerr.Io(err)
	}
	if miniCutoff != requiredMiniCutoff {
		return nil, cerr.ErrInvalidMiniCutoff
	}

	dirStart, err := w.ReadU32LE(48)
	if err != nil {
		return nil, cerr.Io(err)
	}
	fatCount, err := w.ReadU32LE(44)
	if err != nil {
		return nil, cerr.Io(err)
	}
	miniFatStart, err := w.ReadU32LE(60)
	if err != nil {
		return nil, cerr.Io(err)
	}
	miniFatCount, err := w.ReadU32LE(64)
	if err != nil {
		return nil, cerr.Io(err)
	}
	difatStart, err := w.ReadU32LE(68)
	if err != nil {
		return nil, cerr.Io(err)
	}
	difatCount, err := w.ReadU32LE(72)
	if err != nil {
		return nil, cerr.Io(err)
	}

	h := &Header{
		MajorVersion:   majorVersion,
		SectorShift:    sectorShift,
		SectorSize:     1 << sectorShift,
		MiniShift:      miniShift,
		MiniSectorSize: 1 << miniShift,
		MiniCutoff:     miniCutoff,
		DirStartSector: SectorID(dirStart),
		FATSectorCount: fatCount,
		MiniFATStart:   SectorID(miniFatStart),
		MiniFATCount:   miniFatCount,
		DifatStart:     SectorID(difatStart),
		DifatCount:     difatCount,
	}

	h.HeaderDifat = make([]SectorID, 0, maxDifatInHeader)
	for i := 0; i < maxDifatInHeader; i++ {
		v, err := w.ReadU32LE(76 + i*4)
		if err != nil {
			return nil, cerr.Io(err)
		}
		sid := SectorID(v)
		if sid == SectorFree || sid == SectorEndChain {
			continue
		}
		h.HeaderDifat = append(h.HeaderDifat, sid)
	}

	return h, nil
}

// SectorOffset computes the byte offset of sector n in the file:
// (n+1) * sector_size, since the header occupies sector -1.
func (h *Header) SectorOffset(n SectorID) int64 {
	return (int64(n) + 1) * int64(h.SectorSize)
}
