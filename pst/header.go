// Package pst implements MS-PST parsing: header, NDB permutation
// decryption, the index and descriptor B-trees, the block/ID2 property
// reader, and lazy item/folder traversal.
package pst

import (
	"github.com/outlookcore/msgpst/cerr"
	"github.com/outlookcore/msgpst/internal/bytewindow"
)

// Version distinguishes the two PST generations this package supports.
type Version int

const (
	VersionUnknown Version = iota
	VersionAnsi97
	VersionUnicode2003
)

var pstMagic = [4]byte{0x21, 0x42, 0x44, 0x4E}

const (
	versionByteOffset = 10
	ansi97VersionByte  = 0x0E
	unicode2003Byte    = 0x17

	ansi97EncryptionOffset = 0x1CD
	ansi97Index1Offset     = 0xA0
	ansi97Index2Offset     = 0xA8

	unicode2003EncryptionOffset = 0x201
	unicode2003Index1Offset     = 0xB8
	unicode2003Index2Offset     = 0xC0
)

// Header is the parsed PST file header.
type Header struct {
	Version       Version
	EncryptionType byte
	Index1Offset  uint64
	Index2Offset  uint64
}

// ParseHeader validates the magic and version byte, then reads the
// version-dependent encryption/index offset fields.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < 4 {
		return nil, cerr.ErrDataTooShort
	}
	for i := 0; i < 4; i++ {
		if data[i] != pstMagic[i] {
			return nil, cerr.ErrInvalidPstMagic
		}
	}
	if len(data) <= versionByteOffset {
		return nil, cerr.ErrDataTooShort
	}

	w := bytewindow.New(data)
	switch data[versionByteOffset] {
	case ansi97VersionByte:
		return parseAnsi97Header(w)
	case unicode2003Byte:
		return parseUnicode2003Header(w)
	default:
		return nil, cerr.UnknownIndexType(data[versionByteOffset])
	}
}

func parseAnsi97Header(w *bytewindow.Window) (*Header, error) {
	enc, err := byteAt(w, ansi97EncryptionOffset)
	if err != nil {
		return nil, err
	}
	idx1, err := w.ReadU32LE(ansi97Index1Offset)
	if err != nil {
		return nil, cerr.Io(err)
	}
	idx2, err := w.ReadU32LE(ansi97Index2Offset)
	if err != nil {
		return nil, cerr.Io(err)
	}
	return &Header{
		Version:        VersionAnsi97,
		EncryptionType: enc,
		Index1Offset:   uint64(idx1),
		Index2Offset:   uint64(idx2),
	}, nil
}

func parseUnicode2003Header(w *bytewindow.Window) (*Header, error) {
	enc, err := byteAt(w, unicode2003EncryptionOffset)
	if err != nil {
		return nil, err
	}
	idx1, err := w.ReadU64LE(unicode2003Index1Offset)
	if err != nil {
		return nil, cerr.Io(err)
	}
	idx2, err := w.ReadU64LE(unicode2003Index2Offset)
	if err != nil {
		return nil, cerr.Io(err)
	}
	return &Header{
		Version:        VersionUnicode2003,
		EncryptionType: enc,
		Index1Offset:   idx1,
		Index2Offset:   idx2,
	}, nil
}

func byteAt(w *bytewindow.Window, offset int) (byte, error) {
	b, err := w.Slice(offset, 1)
	if err != nil {
		return 0, cerr.Io(err)
	}
	return b[0], nil
}
