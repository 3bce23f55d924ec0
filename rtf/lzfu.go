// Package rtf decompresses MS-OXRTFCP compressed RTF payloads.
package rtf

import (
	"errors"

	"github.com/outlookcore/msgpst/internal/bytewindow"
)

// ErrInvalidHeader and ErrInvalidMagic are the two failure modes of
// Decompress.
var (
	ErrInvalidHeader = errors.New("rtf: compressed header shorter than 16 bytes")
	ErrInvalidMagic  = errors.New("rtf: unrecognized compressed-header magic")
)

const (
	magicCompressed   = 0x75465A4C
	magicUncompressed = 0x414C454D

	bufSize = 4096
)

// seedPrebuf is the fixed 207-byte MS-OXRTFCP seed pre-buffer. It is the
// opening fragment of a minimal RTF document, chosen so that common RTF
// control words compress to short back-references even in the very first
// bytes of output.
var seedPrebuf = []byte("{\\rtf1\\ansi\\mac\\deff0\\deftab720{\\fonttbl;}{\\f0\\fnil \\froman \\fswiss \\fmodern \\fscript \\fdecor MS Sans SerifSymbolArialTimes New RomanCourier{\\colortbl\\red0\\green0\\blue0\n\n\\par \\pard\\plain\\f0\\fs20\\b\\i\\u\\tab\\in")

// Header is the 16-byte RtfCompressedHeader preceding the LZFu payload.
type Header struct {
	CompSize uint32
	RawSize  uint32
	Magic    uint32
	CRC      uint32
}

// ParseHeader reads the fixed 16-byte header from the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < 16 {
		return Header{}, ErrInvalidHeader
	}
	w := bytewindow.New(data[:16])
	compSize, _ := w.ReadU32LE(0)
	rawSize, _ := w.ReadU32LE(4)
	magic, _ := w.ReadU32LE(8)
	crc, _ := w.ReadU32LE(12)
	return Header{CompSize: compSize, RawSize: rawSize, Magic: magic, CRC: crc}, nil
}

// Decompress parses the 16-byte header at the start of data and decodes the
// payload that follows it. init asserts len(seedPrebuf) == 207.
func Decompress(data []byte) ([]byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	payload := data[16:]

	switch h.Magic {
	case magicUncompressed:
		n := int(h.RawSize)
		if n > len(payload) {
			n = len(payload)
		}
		return append([]byte(nil), payload[:n]...), nil
	case magicCompressed:
		return decompressLZFu(payload, int(h.RawSize)), nil
	default:
		return nil, ErrInvalidMagic
	}
}

// decompressLZFu runs the flag-byte-driven literal/back-reference algorithm
// over a circular 4096-byte buffer seeded with seedPrebuf.
func decompressLZFu(payload []byte, rawSize int) []byte {
	var buf [bufSize]byte
	copy(buf[:], seedPrebuf)

	wp := len(seedPrebuf)
	capHint := rawSize
	if capHint < 0 {
		capHint = 0
	}
	out := make([]byte, 0, capHint)

	pos := 0
	for pos < len(payload) {
		flags := payload[pos]
		pos++

		for bit := 0; bit < 8 && pos < len(payload); bit++ {
			if flags&(1<<bit) == 0 {
				b := payload[pos]
				pos++
				buf[wp&(bufSize-1)] = b
				out = append(out, b)
				wp++
				continue
			}

			if pos+2 > len(payload) {
				pos = len(payload)
				break
			}
			val := uint16(payload[pos])<<8 | uint16(payload[pos+1])
			pos += 2

			offset := int(val >> 4)
			length := int(val&0x0F) + 2

			if offset == wp&(bufSize-1) {
				return truncate(out, rawSize)
			}

			for i := 0; i < length; i++ {
				src := buf[(offset+i)&(bufSize-1)]
				buf[wp&(bufSize-1)] = src
				out = append(out, src)
				wp++
			}
		}
	}

	return truncate(out, rawSize)
}

func truncate(out []byte, rawSize int) []byte {
	if rawSize >= 0 && rawSize < len(out) {
		return out[:rawSize]
	}
	return out
}

func init() {
	if len(seedPrebuf) != 207 {
		panic("rtf: seed pre-buffer must be exactly 207 bytes")
	}
}
