// Package mapi decodes MAPI property types from inline/substg bytes and
// hosts the tag and named-property registries.
package mapi

import (
	"github.com/outlookcore/msgpst/internal/bytewindow"
	"github.com/outlookcore/msgpst/props"
)

// Base property type codes. The multi-value flag
// (props.MVFlag) lives in package props alongside the Value type it tags.
const (
	PtShort    uint16 = 0x0002
	PtLong     uint16 = 0x0003
	PtFloat    uint16 = 0x0004
	PtDouble   uint16 = 0x0005
	PtCurrency uint16 = 0x0006
	PtApptime  uint16 = 0x0007
	PtError    uint16 = 0x000A
	PtBoolean  uint16 = 0x000B
	PtObject   uint16 = 0x000D
	PtInt64    uint16 = 0x0014
	PtString8  uint16 = 0x001E
	PtUnicode  uint16 = 0x001F
	PtSystime  uint16 = 0x0040
	PtClsid    uint16 = 0x0048
	PtBinary   uint16 = 0x0102
)

// MVFlag re-exports props.MVFlag for callers that only import mapi.
const MVFlag = props.MVFlag

// IsMultiValue reports whether the type tag carries the multi-value flag.
func IsMultiValue(typ uint16) bool { return props.IsMultiValue(typ) }

// BaseType strips the multi-value flag, yielding the element type.
func BaseType(typ uint16) uint16 { return props.BaseType(typ) }

// IsFixedSize reports whether typ (a base, non-MV type) is one of the
// fixed-size inline base types decodable from an 8-byte inline record.
func IsFixedSize(base uint16) bool {
	switch base {
	case PtShort, PtLong, PtFloat, PtDouble, PtCurrency, PtApptime, PtError, PtBoolean, PtInt64, PtSystime:
		return true
	default:
		return false
	}
}

// StringDecoder decodes PT_STRING8 bytes into a UTF-8 Go string. The
// default implementation treats the bytes as Windows-1252/ASCII; callers
// (the msg property store) may override it to route through the charset
// pipeline in internal/mapi/charset8.go.
type StringDecoder func(b []byte) string

// DecodeFixed decodes one of the fixed 8-byte inline value forms. offset 0 starts the 8-byte value region.
func DecodeFixed(base uint16, w *bytewindow.Window, offset int) (interface{}, error) {
	switch base {
	case PtShort:
		v, err := w.ReadU16LE(offset)
		return int16(v), err
	case PtLong:
		v, err := w.ReadI32LE(offset)
		return v, err
	case PtFloat:
		return w.ReadF32LE(offset)
	case PtDouble:
		return w.ReadF64LE(offset)
	case PtCurrency:
		v, err := w.ReadI64LE(offset)
		if err != nil {
			return nil, err
		}
		return float64(v) / 10000.0, nil
	case PtApptime:
		return w.ReadF64LE(offset)
	case PtError:
		return w.ReadU32LE(offset)
	case PtBoolean:
		v, err := w.ReadU16LE(offset)
		return v != 0, err
	case PtInt64:
		return w.ReadI64LE(offset)
	case PtSystime:
		t, ok, err := w.ReadFILETIME(offset)
		if err != nil {
			return nil, err
		}
		if !ok {
			return UnsetTime{}, nil
		}
		return t, nil
	default:
		return nil, nil
	}
}

// UnsetTime is returned in place of a time.Time when a FILETIME value of 0
// is decoded: such a value is reported as unset, not as a date.
type UnsetTime struct{}

// DecodeVariable decodes a variable-size (or large fixed-size, e.g.
// PT_BINARY/PT_CLSID) single value from raw bytes, as read from a substg
// stream or a PST property-block reference.
func DecodeVariable(base uint16, data []byte, str StringDecoder) interface{} {
	switch base {
	case PtString8:
		if str == nil {
			str = decodeWindows1252
		}
		return stripTrailingNUL(str(data))
	case PtUnicode:
		w := bytewindow.New(data)
		s, _ := w.ReadUTF16LE(0, len(data)-(len(data)%2))
		return stripTrailingNULRunes(s)
	case PtClsid:
		if len(data) != 16 {
			return ""
		}
		return bytewindow.FormatGUIDMixed(data)
	case PtBinary:
		return append([]byte(nil), data...)
	case PtObject:
		return append([]byte(nil), data...)
	case PtShort:
		if len(data) < 2 {
			return int16(0)
		}
		w := bytewindow.New(data)
		v, _ := w.ReadU16LE(0)
		return int16(v)
	case PtLong:
		if len(data) < 4 {
			return int32(0)
		}
		w := bytewindow.New(data)
		v, _ := w.ReadI32LE(0)
		return v
	case PtFloat:
		if len(data) < 4 {
			return float32(0)
		}
		w := bytewindow.New(data)
		v, _ := w.ReadF32LE(0)
		return v
	case PtDouble, PtApptime:
		if len(data) < 8 {
			return float64(0)
		}
		w := bytewindow.New(data)
		v, _ := w.ReadF64LE(0)
		return v
	case PtCurrency:
		if len(data) < 8 {
			return float64(0)
		}
		w := bytewindow.New(data)
		v, _ := w.ReadI64LE(0)
		return float64(v) / 10000.0
	case PtError:
		if len(data) < 4 {
			return uint32(0)
		}
		w := bytewindow.New(data)
		v, _ := w.ReadU32LE(0)
		return v
	case PtBoolean:
		if len(data) < 2 {
			return false
		}
		w := bytewindow.New(data)
		v, _ := w.ReadU16LE(0)
		return v != 0
	case PtInt64:
		if len(data) < 8 {
			return int64(0)
		}
		w := bytewindow.New(data)
		v, _ := w.ReadI64LE(0)
		return v
	case PtSystime:
		if len(data) < 8 {
			return UnsetTime{}
		}
		w := bytewindow.New(data)
		t, ok, _ := w.ReadFILETIME(0)
		if !ok {
			return UnsetTime{}
		}
		return t
	default:
		return append([]byte(nil), data...)
	}
}

// decodeWindows1252 is the default PT_STRING8 decoder: a 1:1 byte-to-rune
// mapping for the 0x80-0x9F control range that Windows-1252 actually
// defines printable characters for, Latin-1 otherwise. The msg property
// store overrides this with the charset-sniffing decoder in charset8.go.
func decodeWindows1252(b []byte) string {
	runes := make([]rune, 0, len(b))
	for _, c := range b {
		runes = append(runes, windows1252Rune(c))
	}
	return string(runes)
}

var windows1252HighRunes = [32]rune{
	0x20AC, 0x0081, 0x201A, 0x0192, 0x201E, 0x2026, 0x2020, 0x2021,
	0x02C6, 0x2030, 0x0160, 0x2039, 0x0152, 0x008D, 0x017D, 0x008F,
	0x0090, 0x2018, 0x2019, 0x201C, 0x201D, 0x2022, 0x2013, 0x2014,
	0x02DC, 0x2122, 0x0161, 0x203A, 0x0153, 0x009D, 0x017E, 0x0178,
}

func windows1252Rune(c byte) rune {
	if c < 0x80 || c >= 0xA0 {
		return rune(c)
	}
	return windows1252HighRunes[c-0x80]
}

func stripTrailingNUL(s string) string {
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return s
}

func stripTrailingNULRunes(s string) string {
	runes := []rune(s)
	n := len(runes)
	for n > 0 && runes[n-1] == 0 {
		n--
	}
	return string(runes[:n])
}
