// Package bytewindow provides a bounds-checked, read-only view over an
// in-memory blob with little/big/mixed-endian primitive readers. It is the
// lowest layer of the container stack: every other package reads bytes
// through a Window instead of slicing raw byte slices directly.
package bytewindow

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
	"unicode/utf16"
)

// ErrOutOfRange is returned by any reader whose requested span falls
// outside the window. Readers are total: a short read always returns this
// error instead of panicking.
var ErrOutOfRange = errors.New("bytewindow: out of range")

// filetimeEpochOffset100ns is the number of 100ns intervals between the
// FILETIME epoch (1601-01-01) and the Unix epoch (1970-01-01).
const filetimeEpochOffset100ns = 116444736000000000

// Window is a read-only ordered sequence of octets of known length.
type Window struct {
	data []byte
}

// New wraps a byte slice. The slice is not copied; callers must not mutate
// it while the Window is in use.
func New(data []byte) *Window {
	return &Window{data: data}
}

// Len reports the total number of bytes in the window.
func (w *Window) Len() int { return len(w.data) }

// Bytes returns the entire underlying slice. Callers must treat it as
// read-only.
func (w *Window) Bytes() []byte { return w.data }

// Slice returns a bounds-checked sub-slice [offset, offset+length).
func (w *Window) Slice(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset > len(w.data) || offset+length > len(w.data) {
		return nil, ErrOutOfRange
	}
	return w.data[offset : offset+length], nil
}

func (w *Window) ReadU16LE(offset int) (uint16, error) {
	b, err := w.Slice(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (w *Window) ReadU32LE(offset int) (uint32, error) {
	b, err := w.Slice(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (w *Window) ReadU64LE(offset int) (uint64, error) {
	b, err := w.Slice(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (w *Window) ReadI32LE(offset int) (int32, error) {
	v, err := w.ReadU32LE(offset)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func (w *Window) ReadI64LE(offset int) (int64, error) {
	v, err := w.ReadU64LE(offset)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

func (w *Window) ReadF32LE(offset int) (float32, error) {
	v, err := w.ReadU32LE(offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (w *Window) ReadF64LE(offset int) (float64, error) {
	v, err := w.ReadU64LE(offset)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadUTF16LE decodes lenBytes bytes starting at offset as UTF-16LE and
// returns the resulting UTF-8 Go string. lenBytes must be even.
func (w *Window) ReadUTF16LE(offset, lenBytes int) (string, error) {
	b, err := w.Slice(offset, lenBytes)
	if err != nil {
		return "", err
	}
	n := len(b) / 2
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		units[i] = binary.LittleEndian.Uint16(b[i*2 : i*2+2])
	}
	return string(utf16.Decode(units)), nil
}

// ReadFILETIME decodes an 8-byte little-endian FILETIME (100ns intervals
// since 1601-01-01 UTC) into a time.Time. A raw value of 0 is reported via
// the ok=false return so callers can treat it as "unset" per MS-OXCDATA.
func (w *Window) ReadFILETIME(offset int) (t time.Time, ok bool, err error) {
	raw, err := w.ReadU64LE(offset)
	if err != nil {
		return time.Time{}, false, err
	}
	if raw == 0 {
		return time.Time{}, false, nil
	}
	unix100ns := int64(raw) - filetimeEpochOffset100ns
	sec := unix100ns / 10000000
	nsec := (unix100ns % 10000000) * 100
	return time.Unix(sec, nsec).UTC(), true, nil
}

// ReadGUIDMixed decodes a 16-byte mixed-endian GUID (the first three fields
// little-endian, the final 8 bytes as an opaque big-endian-ordered byte
// string) and formats it in canonical {XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX}
// form.
func (w *Window) ReadGUIDMixed(offset int) (string, error) {
	b, err := w.Slice(offset, 16)
	if err != nil {
		return "", err
	}
	return FormatGUIDMixed(b), nil
}

// FormatGUIDMixed formats a 16-byte mixed-endian GUID buffer. Exposed so
// callers that already hold the raw bytes (e.g. substg-decoded PT_CLSID
// values) don't need to round-trip through a Window.
func FormatGUIDMixed(b []byte) string {
	if len(b) != 16 {
		return ""
	}
	d1 := binary.LittleEndian.Uint32(b[0:4])
	d2 := binary.LittleEndian.Uint16(b[4:6])
	d3 := binary.LittleEndian.Uint16(b[6:8])
	return hexGUID(d1, d2, d3, b[8:16])
}

func hexGUID(d1 uint32, d2, d3 uint16, rest []byte) string {
	const hexd = "0123456789ABCDEF"
	buf := make([]byte, 38)
	buf[0] = '{'
	buf[37] = '}'
	pos := 1
	pos = putHex32(buf, pos, d1)
	buf[pos] = '-'
	pos++
	pos = putHex16(buf, pos, d2)
	buf[pos] = '-'
	pos++
	pos = putHex16(buf, pos, d3)
	buf[pos] = '-'
	pos++
	for i := 0; i < 2; i++ {
		buf[pos] = hexd[rest[i]>>4]
		pos++
		buf[pos] = hexd[rest[i]&0xF]
		pos++
	}
	buf[pos] = '-'
	pos++
	for i := 2; i < 8; i++ {
		buf[pos] = hexd[rest[i]>>4]
		pos++
		buf[pos] = hexd[rest[i]&0xF]
		pos++
	}
	return string(buf)
}

func putHex32(buf []byte, pos int, v uint32) int {
	const hexd = "0123456789ABCDEF"
	for shift := 28; shift >= 0; shift -= 4 {
		buf[pos] = hexd[(v>>uint(shift))&0xF]
		pos++
	}
	return pos
}

func putHex16(buf []byte, pos int, v uint16) int {
	const hexd = "0123456789ABCDEF"
	for shift := 12; shift >= 0; shift -= 4 {
		buf[pos] = hexd[(v>>uint(shift))&0xF]
		pos++
	}
	return pos
}
