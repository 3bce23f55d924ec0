package pst

import (
	"github.com/outlookcore/msgpst/internal/bytewindow"
	"github.com/outlookcore/msgpst/internal/mapi"
	"github.com/outlookcore/msgpst/props"
	"github.com/outlookcore/msgpst/warn"
)

// blockHeader is the common 4-byte header shared by RawPropertyStore and
// RawPropertyStoreTable blocks.
type blockHeader struct {
	sig              byte
	offsetTableStart int
}

func readBlockHeader(data []byte) (blockHeader, bool) {
	if len(data) < 4 {
		return blockHeader{}, false
	}
	w := bytewindow.New(data)
	start, err := w.ReadU16LE(2)
	if err != nil {
		return blockHeader{}, false
	}
	return blockHeader{sig: data[0], offsetTableStart: int(start)}, true
}

// offsetTable decodes the u16_le cumulative-offset entries that follow the
// property-record region, used to resolve in-block variable-size
// references.
func offsetTable(data []byte, start int) []int {
	var out []int
	w := bytewindow.New(data)
	for off := start; off+2 <= len(data); off += 2 {
		v, err := w.ReadU16LE(off)
		if err != nil {
			break
		}
		out = append(out, int(v))
	}
	return out
}

// resolveReference decodes a property's 4-byte value_or_offset field for a
// variable-size (or >4-byte fixed) base type.
func resolveReference(ref uint32, data []byte, table []int, id2Map map[uint64]uint64, index map[uint64]IndexRecord, blob []byte, encType byte) ([]byte, bool) {
	if ref == 0 {
		return nil, false
	}

	idx := int(ref)
	if idx >= 0 && idx+1 < len(table) {
		lo, hi := table[idx], table[idx+1]
		if lo >= 0 && hi >= lo && hi <= len(data) {
			return data[lo:hi], true
		}
	}

	if idxID, ok := id2Map[uint64(ref)]; ok {
		if rec, ok := index[idxID]; ok {
			raw := readIndexedBlock(blob, rec)
			if raw != nil {
				return DecryptBlock(raw, encType), true
			}
		}
	}

	return nil, false
}

func readIndexedBlock(blob []byte, rec IndexRecord) []byte {
	start := int64(rec.Offset)
	size := int64(rec.Size)
	if start < 0 || size < 0 || start+size > int64(len(blob)) {
		return nil
	}
	return blob[start : start+size]
}

// isSmallFixed reports whether base decodes directly from the 4-byte
// value_or_offset field rather than via a reference.
func isSmallFixed(base uint16) bool {
	switch base {
	case mapi.PtShort, mapi.PtLong, mapi.PtBoolean, mapi.PtError, mapi.PtFloat:
		return true
	default:
		return false
	}
}

// decodeRecords parses the 8-byte property records in data[4:header.offsetTableStart]
// into ps, resolving out-of-line values via table/id2Map/index/blob as
// needed.
func decodeRecords(data []byte, header blockHeader, id2Map map[uint64]uint64, index map[uint64]IndexRecord, blob []byte, encType byte, ps *props.PropertySet, warnings *warn.List) {
	table := offsetTable(data, header.offsetTableStart)
	w := bytewindow.New(data)

	for off := 4; off+8 <= header.offsetTableStart && off+8 <= len(data); off += 8 {
		typ, err := w.ReadU16LE(off)
		if err != nil {
			break
		}
		code, err := w.ReadU16LE(off + 2)
		if err != nil {
			break
		}
		base := mapi.BaseType(typ)
		key := props.NumericKey(uint32(code))

		if isSmallFixed(base) {
			v, err := mapi.DecodeFixed(base, w, off+4)
			if err == nil && v != nil {
				ps.Set(key, props.Value{Type: base, Single: v})
			}
			continue
		}

		ref, err := w.ReadU32LE(off + 4)
		if err != nil {
			continue
		}
		raw, ok := resolveReference(ref, data, table, id2Map, index, blob, encType)
		if !ok {
			continue
		}
		decoded := mapi.DecodeVariable(base, raw, mapi.DecodeString8)
		ps.Set(key, props.Value{Type: base, Single: decoded})
	}
}

// ParseBlock dispatches on the block's signature byte and decodes its
// properties into a PropertySet. For a RawPropertyStoreTable (0x7C) this
// collapses the table to its single represented row, a documented
// limitation of the core.
func ParseBlock(data []byte, id2Map map[uint64]uint64, index map[uint64]IndexRecord, blob []byte, encType byte) (*props.PropertySet, warn.List) {
	rows, warnings := ParseBlockRows(data, id2Map, index, blob, encType)
	if len(rows) == 0 {
		return props.NewPropertySet(), warnings
	}
	return rows[0], warnings
}

// ParseBlockRows returns a list of per-row property maps, reusing the same
// record decoder for each row. Every block, table or not, collapses to
// exactly one row; this is a documented limitation of table handling here.
func ParseBlockRows(data []byte, id2Map map[uint64]uint64, index map[uint64]IndexRecord, blob []byte, encType byte) ([]*props.PropertySet, warn.List) {
	var warnings warn.List
	header, ok := readBlockHeader(data)
	if !ok {
		warnings.Add(warn.CodePropertyParseFailed, warn.Warn, "block shorter than 4-byte header", "")
		return nil, warnings
	}
	if header.sig != sigRawPropertyStore && header.sig != sigRawPropertyStoreTable {
		warnings.Add(warn.CodePropertyParseFailed, warn.Warn, "unrecognized block signature", "")
		return nil, warnings
	}

	ps := props.NewPropertySet()
	decodeRecords(data, header, id2Map, index, blob, encType, ps, &warnings)
	return []*props.PropertySet{ps}, warnings
}
