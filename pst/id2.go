package pst

import "github.com/outlookcore/msgpst/internal/bytewindow"

const (
	sigRawPropertyStore      = 0xBC
	sigRawPropertyStoreTable = 0x7C
)

// buildID2Map decodes the id2 -> idx_id association records from a
// decrypted block, auto-detecting the 8- vs 16-byte record width.
func buildID2Map(data []byte) map[uint64]uint64 {
	out := make(map[uint64]uint64)
	if len(data) == 0 {
		return out
	}

	recordSize := 8
	if len(data)%16 == 0 && len(data) >= 16 {
		recordSize = 16
	}

	w := bytewindow.New(data)
	for off := 0; off+recordSize <= len(data); off += recordSize {
		id2, err := w.ReadU32LE(off)
		if err != nil {
			break
		}
		if id2 == 0 {
			continue
		}
		var idxID uint64
		if recordSize == 16 {
			v, err := w.ReadU32LE(off + 8)
			if err != nil {
				break
			}
			idxID = uint64(v)
		} else {
			v, err := w.ReadU32LE(off + 4)
			if err != nil {
				break
			}
			idxID = uint64(v)
		}
		out[uint64(id2)] = idxID
	}
	return out
}
