// Package nameid resolves the named-property pseudo-codes (>= 0x8000) that
// appear in a MSG file's __nameid_version1.0 storage to their real
// (code-or-string, GUID) identity.
package nameid

import (
	"github.com/outlookcore/msgpst/internal/bytewindow"
	"github.com/outlookcore/msgpst/internal/cfb"
	"github.com/outlookcore/msgpst/props"
	"github.com/outlookcore/msgpst/warn"
)

const (
	streamGUIDs   = "__substg1.0_00020102"
	streamEntries = "__substg1.0_00030102"
	streamStrings = "__substg1.0_00040102"

	basePseudoCode = 0x8000
)

// Build parses the three nameid streams under storageDirent and returns the
// pseudo_code -> props.Key map. Best-effort, never an error: an entry that
// cannot be resolved is left out of the map and adds a nameid_parse_failed
// warning, while the other entries are still resolved.
func Build(c *cfb.Container, storageDirent *cfb.Dirent) (map[uint32]props.Key, warn.List) {
	var warnings warn.List
	result := make(map[uint32]props.Key)

	guidStream := cfb.FindChild(c.Dirents, storageDirent, streamGUIDs)
	entryStream := cfb.FindChild(c.Dirents, storageDirent, streamEntries)
	stringStream := cfb.FindChild(c.Dirents, storageDirent, streamStrings)
	if entryStream == nil {
		// No entries: an empty map is a legitimate, unremarkable result
		// (most attachments/recipients carry no named properties at all).
		return result, warnings
	}

	guidTable := parseGUIDTable(c, guidStream)
	stringTable := c.ReadEntryStream(stringStream)

	entryData := c.ReadEntryStream(entryStream)
	count := len(entryData) / 8
	for i := 0; i < count; i++ {
		rec := entryData[i*8 : i*8+8]
		rw := bytewindow.New(rec)
		nameOrID, err := rw.ReadU32LE(0)
		if err != nil {
			warnings.Add(warn.CodeNameidParseFailed, warn.Warn, "truncated nameid entry record", "__substg1.0_00030102")
			break
		}
		flags, err := rw.ReadU32LE(4)
		if err != nil {
			warnings.Add(warn.CodeNameidParseFailed, warn.Warn, "truncated nameid entry record", "__substg1.0_00030102")
			break
		}

		guidIndex := (flags >> 1) & 0x7FFF
		isString := flags&1 != 0
		pseudoCode := uint32(basePseudoCode + i)
		guid := resolveGUID(guidIndex, guidTable)

		if isString {
			name, ok := readNameAtOffset(stringTable, nameOrID)
			if !ok {
				warnings.Add(warn.CodeNameidParseFailed, warn.Warn, "unresolvable named-property string offset", "__substg1.0_00040102")
				continue
			}
			result[pseudoCode] = props.NamedKey(name, guid)
		} else {
			result[pseudoCode] = props.NumericKeyIn(nameOrID, guid)
		}
	}

	return result, warnings
}

// parseGUIDTable decodes the 16-byte mixed-endian GUID entries. The table
// is addressed starting at logical index 2; indices 0 and 1 are the
// predefined PS_MAPI/PS_PUBLIC_STRINGS GUIDs and are never stored.
func parseGUIDTable(c *cfb.Container, d *cfb.Dirent) []string {
	if d == nil {
		return nil
	}
	data := c.ReadEntryStream(d)
	n := len(data) / 16
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = bytewindow.FormatGUIDMixed(data[i*16 : i*16+16])
	}
	return out
}

func resolveGUID(index uint32, table []string) string {
	switch index {
	case 0:
		return props.PS_MAPI
	case 1:
		return props.PS_PUBLIC_STRINGS
	default:
		i := int(index) - 2
		if i >= 0 && i < len(table) {
			return table[i]
		}
		return props.PS_MAPI
	}
}

// readNameAtOffset reads a u32 length followed by that many bytes of
// UTF-16LE name data at offset into the string table stream.
func readNameAtOffset(stringTable []byte, offset uint32) (string, bool) {
	w := bytewindow.New(stringTable)
	length, err := w.ReadU32LE(int(offset))
	if err != nil {
		return "", false
	}
	name, err := w.ReadUTF16LE(int(offset)+4, int(length))
	if err != nil {
		return "", false
	}
	return name, true
}
