// Package msgprop merges a dirent's inline __properties_version1.0 record
// and its __substg1.0_* children into a single props.PropertySet.
package msgprop

import (
	"github.com/outlookcore/msgpst/internal/bytewindow"
	"github.com/outlookcore/msgpst/internal/cfb"
	"github.com/outlookcore/msgpst/internal/mapi"
	"github.com/outlookcore/msgpst/props"
	"github.com/outlookcore/msgpst/warn"
)

const propsStreamName = "__properties_version1.0"

// PrefixRoot and PrefixSub are the two legal __properties_version1.0
// header sizes.
const (
	PrefixRoot = 32
	PrefixSub  = 8
)

// Prefix chooses the inline-properties header size for d: 32 bytes for a
// root-typed dirent or one with a __nameid_version1.0 child, 8 bytes for
// every attachment/recipient sub-storage. Size is never consulted — it is
// ambiguous on the tail of a truncated container.
func Prefix(dirents []*cfb.Dirent, d *cfb.Dirent) int {
	if d.Type == cfb.TypeRoot {
		return PrefixRoot
	}
	if cfb.FindChild(dirents, d, "__nameid_version1.0") != nil {
		return PrefixRoot
	}
	return PrefixSub
}

// resolveKey resolves a numeric code against PS_MAPI when code < 0x8000;
// otherwise it looks the code up in the named-property map, falling back to
// PS_MAPI when unmapped.
func resolveKey(code uint32, nameMap map[uint32]props.Key) props.Key {
	if code < 0x8000 {
		return props.NumericKey(code)
	}
	if k, ok := nameMap[code]; ok {
		return k
	}
	return props.NumericKey(code)
}

// decodeInline parses the 16-byte inline records following the header:
// type:u16_le, code:u16_le, flags:u32_le, value:8 bytes.
// Fixed-size base types decode from the 8-byte value; variable-size types
// are skipped entirely (they are supplied by a substg stream instead).
func decodeInline(data []byte, prefix int, nameMap map[uint32]props.Key, ps *props.PropertySet, warnings *warn.List) {
	if len(data) <= prefix {
		return
	}
	body := data[prefix:]
	w := bytewindow.New(body)
	for off := 0; off+16 <= len(body); off += 16 {
		typ, err := w.ReadU16LE(off)
		if err != nil {
			warnings.Add(warn.CodePropertyParseFailed, warn.Warn, "truncated inline property record", propsStreamName)
			break
		}
		code, err := w.ReadU16LE(off + 2)
		if err != nil {
			warnings.Add(warn.CodePropertyParseFailed, warn.Warn, "truncated inline property record", propsStreamName)
			break
		}

		base := mapi.BaseType(typ)
		if mapi.IsMultiValue(typ) || !mapi.IsFixedSize(base) {
			continue
		}

		v, err := mapi.DecodeFixed(base, w, off+8)
		if err != nil || v == nil {
			continue
		}

		key := resolveKey(uint32(code), nameMap)
		ps.Set(key, props.Value{Type: base, Single: v})
	}
}
