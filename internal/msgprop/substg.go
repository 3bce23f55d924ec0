package msgprop

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/outlookcore/msgpst/internal/cfb"
	"github.com/outlookcore/msgpst/internal/mapi"
	"github.com/outlookcore/msgpst/props"
	"github.com/outlookcore/msgpst/warn"
)

// substgName matches "__substg1.0_" + 4 hex code + 4 hex type, with an
// optional "-" + 8 hex multi-value index.
var substgName = regexp.MustCompile(`^__substg1\.0_([0-9A-Fa-f]{4})([0-9A-Fa-f]{4})(?:-([0-9A-Fa-f]{8}))?$`)

type substgMatch struct {
	dirent    *cfb.Dirent
	code      uint32
	typ       uint16
	hasIndex  bool
	index     uint32
}

func parseSubstgName(name string) (substgMatch, bool) {
	m := substgName.FindStringSubmatch(name)
	if m == nil {
		return substgMatch{}, false
	}
	code, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil {
		return substgMatch{}, false
	}
	typ, err := strconv.ParseUint(m[2], 16, 16)
	if err != nil {
		return substgMatch{}, false
	}
	res := substgMatch{code: uint32(code), typ: uint16(typ)}
	if m[3] != "" {
		idx, err := strconv.ParseUint(m[3], 16, 32)
		if err != nil {
			return substgMatch{}, false
		}
		res.hasIndex = true
		res.index = uint32(idx)
	}
	return res, true
}

// mvGroupKey groups substg entries that form one multi-value property,
// keyed by (code, base_type).
type mvGroupKey struct {
	code uint32
	base uint16
}

type mvEntry struct {
	index uint32
	value interface{}
}

// decodeSubstgs walks children matching substgName, decodes each against
// its base type, and merges into ps, overriding any inline value for the
// same key.
func decodeSubstgs(c *cfb.Container, d *cfb.Dirent, nameMap map[uint32]props.Key, ps *props.PropertySet, warnings *warn.List) {
	mvGroups := make(map[mvGroupKey][]mvEntry)
	var mvOrder []mvGroupKey
	seenGroup := make(map[mvGroupKey]bool)

	for _, cidx := range d.Children {
		child := c.Dirents[cidx]
		match, ok := parseSubstgName(child.Name)
		if !ok {
			continue
		}

		base := mapi.BaseType(match.typ)
		isMulti := mapi.IsMultiValue(match.typ)

		if isMulti && !match.hasIndex {
			warnings.Add(warn.CodePropertyParseFailed, warn.Warn, "multi-value substg stream missing index suffix", child.Name)
			continue
		}

		data := c.ReadEntryStream(child)
		decoded := decodeVariable(base, data)

		key := resolveKey(match.code, nameMap)

		if !isMulti {
			ps.Set(key, props.Value{Type: base, Single: decoded})
			continue
		}

		gk := mvGroupKey{code: match.code, base: base}
		if !seenGroup[gk] {
			seenGroup[gk] = true
			mvOrder = append(mvOrder, gk)
		}
		entries := mvGroups[gk]
		replaced := false
		for i := range entries {
			if entries[i].index == match.index {
				entries[i].value = decoded
				replaced = true
				break
			}
		}
		if !replaced {
			entries = append(entries, mvEntry{index: match.index, value: decoded})
		}
		mvGroups[gk] = entries
	}

	for _, gk := range mvOrder {
		entries := mvGroups[gk]
		sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })
		values := make([]interface{}, len(entries))
		for i, e := range entries {
			values[i] = e.value
		}
		key := resolveKey(gk.code, nameMap)
		ps.Set(key, props.Value{Type: gk.base | props.MVFlag, Multi: values})
	}
}

// decodeVariable is mapi.DecodeVariable with the charset-sniffing PT_STRING8
// decoder wired in.
func decodeVariable(base uint16, data []byte) interface{} {
	return mapi.DecodeVariable(base, data, mapi.DecodeString8)
}
