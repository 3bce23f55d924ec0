package msgprop

import (
	"github.com/outlookcore/msgpst/internal/cfb"
	"github.com/outlookcore/msgpst/props"
	"github.com/outlookcore/msgpst/warn"
)

// Build computes the PropertySet for d by merging its inline
// __properties_version1.0 record with its __substg1.0_* children.
// nameMap resolves pseudo-codes >= 0x8000; pass an empty map when none is
// available. The inline header size is derived heuristically via Prefix;
// callers that know d is an embedded message's storage root must call
// BuildEmbedded instead, which always uses the 32-byte root header.
func Build(c *cfb.Container, d *cfb.Dirent, nameMap map[uint32]props.Key) (*props.PropertySet, warn.List) {
	return build(c, d, nameMap, Prefix(c.Dirents, d))
}

// BuildEmbedded computes the PropertySet for d exactly as Build does, except
// the inline header is always treated as the 32-byte root form. An embedded
// message's storage is unconditionally a root-shaped properties stream even
// when it carries no __nameid_version1.0 child of its own (named-property
// resolution may be absent or inherited), so Prefix's heuristic must not be
// consulted here.
func BuildEmbedded(c *cfb.Container, d *cfb.Dirent, nameMap map[uint32]props.Key) (*props.PropertySet, warn.List) {
	return build(c, d, nameMap, PrefixRoot)
}

func build(c *cfb.Container, d *cfb.Dirent, nameMap map[uint32]props.Key, prefix int) (*props.PropertySet, warn.List) {
	var warnings warn.List
	ps := props.NewPropertySet()

	if propsDirent := cfb.FindChild(c.Dirents, d, propsStreamName); propsDirent != nil {
		data := c.ReadEntryStream(propsDirent)
		decodeInline(data, prefix, nameMap, ps, &warnings)
	}

	decodeSubstgs(c, d, nameMap, ps, &warnings)

	return ps, warnings
}
