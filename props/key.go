// Package props defines the PropertySet data model shared by the MSG and
// PST readers.
package props

// Well-known property-set GUIDs from MS-OXPROPS, formatted canonically.
const (
	PS_MAPI             = "{00020328-0000-0000-C000-000000000046}"
	PS_PUBLIC_STRINGS   = "{00020329-0000-0000-C000-000000000046}"
	PS_INTERNET_HEADERS = "{00020386-0000-0000-C000-000000000046}"
	PSETID_Common       = "{00062008-0000-0000-C000-000000000046}"
	PSETID_Address      = "{00062004-0000-0000-C000-000000000046}"
	PSETID_Appointment  = "{00062002-0000-0000-C000-000000000046}"
	PSETID_Task         = "{00062003-0000-0000-C000-000000000046}"
	PSETID_Log          = "{0006200A-0000-0000-C000-000000000046}"
)

// Key is a tagged (code, guid) pair. Code is either a
// numeric property code or, for named properties resolved from the string
// table, a decoded name — never both.
type Key struct {
	Numeric uint32
	Name    string
	IsNamed bool
	GUID    string
}

// NumericKey builds a Key for a standard (code < 0x8000, or unmapped >=
// 0x8000) numeric property against PS_MAPI.
func NumericKey(code uint32) Key {
	return Key{Numeric: code, GUID: PS_MAPI}
}

// NumericKeyIn builds a Key for a numeric property against an explicit
// GUID (used for named properties that happen to resolve to a numeric
// pseudo-id rather than a string).
func NumericKeyIn(code uint32, guid string) Key {
	return Key{Numeric: code, GUID: guid}
}

// NamedKey builds a Key for a string-named property.
func NamedKey(name, guid string) Key {
	return Key{Name: name, IsNamed: true, GUID: guid}
}

// Equal compares two keys by tag then contents: a named key against its
// (name, guid), a numeric key against its (code, guid).
func (k Key) Equal(o Key) bool {
	if k.IsNamed != o.IsNamed {
		return false
	}
	if k.GUID != o.GUID {
		return false
	}
	if k.IsNamed {
		return k.Name == o.Name
	}
	return k.Numeric == o.Numeric
}
