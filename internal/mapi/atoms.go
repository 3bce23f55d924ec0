package mapi

import "github.com/outlookcore/msgpst/props"

// AtomFor resolves a property key to its symbolic atom, consulting the
// numeric tag registry for standard properties and the named-property
// registries for pseudo-code-resolved keys.
func AtomFor(key props.Key) (string, bool) {
	if key.IsNamed {
		return lookupNamedString(key.Name, key.GUID)
	}
	if key.GUID == props.PS_MAPI {
		if t, ok := LookupTag(key.Numeric); ok {
			return t.Atom, true
		}
		return "", false
	}
	return lookupNamedCode(key.Numeric, key.GUID)
}

// GetBySymbol scans ps for the first entry whose key resolves to the given
// symbolic atom. This is an O(n)
// fallback used sparingly, e.g. by CLI/body-candidate code that wants a
// human-readable lookup rather than a Key literal.
func GetBySymbol(ps *props.PropertySet, atom string) (props.Value, bool) {
	var (
		found props.Value
		ok    bool
	)
	ps.Entries(func(k props.Key, v props.Value) bool {
		if a, has := AtomFor(k); has && a == atom {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}
