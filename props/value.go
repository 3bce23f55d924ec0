package props

// MVFlag is the multi-value bit of a MAPI property type tag.
const MVFlag uint16 = 0x1000

// IsMultiValue reports whether a full type tag (base | MVFlag) carries the
// multi-value flag.
func IsMultiValue(typ uint16) bool { return typ&MVFlag != 0 }

// BaseType strips the multi-value flag, yielding the element type.
func BaseType(typ uint16) uint16 { return typ &^ MVFlag }

// Value is a single decoded MAPI property value: either a scalar (Multi is
// nil) or, when Type carries MVFlag, an ordered list of per-index scalars.
type Value struct {
	Type   uint16
	Single interface{}
	Multi  []interface{}
}

// IsMulti reports whether this Value holds a multi-value list.
func (v Value) IsMulti() bool { return IsMultiValue(v.Type) }
