package pst

import (
	"strings"

	"github.com/outlookcore/msgpst/props"
	"github.com/outlookcore/msgpst/warn"
)

// Kind classifies a materialized Item by its message class, or by the
// presence of folder-only properties when no message class is set.
type Kind int

const (
	KindMessage Kind = iota
	KindAppointment
	KindContact
	KindTask
	KindNote
	KindJournal
	KindFolder
)

// Item is one materialized PST descriptor: its properties plus its
// classification.
type Item struct {
	DescID     uint64
	Kind       Kind
	Properties *props.PropertySet
}

const (
	atomMessageClass = "pr_message_class"
	codePrContentCount = 0x3602
	codePrSubfolders   = 0x360A
)

// classify derives a Kind from pr_message_class, falling back to
// folder-property presence when no message class is set.
func classify(ps *props.PropertySet) Kind {
	if v, ok := ps.GetByCode(0x001A); ok {
		if class, ok := v.Single.(string); ok && class != "" {
			lower := strings.ToLower(class)
			switch {
			case strings.HasPrefix(lower, "ipm.note"), strings.HasPrefix(lower, "ipm.post"):
				return KindMessage
			case strings.HasPrefix(lower, "ipm.appointment"):
				return KindAppointment
			case strings.HasPrefix(lower, "ipm.contact"):
				return KindContact
			case strings.HasPrefix(lower, "ipm.task"):
				return KindTask
			case strings.HasPrefix(lower, "ipm.stickynote"):
				return KindNote
			case strings.HasPrefix(lower, "ipm.activity"):
				return KindJournal
			default:
				return KindMessage
			}
		}
	}
	if _, ok := ps.GetByCode(codePrContentCount); ok {
		return KindFolder
	}
	if _, ok := ps.GetByCode(codePrSubfolders); ok {
		return KindFolder
	}
	return KindMessage
}

// materialize reads a descriptor's main block via idx_id, decrypts it,
// parses it as a property block, resolves its ID2 map from idx2_id, and
// classifies the result.
func materialize(descID uint64, d Descriptor, blob []byte, v Version, index map[uint64]IndexRecord, encType byte, warnings *warn.List) *Item {
	mainRec, ok := index[d.IdxID]
	if !ok {
		warnings.Add(warn.CodePstIndexParseFailed, warn.Warn, "descriptor idx_id not found in index", "")
		return &Item{DescID: descID, Kind: KindMessage, Properties: props.NewPropertySet()}
	}
	raw := readIndexedBlock(blob, mainRec)
	if raw == nil {
		warnings.Add(warn.CodePstIndexParseFailed, warn.Warn, "descriptor main block offset out of range", "")
		return &Item{DescID: descID, Kind: KindMessage, Properties: props.NewPropertySet()}
	}
	decrypted := DecryptBlock(raw, encType)

	var id2Map map[uint64]uint64
	if d.Idx2ID != 0 {
		if idx2Rec, ok := index[d.Idx2ID]; ok {
			if idx2Raw := readIndexedBlock(blob, idx2Rec); idx2Raw != nil {
				id2Map = buildID2Map(DecryptBlock(idx2Raw, encType))
			}
		}
	}
	if id2Map == nil {
		id2Map = map[uint64]uint64{}
	}

	ps, blockWarnings := ParseBlock(decrypted, id2Map, index, blob, encType)
	warnings.Extend(blockWarnings)

	return &Item{DescID: descID, Kind: classify(ps), Properties: ps}
}
