package pst

import (
	"github.com/outlookcore/msgpst/internal/bytewindow"
	"github.com/outlookcore/msgpst/warn"
)

const (
	pageSize      = 512
	trailerOffset = 496
)

// IndexRecord is a leaf entry of the index B-tree: the (offset, size) of a
// data block, keyed by id.
type IndexRecord struct {
	ID     uint64
	Offset uint64
	Size   uint16
}

// Descriptor is a leaf entry of the descriptor B-tree.
type Descriptor struct {
	DescID uint64
	IdxID  uint64
	Idx2ID uint64
	Parent uint64
}

// pageTrailer is the common 4-byte footer of every 512-byte B-tree page.
type pageTrailer struct {
	itemCount int
	entrySize int
	level     byte
}

func readTrailer(data []byte) (pageTrailer, bool) {
	if len(data) < pageSize {
		return pageTrailer{}, false
	}
	return pageTrailer{
		itemCount: int(data[trailerOffset]),
		entrySize: int(data[trailerOffset+2]),
		level:     data[trailerOffset+3],
	}, true
}

// readPage reads exactly 512 bytes at offset, or nil if offset is out of
// range.
func readPage(blob []byte, offset uint64) []byte {
	start := int64(offset)
	if start < 0 || start+pageSize > int64(len(blob)) {
		return nil
	}
	return blob[start : start+pageSize]
}

// branchChildOffsets decodes as many complete entrySize-byte branch
// entries as fit in the non-trailer region of page, clamped to itemCount.
func branchChildOffsets(page []byte, t pageTrailer, v Version) []uint64 {
	childOffsetField := 4 // ansi97: id(4) then child_offset(4)
	if v == VersionUnicode2003 {
		childOffsetField = 8 // unicode2003: id(8) then child_offset(8)
	}
	w := bytewindow.New(page)

	maxFit := trailerOffset / t.entrySize
	n := t.itemCount
	if n > maxFit {
		n = maxFit
	}

	out := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		base := i * t.entrySize
		var off uint64
		var err error
		if v == VersionUnicode2003 {
			off, err = w.ReadU64LE(base + childOffsetField)
		} else {
			var v32 uint32
			v32, err = w.ReadU32LE(base + childOffsetField)
			off = uint64(v32)
		}
		if err != nil {
			break
		}
		out = append(out, off)
	}
	return out
}

// walkBTree performs the generic cycle-guarded descent shared by the index
// and descriptor B-trees, invoking leafFn on every leaf page
// reached. rootOffset is the starting page offset.
func walkBTree(blob []byte, v Version, rootOffset uint64, warnCode string, warnings *warn.List, leafFn func(page []byte, t pageTrailer)) {
	visited := make(map[uint64]bool)
	var visit func(offset uint64)
	visit = func(offset uint64) {
		if visited[offset] {
			warnings.Add(warn.CodePstBranchLoopDetected, warn.Warn, "branch page re-entry detected", "")
			return
		}
		visited[offset] = true

		page := readPage(blob, offset)
		if page == nil {
			warnings.Add(warnCode, warn.Warn, "b-tree page offset out of range", "")
			return
		}
		t, ok := readTrailer(page)
		if !ok {
			warnings.Add(warnCode, warn.Warn, "truncated b-tree page", "")
			return
		}
		if t.entrySize == 0 {
			warnings.Add(warnCode, warn.Warn, "zero entry_size in b-tree page trailer", "")
			return
		}

		if t.level == 0 {
			leafFn(page, t)
			return
		}

		for _, childOffset := range branchChildOffsets(page, t, v) {
			visit(childOffset)
		}
	}
	visit(rootOffset)
}

// readIndexLeaves decodes the leaf records of an index B-tree page per the
// version-dependent layout.
func readIndexLeaves(page []byte, t pageTrailer, v Version, out *[]IndexRecord) {
	w := bytewindow.New(page)
	maxFit := trailerOffset / t.entrySize
	n := t.itemCount
	if n > maxFit {
		n = maxFit
	}
	for i := 0; i < n; i++ {
		base := i * t.entrySize
		if v == VersionUnicode2003 {
			id, err1 := w.ReadU64LE(base)
			off, err2 := w.ReadU64LE(base + 8)
			size, err3 := w.ReadU16LE(base + 16)
			if err1 != nil || err2 != nil || err3 != nil {
				break
			}
			*out = append(*out, IndexRecord{ID: id, Offset: off, Size: size})
		} else {
			id, err1 := w.ReadU32LE(base)
			off, err2 := w.ReadU32LE(base + 4)
			size, err3 := w.ReadU16LE(base + 8)
			if err1 != nil || err2 != nil || err3 != nil {
				break
			}
			*out = append(*out, IndexRecord{ID: uint64(id), Offset: uint64(off), Size: size})
		}
	}
}

// readDescriptorLeaves decodes the leaf records of a descriptor B-tree page
// per the version-dependent layout.
func readDescriptorLeaves(page []byte, t pageTrailer, v Version, out *[]Descriptor) {
	w := bytewindow.New(page)
	maxFit := trailerOffset / t.entrySize
	n := t.itemCount
	if n > maxFit {
		n = maxFit
	}
	for i := 0; i < n; i++ {
		base := i * t.entrySize
		if v == VersionUnicode2003 {
			descID, err1 := w.ReadU64LE(base)
			idxID, err2 := w.ReadU64LE(base + 8)
			idx2ID, err3 := w.ReadU64LE(base + 16)
			parent, err4 := w.ReadU32LE(base + 24)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				break
			}
			*out = append(*out, Descriptor{DescID: descID, IdxID: idxID, Idx2ID: idx2ID, Parent: uint64(parent)})
		} else {
			descID, err1 := w.ReadU32LE(base)
			idxID, err2 := w.ReadU32LE(base + 4)
			idx2ID, err3 := w.ReadU32LE(base + 8)
			parent, err4 := w.ReadU32LE(base + 12)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				break
			}
			*out = append(*out, Descriptor{DescID: uint64(descID), IdxID: uint64(idxID), Idx2ID: uint64(idx2ID), Parent: uint64(parent)})
		}
	}
}

// BuildIndex walks the index B-tree rooted at rootOffset and returns the
// flattened id -> IndexRecord map.
func BuildIndex(blob []byte, v Version, rootOffset uint64) (map[uint64]IndexRecord, warn.List) {
	var warnings warn.List
	var leaves []IndexRecord
	walkBTree(blob, v, rootOffset, warn.CodePstIndexParseFailed, &warnings, func(page []byte, t pageTrailer) {
		readIndexLeaves(page, t, v, &leaves)
	})
	out := make(map[uint64]IndexRecord, len(leaves))
	for _, r := range leaves {
		out[r.ID] = r
	}
	return out, warnings
}

// BuildDescriptors walks the descriptor B-tree rooted at rootOffset and
// returns the flattened desc_id -> Descriptor map plus the parent->children
// adjacency used by traversal.
func BuildDescriptors(blob []byte, v Version, rootOffset uint64) (map[uint64]Descriptor, map[uint64][]uint64, warn.List) {
	var warnings warn.List
	var leaves []Descriptor
	walkBTree(blob, v, rootOffset, warn.CodePstDescriptorParseFailed, &warnings, func(page []byte, t pageTrailer) {
		readDescriptorLeaves(page, t, v, &leaves)
	})

	byID := make(map[uint64]Descriptor, len(leaves))
	children := make(map[uint64][]uint64)
	for _, d := range leaves {
		byID[d.DescID] = d
		if d.Parent != 0 {
			children[d.Parent] = append(children[d.Parent], d.DescID)
		}
	}
	return byID, children, warnings
}
