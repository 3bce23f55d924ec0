package cfb

import (
	"strings"

	"github.com/outlookcore/msgpst/internal/bytewindow"
)

// DirentType enumerates the MS-CFB directory entry object types.
type DirentType byte

const (
	TypeEmpty DirentType = 0
	TypeStorage DirentType = 1
	TypeStream  DirentType = 2
	TypeLock    DirentType = 3
	TypeProperty DirentType = 4
	TypeRoot    DirentType = 5
)

const noStream SectorID = 0xFFFFFFFF

// Dirent is a parsed 128-byte directory record, plus the
// derived ordered Children list.
type Dirent struct {
	SID      int
	Name     string
	Type     DirentType
	LeftSID  SectorID
	RightSID SectorID
	ChildSID SectorID
	StartSector SectorID
	Size     uint64
	CLSID    string

	Children []int
}

// IsStorageLike reports whether the dirent can hold children (storage or
// root).
func (d *Dirent) IsStorageLike() bool {
	return d.Type == TypeStorage || d.Type == TypeRoot
}

// ParseDirents parses the directory stream (the FAT chain starting at
// h.DirStartSector) into consecutive 128-byte records indexed by SID.
func ParseDirents(w *bytewindow.Window, h *Header, fat SectorTable) []*Dirent {
	raw := ReadStream(w, h, fat, h.DirStartSector)

	var out []*Dirent
	for pos := 0; pos+128 <= len(raw); pos += 128 {
		rec := raw[pos : pos+128]
		rw := bytewindow.New(rec)

		nameSize, _ := rw.ReadU16LE(64)
		if nameSize > 64 {
			nameSize = 64
		}
		var name string
		if nameSize >= 2 {
			// name_size counts the trailing NUL terminator.
			name, _ = rw.ReadUTF16LE(0, int(nameSize)-2)
		}

		etype := rec[66]
		left, _ := rw.ReadU32LE(68)
		right, _ := rw.ReadU32LE(72)
		child, _ := rw.ReadU32LE(76)
		clsid, _ := rw.ReadGUIDMixed(80)
		startSector, _ := rw.ReadU32LE(116)

		var size uint64
		if h.MajorVersion == 4 {
			size, _ = rw.ReadU64LE(120)
		} else {
			size32, _ := rw.ReadU32LE(120)
			size = uint64(size32)
		}

		d := &Dirent{
			SID:         len(out),
			Name:        name,
			Type:        DirentType(etype),
			LeftSID:     SectorID(left),
			RightSID:    SectorID(right),
			ChildSID:    SectorID(child),
			StartSector: SectorID(startSector),
			Size:        size,
			CLSID:       clsid,
		}
		out = append(out, d)
	}
	return out
}

// BuildTree populates each storage-like dirent's Children with the in-order
// traversal of the red-black BST rooted at its ChildSID. The
// produced order is the canonical child order used everywhere downstream.
func BuildTree(dirents []*Dirent) {
	for _, d := range dirents {
		if !d.IsStorageLike() {
			continue
		}
		d.Children = nil
		visited := make(map[SectorID]bool)
		inorder(dirents, d.ChildSID, visited, &d.Children)
	}
}

func inorder(dirents []*Dirent, sid SectorID, visited map[SectorID]bool, out *[]int) {
	if sid == noStream || sid == SectorFree {
		return
	}
	if int(sid) < 0 || int(sid) >= len(dirents) {
		return
	}
	if visited[sid] {
		return
	}
	visited[sid] = true
	node := dirents[sid]
	inorder(dirents, node.LeftSID, visited, out)
	*out = append(*out, int(sid))
	inorder(dirents, node.RightSID, visited, out)
}

// FindChild matches a child by case-insensitive equality of its decoded
// UTF-16LE name.
func FindChild(dirents []*Dirent, parent *Dirent, name string) *Dirent {
	for _, cidx := range parent.Children {
		c := dirents[cidx]
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// ChildrenWithPrefix returns, in canonical child order, every child dirent
// whose name case-insensitively starts with prefix.
func ChildrenWithPrefix(dirents []*Dirent, parent *Dirent, prefix string) []*Dirent {
	var out []*Dirent
	lowered := strings.ToLower(prefix)
	for _, cidx := range parent.Children {
		c := dirents[cidx]
		if strings.HasPrefix(strings.ToLower(c.Name), lowered) {
			out = append(out, c)
		}
	}
	return out
}
