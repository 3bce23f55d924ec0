package cfb

import "github.com/outlookcore/msgpst/internal/bytewindow"

// Container is a fully parsed CFB session: header, sector tables, and the
// directory tree, immutable after construction.
type Container struct {
	Window     *bytewindow.Window
	Header     *Header
	FAT        SectorTable
	MiniFAT    SectorTable
	MiniStream []byte
	Dirents    []*Dirent
}

// Open parses a CFB blob end to end: header, FAT, MiniFAT, directory tree.
// Hard failures (bad magic, bad version, too short) are returned as errors;
// everything past header validation is best-effort.
func Open(data []byte) (*Container, error) {
	w := bytewindow.New(data)
	h, err := ParseHeader(w)
	if err != nil {
		return nil, err
	}

	fat := BuildFAT(w, h)
	minifat := BuildMiniFAT(w, h, fat)
	dirents := ParseDirents(w, h, fat)
	BuildTree(dirents)

	c := &Container{
		Window:  w,
		Header:  h,
		FAT:     fat,
		MiniFAT: minifat,
		Dirents: dirents,
	}

	if len(dirents) > 0 {
		root := dirents[0]
		full := ReadStream(w, h, fat, root.StartSector)
		if uint64(len(full)) > root.Size {
			full = full[:root.Size]
		}
		c.MiniStream = full
	}

	return c, nil
}

// Root returns the root storage dirent, or nil if the directory stream was
// empty.
func (c *Container) Root() *Dirent {
	if len(c.Dirents) == 0 {
		return nil
	}
	return c.Dirents[0]
}

// ReadEntryStream reads a dirent's stream: a non-root stream smaller than
// the mini cutoff reads from the mini stream; otherwise (including always
// for root) it reads from the FAT stream.
func (c *Container) ReadEntryStream(d *Dirent) []byte {
	if d.Type != TypeRoot && d.Size < uint64(c.Header.MiniCutoff) {
		return ReadMiniStream(c.MiniStream, c.Header, c.MiniFAT, d.StartSector, int(d.Size))
	}
	data := ReadStream(c.Window, c.Header, c.FAT, d.StartSector)
	if uint64(len(data)) > d.Size {
		data = data[:d.Size]
	}
	return data
}
