package cfb

import "github.com/outlookcore/msgpst/internal/bytewindow"

// MaxChainLength bounds any sector chain walk so adversarial cyclic tables
// cannot loop forever.
const MaxChainLength = 1_000_000

// SectorTable maps a SectorID to its successor, the next-pointer chain
// representation used for both the FAT and the MiniFAT.
type SectorTable map[SectorID]SectorID

// BuildFAT assembles the FAT from the header's embedded DIFAT entries plus
// any DIFAT chain sectors.
func BuildFAT(w *bytewindow.Window, h *Header) SectorTable {
	fat := make(SectorTable)

	fatSectors := append([]SectorID(nil), h.HeaderDifat...)

	if h.DifatCount > 0 {
		entriesPerDifatSector := h.SectorSize/4 - 1
		sid := h.DifatStart
		visited := make(map[SectorID]bool)
		for sid != SectorEndChain && sid != SectorFree && !visited[sid] {
			visited[sid] = true
			if len(visited) > MaxChainLength {
				break
			}
			off := h.SectorOffset(sid)
			sector, err := w.Slice(int(off), h.SectorSize)
			if err != nil {
				break
			}
			sw := bytewindow.New(sector)
			for i := 0; i < entriesPerDifatSector; i++ {
				v, err := sw.ReadU32LE(i * 4)
				if err != nil {
					break
				}
				s := SectorID(v)
				if s == SectorFree || s == SectorEndChain {
					continue
				}
				fatSectors = append(fatSectors, s)
			}
			next, err := sw.ReadU32LE(entriesPerDifatSector * 4)
			if err != nil {
				break
			}
			sid = SectorID(next)
		}
	}

	entriesPerSector := h.SectorSize / 4
	for _, fatSec := range fatSectors {
		off := h.SectorOffset(fatSec)
		sector, err := w.Slice(int(off), h.SectorSize)
		if err != nil {
			continue
		}
		sw := bytewindow.New(sector)
		for i := 0; i < entriesPerSector; i++ {
			v, err := sw.ReadU32LE(i * 4)
			if err != nil {
				break
			}
			fat[SectorID(int(fatSec)*entriesPerSector+i)] = SectorID(v)
		}
	}

	return fat
}

// BuildMiniFAT follows the FAT chain from the header's mini_fat_start and
// parses each collected sector as an array of next-pointers.
func BuildMiniFAT(w *bytewindow.Window, h *Header, fat SectorTable) SectorTable {
	minifat := make(SectorTable)
	if h.MiniFATStart == SectorEndChain {
		return minifat
	}

	entriesPerSector := h.SectorSize / 4
	idx := 0
	for _, sid := range Chain(fat, h.MiniFATStart) {
		off := h.SectorOffset(sid)
		sector, err := w.Slice(int(off), h.SectorSize)
		if err != nil {
			continue
		}
		sw := bytewindow.New(sector)
		for i := 0; i < entriesPerSector; i++ {
			v, err := sw.ReadU32LE(i * 4)
			if err != nil {
				break
			}
			minifat[SectorID(idx)] = SectorID(v)
			idx++
		}
	}
	return minifat
}

// Chain walks tab starting at start, returning the ordered list of visited
// SectorIDs until an ENDCHAIN/FREE/FATSECT/DIFSECT sentinel, a cycle, or
// MaxChainLength is reached — whichever comes first.
func Chain(tab SectorTable, start SectorID) []SectorID {
	var out []SectorID
	visited := make(map[SectorID]bool)
	s := start
	for {
		if s == SectorEndChain || s == SectorFree || s == SectorFATSect || s == SectorDIFSect {
			break
		}
		if visited[s] {
			break
		}
		if len(out) >= MaxChainLength {
			break
		}
		visited[s] = true
		out = append(out, s)
		next, ok := tab[s]
		if !ok {
			break
		}
		s = next
	}
	return out
}

// ReadStream concatenates every sector in Chain(fat, start) — the regular
// (FAT-based) stream read path.
func ReadStream(w *bytewindow.Window, h *Header, fat SectorTable, start SectorID) []byte {
	var out []byte
	for _, sid := range Chain(fat, start) {
		off := h.SectorOffset(sid)
		sector, err := w.Slice(int(off), h.SectorSize)
		if err != nil {
			break
		}
		out = append(out, sector...)
	}
	return out
}

// ReadMiniStream concatenates mini_sector_size chunks along
// Chain(minifat, start) within the already-materialized mini-stream bytes,
// truncated to size.
func ReadMiniStream(miniStream []byte, h *Header, minifat SectorTable, start SectorID, size int) []byte {
	var out []byte
	for _, sid := range Chain(minifat, start) {
		off := int(sid) * h.MiniSectorSize
		if off < 0 || off+h.MiniSectorSize > len(miniStream) {
			break
		}
		out = append(out, miniStream[off:off+h.MiniSectorSize]...)
		if len(out) >= size {
			break
		}
	}
	if len(out) > size {
		out = out[:size]
	}
	return out
}
