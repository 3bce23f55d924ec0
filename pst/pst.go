package pst

import (
	"os"

	"github.com/outlookcore/msgpst/cerr"
	"github.com/outlookcore/msgpst/internal/diag"
	"github.com/outlookcore/msgpst/warn"
)

// RootDescID is the canonical root descriptor id every PST file's
// descriptor hierarchy is rooted at.
const RootDescID uint64 = 0x21

// Pst is a fully parsed PST session: header, both B-trees flattened, and
// the accumulated warnings.
type Pst struct {
	blob        []byte
	Header      *Header
	Index       map[uint64]IndexRecord
	Descriptors map[uint64]Descriptor
	Children    map[uint64][]uint64
	Warnings    warn.List
}

// Option configures OpenPst. The only option today is WithDebug; more may
// be added without breaking existing call sites.
type Option func(*openConfig)

type openConfig struct {
	trace *diag.Logger
}

// WithDebug attaches a debug logger that traces header, B-tree, and
// descriptor assembly as OpenPst runs. Parsing behavior and returned
// Warnings are identical with or without it.
func WithDebug(l *diag.Logger) Option {
	return func(c *openConfig) { c.trace = l }
}

// Open accepts either a filesystem path or a raw .pst byte sequence in a
// single argument. input is treated as raw container bytes when it begins
// with the PST magic; otherwise it is treated as the bytes of a path, read
// if that path names an existing regular file; otherwise it falls back to
// being treated as raw bytes after all, so a corrupted payload that is
// neither a valid path nor starts with the magic still reaches OpenPst
// instead of an os.Stat error.
func Open(input []byte, opts ...Option) (*Pst, error) {
	data, err := resolveInput(input)
	if err != nil {
		return nil, err
	}
	return OpenPst(data, opts...)
}

func resolveInput(input []byte) ([]byte, error) {
	if hasMagic(input, pstMagic[:]) {
		return input, nil
	}
	path := string(input)
	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, cerr.Io(err)
		}
		return data, nil
	}
	return input, nil
}

func hasMagic(data []byte, magic []byte) bool {
	if len(data) < len(magic) {
		return false
	}
	for i, b := range magic {
		if data[i] != b {
			return false
		}
	}
	return true
}

// OpenPst parses a complete .pst file's bytes into a Pst session. Only
// header identification is a hard failure; B-tree and item-level faults
// degrade into Pst.Warnings.
func OpenPst(data []byte, opts ...Option) (*Pst, error) {
	cfg := &openConfig{trace: diag.Disabled()}
	for _, opt := range opts {
		opt(cfg)
	}

	h, err := ParseHeader(data)
	if err != nil {
		cfg.trace.Printf("ParseHeader failed: %v", err)
		return nil, err
	}
	cfg.trace.Printf("header: version=%v encryption=%v", h.Version, h.EncryptionType)

	p := &Pst{blob: data, Header: h}

	index, indexWarnings := BuildIndex(data, h.Version, h.Index1Offset)
	p.Index = index
	p.Warnings.Extend(indexWarnings)
	cfg.trace.Printf("node b-tree: %d entries", len(index))

	descriptors, children, descWarnings := BuildDescriptors(data, h.Version, h.Index2Offset)
	p.Descriptors = descriptors
	p.Children = children
	p.Warnings.Extend(descWarnings)
	cfg.trace.Printf("descriptor b-tree: %d descriptors", len(descriptors))

	return p, nil
}

// Item materializes the descriptor identified by descID, or nil if no such
// descriptor exists.
func (p *Pst) Item(descID uint64) *Item {
	d, ok := p.Descriptors[descID]
	if !ok {
		return nil
	}
	return materialize(descID, d, p.blob, p.Header.Version, p.Index, p.Header.EncryptionType, &p.Warnings)
}

// Walk performs a depth-first traversal of the descriptor hierarchy
// starting at RootDescID, invoking fn with each materialized item and its
// depth from the root.
func (p *Pst) Walk(fn func(item *Item, depth int)) {
	visited := make(map[uint64]bool)
	var visit func(descID uint64, depth int)
	visit = func(descID uint64, depth int) {
		if visited[descID] {
			return
		}
		visited[descID] = true

		if item := p.Item(descID); item != nil {
			fn(item, depth)
		}
		for _, childID := range p.Children[descID] {
			visit(childID, depth+1)
		}
	}
	visit(RootDescID, 0)
}

// Items materializes every item reachable from RootDescID via Walk and
// returns them together, in depth-first order. It is not lazy: all items
// are materialized before it returns.
func (p *Pst) Items() []*Item {
	var out []*Item
	p.Walk(func(item *Item, _ int) { out = append(out, item) })
	return out
}

// Messages filters Items to those classified as a message.
func (p *Pst) Messages() []*Item {
	var out []*Item
	for _, item := range p.Items() {
		if item.Kind == KindMessage {
			out = append(out, item)
		}
	}
	return out
}

// Folders filters Items to those classified as a folder.
func (p *Pst) Folders() []*Item {
	var out []*Item
	for _, item := range p.Items() {
		if item.Kind == KindFolder {
			out = append(out, item)
		}
	}
	return out
}
