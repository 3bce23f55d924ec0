// Package msg assembles a complete Outlook .msg file into a Msg: its
// property set, recipients, and attachments, recursing into embedded
// messages.
package msg

import (
	"os"
	"sort"
	"strings"

	"github.com/outlookcore/msgpst/cerr"
	"github.com/outlookcore/msgpst/internal/cfb"
	"github.com/outlookcore/msgpst/internal/diag"
	"github.com/outlookcore/msgpst/internal/msgprop"
	"github.com/outlookcore/msgpst/internal/nameid"
	"github.com/outlookcore/msgpst/props"
	"github.com/outlookcore/msgpst/warn"
)

// cfbMagic is the first 4 bytes of every MS-CFB container, used by Open to
// tell a raw .msg blob apart from a filesystem path.
var cfbMagic = [4]byte{0xD0, 0xCF, 0x11, 0xE0}

const (
	nameidStorageName    = "__nameid_version1.0"
	attachStreamPrefix   = "__attach_version1.0_"
	recipStreamPrefix    = "__recip_version1.0_"
	embeddedMsgStream    = "__substg1.0_3701000D"
	attachMethodEmbedded = 5
)

// Msg is a fully assembled message container, produced either by OpenMsg
// or, for an embedded message, recursively during attachment assembly.
type Msg struct {
	Properties  *props.PropertySet
	Recipients  []*Recipient
	Attachments []*Attachment
	Warnings    warn.List
}

// Attachment is one __attach_version1.0_* sub-storage. Embedded is non-nil
// exactly when this attachment's pr_attach_method is 5 and an embedded
// message stream was found and parsed.
type Attachment struct {
	Properties *props.PropertySet
	Embedded   *Msg
}

// Recipient is one __recip_version1.0_* sub-storage.
type Recipient struct {
	Properties *props.PropertySet
}

// Option configures OpenMsg. The only option today is WithDebug; more may
// be added without breaking existing call sites.
type Option func(*openConfig)

type openConfig struct {
	trace *diag.Logger
}

// WithDebug attaches a debug logger that traces container and property
// assembly as OpenMsg walks the storage tree. Parsing behavior and
// returned Warnings are identical with or without it.
func WithDebug(l *diag.Logger) Option {
	return func(c *openConfig) { c.trace = l }
}

// Open accepts either a filesystem path or a raw .msg byte sequence in a
// single argument, as msgpst's callers rarely know in advance which one
// they have. input is treated as raw container bytes when it begins with
// the CFB magic; otherwise it is treated as the bytes of a path, read if
// that path names an existing regular file; otherwise it falls back to
// being treated as raw bytes after all, so a corrupted payload that is
// neither a valid path nor starts with the magic still reaches OpenMsg
// instead of an os.Stat error.
func Open(input []byte, opts ...Option) (*Msg, error) {
	data, err := resolveInput(input)
	if err != nil {
		return nil, err
	}
	return OpenMsg(data, opts...)
}

func resolveInput(input []byte) ([]byte, error) {
	if hasMagic(input, cfbMagic[:]) {
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

// OpenMsg parses a complete .msg file's bytes into a Msg. It never returns an error for malformed content past container
// identification — faults degrade into Msg.Warnings.
func OpenMsg(data []byte, opts ...Option) (*Msg, error) {
	cfg := &openConfig{trace: diag.Disabled()}
	for _, opt := range opts {
		opt(cfg)
	}

	c, err := cfb.Open(data)
	if err != nil {
		cfg.trace.Printf("cfb.Open failed: %v", err)
		return nil, err
	}
	cfg.trace.Printf("opened container, %d dirents", len(c.Dirents))
	root := c.Root()
	if root == nil {
		cfg.trace.Printf("no root storage found")
		return &Msg{Properties: props.NewPropertySet()}, nil
	}
	return assemble(c, root, cfg.trace, false), nil
}

// assemble builds the PropertySet for d plus its attachments and
// recipients, recursing for embedded messages. embedded must be true when d
// is an embedded message's own storage root (reached via an attachment's
// __substg1.0_3701000D stream), so the inline properties header is always
// read as the 32-byte root form rather than re-derived heuristically.
func assemble(c *cfb.Container, d *cfb.Dirent, trace *diag.Logger, embedded bool) *Msg {
	m := &Msg{}

	nameMap := map[uint32]props.Key{}
	if nid := cfb.FindChild(c.Dirents, d, nameidStorageName); nid != nil {
		var nameWarnings warn.List
		nameMap, nameWarnings = nameid.Build(c, nid)
		m.Warnings.Extend(nameWarnings)
		trace.Printf("named property storage: %d entries resolved", len(nameMap))
	}

	var ps *props.PropertySet
	var propWarnings warn.List
	if embedded {
		ps, propWarnings = msgprop.BuildEmbedded(c, d, nameMap)
	} else {
		ps, propWarnings = msgprop.Build(c, d, nameMap)
	}
	m.Properties = ps
	m.Warnings.Extend(propWarnings)
	trace.Printf("built property set for %q: %d properties", d.Name, ps.Len())

	for _, child := range sortedChildrenWithPrefix(c, d, attachStreamPrefix) {
		att, attWarnings := buildAttachment(c, child, nameMap, trace)
		m.Warnings.Extend(attWarnings)
		m.Warnings.Extend(att.Embedded.warningsOrNil())
		m.Attachments = append(m.Attachments, att)
	}

	for _, child := range sortedChildrenWithPrefix(c, d, recipStreamPrefix) {
		rps, recipWarnings := msgprop.Build(c, child, nameMap)
		m.Warnings.Extend(recipWarnings)
		m.Recipients = append(m.Recipients, &Recipient{Properties: rps})
	}
	trace.Printf("%q: %d attachments, %d recipients", d.Name, len(m.Attachments), len(m.Recipients))

	return m
}

func buildAttachment(c *cfb.Container, d *cfb.Dirent, nameMap map[uint32]props.Key, trace *diag.Logger) (*Attachment, warn.List) {
	ps, warnings := msgprop.Build(c, d, nameMap)
	att := &Attachment{Properties: ps}

	if v, ok := ps.GetByCode(0x3705); ok {
		if method, ok := v.Single.(int32); ok && method == attachMethodEmbedded {
			if embeddedDirent := cfb.FindChild(c.Dirents, d, embeddedMsgStream); embeddedDirent != nil {
				trace.Printf("%q: recursing into embedded message", d.Name)
				att.Embedded = assemble(c, embeddedDirent, trace, true)
			} else {
				warnings.Add(warn.CodeAttachmentSkipped, warn.Warn, "attach_method=5 but no embedded message stream found", d.Name)
			}
		}
	}
	return att, warnings
}

func (m *Msg) warningsOrNil() warn.List {
	if m == nil {
		return nil
	}
	return m.Warnings
}

// sortedChildrenWithPrefix returns children matching prefix in the lexical
// order of their dirent names.
func sortedChildrenWithPrefix(c *cfb.Container, d *cfb.Dirent, prefix string) []*cfb.Dirent {
	matches := cfb.ChildrenWithPrefix(c.Dirents, d, prefix)
	sort.Slice(matches, func(i, j int) bool {
		return strings.ToLower(matches[i].Name) < strings.ToLower(matches[j].Name)
	})
	return matches
}
