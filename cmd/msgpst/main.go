// Command msgpst parses a .msg or .pst file and either dumps its contents
// as JSON or renders it as an RFC 2822 message.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/outlookcore/msgpst/internal/diag"
	"github.com/outlookcore/msgpst/internal/mapi"
	"github.com/outlookcore/msgpst/internal/mimeout"
	"github.com/outlookcore/msgpst/msg"
	"github.com/outlookcore/msgpst/pst"
)

var pstMagic = [4]byte{0x21, 0x42, 0x44, 0x4E}

func main() {
	mimeOut := flag.Bool("mime", false, "render as an RFC 2822 message instead of dumping JSON")
	pstMode := flag.Bool("pst", false, "treat the input as a .pst file regardless of its magic bytes")
	debug := flag.Bool("debug", false, "trace container and property assembly to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: msgpst [-mime] [-pst] [-debug] <file.msg|file.pst>")
		os.Exit(2)
	}

	data, err := readInput(flag.Arg(0))
	if err != nil {
		log.Fatalf("reading %s: %v", flag.Arg(0), err)
	}

	trace := diag.Disabled()
	if *debug {
		trace = diag.New("msgpst: ")
	}

	if *pstMode || looksLikePst(data) {
		if err := runPst(data, trace, *mimeOut); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := runMsg(data, trace, *mimeOut); err != nil {
		log.Fatal(err)
	}
}

var cfbMagic = [4]byte{0xD0, 0xCF, 0x11, 0xE0}

// readInput implements the same path-or-raw-bytes disambiguation msg.Open
// and pst.Open apply internally: an argument beginning with either
// container's magic is raw bytes already; otherwise it names a file to
// read; otherwise it's still treated as raw bytes, so a corrupted payload
// that is neither a valid path nor starts with a known magic doesn't route
// through a file-not-found error.
func readInput(arg string) ([]byte, error) {
	raw := []byte(arg)
	if hasMagic(raw, cfbMagic[:]) || hasMagic(raw, pstMagic[:]) {
		return raw, nil
	}
	if fi, err := os.Stat(arg); err == nil && fi.Mode().IsRegular() {
		return os.ReadFile(arg)
	}
	return raw, nil
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

func looksLikePst(data []byte) bool {
	return len(data) >= 4 && data[0] == pstMagic[0] && data[1] == pstMagic[1] && data[2] == pstMagic[2] && data[3] == pstMagic[3]
}

func runMsg(data []byte, trace *diag.Logger, mimeMode bool) error {
	m, err := msg.OpenMsg(data, msg.WithDebug(trace))
	if err != nil {
		return fmt.Errorf("opening message: %w", err)
	}
	if mimeMode {
		return renderMIME(m)
	}
	return printJSON(dumpMsg(m))
}

func runPst(data []byte, trace *diag.Logger, mimeMode bool) error {
	p, err := pst.OpenPst(data, pst.WithDebug(trace))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	var dumps []msgDump
	var renderErr error
	p.Walk(func(item *pst.Item, depth int) {
		if item.Kind != pst.KindMessage {
			return
		}
		m := &msg.Msg{Properties: item.Properties}
		if mimeMode {
			if renderErr != nil {
				return
			}
			renderErr = renderMIME(m)
			if renderErr == nil {
				fmt.Println()
			}
			return
		}
		dumps = append(dumps, dumpMsg(m))
	})
	if mimeMode {
		return renderErr
	}
	return printJSON(dumps)
}

func renderMIME(m *msg.Msg) error {
	out, warnings, err := mimeout.Build(m)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "mimeout: %s: %s\n", w.Code, w.Message)
	}
	_, err = os.Stdout.Write(out)
	return err
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type msgDump struct {
	Subject     string       `json:"subject"`
	From        string       `json:"from,omitempty"`
	Body        string       `json:"body,omitempty"`
	Recipients  []recipDump  `json:"recipients,omitempty"`
	Attachments []attachDump `json:"attachments,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
}

type recipDump struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

type attachDump struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int    `json:"size"`
}

func dumpMsg(m *msg.Msg) msgDump {
	d := msgDump{
		Subject: firstStr(m, "pr_subject"),
		From:    firstStr(m, "pr_sender_name"),
		Body:    m.PlausibleBody(),
	}
	for _, r := range m.Recipients {
		d.Recipients = append(d.Recipients, recipDump{
			Name:  r.Name(),
			Email: r.Email(),
			Type:  recipientTypeName(r.Type()),
		})
	}
	for _, a := range m.Attachments {
		d.Attachments = append(d.Attachments, attachDump{
			Filename: a.Filename(),
			MimeType: a.MimeType(),
			Size:     len(a.Data()),
		})
	}
	for _, w := range m.Warnings {
		d.Warnings = append(d.Warnings, fmt.Sprintf("%s: %s (%s)", w.Code, w.Message, w.Severity))
	}
	return d
}

func recipientTypeName(t msg.RecipientType) string {
	switch t {
	case msg.RecipientOrig:
		return "orig"
	case msg.RecipientCc:
		return "cc"
	case msg.RecipientBcc:
		return "bcc"
	default:
		return "to"
	}
}

func firstStr(m *msg.Msg, atom string) string {
	v, ok := mapi.GetBySymbol(m.Properties, atom)
	if !ok {
		return ""
	}
	s, _ := v.Single.(string)
	return s
}
