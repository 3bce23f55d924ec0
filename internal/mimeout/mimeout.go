// Package mimeout renders a parsed message as an RFC 2822/MIME byte
// stream: either by re-emitting PR_TRANSPORT_MESSAGE_HEADERS verbatim with
// a reassembled body, or, when no transport headers survived, by building
// a complete header block from the message's MAPI properties.
package mimeout

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/outlookcore/msgpst/internal/mapi"
	"github.com/outlookcore/msgpst/internal/rtfhtml"
	"github.com/outlookcore/msgpst/msg"
	"github.com/outlookcore/msgpst/props"
	"github.com/outlookcore/msgpst/rtf"
	"github.com/outlookcore/msgpst/warn"
)

// Build renders m as a complete RFC 2822 message, including any
// attachments as MIME parts. Malformed or incomplete transport headers
// degrade into the returned warnings rather than failing the render.
func Build(m *msg.Msg) ([]byte, warn.List, error) {
	var warnings warn.List
	if headers := propString(m.Properties, "pr_transport_message_headers"); headers != "" {
		out, err := buildFromTransportHeaders(m, headers, &warnings)
		return out, warnings, err
	}
	out, err := buildFromScratch(m, &warnings)
	return out, warnings, err
}

func buildFromTransportHeaders(m *msg.Msg, headers string, warnings *warn.List) ([]byte, error) {
	headers = strings.TrimRight(headers, "\r\n")
	boundary := extractBoundary(headers, warnings)

	bodyText := m.Body()
	bodyHTML := bodyHTMLOrRendered(m)

	var buf bytes.Buffer
	buf.WriteString(headers)
	buf.WriteString("\r\n\r\n")

	if boundary == "" {
		if bodyHTML != "" {
			buf.WriteString(bodyHTML)
		} else {
			buf.WriteString(bodyText)
		}
		writeAttachmentsAsText(&buf, m)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	if err := mw.SetBoundary(boundary); err != nil {
		// the declared boundary is unusable (e.g. contains characters
		// multipart.Writer rejects); fall back to a writer-chosen one.
		mw = multipart.NewWriter(&buf)
	}
	if bodyText != "" {
		writePart(mw, "text/plain; charset=utf-8", bodyText, warnings)
	}
	if bodyHTML != "" {
		writePart(mw, "text/html; charset=utf-8", bodyHTML, warnings)
	}
	writeAttachmentParts(mw, m, warnings)
	mw.Close()
	return buf.Bytes(), nil
}

func buildFromScratch(m *msg.Msg, warnings *warn.List) ([]byte, error) {
	var buf bytes.Buffer
	writeHeader(&buf, "Message-ID", messageID(m))
	writeHeader(&buf, "Date", dateHeader(m))
	writeHeader(&buf, "Subject", encodeHeader(propString(m.Properties, "pr_subject")))
	writeHeader(&buf, "From", fromAddress(m))
	writeHeader(&buf, "To", recipientAddressList(m, msg.RecipientTo))
	writeHeader(&buf, "Cc", recipientAddressList(m, msg.RecipientCc))
	writeHeader(&buf, "In-Reply-To", propString(m.Properties, "pr_in_reply_to_id"))
	writeHeader(&buf, "References", propString(m.Properties, "pr_internet_references"))
	writeHeader(&buf, "MIME-Version", "1.0")

	bodyText := m.Body()
	bodyHTML := bodyHTMLOrRendered(m)
	hasAttachments := hasRenderableAttachments(m)

	switch {
	case hasAttachments || (bodyText != "" && bodyHTML != ""):
		writeMultipartBody(&buf, m, bodyText, bodyHTML, warnings)
	case bodyHTML != "":
		writeHeader(&buf, "Content-Type", "text/html; charset=utf-8")
		buf.WriteString("\r\n")
		buf.WriteString(bodyHTML)
	default:
		writeHeader(&buf, "Content-Type", "text/plain; charset=utf-8")
		buf.WriteString("\r\n")
		buf.WriteString(bodyText)
	}
	return buf.Bytes(), nil
}

func writeMultipartBody(buf *bytes.Buffer, m *msg.Msg, bodyText, bodyHTML string, warnings *warn.List) {
	mw := multipart.NewWriter(buf)
	writeHeader(buf, "Content-Type", fmt.Sprintf("multipart/mixed; boundary=%s", mw.Boundary()))
	buf.WriteString("\r\n")

	switch {
	case bodyText != "" && bodyHTML != "":
		var altBuf bytes.Buffer
		altW := multipart.NewWriter(&altBuf)
		writePart(altW, "text/plain; charset=utf-8", bodyText, warnings)
		writePart(altW, "text/html; charset=utf-8", bodyHTML, warnings)
		altW.Close()
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Type", "multipart/alternative; boundary="+altW.Boundary())
		part, err := mw.CreatePart(hdr)
		if err != nil {
			warnings.Add(warn.CodeNestedPartWarning, warn.Warn, "could not open multipart/alternative part: "+err.Error(), "")
			break
		}
		part.Write(altBuf.Bytes())
	case bodyHTML != "":
		writePart(mw, "text/html; charset=utf-8", bodyHTML, warnings)
	default:
		writePart(mw, "text/plain; charset=utf-8", bodyText, warnings)
	}

	writeAttachmentParts(mw, m, warnings)
	mw.Close()
}

// extractBoundary reads a raw RFC 2822 header block and returns the
// multipart boundary declared on its Content-Type header, warning and
// returning "" when the headers don't parse or declare multipart without
// one.
func extractBoundary(headers string, warnings *warn.List) string {
	r := textproto.NewReader(bufio.NewReader(strings.NewReader(headers + "\r\n\r\n")))
	hdr, err := r.ReadMIMEHeader()
	if err != nil {
		warnings.Add(warn.CodeMalformedHeaderLine, warn.Warn, err.Error(), "")
		return ""
	}
	ct := hdr.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		warnings.Add(warn.CodeMalformedHeaderLine, warn.Warn, "unparsable Content-Type: "+err.Error(), ct)
		return ""
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return ""
	}
	if b := params["boundary"]; b != "" {
		return b
	}
	warnings.Add(warn.CodeMultipartMissingBoundary, warn.Warn, "multipart Content-Type declared no boundary", mediaType)
	return ""
}

func writePart(mw *multipart.Writer, contentType, body string, warnings *warn.List) {
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Type", contentType)
	hdr.Set("Content-Transfer-Encoding", "quoted-printable")
	w, err := mw.CreatePart(hdr)
	if err != nil {
		warnings.Add(warn.CodeNestedPartWarning, warn.Warn, "could not open body part: "+err.Error(), contentType)
		return
	}
	qw := quotedprintable.NewWriter(w)
	qw.Write([]byte(body))
	qw.Close()
}

func writeAttachmentParts(mw *multipart.Writer, m *msg.Msg, warnings *warn.List) {
	for _, a := range m.Attachments {
		data := a.Data()
		if a.Embedded != nil || len(data) == 0 {
			continue
		}
		ct := a.MimeType()
		if ct == "" {
			ct = "application/octet-stream"
		}
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Type", ct)
		hdr.Set("Content-Transfer-Encoding", "base64")
		hdr.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename()))
		w, err := mw.CreatePart(hdr)
		if err != nil {
			warnings.Add(warn.CodeNestedPartWarning, warn.Warn, "could not open attachment part: "+err.Error(), a.Filename())
			continue
		}
		enc := base64.NewEncoder(base64.StdEncoding, w)
		enc.Write(data)
		enc.Close()
	}
}

// writeAttachmentsAsText is the degenerate fallback used when a reused
// transport-header block declares no multipart boundary: attachments have
// nowhere to go but are at least named, rather than silently dropped.
func writeAttachmentsAsText(buf *bytes.Buffer, m *msg.Msg) {
	for _, a := range m.Attachments {
		if len(a.Data()) == 0 {
			continue
		}
		fmt.Fprintf(buf, "\n[attachment omitted: %s]", a.Filename())
	}
}

func hasRenderableAttachments(m *msg.Msg) bool {
	for _, a := range m.Attachments {
		if a.Embedded == nil && len(a.Data()) > 0 {
			return true
		}
	}
	return false
}

func bodyHTMLOrRendered(m *msg.Msg) string {
	if h := m.BodyHTML(); h != "" {
		return h
	}
	v, ok := mapi.GetBySymbol(m.Properties, "pr_rtf_compressed")
	if !ok {
		return ""
	}
	raw, ok := v.Single.([]byte)
	if !ok {
		return ""
	}
	plain, err := rtf.Decompress(raw)
	if err != nil {
		return ""
	}
	return sanitizeHTML(rtfhtml.Render(plain))
}

// sanitizeHTML strips <script> and <style> elements from RTF-derived HTML
// before it is embedded in a MIME part. rtfhtml.Render never emits such
// elements itself; this guards against raw RTF bytes that happen to decode
// to something that looks like one after control-word stripping.
func sanitizeHTML(s string) string {
	var out strings.Builder
	var skipDepth int
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()
		switch tok.Data {
		case "script", "style":
			switch tt {
			case html.StartTagToken:
				skipDepth++
				continue
			case html.EndTagToken:
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
		}
		if skipDepth > 0 {
			continue
		}
		out.WriteString(tok.String())
	}
	return out.String()
}

func messageID(m *msg.Msg) string {
	if id := propString(m.Properties, "pr_internet_message_id"); id != "" {
		return id
	}
	var b [8]byte
	rand.Read(b[:])
	return fmt.Sprintf("<%x@msgpst.local>", b)
}

// dateHeader picks the first plausible submit/delivery timestamp, falling
// back to the current time. A decoded year outside 1990-2100 is treated
// as implausible rather than trusted verbatim.
func dateHeader(m *msg.Msg) string {
	for _, atom := range []string{"pr_client_submit_time", "pr_message_delivery_time"} {
		if t, ok := timeOf(m.Properties, atom); ok && t.Year() >= 1990 && t.Year() <= 2100 {
			return t.Format(time.RFC1123Z)
		}
	}
	return time.Now().Format(time.RFC1123Z)
}

func fromAddress(m *msg.Msg) string {
	name := firstNonEmpty(
		propString(m.Properties, "pr_sender_name"),
		propString(m.Properties, "pr_sent_representing_name"),
	)
	email := firstNonEmpty(
		propString(m.Properties, "pr_sender_smtp_address"),
		propString(m.Properties, "pr_sender_email_address"),
		propString(m.Properties, "pr_sent_representing_email_address"),
	)
	return formatAddress(name, email)
}

func recipientAddressList(m *msg.Msg, want msg.RecipientType) string {
	var parts []string
	for _, r := range m.Recipients {
		if r.Type() != want {
			continue
		}
		if addr := formatAddress(r.Name(), r.Email()); addr != "" {
			parts = append(parts, addr)
		}
	}
	return strings.Join(parts, ", ")
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

func encodeHeader(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.QEncoding.Encode("utf-8", s)
		}
	}
	return s
}

func formatAddress(name, email string) string {
	switch {
	case email == "" && name == "":
		return ""
	case email == "":
		return encodeHeader(name)
	case name == "":
		return email
	default:
		addr := &mail.Address{Name: name, Address: email}
		return addr.String()
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func propString(ps *props.PropertySet, atom string) string {
	v, ok := mapi.GetBySymbol(ps, atom)
	if !ok {
		return ""
	}
	s, _ := v.Single.(string)
	return s
}

func timeOf(ps *props.PropertySet, atom string) (time.Time, bool) {
	v, ok := mapi.GetBySymbol(ps, atom)
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.Single.(time.Time)
	return t, ok
}
