// Package rtfhtml renders plain RTF (already LZFu-decompressed) down to a
// minimal HTML fragment, for the messages that carry PR_RTF_COMPRESSED but
// no PR_BODY_HTML. It is not a faithful RTF renderer: it strips control
// words and groups and escapes what remains, which is enough to carry a
// plain paragraph of text into a MIME part without losing its content.
package rtfhtml

import (
	"html"
	"regexp"
	"strings"
)

var (
	controlWord = regexp.MustCompile(`\\[a-zA-Z]+-?[0-9]*\s?`)
	hexEscape   = regexp.MustCompile(`\\'[0-9a-fA-F]{2}`)
	unicodeEsc  = regexp.MustCompile(`\\u-?[0-9]+\??`)
	paragraph   = regexp.MustCompile(`\\par\b\s?`)
)

// Render converts raw RTF bytes into an HTML document fragment: control
// words and group braces stripped, paragraph breaks turned into <br>, and
// the remaining text HTML-escaped.
func Render(rtf []byte) string {
	s := string(rtf)
	s = unicodeEsc.ReplaceAllString(s, "")
	s = hexEscape.ReplaceAllString(s, "")
	s = paragraph.ReplaceAllString(s, "\n")
	s = controlWord.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")

	var out strings.Builder
	out.WriteString("<html><body><p>")
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out.WriteString(html.EscapeString(line))
		out.WriteString("<br>")
	}
	out.WriteString("</p></body></html>")
	return out.String()
}
