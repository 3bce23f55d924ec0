package mapi

import (
	"bytes"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DecodeString8 decodes PT_STRING8 bytes with best-effort charset sniffing.
// A message-level code page (PR_INTERNET_CPID / PR_MESSAGE_CODEPAGE) would
// be a more faithful signal when present; sniffing is the fallback used
// here since no such code page is threaded through to this decoder.
func DecodeString8(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(b)
	if err == nil && result != nil {
		if enc := lookupEncoding(result.Charset); enc != nil {
			reader := transform.NewReader(bytes.NewReader(b), enc.NewDecoder())
			if decoded, err := io.ReadAll(reader); err == nil {
				return string(decoded)
			}
		} else {
			return string(b)
		}
	}

	if r, err := charset.NewReaderLabel("windows-1252", bytes.NewReader(b)); err == nil {
		if decoded, err := io.ReadAll(r); err == nil {
			return string(decoded)
		}
	}
	if r, err := charset.NewReaderLabel("iso-8859-1", bytes.NewReader(b)); err == nil {
		if decoded, err := io.ReadAll(r); err == nil {
			return string(decoded)
		}
	}
	return string(b)
}

func lookupEncoding(name string) encoding.Encoding {
	switch strings.ToLower(name) {
	case "windows-1252":
		return charmap.Windows1252
	case "iso-8859-1":
		return charmap.ISO8859_1
	case "utf-8":
		return nil
	default:
		enc, _ := charset.Lookup(name)
		return enc
	}
}
