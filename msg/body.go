package msg

import (
	"strings"
	"unicode"

	"github.com/outlookcore/msgpst/internal/mapi"
)

// bodyAtoms and htmlAtoms list the symbolic property atoms consulted for a
// plain-text or HTML body: only pr_body and pr_body_html respectively.
var (
	bodyAtoms = []string{"pr_body"}
	htmlAtoms = []string{"pr_body_html"}
)

const minBodyCandidateLen = 10

// Body returns the longest plausible plain-text body candidate found on the
// message's property set, or "" if none survives cleaning.
func (m *Msg) Body() string {
	return m.bestCandidate(bodyAtoms)
}

// BodyHTML returns the longest plausible HTML body candidate, or "" if none
// survives cleaning.
func (m *Msg) BodyHTML() string {
	return m.bestCandidate(htmlAtoms)
}

// PlausibleBody returns the richest body available: BodyHTML if present,
// otherwise Body, otherwise "".
func (m *Msg) PlausibleBody() string {
	if h := m.BodyHTML(); h != "" {
		return h
	}
	return m.Body()
}

func (m *Msg) bestCandidate(atoms []string) string {
	var best string
	for _, atom := range atoms {
		v, ok := mapi.GetBySymbol(m.Properties, atom)
		if !ok {
			continue
		}
		raw := stringifyBodyValue(v.Single)
		cleaned, ok := cleanAndAcceptBodyCandidate(raw, minBodyCandidateLen)
		if ok && len(cleaned) > len(best) {
			best = cleaned
		}
	}
	return best
}

func stringifyBodyValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

// cleanAndAcceptBodyCandidate filters out Exchange/X.500 address dumps and
// strings dominated by non-text or replacement-character noise.
func cleanAndAcceptBodyCandidate(input string, minLen int) (string, bool) {
	cleaned := strings.TrimSpace(input)
	if len(cleaned) < minLen {
		return "", false
	}
	if strings.Contains(cleaned, "/O=") && strings.Contains(cleaned, "/CN=") {
		return "", false
	}

	nonLetter := 0
	total := 0
	var out strings.Builder
	for _, r := range cleaned {
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			out.WriteRune(r)
			total++
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune(",.;:!?()[]{}-_'\"/@#%&$*", r)) {
				nonLetter++
			}
		}
	}
	final := out.String()
	if total == 0 || float64(nonLetter)/float64(total) > 0.4 {
		return "", false
	}

	replacementCount := strings.Count(final, "�")
	length := len(final)
	if length > 0 {
		var maxAllowed int
		switch {
		case length < 50:
			maxAllowed = length / 5
		case length < 500:
			maxAllowed = length / 10
		default:
			maxAllowed = length / 20
		}
		if replacementCount > maxAllowed && replacementCount > 2 {
			return "", false
		}
	}
	return final, true
}
