package msgprop

import "testing"

func TestParseSubstgNameNoIndex(t *testing.T) {
	m, ok := parseSubstgName("__substg1.0_0037001F")
	if !ok {
		t.Fatalf("expected match")
	}
	if m.code != 0x0037 || m.typ != 0x001F || m.hasIndex {
		t.Fatalf("got %+v", m)
	}
}

func TestParseSubstgNameWithIndex(t *testing.T) {
	m, ok := parseSubstgName("__substg1.0_1000001F-00000002")
	if !ok {
		t.Fatalf("expected match")
	}
	if m.code != 0x1000 || m.typ != 0x001F || !m.hasIndex || m.index != 0x00000002 {
		t.Fatalf("got %+v", m)
	}
}

func TestParseSubstgNameRejectsNonHex(t *testing.T) {
	if _, ok := parseSubstgName("__substg1.0_ZZZZ001F"); ok {
		t.Fatalf("expected no match for non-hex code")
	}
}

func TestParseSubstgNameRejectsWrongPrefix(t *testing.T) {
	if _, ok := parseSubstgName("__properties_version1.0"); ok {
		t.Fatalf("expected no match for an unrelated stream name")
	}
}
