package msg

import "testing"

func TestCleanAndAcceptBodyCandidateAcceptsPlainText(t *testing.T) {
	got, ok := cleanAndAcceptBodyCandidate("Hello, this is a perfectly normal message body.", minBodyCandidateLen)
	if !ok {
		t.Fatalf("expected a plain-text body to be accepted")
	}
	if got == "" {
		t.Fatalf("expected non-empty cleaned body")
	}
}

func TestCleanAndAcceptBodyCandidateRejectsTooShort(t *testing.T) {
	if _, ok := cleanAndAcceptBodyCandidate("short", minBodyCandidateLen); ok {
		t.Fatalf("expected a too-short candidate to be rejected")
	}
}

func TestCleanAndAcceptBodyCandidateRejectsX500Dump(t *testing.T) {
	input := "/O=ORGANIZATION/OU=EXCHANGE ADMINISTRATIVE GROUP/CN=RECIPIENTS/CN=JDOE"
	if _, ok := cleanAndAcceptBodyCandidate(input, minBodyCandidateLen); ok {
		t.Fatalf("expected an X.500 address dump to be rejected")
	}
}

func TestCleanAndAcceptBodyCandidateRejectsNoiseDominated(t *testing.T) {
	input := "\x01\x02\x03\x04\x05\x06\x07\x08\x0B\x0C\x0E\x0F\x10\x11\x12\x13\x14\x15"
	if _, ok := cleanAndAcceptBodyCandidate(input, minBodyCandidateLen); ok {
		t.Fatalf("expected a candidate dominated by non-printable noise to be rejected")
	}
}

func TestCleanAndAcceptBodyCandidateRejectsReplacementCharacterFlood(t *testing.T) {
	input := "Hello world ����������"
	if _, ok := cleanAndAcceptBodyCandidate(input, minBodyCandidateLen); ok {
		t.Fatalf("expected a replacement-character flood to be rejected")
	}
}

func TestStringifyBodyValueHandlesStringAndBytes(t *testing.T) {
	if got := stringifyBodyValue("hi"); got != "hi" {
		t.Fatalf("got %q, want %q", got, "hi")
	}
	if got := stringifyBodyValue([]byte("hi")); got != "hi" {
		t.Fatalf("got %q, want %q", got, "hi")
	}
	if got := stringifyBodyValue(42); got != "" {
		t.Fatalf("got %q, want empty string for an unsupported type", got)
	}
}
