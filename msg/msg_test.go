package msg

import (
	"os"
	"testing"

	"github.com/outlookcore/msgpst/internal/cfb"
	"github.com/outlookcore/msgpst/internal/diag"
)

func TestSortedChildrenWithPrefixOrdersLexically(t *testing.T) {
	dirents := []*cfb.Dirent{
		{SID: 0, Type: cfb.TypeStorage, Children: []int{1, 2, 3}},
		{SID: 1, Name: "__attach_version1.0_00000002"},
		{SID: 2, Name: "__attach_version1.0_00000000"},
		{SID: 3, Name: "__attach_version1.0_00000001"},
	}
	c := &cfb.Container{Dirents: dirents}

	got := sortedChildrenWithPrefix(c, dirents[0], attachStreamPrefix)
	if len(got) != 3 {
		t.Fatalf("got %d children, want 3", len(got))
	}
	want := []string{
		"__attach_version1.0_00000000",
		"__attach_version1.0_00000001",
		"__attach_version1.0_00000002",
	}
	for i, w := range want {
		if got[i].Name != w {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Name, w)
		}
	}
}

func TestSortedChildrenWithPrefixIgnoresOtherPrefixes(t *testing.T) {
	dirents := []*cfb.Dirent{
		{SID: 0, Type: cfb.TypeStorage, Children: []int{1, 2}},
		{SID: 1, Name: "__attach_version1.0_00000000"},
		{SID: 2, Name: "__recip_version1.0_00000000"},
	}
	c := &cfb.Container{Dirents: dirents}

	got := sortedChildrenWithPrefix(c, dirents[0], recipStreamPrefix)
	if len(got) != 1 || got[0].Name != "__recip_version1.0_00000000" {
		t.Fatalf("got %+v, want only the recip child", got)
	}
}

func TestWarningsOrNilOnNilMsg(t *testing.T) {
	var m *Msg
	if got := m.warningsOrNil(); got != nil {
		t.Fatalf("expected nil warnings for a nil *Msg, got %v", got)
	}
}

func TestOpenMsgEmptyBlobIsHardError(t *testing.T) {
	// An empty CFB blob fails at container identification, which OpenMsg
	// must still surface as a hard error rather than an empty Msg.
	if _, err := OpenMsg(nil); err == nil {
		t.Fatalf("expected an error opening an empty blob")
	}
}

func TestOpenMsgWithDebugOptionStillErrorsOnEmptyBlob(t *testing.T) {
	if _, err := OpenMsg(nil, WithDebug(diag.Disabled())); err == nil {
		t.Fatalf("expected an error opening an empty blob regardless of debug option")
	}
}

func TestResolveInputPassesThroughBytesStartingWithMagic(t *testing.T) {
	raw := append([]byte{0xD0, 0xCF, 0x11, 0xE0}, []byte{1, 2, 3}...)
	got, err := resolveInput(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(raw) {
		t.Fatalf("got %v, want the input returned unchanged", got)
	}
}

func TestResolveInputReadsAnExistingRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sample.msg"
	want := append([]byte{0xD0, 0xCF, 0x11, 0xE0}, []byte{9, 9, 9}...)
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	got, err := resolveInput([]byte(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveInputFallsBackToRawBytesWhenNoSuchFile(t *testing.T) {
	garbage := []byte("not a path and not magic bytes either")
	got, err := resolveInput(garbage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(garbage) {
		t.Fatalf("got %v, want the original bytes returned unchanged", got)
	}
}

func TestOpenDispatchesAPathToOpenMsg(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/empty.msg"
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := Open([]byte(path)); err == nil {
		t.Fatalf("expected an error opening an empty file, same as OpenMsg would give")
	}
}
