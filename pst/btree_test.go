package pst

import (
	"encoding/binary"
	"testing"

	"github.com/outlookcore/msgpst/warn"
)

func TestBuildIndexRecoversFromBranchLoop(t *testing.T) {
	page := make([]byte, pageSize)
	// one branch entry: id(4) + child_offset(4), pointing back at this page.
	binary.LittleEndian.PutUint32(page[0:], 1)
	binary.LittleEndian.PutUint32(page[4:], 0)
	page[trailerOffset] = 1   // item_count
	page[trailerOffset+2] = 8 // entry_size
	page[trailerOffset+3] = 1 // level (branch, non-zero)

	_, warnings := BuildIndex(page, VersionAnsi97, 0)
	if !warnings.HasCode(warn.CodePstBranchLoopDetected) {
		t.Fatalf("expected a branch-loop warning, got %+v", warnings)
	}
}

func TestBuildIndexOversizedItemCountDegradesGracefully(t *testing.T) {
	page := make([]byte, pageSize)
	for i := 0; i < 3; i++ {
		base := i * 10
		binary.LittleEndian.PutUint32(page[base:], uint32(i+1))
		binary.LittleEndian.PutUint32(page[base+4:], 100)
		binary.LittleEndian.PutUint16(page[base+8:], 1)
	}
	page[trailerOffset] = 255 // item_count far larger than what fits
	page[trailerOffset+2] = 10
	page[trailerOffset+3] = 0 // leaf

	index, warnings := BuildIndex(page, VersionAnsi97, 0)
	if warnings.HasCode(warn.CodePstBranchLoopDetected) {
		t.Fatalf("did not expect a branch-loop warning for a leaf page")
	}
	if len(index) == 0 {
		t.Fatalf("expected at least the records that do fit to be parsed")
	}
	if len(index) > trailerOffset/10 {
		t.Fatalf("parsed more records than fit in the page: got %d", len(index))
	}
}

func TestBuildIndexZeroEntrySizeDegradesInsteadOfPanicking(t *testing.T) {
	page := make([]byte, pageSize)
	page[trailerOffset] = 5 // item_count
	page[trailerOffset+2] = 0 // entry_size: corrupted to zero
	page[trailerOffset+3] = 0 // leaf

	index, warnings := BuildIndex(page, VersionAnsi97, 0)
	if len(index) != 0 {
		t.Fatalf("expected no records out of a zero-entry-size page, got %d", len(index))
	}
	if !warnings.HasCode(warn.CodePstIndexParseFailed) {
		t.Fatalf("expected a parse-failed warning for a zero entry_size trailer, got %+v", warnings)
	}
}

func TestBuildDescriptorsZeroEntrySizeDegradesInsteadOfPanicking(t *testing.T) {
	page := make([]byte, pageSize)
	page[trailerOffset] = 5
	page[trailerOffset+2] = 0
	page[trailerOffset+3] = 1 // branch: the zero entry_size guard must fire before branchChildOffsets divides by it

	descs, children, warnings := BuildDescriptors(page, VersionAnsi97, 0)
	if len(descs) != 0 || len(children) != 0 {
		t.Fatalf("expected nothing decoded out of a zero-entry-size page, got descs=%d children=%d", len(descs), len(children))
	}
	if !warnings.HasCode(warn.CodePstDescriptorParseFailed) {
		t.Fatalf("expected a parse-failed warning for a zero entry_size trailer, got %+v", warnings)
	}
}
