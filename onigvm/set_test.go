package onigvm

import "testing"

// buildSetLiteral assembles an unanchored literal member with its
// OptimizePlan filled in as OptimizeStr, so NewSet picks it up for the
// leading-literal Aho-Corasick automaton.
func buildSetLiteral(t *testing.T, s string) *Program {
	t.Helper()
	p := buildLiteral(t, s)
	p.Optimize = OptimizePlan{Kind: OptimizeStr, Exact: lit(s)}
	return p
}

// buildSetDigitClass assembles a member with no usable literal (a bare
// character class), exercising the "position-lead" fallback path that
// always participates regardless of the automaton.
func buildSetDigitClass(t *testing.T) *Program {
	t.Helper()
	var bm [32]byte
	for c := byte('0'); c <= '9'; c++ {
		bm[c>>3] |= 1 << (c & 7)
	}
	b := NewProgramBuilder(ASCIIEncoding{})
	b.Emit(Operation{Op: OP_CCLASS, Bitmap: (*[256 / 8]byte)(&bm)})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return p
}

func TestSetIsMatchAnyMember(t *testing.T) {
	s := NewSet([]*Program{
		buildSetLiteral(t, "cat"),
		buildSetLiteral(t, "dog"),
		buildSetDigitClass(t),
	})

	ok, err := s.IsMatch([]byte("a dog ran"), 0)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}

	ok, err = s.IsMatch([]byte("no pets here"), 0)
	if err != nil || ok {
		t.Fatalf("expected no match, ok=%v err=%v", ok, err)
	}
}

func TestSetSearchStrategies(t *testing.T) {
	s := NewSet([]*Program{
		buildSetLiteral(t, "cat"),
		buildSetLiteral(t, "dog"),
	})
	subject := []byte("the dog and cat")

	// Position-lead and regex-lead both prefer the leftmost hit: "dog".
	idx, err := s.Search(subject, 0, -1, PositionLead, 0)
	if err != nil || idx != 1 {
		t.Fatalf("position-lead: idx=%d err=%v, want 1", idx, err)
	}
	if r := s.Region(1); r.Beg[0] != 4 || r.End[0] != 7 {
		t.Fatalf("dog region = [%d,%d), want [4,7)", r.Beg[0], r.End[0])
	}

	idx, err = s.Search(subject, 0, -1, RegexLead, 0)
	if err != nil || idx != 1 {
		t.Fatalf("regex-lead: idx=%d err=%v, want 1", idx, err)
	}

	// Priority-to-regex-order stops at the first member that matches
	// anywhere: "cat" wins despite starting later.
	idx, err = s.Search(subject, 0, -1, PriorityToRegexOrder, 0)
	if err != nil || idx != 0 {
		t.Fatalf("priority: idx=%d err=%v, want 0", idx, err)
	}

	if _, err := s.Search([]byte("no pets"), 0, -1, PositionLead, 0); err != ErrMismatch {
		t.Fatalf("got %v, want ErrMismatch", err)
	}
}

func TestSetPositionLeadTieBreaksToLowestIndex(t *testing.T) {
	s := NewSet([]*Program{
		buildSetLiteral(t, "abc"),
		buildSetLiteral(t, "ab"),
	})
	// Both members could match at 0; member 0 must win the tie.
	idx, err := s.Search([]byte("abc"), 0, -1, PositionLead, 0)
	if err != nil || idx != 0 {
		t.Fatalf("idx=%d err=%v, want 0", idx, err)
	}
}

func TestSetMatchedPositionsPrunesByLeadingLiteral(t *testing.T) {
	s := NewSet([]*Program{
		buildSetLiteral(t, "cat"),
		buildSetLiteral(t, "dog"),
		buildSetDigitClass(t),
	})

	idxs, regions, err := s.MatchedPositions([]byte("I have a cat and 2 fish"), 0)
	if err != nil {
		t.Fatalf("matched positions: %v", err)
	}
	got := map[int][2]int{}
	for i, idx := range idxs {
		got[idx] = [2]int{regions[i].Beg[0], regions[i].End[0]}
	}
	if _, ok := got[1]; ok {
		t.Fatalf("member 1 (\"dog\") should not match, got region %v", got[1])
	}
	if r, ok := got[0]; !ok || r != [2]int{9, 12} {
		t.Fatalf("member 0 (\"cat\") region = %v, want [9 12]", r)
	}
	if r, ok := got[2]; !ok || r != [2]int{17, 18} {
		t.Fatalf("member 2 (digit class) region = %v, want [17 18]", r)
	}
}
