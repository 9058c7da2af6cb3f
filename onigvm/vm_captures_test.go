package onigvm

import "testing"

// buildAltCaptures assembles (a(b)c|abd).
//
//	0: MEM_START_PUSH mem=1
//	1: PUSH            -> L_alt2
//	2: STR_1 'a'
//	3: MEM_START_PUSH mem=2
//	4: STR_1 'b'
//	5: MEM_END_PUSH mem=2
//	6: STR_1 'c'
//	7: JUMP            -> L_end
//	L_alt2:
//	8: STR_N "abd"
//	L_end:
//	9: MEM_END_PUSH mem=1
//	10: OP_END
func buildAltCaptures(t *testing.T) *Program {
	t.Helper()
	b := NewProgramBuilder(ASCIIEncoding{})
	b.SetNumMem(2)
	b.MarkMemPush(1, true, true)
	b.MarkMemPush(2, true, true)

	b.Emit(Operation{Op: OP_MEM_START_PUSH, MemID: 1})
	pushIdx := b.Emit(Operation{Op: OP_PUSH})
	b.Emit(Operation{Op: OP_STR_1, Bytes: lit("a")})
	b.Emit(Operation{Op: OP_MEM_START_PUSH, MemID: 2})
	b.Emit(Operation{Op: OP_STR_1, Bytes: lit("b")})
	b.Emit(Operation{Op: OP_MEM_END_PUSH, MemID: 2})
	b.Emit(Operation{Op: OP_STR_1, Bytes: lit("c")})
	jumpIdx := b.Emit(Operation{Op: OP_JUMP})
	alt2 := b.Label()
	b.Patch(pushIdx, alt2)
	b.Emit(Operation{Op: OP_STR_N, Bytes: lit("abd")})
	end := b.Label()
	b.Patch(jumpIdx, end)
	b.Emit(Operation{Op: OP_MEM_END_PUSH, MemID: 1})
	b.Emit(Operation{Op: OP_END})

	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return p
}

func TestNestedCaptureRestoredOnBacktrack(t *testing.T) {
	p := buildAltCaptures(t)
	ok, region, err := runMatch(t, p, "abd", 0)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if region.Beg[1] != 0 || region.End[1] != 3 {
		t.Fatalf("group1 = [%d,%d), want [0,3)", region.Beg[1], region.End[1])
	}
	if region.Beg[2] != NotPos || region.End[2] != NotPos {
		t.Fatalf("group2 = [%d,%d), want NotPos (cleared by backtrack)", region.Beg[2], region.End[2])
	}
}

func TestNestedCaptureFirstAlternativeWins(t *testing.T) {
	p := buildAltCaptures(t)
	ok, region, err := runMatch(t, p, "abc", 0)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if region.Beg[1] != 0 || region.End[1] != 3 {
		t.Fatalf("group1 = [%d,%d), want [0,3)", region.Beg[1], region.End[1])
	}
	if region.Beg[2] != 1 || region.End[2] != 2 {
		t.Fatalf("group2 = [%d,%d), want [1,2)", region.Beg[2], region.End[2])
	}
}

// buildBackrefCaseFold assembles (ab)\1 under case fold.
//
//	0: MEM_START_PUSH mem=1
//	1: STR_2 "ab"
//	2: MEM_END_PUSH mem=1
//	3: BACKREF1 (case-insensitive, target mem 1)
//	4: OP_END
func buildBackrefCaseFold(t *testing.T) *Program {
	t.Helper()
	b := NewProgramBuilder(ASCIIEncoding{})
	b.SetNumMem(1)
	b.MarkMemPush(1, true, true)
	b.Emit(Operation{Op: OP_MEM_START_PUSH, MemID: 1})
	b.Emit(Operation{Op: OP_STR_2, Bytes: lit("ab")})
	b.Emit(Operation{Op: OP_MEM_END_PUSH, MemID: 1})
	b.Emit(Operation{Op: OP_BACKREF1, BackrefIDs: []int{1}, Backref: BackrefMode{CaseInsensitive: true}})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return p
}

func TestBackrefCaseFold(t *testing.T) {
	p := buildBackrefCaseFold(t)
	ok, region, err := runMatch(t, p, "AbaB", 0)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if region.Beg[0] != 0 || region.End[0] != 4 {
		t.Fatalf("whole match = [%d,%d), want [0,4)", region.Beg[0], region.End[0])
	}
	if region.Beg[1] != 0 || region.End[1] != 2 {
		t.Fatalf("group1 = [%d,%d), want [0,2)", region.Beg[1], region.End[1])
	}
}

func TestBackrefCaseSensitiveFailsOnFold(t *testing.T) {
	b := NewProgramBuilder(ASCIIEncoding{})
	b.SetNumMem(1)
	b.MarkMemPush(1, true, true)
	b.Emit(Operation{Op: OP_MEM_START_PUSH, MemID: 1})
	b.Emit(Operation{Op: OP_STR_2, Bytes: lit("ab")})
	b.Emit(Operation{Op: OP_MEM_END_PUSH, MemID: 1})
	b.Emit(Operation{Op: OP_BACKREF1, BackrefIDs: []int{1}, Backref: BackrefMode{}})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ok, _, err := runMatch(t, p, "AbaB", 0); err != nil || ok {
		t.Fatalf("expected mismatch under case-sensitive compare, ok=%v err=%v", ok, err)
	}
}

func TestBackrefMultiExistenceCheck(t *testing.T) {
	// Two optional captures; BACKREF_CHECK should succeed on whichever one
	// is actually defined.
	b := NewProgramBuilder(ASCIIEncoding{})
	b.SetNumMem(2)
	b.MarkMemPush(1, true, true)
	b.MarkMemPush(2, true, true)
	b.Emit(Operation{Op: OP_MEM_START_PUSH, MemID: 1})
	b.Emit(Operation{Op: OP_STR_1, Bytes: lit("x")})
	b.Emit(Operation{Op: OP_MEM_END_PUSH, MemID: 1})
	b.Emit(Operation{Op: OP_BACKREF_CHECK, BackrefIDs: []int{1, 2}, Backref: BackrefMode{Multi: true, CheckOnly: true}})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ok, _, err := runMatch(t, p, "x", 0); err != nil || !ok {
		t.Fatalf("expected success: group1 is defined, ok=%v err=%v", ok, err)
	}
}
