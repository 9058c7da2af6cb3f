package onigvm

import "testing"

// TestAnchoredLiteral: ^abc$ on "abc" matches at [0,3); on "xabc" it
// mismatches.
func TestAnchoredLiteral(t *testing.T) {
	p := buildAnchoredLiteral(t, "abc")

	ok, region, err := runMatch(t, p, "abc", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected match")
	}
	if region.Beg[0] != 0 || region.End[0] != 3 {
		t.Fatalf("region = [%d,%d), want [0,3)", region.Beg[0], region.End[0])
	}

	ok, _, err = runMatch(t, p, "xabc", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch on xabc")
	}
}

func TestUnanchoredLiteralFindsMiddle(t *testing.T) {
	p := buildLiteral(t, "hello")
	ok, region, err := runMatch(t, p, "say hello world", 0)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if region.Beg[0] != 4 || region.End[0] != 9 {
		t.Fatalf("region = [%d,%d), want [4,9)", region.Beg[0], region.End[0])
	}
}

func TestCharClassBitmap(t *testing.T) {
	var bm [32]byte
	for c := byte('a'); c <= 'z'; c++ {
		bm[c>>3] |= 1 << (c & 7)
	}
	b := NewProgramBuilder(ASCIIEncoding{})
	b.Emit(Operation{Op: OP_CCLASS, Bitmap: (*[256 / 8]byte)(&bm)})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if ok, _, err := runMatch(t, p, "hello", 0); err != nil || !ok {
		t.Fatalf("expected match on lowercase, ok=%v err=%v", ok, err)
	}
	if ok, _, err := runMatch(t, p, "HELLO", 0); err != nil || ok {
		t.Fatalf("expected mismatch on uppercase, ok=%v err=%v", ok, err)
	}
}

func TestCharClassNegated(t *testing.T) {
	var bm [32]byte
	for c := byte('0'); c <= '9'; c++ {
		bm[c>>3] |= 1 << (c & 7)
	}
	b := NewProgramBuilder(ASCIIEncoding{})
	b.Emit(Operation{Op: OP_CCLASS_NOT, Bitmap: (*[256 / 8]byte)(&bm)})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ok, _, err := runMatch(t, p, "9", 0); err != nil || ok {
		t.Fatalf("expected mismatch on digit, ok=%v err=%v", ok, err)
	}
	if ok, _, err := runMatch(t, p, "x", 0); err != nil || !ok {
		t.Fatalf("expected match on non-digit, ok=%v err=%v", ok, err)
	}
}

func TestAnyCharDot(t *testing.T) {
	b := NewProgramBuilder(ASCIIEncoding{})
	b.Emit(Operation{Op: OP_STR_1, Bytes: lit("a")})
	b.Emit(Operation{Op: OP_ANYCHAR})
	b.Emit(Operation{Op: OP_STR_1, Bytes: lit("c")})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, tc := range []struct {
		subject string
		want    bool
	}{
		{"abc", true},
		{"aXc", true},
		{"ac", false},
		{"a\nc", false}, // OP_ANYCHAR excludes newline
	} {
		ok, _, err := runMatch(t, p, tc.subject, 0)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.subject, err)
		}
		if ok != tc.want {
			t.Errorf("%q: got %v, want %v", tc.subject, ok, tc.want)
		}
	}
}

func TestAnyCharMLIncludesNewline(t *testing.T) {
	b := NewProgramBuilder(ASCIIEncoding{})
	b.Emit(Operation{Op: OP_STR_1, Bytes: lit("a")})
	b.Emit(Operation{Op: OP_ANYCHAR_ML})
	b.Emit(Operation{Op: OP_STR_1, Bytes: lit("c")})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ok, _, err := runMatch(t, p, "a\nc", 0); err != nil || !ok {
		t.Fatalf("expected match across newline, ok=%v err=%v", ok, err)
	}
}

func TestWordBoundary(t *testing.T) {
	b := NewProgramBuilder(ASCIIEncoding{})
	b.Emit(Operation{Op: OP_WORD_BOUNDARY})
	b.Emit(Operation{Op: OP_STR_N, Bytes: lit("cat")})
	b.Emit(Operation{Op: OP_WORD_BOUNDARY})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ok, region, err := runMatch(t, p, "a cat sat", 0); err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	} else if region.Beg[0] != 2 {
		t.Fatalf("beg=%d, want 2", region.Beg[0])
	}
	if ok, _, err := runMatch(t, p, "concatenate", 0); err != nil || ok {
		t.Fatalf("expected mismatch inside word, ok=%v err=%v", ok, err)
	}
}
