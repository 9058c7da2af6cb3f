package onigvm

import (
	"bytes"
	"testing"
)

func TestUTF8CharLenAndDecode(t *testing.T) {
	enc := UTF8Encoding{}
	for _, tc := range []struct {
		in    string
		width int
		r     rune
	}{
		{"a", 1, 'a'},
		{"é", 2, 'é'},
		{"あ", 3, 'あ'},
		{"🙂", 4, '🙂'},
	} {
		if w := enc.CharLen([]byte(tc.in)); w != tc.width {
			t.Errorf("CharLen(%q) = %d, want %d", tc.in, w, tc.width)
		}
		r, w := enc.DecodeRune([]byte(tc.in))
		if r != tc.r || w != tc.width {
			t.Errorf("DecodeRune(%q) = (%q,%d), want (%q,%d)", tc.in, r, w, tc.r, tc.width)
		}
	}
	if w := enc.CharLen([]byte{0xE3, 0x81}); w != 0 {
		t.Errorf("truncated sequence CharLen = %d, want 0", w)
	}
}

func TestUTF8PrevCharLen(t *testing.T) {
	enc := UTF8Encoding{}
	s := []byte("aあb")
	if pl := enc.PrevCharLen(s, len(s)); pl != 1 {
		t.Errorf("prev of 'b' = %d, want 1", pl)
	}
	if pl := enc.PrevCharLen(s, 4); pl != 3 {
		t.Errorf("prev of pos 4 = %d, want 3 (あ)", pl)
	}
	if pl := enc.PrevCharLen(s, 0); pl != 0 {
		t.Errorf("prev at start = %d, want 0", pl)
	}
}

func TestFoldASCII(t *testing.T) {
	enc := ASCIIEncoding{}
	out, w := enc.Fold(nil, []byte("K"))
	if w != 1 || !bytes.Equal(out, []byte("k")) {
		t.Errorf("Fold(K) = (%q,%d), want (k,1)", out, w)
	}
}

func TestMultibyteLiteralMatch(t *testing.T) {
	word := "こんにちは"
	b := NewProgramBuilder(UTF8Encoding{})
	b.Emit(Operation{Op: OP_STR_MB3N, Bytes: []byte(word)})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	ok, region, err := runMatch(t, p, "ab"+word+"cd", 0)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if region.Beg[0] != 2 || region.End[0] != 2+len(word) {
		t.Fatalf("region = [%d,%d), want [2,%d)", region.Beg[0], region.End[0], 2+len(word))
	}
}

func TestMultibyteCharClass(t *testing.T) {
	// [ぁ-ん] (hiragana block).
	b := NewProgramBuilder(UTF8Encoding{})
	b.Emit(Operation{Op: OP_CCLASS_MB, MBRanges: []CodeRange{{Lo: 0x3041, Hi: 0x3093}}})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	ok, region, err := runMatch(t, p, "Xのゆ", 0)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if region.Beg[0] != 1 {
		t.Fatalf("beg = %d, want 1 (first hiragana)", region.Beg[0])
	}
	if got := region.End[0] - region.Beg[0]; got != 3 {
		t.Fatalf("width = %d, want 3", got)
	}

	if ok, _, err := runMatch(t, p, "ABC", 0); err != nil || ok {
		t.Fatalf("expected mismatch on ASCII-only subject, ok=%v err=%v", ok, err)
	}
}

func TestNegatedMultibyteClassAcceptsInvalidSequence(t *testing.T) {
	b := NewProgramBuilder(UTF8Encoding{})
	b.Emit(Operation{Op: OP_CCLASS_MB_NOT, MBRanges: []CodeRange{{Lo: 0x3041, Hi: 0x3093}}})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	region := NewRegion(1)
	mp := NewMatchParam(0)
	// 0xFF is an invalid UTF-8 lead: the negated class treats it as a
	// non-member, i.e. a successful negation.
	if err := Search(p, []byte{0xFF}, 0, -1, region, mp, 0); err != nil {
		t.Fatalf("search: %v", err)
	}
}
