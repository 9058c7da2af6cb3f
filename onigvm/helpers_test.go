package onigvm

import "testing"

// These helpers hand-assemble small Programs directly through
// ProgramBuilder: the test suite is its own "compiler" for opcode
// streams, the same way the nfa package's tests drive their VMs through
// small builder helpers.

func lit(b string) []byte { return []byte(b) }

// buildLiteral assembles an unanchored literal match: STR_N(s); END.
func buildLiteral(t *testing.T, s string) *Program {
	t.Helper()
	b := NewProgramBuilder(UTF8Encoding{})
	if len(s) > 0 {
		b.Emit(Operation{Op: strOpFor(len(s)), Bytes: lit(s)})
	}
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return p
}

func strOpFor(n int) Opcode {
	switch {
	case n == 1:
		return OP_STR_1
	case n == 2:
		return OP_STR_2
	case n == 3:
		return OP_STR_3
	case n == 4:
		return OP_STR_4
	case n == 5:
		return OP_STR_5
	default:
		return OP_STR_N
	}
}

// buildAnchoredLiteral assembles ^s$: BEGIN_BUF; STR_N(s); END_BUF; END.
func buildAnchoredLiteral(t *testing.T, s string) *Program {
	t.Helper()
	b := NewProgramBuilder(UTF8Encoding{})
	b.Emit(Operation{Op: OP_BEGIN_BUF})
	if len(s) > 0 {
		b.Emit(Operation{Op: strOpFor(len(s)), Bytes: lit(s)})
	}
	b.Emit(Operation{Op: OP_END_BUF})
	b.Emit(Operation{Op: OP_END})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return p
}

func runMatch(t *testing.T, p *Program, subject string, opts MatchOption) (ok bool, region *Region, err error) {
	t.Helper()
	region = NewRegion(p.NumMem + 1)
	mp := NewMatchParam(opts)
	err = Search(p, []byte(subject), 0, -1, region, mp, opts)
	if err == ErrMismatch {
		return false, region, nil
	}
	if err != nil {
		return false, region, err
	}
	return true, region, nil
}
