package onigvm

import (
	"github.com/coregx/coregex/literal"
	"github.com/coregx/coregex/prefilter"
	"github.com/coregx/coregex/simd"
)

// builtPrefilter returns the SIMD-backed scanner for this program's
// optimize plan, building it on first use. A nil result means the plan has
// no adaptable scanner and the caller falls back to the portable walks in
// prefiltersearch.go.
func (p *Program) builtPrefilter() prefilter.Prefilter {
	p.pfOnce.Do(func() {
		if pf, ok := buildPrefilter(&p.Optimize); ok {
			p.pf = pf
		}
	})
	return p.pf
}

// mapPrefilter adapts a 256-entry byte-presence map (OptimizeMap) to the
// prefilter.Prefilter interface via simd.MemchrInTable, giving programs
// with a scattered first-byte set (character-class anchors, alternations
// of several single bytes) the same SIMD fast path literal-anchored
// programs get.
type mapPrefilter struct {
	table *[256]bool
}

func (m *mapPrefilter) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	i := simd.MemchrInTable(haystack[start:], m.table)
	if i < 0 {
		return -1
	}
	return start + i
}

func (m *mapPrefilter) IsComplete() bool { return false }
func (m *mapPrefilter) LiteralLen() int  { return 1 }
func (m *mapPrefilter) HeapBytes() int   { return 256 }

// buildPrefilter adapts a compile-time OptimizePlan into the prefilter
// package's abstractions. OptimizeStr/OptimizeStrFast wrap the plan's
// exact literal through prefilter.Builder, which picks memchr, memmem or
// Teddy depending on literal shape and CPU features. OptimizeMap wraps
// the plan's presence map. OptimizeStrFastStepForward and OptimizeNone
// return (nil, false): the former keeps the skip-table walk whose hit
// positions the window bookkeeping relies on, the latter has nothing to
// scan for.
func buildPrefilter(plan *OptimizePlan) (prefilter.Prefilter, bool) {
	switch plan.Kind {
	case OptimizeStr, OptimizeStrFast:
		if len(plan.Exact) == 0 {
			return nil, false
		}
		lit := literal.NewLiteral(append([]byte(nil), plan.Exact...), true)
		seq := literal.NewSeq(lit)
		pf := prefilter.NewBuilder(seq, nil).Build()
		if pf == nil {
			return nil, false
		}
		return pf, true

	case OptimizeMap:
		table := plan.PresenceMap
		return &mapPrefilter{table: &table}, true

	default:
		return nil, false
	}
}
