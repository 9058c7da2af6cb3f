package onigvm

import "bytes"

// forwardSearch locates the next prefilter hit at or after from (scanning
// no further than schRange) and converts it into the window [low, high] of
// candidate match-start positions the driver must try: the plan's
// dist_min/dist_max bounds say how far before the hit a match may begin.
// A window never proves a match — only that no match can start outside it.
func forwardSearch(prog *Program, subject []byte, from, schRange int) (low, high int, ok bool) {
	plan := &prog.Optimize
	enc := prog.Encoding

	p := from
	if plan.DistMin != 0 {
		if len(subject)-p <= plan.DistMin {
			return 0, 0, false
		}
		q := p + plan.DistMin
		for p < q {
			w := enc.CharLen(subject[p:])
			if w == 0 {
				w = 1
			}
			p += w
		}
	}

	for {
		p = prefilterHit(prog, subject, p, schRange)
		if p < 0 || p >= schRange {
			return 0, 0, false
		}
		if p-from < plan.DistMin || !forwardSubAnchorOK(plan, enc, subject, p) {
			w := enc.CharLen(subject[p:])
			if w == 0 {
				w = 1
			}
			p += w
			continue
		}
		break
	}

	if plan.DistMax == 0 {
		return p, p, true
	}
	low = 0
	if plan.DistMax != InfiniteLen && p > plan.DistMax {
		low = p - plan.DistMax
	}
	high = p - plan.DistMin
	if high < 0 {
		high = 0
	}
	return low, high, true
}

// prefilterHit runs the program's scanner over subject[from:to] and
// returns the hit position, or -1. The exact-literal and map plans go
// through the SIMD-backed prefilter when one could be built for them
// (memchr/memmem/Teddy, depending on literal shape and CPU features);
// the step-forward plan keeps the skip-table walk, whose candidate
// positions the window bookkeeping depends on.
func prefilterHit(prog *Program, subject []byte, from, to int) int {
	if from >= to {
		return -1
	}
	plan := &prog.Optimize
	switch plan.Kind {
	case OptimizeStr, OptimizeStrFast, OptimizeMap:
		if pf := prog.builtPrefilter(); pf != nil {
			limit := to + len(plan.Exact)
			if limit > len(subject) {
				limit = len(subject)
			}
			hit := pf.Find(subject[:limit], from)
			if hit < 0 || hit >= to {
				return -1
			}
			return hit
		}
		if plan.Kind == OptimizeMap {
			return mapSearch(plan, subject, from, to)
		}
		return slowSearch(plan.Exact, subject, from, to)
	case OptimizeStrFastStepForward:
		return sundayQuickSearch(plan, subject, from, to)
	}
	return -1
}

// slowSearch is the byte-by-byte exact scan fallback used when no
// prefilter could be built for the literal.
func slowSearch(needle, subject []byte, from, to int) int {
	if len(needle) == 0 {
		return from
	}
	limit := to + len(needle)
	if limit > len(subject) {
		limit = len(subject)
	}
	idx := bytes.Index(subject[from:limit], needle)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// sundayQuickSearch implements Sunday's quick-search over the plan's
// precomputed 256-entry skip table: on a window mismatch the candidate
// jumps forward by the skip distance of the byte one past the window,
// rather than rescanning byte by byte.
func sundayQuickSearch(plan *OptimizePlan, subject []byte, from, to int) int {
	needle := plan.Exact
	n := len(needle)
	if n == 0 {
		return from
	}
	pos := from
	for pos < to && pos+n <= len(subject) {
		if bytes.Equal(subject[pos:pos+n], needle) {
			return pos
		}
		next := pos + n + plan.MapOffset
		if next >= len(subject) {
			return -1
		}
		skip := plan.SkipMap[subject[next]]
		if skip <= 0 {
			skip = n + 1
		}
		pos += skip
	}
	return -1
}

// mapSearch scans for the first byte whose presence bit is set.
func mapSearch(plan *OptimizePlan, subject []byte, from, to int) int {
	if to > len(subject) {
		to = len(subject)
	}
	for pos := from; pos < to; pos++ {
		if plan.PresenceMap[subject[pos]] {
			return pos
		}
	}
	return -1
}

// forwardSubAnchorOK checks a prefilter hit against the plan's
// begin-of-line / end-of-line sub-anchor, the line-position constraint the
// compiler proved must hold at the hit.
func forwardSubAnchorOK(plan *OptimizePlan, enc Encoding, subject []byte, pos int) bool {
	switch plan.SubAnchor {
	case SubAnchorBeginLine:
		if pos == 0 {
			return true
		}
		pl := enc.PrevCharLen(subject, pos)
		return pl > 0 && enc.IsNewline(subject[pos-pl:]) > 0
	case SubAnchorEndLine:
		if pos == len(subject) {
			return true
		}
		return enc.IsNewline(subject[pos:]) > 0
	default:
		return true
	}
}

// backwardSearch mirrors forwardSearch for a backward candidate walk: it
// finds the last prefilter hit at or before schStart (but not before
// minRange) and derives the [low, high] window of match-start positions.
func backwardSearch(prog *Program, subject []byte, schStart, minRange int) (low, high int, ok bool) {
	plan := &prog.Optimize
	enc := prog.Encoding
	if schStart < 0 {
		return 0, 0, false
	}

	p := schStart
	for {
		p = prefilterHitBackward(plan, subject, minRange, p)
		if p < 0 {
			return 0, 0, false
		}
		if !forwardSubAnchorOK(plan, enc, subject, p) {
			pl := enc.PrevCharLen(subject, p)
			if pl == 0 {
				return 0, 0, false
			}
			p -= pl
			continue
		}
		break
	}

	if plan.DistMax == 0 || plan.DistMax == InfiniteLen {
		return p, p, true
	}
	low = 0
	if p > plan.DistMax {
		low = p - plan.DistMax
	}
	high = p - plan.DistMin
	if high < 0 {
		high = 0
	}
	return low, high, true
}

// prefilterHitBackward returns the last hit position in [from, upto], or -1.
func prefilterHitBackward(plan *OptimizePlan, subject []byte, from, upto int) int {
	if upto >= len(subject) {
		upto = len(subject) - 1
	}
	if upto < from {
		return -1
	}
	switch plan.Kind {
	case OptimizeStr, OptimizeStrFast, OptimizeStrFastStepForward:
		needle := plan.Exact
		if len(needle) == 0 {
			return upto
		}
		limit := upto + len(needle)
		if limit > len(subject) {
			limit = len(subject)
		}
		idx := bytes.LastIndex(subject[from:limit], needle)
		if idx < 0 {
			return -1
		}
		return from + idx
	case OptimizeMap:
		for pos := upto; pos >= from; pos-- {
			if plan.PresenceMap[subject[pos]] {
				return pos
			}
		}
		return -1
	}
	return -1
}
