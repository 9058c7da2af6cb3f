package onigvm

// Match attempts the program against subject at exactly pos (no candidate
// iteration), filling region on success.
func Match(prog *Program, subject []byte, pos int, region *Region, mp *MatchParam, opts MatchOption) error {
	if pos < 0 || pos > len(subject) {
		return &InvalidRangeError{Start: pos, Range: pos, Len: len(subject)}
	}
	mp.Options = opts
	mp.resetForSearch()
	region.resize(prog.NumMem + 1)
	region.Clear()
	if opts.has(CheckValidityOfString) && !validEncoding(prog.Encoding, subject) {
		return ErrInvalidWideChar
	}
	err := matchAt(prog, subject, pos, pos, len(subject), region, mp)
	if err == ErrMismatch && opts.has(FindLongest) && mp.bestLen >= 0 {
		return nil
	}
	return err
}

// Search iterates candidate match-start positions between start and rng —
// forward when rng > start, backward (from start down to rng) otherwise —
// and fills region with the first match found. rng == -1 is shorthand for
// a forward search to the end of subject. The program's compile-time
// anchor summary narrows the candidate range up front, and its optimize
// plan (exact literal or byte map) skips positions no match could start
// at. Returns ErrMismatch when the range is exhausted; in FIND_LONGEST
// mode the longest of all matches in the range is reported instead of the
// first.
func Search(prog *Program, subject []byte, start, rng int, region *Region, mp *MatchParam, opts MatchOption) error {
	if rng < 0 {
		rng = len(subject)
	}
	if start < 0 || start > len(subject) || rng > len(subject) {
		return &InvalidRangeError{Start: start, Range: rng, Len: len(subject)}
	}
	mp.Options = opts
	mp.resetForSearch()
	region.resize(prog.NumMem + 1)
	region.Clear()

	if opts.has(CheckValidityOfString) && !validEncoding(prog.Encoding, subject) {
		return ErrInvalidWideChar
	}

	err := searchInRange(prog, subject, start, rng, region, mp, opts)

	if err == ErrMismatch {
		if opts.has(FindLongest) && mp.bestLen >= 0 {
			return nil // the running best was recorded into region by the VM
		}
		if opts.has(FindNotEmpty) {
			region.Clear()
		}
	}
	return err
}

func searchInRange(prog *Program, subject []byte, start, rng int, region *Region, mp *MatchParam, opts MatchOption) error {
	enc := prog.Encoding
	forward := rng > start

	// dataRange bounds end-of-match position checks inside the VM; for a
	// backward search the match may extend up to (one character past) the
	// original start.
	dataRange := len(subject)
	if forward {
		dataRange = rng
	}

	// Anchor optimization: narrow the candidate range using compile-time
	// anchoring facts before any byte is inspected.
	anc := &prog.Anchor
	if (anc.BeginBuf || anc.BeginPos || anc.EndBuf || anc.SemiEndBuf || anc.AnyCharInfML) && len(subject) > 0 {
		switch {
		case anc.BeginPos, anc.AnyCharInfML && forward:
			if forward {
				rng = start + 1
			} else {
				rng = start
			}

		case anc.BeginBuf:
			if forward {
				if start != 0 {
					return ErrMismatch
				}
				rng = 1
			} else {
				if rng > 0 {
					return ErrMismatch
				}
				start, rng = 0, 0
			}

		case anc.EndBuf, anc.SemiEndBuf:
			minSemiEnd, maxSemiEnd := len(subject), len(subject)
			if anc.SemiEndBuf && !anc.EndBuf {
				if pl := enc.PrevCharLen(subject, len(subject)); pl > 0 && enc.IsNewline(subject[len(subject)-pl:]) > 0 {
					semi := len(subject) - pl
					if semi > 0 && start <= semi {
						minSemiEnd = semi
					}
				}
			}
			if maxSemiEnd < anc.AncDistMin {
				return ErrMismatch
			}
			if forward {
				if anc.AncDistMax >= 0 && minSemiEnd-start > anc.AncDistMax {
					start = minSemiEnd - anc.AncDistMax
				}
				if maxSemiEnd-(rng-1) < anc.AncDistMin {
					if maxSemiEnd+1 < anc.AncDistMin {
						return ErrMismatch
					}
					rng = maxSemiEnd - anc.AncDistMin + 1
				}
				if start > rng {
					return ErrMismatch
				}
			} else {
				if anc.AncDistMax >= 0 && minSemiEnd-rng > anc.AncDistMax {
					rng = minSemiEnd - anc.AncDistMax
				}
				if maxSemiEnd-start < anc.AncDistMin {
					if maxSemiEnd < anc.AncDistMin {
						return ErrMismatch
					}
					start = maxSemiEnd - anc.AncDistMin
				}
				if rng > start {
					return ErrMismatch
				}
			}
		}
	} else if len(subject) == 0 {
		// Empty subject: one anchored attempt iff the program can match a
		// zero-length subject at all.
		if prog.Optimize.ThresholdLen == 0 {
			return matchAt(prog, subject, 0, start, 0, region, mp)
		}
		return ErrMismatch
	}

	if forward {
		return searchForward(prog, subject, start, rng, start, dataRange, region, mp)
	}
	return searchBackward(prog, subject, start, rng, start, region, mp)
}

func searchForward(prog *Program, subject []byte, start, rng, origStart, dataRange int, region *Region, mp *MatchParam) error {
	enc := prog.Encoding
	s := start

	tryAt := func(pos int) error {
		return matchAt(prog, subject, pos, origStart, dataRange, region, mp)
	}
	nextPos := func(pos int) int {
		w := 1
		if pos < len(subject) {
			if cl := enc.CharLen(subject[pos:]); cl > 0 {
				w = cl
			}
		}
		pos += w
		if hint := mp.skipSearch; hint > pos {
			pos = hint
		}
		if pos > len(subject) {
			pos = len(subject)
		}
		return pos
	}

	if prog.Optimize.Kind != OptimizeNone {
		if len(subject)-start < prog.Optimize.ThresholdLen {
			return ErrMismatch
		}
		schRange := rng
		if prog.Optimize.DistMax != 0 {
			if prog.Optimize.DistMax == InfiniteLen || rng+prog.Optimize.DistMax > len(subject) {
				schRange = len(subject)
			} else {
				schRange = rng + prog.Optimize.DistMax
			}
		}

		if prog.Optimize.DistMax != InfiniteLen {
			for {
				low, high, ok := forwardSearch(prog, subject, s, schRange)
				if !ok {
					return ErrMismatch
				}
				if s < low {
					s = low
				}
				for s <= high {
					err := tryAt(s)
					if err != ErrMismatch {
						return err
					}
					s = nextPos(s)
				}
				if s >= rng {
					return ErrMismatch
				}
			}
		}

		// Unbounded distance: the prefilter can only prove presence, not a
		// position window.
		if _, _, ok := forwardSearch(prog, subject, s, schRange); !ok {
			return ErrMismatch
		}
		if prog.Anchor.AnyCharInf && !prog.Anchor.LookBehind && !prog.Anchor.PrecReadNot {
			// A ".*"-prefixed pattern matches from a line head or not at
			// all: after a failed attempt, only retry just past a newline.
			charWidth := func(pos int) int {
				if pos < len(subject) {
					if cl := enc.CharLen(subject[pos:]); cl > 0 {
						return cl
					}
				}
				return 1
			}
			for s < rng {
				err := tryAt(s)
				if err != ErrMismatch {
					return err
				}
				prev := s
				s += charWidth(s)
				if hint := mp.skipSearch; hint > s {
					s = hint
				} else {
					for s < rng && enc.IsNewline(subject[prev:]) == 0 {
						prev = s
						s += charWidth(s)
					}
				}
			}
			return ErrMismatch
		}
	}

	for {
		err := tryAt(s)
		if err != ErrMismatch {
			return err
		}
		if s >= rng {
			return ErrMismatch
		}
		s = nextPos(s)
	}
}

func searchBackward(prog *Program, subject []byte, start, rng, origStart int, region *Region, mp *MatchParam) error {
	enc := prog.Encoding
	// The match may extend one character past the original start position.
	upper := origStart
	if upper < len(subject) {
		if cl := enc.CharLen(subject[upper:]); cl > 0 {
			upper += cl
		} else {
			upper++
		}
	}
	s := start

	tryAt := func(pos int) error {
		return matchAt(prog, subject, pos, origStart, upper, region, mp)
	}
	prevPos := func(pos int) int {
		pl := enc.PrevCharLen(subject, pos)
		if pl == 0 {
			return -1
		}
		return pos - pl
	}

	if prog.Optimize.Kind != OptimizeNone {
		if len(subject)-rng < prog.Optimize.ThresholdLen {
			return ErrMismatch
		}
		minRange := len(subject)
		if len(subject)-rng > prog.Optimize.DistMin {
			minRange = rng + prog.Optimize.DistMin
		}

		if prog.Optimize.DistMax != InfiniteLen {
			for {
				schStart := s
				if len(subject)-s > prog.Optimize.DistMax {
					schStart = s + prog.Optimize.DistMax
				} else if p := prevPos(len(subject)); p >= 0 {
					schStart = p
				}
				low, high, ok := backwardSearch(prog, subject, schStart, minRange)
				if !ok {
					return ErrMismatch
				}
				if s > high {
					s = high
				}
				for s >= low {
					err := tryAt(s)
					if err != ErrMismatch {
						return err
					}
					s = prevPos(s)
					if s < 0 {
						return ErrMismatch
					}
				}
				if s < rng {
					return ErrMismatch
				}
			}
		}

		if p := prevPos(len(subject)); p >= 0 {
			if _, _, ok := backwardSearch(prog, subject, p, minRange); !ok {
				return ErrMismatch
			}
		}
	}

	for s >= rng {
		err := tryAt(s)
		if err != ErrMismatch {
			return err
		}
		s = prevPos(s)
		if s < 0 {
			break
		}
	}
	return ErrMismatch
}

// Scan repeatedly searches subject from position 0 onward, invoking cb
// with each match's index, start offset and filled Region until cb returns
// false, no further match exists, or an error occurs. It returns the
// number of matches delivered. A zero-width match advances the next search
// start by one encoded character to guarantee forward progress.
func Scan(prog *Program, subject []byte, region *Region, mp *MatchParam, opts MatchOption, cb func(n, offset int, r *Region) bool) (int, error) {
	n := 0
	pos := 0
	for {
		err := Search(prog, subject, pos, -1, region, mp, opts)
		if err == ErrMismatch {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		offset := region.Beg[0]
		keep := cb(n, offset, region)
		n++
		if !keep {
			return n, nil
		}
		if region.End[0] == pos {
			if pos >= len(subject) {
				return n, nil
			}
			w := prog.Encoding.CharLen(subject[pos:])
			if w == 0 {
				w = 1
			}
			pos += w
		} else {
			pos = region.End[0]
		}
		if pos > len(subject) {
			return n, nil
		}
	}
}

// validEncoding walks subject with the encoding's CharLen to verify it is
// a well-formed character sequence (the CHECK_VALIDITY_OF_STRING option).
func validEncoding(enc Encoding, subject []byte) bool {
	for i := 0; i < len(subject); {
		w := enc.CharLen(subject[i:])
		if w == 0 {
			return false
		}
		i += w
	}
	return true
}
