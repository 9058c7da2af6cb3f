package onigvm

// scratchStackFrames is the initial stack capacity: a match that never
// grows past it costs one allocation for the whole call.
const scratchStackFrames = 128

// btStack is the backtrack stack: a flat slice of tagged frames. It grows
// by doubling via spill-to-heap on exceeding its current capacity,
// preserving content, the same growth discipline nfa.PikeVM's thread
// queues use for their pre-allocated capacity.
type btStack struct {
	frames []frame

	// limit, if non-zero, caps growth in frames. Hitting the cap twice in
	// a row fails with ErrStackLimitOver.
	limit        int
	capExceededN int
}

// newBtStack allocates a stack and pushes the bottom sentinel ALT frame
// referencing the synthetic FINISH address, so an exhausted backtrack
// lands on OP_FINISH instead of underflowing.
func newBtStack(limit int) *btStack {
	s := &btStack{frames: make([]frame, 0, scratchStackFrames), limit: limit}
	s.frames = append(s.frames, frame{kind: frameAlt, pc: finishPC})
	return s
}

// reset reuses an existing stack for a new match call. The driver may call
// the VM many times for one search; the final allocation from a prior call
// is kept and reused rather than reallocated.
func (s *btStack) reset() {
	s.frames = s.frames[:1]
	s.frames[0] = frame{kind: frameAlt, pc: finishPC}
	s.capExceededN = 0
}

// push appends a frame, growing (doubling) on overflow. Returns
// ErrStackLimitOver if growth would exceed the configured limit twice in a
// row.
func (s *btStack) push(f frame) error {
	if len(s.frames) == cap(s.frames) {
		newCap := cap(s.frames) * 2
		if newCap == 0 {
			newCap = scratchStackFrames
		}
		if s.limit != 0 && newCap > s.limit {
			s.capExceededN++
			if s.capExceededN >= 2 {
				return ErrStackLimitOver
			}
			newCap = s.limit
			if len(s.frames) >= newCap {
				return ErrStackLimitOver
			}
		} else {
			s.capExceededN = 0
		}
		grown := make([]frame, len(s.frames), newCap)
		copy(grown, s.frames)
		s.frames = grown
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *btStack) top() int { return len(s.frames) - 1 }

// popOne drops the top frame unconditionally, without reversing anything
// (OP_POP's semantics: the discarded frame is a spent alternative).
func (s *btStack) popOne() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// popNormal pops frames until the next alternative, reversing handled-pop
// side effects according to the program's pop level, and returns that ALT
// frame. The pop level is the minimum discipline that preserves the
// program's semantics, chosen at compile time: free programs never push a
// handled frame whose restoration matters, mem-start programs only need
// capture-start slots restored, full programs need everything.
// Returns ok=false if the stack underflows the bottom sentinel.
func (s *btStack) popNormal(vm *vmState, level StackPopLevel) (f frame, ok bool) {
	for {
		top := s.top()
		if top < 0 {
			return frame{}, false
		}
		f = s.frames[top]
		s.frames = s.frames[:top]
		if f.kind.isAlt() {
			return f, true
		}
		switch level {
		case PopLevelFree:
			// nothing to reverse
		case PopLevelMemStart:
			if f.kind == frameMemStart {
				vm.curBeg[f.zid] = f.prevBeg
				vm.curEnd[f.zid] = f.prevEnd
			}
		default:
			if f.kind.needsHandledPop() {
				vm.reverseHandledPop(&f, true)
			}
		}
		if top == 0 {
			return frame{}, false
		}
	}
}

// popToMark pops until a MARK frame matching id, reversing handled-pop side
// effects but never invoking retraction callouts: a negative lookaround's
// failed trial must not externalize its speculative progress.
func (s *btStack) popToMark(vm *vmState, id int) bool {
	for {
		top := s.top()
		if top <= 0 {
			return false
		}
		f := s.frames[top]
		s.frames = s.frames[:top]
		if !f.kind.handledTil() {
			continue
		}
		if f.kind == frameMark {
			if f.zid == id {
				return true
			}
			continue
		}
		if f.kind.needsHandledPop() {
			vm.reverseHandledPop(&f, false)
		}
	}
}

// voidToMark walks backward erasing every to-void-target frame up to and
// including the MARK matching id, implementing "cut" (atomic groups):
// a voided frame can no longer be resumed by a later backtrack, but the
// stack above the mark is otherwise left in place. Marks with a different
// id are left intact. Returns the voided mark's recorded position.
func (s *btStack) voidToMark(id int) (pos int, hasPos, ok bool) {
	for i := s.top(); i > 0; i-- {
		f := &s.frames[i]
		if !f.kind.isToVoidTarget() {
			continue
		}
		if f.kind == frameMark {
			if f.zid != id {
				continue // don't void a different mark
			}
			pos, hasPos = f.pos, f.hasPos
			f.kind = frameVoid
			return pos, hasPos, true
		}
		f.kind = frameVoid
	}
	return 0, false, false
}

// getMemStart scans backward for the MEM-START frame governing capture
// mem, skipping over balanced end-mark/start pairs so a recursive
// subexpression's inner capture of the same group doesn't shadow the
// frame the current call level owns.
func (s *btStack) getMemStart(mem int) (idx int, ok bool) {
	level := 0
	for i := s.top(); i > 0; i-- {
		f := &s.frames[i]
		if f.kind.isMemEndOrMark() && f.zid == mem {
			level++
		} else if f.kind == frameMemStart && f.zid == mem {
			if level == 0 {
				return i, true
			}
			level--
		}
	}
	return 0, false
}

// saveValLast returns the value of the newest SAVE-VAL frame of the given
// kind, regardless of id or call level.
func (s *btStack) saveValLast(kind SaveValKind) (int, bool) {
	for i := s.top(); i > 0; i-- {
		f := &s.frames[i]
		if f.kind == frameSaveVal && f.saveKind == kind {
			return f.pos, true
		}
	}
	return 0, false
}

// saveValLastID returns the value of the newest SAVE-VAL frame of the
// given kind and id belonging to the current subexpression-call level
// (frames saved by deeper, already-returned calls are skipped by the
// CALL-FRAME/RETURN level count). clear voids the found frame so a
// once-only consumer cannot read it twice.
func (s *btStack) saveValLastID(kind SaveValKind, id int, clear bool) (int, bool) {
	level := 0
	for i := s.top(); i > 0; i-- {
		f := &s.frames[i]
		switch {
		case f.kind == frameSaveVal && f.saveKind == kind && f.zid == id:
			if level == 0 {
				v := f.pos
				if clear {
					f.kind = frameVoid
				}
				return v, true
			}
		case f.kind == frameCallFrame:
			level--
		case f.kind == frameReturn:
			level++
		}
	}
	return 0, false
}

// repeatCountSearch scans for the newest REPEAT-INC frame for repeat id,
// skipping whole already-returned subexpression calls so an outer loop's
// counter isn't confused with a recursive inner instance's.
func (s *btStack) repeatCountSearch(id int) (int, bool) {
	for i := s.top(); i > 0; i-- {
		f := &s.frames[i]
		if f.kind == frameRepeatInc && f.zid == id {
			return f.count, true
		}
		if f.kind == frameReturn {
			// Skip the whole returned call body.
			level := -1
			for i--; i > 0; i-- {
				if s.frames[i].kind == frameCallFrame {
					level++
					if level == 0 {
						break
					}
				} else if s.frames[i].kind == frameReturn {
					level--
				}
			}
		}
	}
	return 0, false
}

// emptyCheckStartSearch returns the index of the innermost
// EMPTY-CHECK-START frame for id.
func (s *btStack) emptyCheckStartSearch(id int) (int, bool) {
	for i := s.top(); i > 0; i-- {
		f := &s.frames[i]
		if f.kind == frameEmptyCheckStart && f.zid == id {
			return i, true
		}
	}
	return 0, false
}

// finishPC is the synthetic address the bottom sentinel ALT returns to;
// reaching it ends the interpreter via OP_FINISH semantics.
const finishPC = -1
