package onigvm

// repeatCountOf reads the current iteration count for a repeat id. With no
// subexpression calls in the program the side array is authoritative;
// under recursion the same repeat id can be live at several call levels at
// once, so the count is resolved by scanning the stack instead.
func (vm *vmState) repeatCountOf(id int) (int, bool) {
	if vm.prog.NumCall == 0 {
		return vm.repeatCount[id], true
	}
	return vm.stack.repeatCountSearch(id)
}

func (vm *vmState) pushRepeatInc(id, count int) error {
	err := vm.stack.push(frame{
		kind: frameRepeatInc, zid: id,
		count: count, prevCount: vm.repeatCount[id],
	})
	if err != nil {
		return err
	}
	vm.repeatCount[id] = count
	return nil
}

// stepRepeat implements REPEAT/REPEAT_NG (loop entry) and
// REPEAT_INC/REPEAT_INC_NG (loop increment).
//
// REPEAT pushes a counter frame at 0 and, when the lower bound is 0, an
// ALT allowing the body to be skipped entirely (the greedy form prefers
// entering the body, the lazy form prefers skipping it and keeps entry as
// the alternative). REPEAT_INC sits at the end of the body: it increments
// the counter, then stops at the upper bound, loops unconditionally below
// the lower bound, and between the two loops greedily with "exit" pushed
// as the alternative. REPEAT_INC_NG is the lazy mirror.
func (vm *vmState) stepRepeat(op *Operation, pc int) (stepAction, int, error) {
	id := op.RepeatID
	switch op.Op {
	case OP_REPEAT:
		if err := vm.pushRepeatInc(id, 0); err != nil {
			return 0, 0, err
		}
		if vm.prog.Repeats[id].Lower == 0 {
			if err := vm.stack.push(frame{kind: frameAlt, pc: op.Addr, pos: vm.s}); err != nil {
				return 0, 0, err
			}
		}
		return actAdvance, pc + 1, nil

	case OP_REPEAT_NG:
		if err := vm.pushRepeatInc(id, 0); err != nil {
			return 0, 0, err
		}
		if vm.prog.Repeats[id].Lower == 0 {
			if err := vm.stack.push(frame{kind: frameAlt, pc: pc + 1, pos: vm.s}); err != nil {
				return 0, 0, err
			}
			return actAdvance, op.Addr, nil
		}
		return actAdvance, pc + 1, nil

	case OP_REPEAT_INC:
		count, ok := vm.repeatCountOf(id)
		if !ok {
			return 0, 0, ErrStackBug
		}
		count++
		rr := vm.prog.Repeats[id]
		next := pc + 1
		switch {
		case rr.Upper != InfiniteLen && count >= rr.Upper:
			// done looping; fall through
		case count >= rr.Lower:
			if err := vm.stack.push(frame{kind: frameAlt, pc: pc + 1, pos: vm.s}); err != nil {
				return 0, 0, err
			}
			next = rr.BodyAddr
		default:
			next = rr.BodyAddr
		}
		if err := vm.pushRepeatInc(id, count); err != nil {
			return 0, 0, err
		}
		return actAdvance, next, nil

	case OP_REPEAT_INC_NG:
		count, ok := vm.repeatCountOf(id)
		if !ok {
			return 0, 0, ErrStackBug
		}
		count++
		if err := vm.pushRepeatInc(id, count); err != nil {
			return 0, 0, err
		}
		rr := vm.prog.Repeats[id]
		switch {
		case rr.Upper != InfiniteLen && count >= rr.Upper:
			return actAdvance, pc + 1, nil
		case count >= rr.Lower:
			if err := vm.stack.push(frame{kind: frameAlt, pc: rr.BodyAddr, pos: vm.s}); err != nil {
				return 0, 0, err
			}
			return actAdvance, pc + 1, nil
		default:
			return actAdvance, rr.BodyAddr, nil
		}
	}
	return 0, 0, ErrUndefinedBytecode
}

// emptyCheckStartFrame resolves the innermost EMPTY-CHECK-START frame for
// id, through the side array when no subexpression calls exist and by
// stack scan otherwise.
func (vm *vmState) emptyCheckStartFrame(id int) (int, bool) {
	if vm.prog.NumCall == 0 {
		idx := vm.emptyCheckPos[id]
		if idx >= 0 && idx <= vm.stack.top() && vm.stack.frames[idx].kind == frameEmptyCheckStart {
			return idx, true
		}
		return 0, false
	}
	return vm.stack.emptyCheckStartSearch(id)
}

// stepEmptyCheck implements the zero-width-loop guard.
//
// EMPTY_CHECK_START records the subject position on the stack (the side
// array caches the frame index). EMPTY_CHECK_END compares the current
// position to it: if the body consumed nothing, the following opcode — the
// loop's JUMP/PUSH/REPEAT_INC[_NG] continuation — is skipped, so an
// unbounded repetition of a zero-width body cannot run forever. The
// _MEMST variant additionally requires every capture in its bitmap to be
// unchanged since the start marker before calling the iteration empty;
// the _MEMST_PUSH variant supports re-entry through subexpression calls by
// stacking an explicit end marker.
func (vm *vmState) stepEmptyCheck(op *Operation, pc int) (stepAction, int, error) {
	id := op.EmptyCheckID
	switch op.Op {
	case OP_EMPTY_CHECK_START:
		if err := vm.stack.push(frame{
			kind: frameEmptyCheckStart, zid: id, pos: vm.s,
			prevEmpty: vm.emptyCheckPos[id],
		}); err != nil {
			return 0, 0, err
		}
		vm.emptyCheckPos[id] = vm.stack.top()
		return actAdvance, pc + 1, nil

	case OP_EMPTY_CHECK_END:
		idx, ok := vm.emptyCheckStartFrame(id)
		if !ok {
			return 0, 0, ErrStackBug
		}
		if vm.stack.frames[idx].pos == vm.s {
			return actAdvance, pc + 2, nil // skip the loop-continue opcode
		}
		return actAdvance, pc + 1, nil

	case OP_EMPTY_CHECK_END_MEMST:
		idx, ok := vm.emptyCheckStartFrame(id)
		if !ok {
			return 0, 0, ErrStackBug
		}
		if vm.emptyCheckMem(idx, op.EmptyCheckMemBits) {
			return actAdvance, pc + 2, nil
		}
		return actAdvance, pc + 1, nil

	case OP_EMPTY_CHECK_END_MEMST_PUSH:
		idx, ok := vm.stack.emptyCheckStartSearch(id)
		if !ok {
			return 0, 0, ErrStackBug
		}
		if vm.emptyCheckMem(idx, op.EmptyCheckMemBits) {
			return actAdvance, pc + 2, nil
		}
		if err := vm.stack.push(frame{kind: frameEmptyCheckEnd, zid: id}); err != nil {
			return 0, 0, err
		}
		return actAdvance, pc + 1, nil
	}
	return 0, 0, ErrUndefinedBytecode
}

// emptyCheckMem decides whether the loop iteration delimited by the
// EMPTY-CHECK-START frame at startIdx was empty. Position alone is not
// enough for the rigid check: a capture inside the body may have moved
// even though the cursor didn't, and cutting the loop then would change
// what the capture reports. The iteration is empty only if the cursor is
// unchanged and every flagged capture re-captured, if at all, exactly the
// span it already held.
func (vm *vmState) emptyCheckMem(startIdx int, bits []bool) bool {
	klow := &vm.stack.frames[startIdx]
	if klow.pos != vm.s {
		return false
	}
	if len(bits) == 0 {
		return true
	}
	pending := 0
	flagged := make([]bool, len(bits))
	for id, b := range bits {
		if b {
			flagged[id] = true
			pending++
		}
	}
	if pending == 0 {
		return true
	}

	for k := vm.stack.top(); k > startIdx; k-- {
		fk := &vm.stack.frames[k]
		if fk.kind != frameMemEnd || fk.zid >= len(flagged) || !flagged[fk.zid] {
			continue
		}
		// Find the paired MEM-START above the loop entry.
		for kk := startIdx + 1; kk < k; kk++ {
			fkk := &vm.stack.frames[kk]
			if fkk.kind != frameMemStart || fkk.zid != fk.zid {
				continue
			}
			sameSpan := fkk.prevEnd != NotPos && fkk.prevBeg == fkk.pos && fkk.prevEnd == fk.pos
			zeroBoth := fkk.pos == fk.pos && fkk.prevBeg != NotPos && fkk.prevBeg == fkk.prevEnd
			if !sameSpan && !zeroBoth {
				return false // the capture moved: not an empty iteration
			}
			flagged[fk.zid] = false
			pending--
			break
		}
		if pending == 0 {
			break
		}
	}
	return true
}
