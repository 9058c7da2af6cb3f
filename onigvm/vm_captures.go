package onigvm

// stepMem implements the capture-boundary opcode family.
//
// MEM_START/MEM_END write only the side-array cache; the compiler proves
// backtrack doesn't need to restore them (flat, non-nested, non-repeated
// captures). The _PUSH variants additionally push a restorable frame. The
// _REC variants support subexpression-call re-entry: at the end of a
// recursive body they re-resolve the start slot from the innermost
// MEM-START frame the current call level owns, so the pair reported for
// the capture belongs to one invocation rather than mixing two.
func (vm *vmState) stepMem(op *Operation, pc int) (stepAction, int, error) {
	mem := op.MemID
	switch op.Op {
	case OP_MEM_START:
		vm.curBeg[mem] = vm.s
		return actAdvance, pc + 1, nil

	case OP_MEM_START_PUSH:
		if err := vm.stack.push(frame{
			kind: frameMemStart, zid: mem, pos: vm.s,
			prevBeg: vm.curBeg[mem], prevEnd: vm.curEnd[mem],
		}); err != nil {
			return 0, 0, err
		}
		vm.curBeg[mem] = vm.s
		vm.curEnd[mem] = NotPos
		return actAdvance, pc + 1, nil

	case OP_MEM_END:
		vm.curEnd[mem] = vm.s
		return actAdvance, pc + 1, nil

	case OP_MEM_END_PUSH:
		if err := vm.stack.push(frame{
			kind: frameMemEnd, zid: mem, pos: vm.s,
			prevBeg: vm.curBeg[mem], prevEnd: vm.curEnd[mem],
		}); err != nil {
			return 0, 0, err
		}
		vm.curEnd[mem] = vm.s
		return actAdvance, pc + 1, nil

	case OP_MEM_END_PUSH_REC:
		startIdx, ok := vm.stack.getMemStart(mem)
		if !ok {
			return 0, 0, ErrStackBug
		}
		startPos := vm.stack.frames[startIdx].pos
		if err := vm.stack.push(frame{
			kind: frameMemEnd, zid: mem, pos: vm.s,
			prevBeg: vm.curBeg[mem], prevEnd: vm.curEnd[mem],
		}); err != nil {
			return 0, 0, err
		}
		vm.curBeg[mem] = startPos
		vm.curEnd[mem] = vm.s
		return actAdvance, pc + 1, nil

	case OP_MEM_END_REC:
		vm.curEnd[mem] = vm.s
		if startIdx, ok := vm.stack.getMemStart(mem); ok {
			vm.curBeg[mem] = vm.stack.frames[startIdx].pos
		}
		if err := vm.stack.push(frame{kind: frameMemEndMark, zid: mem, pos: vm.s}); err != nil {
			return 0, 0, err
		}
		return actAdvance, pc + 1, nil
	}
	return 0, 0, ErrUndefinedBytecode
}

// stepBackref implements the four-axis backreference family: case
// sensitivity, single vs. multi-capture candidate lists, nest-level
// selection, and value-match vs. mere-existence checks.
func (vm *vmState) stepBackref(op *Operation, pc int) (stepAction, int, error) {
	mode := op.Backref
	if mode.WithLevel {
		var ok bool
		if mode.CheckOnly {
			ok = vm.backrefCheckAtNestedLevel(op.BackrefLevel, op.BackrefIDs)
		} else {
			ok = vm.backrefMatchAtNestedLevel(op.BackrefLevel, op.BackrefIDs, mode.CaseInsensitive)
		}
		if !ok {
			return actFail, 0, nil
		}
		return actAdvance, pc + 1, nil
	}

	for _, id := range op.BackrefIDs {
		beg, end := vm.curBeg[id], vm.curEnd[id]
		if beg == NotPos || end == NotPos {
			continue // undefined candidate; the multi form tries the next
		}
		if mode.CheckOnly {
			return actAdvance, pc + 1, nil
		}
		if consumed, ok := vm.backrefBytesMatch(vm.subject[beg:end], mode.CaseInsensitive); ok {
			vm.s += consumed
			return actAdvance, pc + 1, nil
		}
		if !mode.Multi {
			break
		}
	}
	return actFail, 0, nil
}

// backrefMatchAtNestedLevel walks the stack counting CALL-FRAME/RETURN
// sentinels to locate the capture value recorded at the requested
// subexpression-call ancestor level, then compares it against the subject
// at the current position.
func (vm *vmState) backrefMatchAtNestedLevel(nest int, mems []int, caseInsensitive bool) bool {
	level := 0
	pend := NotPos
	for i := vm.stack.top(); i > 0; i-- {
		f := &vm.stack.frames[i]
		switch f.kind {
		case frameCallFrame:
			level--
		case frameReturn:
			level++
		case frameMemStart:
			if level == nest && memIn(f.zid, mems) && pend != NotPos {
				consumed, ok := vm.backrefBytesMatch(vm.subject[f.pos:pend], caseInsensitive)
				if !ok {
					return false
				}
				vm.s += consumed
				return true
			}
		case frameMemEnd:
			if level == nest && memIn(f.zid, mems) {
				pend = f.pos
			}
		}
	}
	return false
}

// backrefCheckAtNestedLevel is the existence-only variant: succeed iff any
// of the candidate captures closed at the requested ancestor level.
func (vm *vmState) backrefCheckAtNestedLevel(nest int, mems []int) bool {
	level := 0
	for i := vm.stack.top(); i > 0; i-- {
		f := &vm.stack.frames[i]
		switch f.kind {
		case frameCallFrame:
			level--
		case frameReturn:
			level++
		case frameMemEnd:
			if level == nest && memIn(f.zid, mems) {
				return true
			}
		}
	}
	return false
}

func memIn(mem int, mems []int) bool {
	for _, m := range mems {
		if m == mem {
			return true
		}
	}
	return false
}

// backrefBytesMatch compares candidate against the bytes starting at vm.s,
// reporting how many subject bytes it consumed on success. Case-fold
// comparison walks fold sequences byte by byte, since folds can differ in
// length from the source character.
func (vm *vmState) backrefBytesMatch(candidate []byte, caseInsensitive bool) (consumed int, ok bool) {
	if !caseInsensitive {
		if vm.s+len(candidate) > len(vm.subject) {
			return 0, false
		}
		for i, b := range candidate {
			if vm.subject[vm.s+i] != b {
				return 0, false
			}
		}
		return len(candidate), true
	}

	var foldBuf, srcBuf [8]byte
	ci, si := 0, vm.s
	for ci < len(candidate) {
		if si >= len(vm.subject) {
			return 0, false
		}
		cw := vm.enc.CharLen(candidate[ci:])
		if cw == 0 {
			return 0, false
		}
		fc, _ := vm.enc.Fold(foldBuf[:0], candidate[ci:ci+cw])
		fs, sw := vm.enc.Fold(srcBuf[:0], vm.subject[si:])
		if sw == 0 || len(fc) != len(fs) {
			return 0, false
		}
		for i := range fc {
			if fc[i] != fs[i] {
				return 0, false
			}
		}
		ci += cw
		si += sw
	}
	return si - vm.s, true
}
