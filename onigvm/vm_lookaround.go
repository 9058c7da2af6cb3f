package onigvm

// stepMark implements the mark/cut/step-back family that lookaround and
// atomic groups are compiled onto.
//
// MARK pushes a named stop point, optionally recording the current
// position. POP_TO_MARK unwinds the stack back to (and including) the
// matching mark, restoring every handled-pop frame in between but never
// firing retraction callouts, so a negative lookaround's failed trial
// leaves no externally visible trace. CUT_TO_MARK voids every
// to-void-target frame up to the mark without unwinding, the atomic-group
// "commit": ordinary alternatives die, super-alternatives survive, and
// with RestorePos set the cursor snaps back to the position the mark
// recorded (how a positive lookahead un-consumes its body).
// STEP_BACK_START/NEXT walk the subject backward for lookbehind: a fixed
// initial hop, then optional one-character retries funded by a remaining
// budget carried on the pushed alternatives.
func (vm *vmState) stepMark(op *Operation, pc int) (stepAction, int, error) {
	switch op.Op {
	case OP_MARK:
		if err := vm.stack.push(frame{
			kind: frameMark, zid: op.MarkID, pos: vm.s, hasPos: op.SavePos,
		}); err != nil {
			return 0, 0, err
		}
		return actAdvance, pc + 1, nil

	case OP_POP_TO_MARK:
		if !vm.stack.popToMark(vm, op.MarkID) {
			return 0, 0, ErrStackBug
		}
		return actAdvance, pc + 1, nil

	case OP_CUT_TO_MARK:
		pos, hasPos, ok := vm.stack.voidToMark(op.MarkID)
		if !ok {
			return 0, 0, ErrStackBug
		}
		if op.RestorePos && hasPos {
			vm.s = pos
		}
		return actAdvance, pc + 1, nil

	case OP_STEP_BACK_START:
		if op.StepBackN > 0 {
			pos, ok := vm.stepBackChars(vm.s, op.StepBackN)
			if !ok {
				return actFail, 0, nil
			}
			vm.s = pos
		}
		if op.StepBackRemaining != 0 {
			if err := vm.stack.push(frame{
				kind: frameAlt, pc: pc + 1, pos: vm.s, zid: op.StepBackRemaining,
			}); err != nil {
				return 0, 0, err
			}
			return actAdvance, op.Addr, nil
		}
		return actAdvance, pc + 1, nil

	case OP_STEP_BACK_NEXT:
		remaining := vm.poppedZID
		if remaining != InfiniteLen {
			remaining--
		}
		pos, ok := vm.stepBackChars(vm.s, 1)
		if !ok {
			return actFail, 0, nil
		}
		vm.s = pos
		if remaining != 0 {
			if err := vm.stack.push(frame{
				kind: frameAlt, pc: pc, pos: vm.s, zid: remaining,
			}); err != nil {
				return 0, 0, err
			}
		}
		return actAdvance, pc + 1, nil
	}
	return 0, 0, ErrUndefinedBytecode
}

// stepBackChars moves pos backward by n encoded characters, failing if the
// start of the subject is reached first.
func (vm *vmState) stepBackChars(pos, n int) (int, bool) {
	for i := 0; i < n; i++ {
		pl := vm.enc.PrevCharLen(vm.subject, pos)
		if pl == 0 {
			return 0, false
		}
		pos -= pl
	}
	return pos, true
}

// stepSaveVar implements SAVE_VAL/UPDATE_VAR, the primitives behind \K,
// lookbehind position resets and right-range narrowing. SAVE_VAL pushes
// the selected variable's current value as an inert stack record;
// UPDATE_VAR later locates the newest matching record (scoped to the
// current subexpression-call level for the id-keyed forms) and writes it
// into keep, s or rightRange.
func (vm *vmState) stepSaveVar(op *Operation, pc int) (stepAction, int, error) {
	switch op.Op {
	case OP_SAVE_VAL:
		var v int
		switch op.SaveKind {
		case SaveRightRange:
			v = vm.rightRange
		default: // SaveKeep and SaveS both record the cursor
			v = vm.s
		}
		if err := vm.stack.push(frame{
			kind: frameSaveVal, zid: op.SaveID, saveKind: op.SaveKind, pos: v,
		}); err != nil {
			return 0, 0, err
		}
		return actAdvance, pc + 1, nil

	case OP_UPDATE_VAR:
		switch op.UpdateVar {
		case UpdateVarKeepFromStackLast:
			if v, ok := vm.stack.saveValLast(SaveKeep); ok {
				vm.keep = v
			}
		case UpdateVarSFromStack:
			if v, ok := vm.stack.saveValLastID(SaveS, op.SaveID, false); ok {
				vm.s = v
			}
		case UpdateVarRightRangeFromSStack:
			if v, ok := vm.stack.saveValLastID(SaveS, op.SaveID, false); ok {
				vm.rightRange = v
			}
		case UpdateVarRightRangeFromStack:
			if v, ok := vm.stack.saveValLastID(SaveRightRange, op.SaveID, op.UpdateVarClear); ok {
				vm.rightRange = v
			}
		case UpdateVarRightRangeToS:
			vm.rightRange = vm.s
		case UpdateVarRightRangeInit:
			vm.rightRange = vm.initRightRange
		}
		return actAdvance, pc + 1, nil
	}
	return 0, 0, ErrUndefinedBytecode
}
