package onigvm

// stepCall implements subexpression call/return. OP_CALL pushes a
// CALL-FRAME recording the return address and increments the live nest
// depth; exceeding the maximum nest level fails the call like a mismatch
// (not an error), while exceeding the per-search invocation budget is a
// hard error. OP_RETURN locates the CALL-FRAME belonging to the current
// call level — skipping frames of calls that already returned, which the
// RETURN sentinels delimit — jumps to its return address, and pushes a
// RETURN sentinel of its own so later stack walks (nest-level
// backreferences, repeat-count searches) can reconstruct call boundaries.
func (vm *vmState) stepCall(op *Operation, pc int) (stepAction, int, error) {
	switch op.Op {
	case OP_CALL:
		if vm.callNest >= vm.mp.subexpCallMaxNest {
			return actFail, 0, nil
		}
		if err := vm.mp.noteCall(); err != nil {
			return 0, 0, err
		}
		if err := vm.stack.push(frame{kind: frameCallFrame, pc: pc + 1}); err != nil {
			return 0, 0, err
		}
		vm.callNest++
		return actAdvance, op.Addr, nil

	case OP_RETURN:
		returnPC := -1
		level := 0
		for i := vm.stack.top(); i > 0; i-- {
			f := &vm.stack.frames[i]
			if f.kind == frameCallFrame {
				if level == 0 {
					returnPC = f.pc
					break
				}
				level--
			} else if f.kind == frameReturn {
				level++
			}
		}
		if returnPC < 0 {
			return 0, 0, ErrStackBug
		}
		if err := vm.stack.push(frame{kind: frameReturn}); err != nil {
			return 0, 0, err
		}
		vm.callNest--
		return actAdvance, returnPC, nil
	}
	return 0, 0, ErrUndefinedBytecode
}
