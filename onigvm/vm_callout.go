package onigvm

// stepCallout implements user callout invocation. The progress half fires
// immediately when the callout's timing mask includes it; the retraction
// half is armed by pushing a CALLOUT frame, fired later from the
// handled-pop loop when backtracking reverses past this point. A failing
// progress callout (CalloutFail) fails the current attempt exactly like a
// mismatched opcode; an error return aborts the whole match. Retraction
// callouts can only observe, never fail the match.
func (vm *vmState) stepCallout(op *Operation, pc int) (stepAction, int, error) {
	fn := op.CalloutFn
	if fn == nil && op.Op == OP_CALLOUT_CONTENTS {
		fn = vm.mp.ProgressCallout
	}

	if fn != nil && op.CalloutIn&CalloutOnProgress != 0 {
		res, err := fn(&CalloutContext{
			Name:     op.CalloutName,
			Num:      op.CalloutNum,
			Pos:      vm.s,
			UserData: vm.mp.CalloutUserData,
		})
		if err != nil {
			return 0, 0, err
		}
		if res == CalloutFail {
			return actFail, 0, nil
		}
		if res < 0 {
			return 0, 0, ErrInvalidArgument
		}
	}

	if op.CalloutIn&CalloutOnRetraction != 0 {
		rfn := fn
		if op.Op == OP_CALLOUT_CONTENTS && vm.mp.RetractionCallout != nil {
			rfn = vm.mp.RetractionCallout
		}
		if rfn != nil {
			if err := vm.stack.push(frame{
				kind:        frameCallout,
				zid:         op.CalloutNum,
				calloutName: op.CalloutName,
				calloutNum:  op.CalloutNum,
				calloutFn:   rfn,
			}); err != nil {
				return 0, 0, err
			}
		}
	}
	return actAdvance, pc + 1, nil
}
