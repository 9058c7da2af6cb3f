package onigvm

import "time"

// stepAction is the outcome of executing one opcode. The match loop has
// exactly three exit idioms: advance to the next op, fail (pop + resume at
// the popped pc/pos), or bail out with an error or success code.
// actMatched/actFinished are the two flavors of "success".
type stepAction int

const (
	actAdvance stepAction = iota
	actFail
	actMatched
	actFinished
)

// vmState is the mutable state of one VM invocation: current subject
// pointer, keep (mutable left edge), rightRange (mutable end-of-match
// upper bound), side arrays and the backtrack stack. One vmState is used
// per matchAt call; it never outlives the call.
type vmState struct {
	prog    *Program
	subject []byte
	enc     Encoding

	s              int // current subject position
	sstart         int // position this matchAt attempt started from
	keep           int // match anchor left edge, mutable via SAVE_VAL/UPDATE_VAR
	rightRange     int // mutable upper bound for end-of-match checks
	initRightRange int
	startOfSearch  int // position the enclosing Search call started from

	stack *btStack

	// Side-array caches: current capture offsets, repeat counters and
	// empty-check positions, restored on pop. Authoritative only while the
	// program contains no subexpression calls; with NumCall > 0 the repeat
	// and empty-check reads fall back to scanning the stack, since the
	// same id can be live at several call levels at once.
	curBeg, curEnd []int
	repeatCount    []int
	emptyCheckPos  []int

	callNest  int
	poppedZID int // zid of the last ALT resumed by fail (step-back budget)

	mp      *MatchParam
	region  *Region
	options MatchOption
}

func newVMState(prog *Program, subject []byte, region *Region, mp *MatchParam, opts MatchOption) *vmState {
	n := prog.NumMem + 1
	vm := &vmState{
		prog:          prog,
		subject:       subject,
		enc:           prog.Encoding,
		stack:         mp.stack,
		curBeg:        make([]int, n),
		curEnd:        make([]int, n),
		repeatCount:   make([]int, len(prog.Repeats)),
		emptyCheckPos: make([]int, prog.NumEmptyCheck),
		mp:            mp,
		region:        region,
		options:       opts,
	}
	for i := range vm.curBeg {
		vm.curBeg[i] = NotPos
		vm.curEnd[i] = NotPos
	}
	for i := range vm.emptyCheckPos {
		vm.emptyCheckPos[i] = NotPos
	}
	return vm
}

// matchAt tries to match prog against subject starting exactly at pos,
// honoring startOfSearch for OP_CHECK_POSITION's SEARCH_START mode and
// rightRange as the initial end-of-match upper bound. It returns
// ErrMismatch (no match at pos), nil with the region filled (match), or a
// *MatchError for budget/validity/internal failures.
func matchAt(prog *Program, subject []byte, pos, startOfSearch, rightRange int, region *Region, mp *MatchParam) error {
	mp.resetForCall()
	vm := newVMState(prog, subject, region, mp, mp.Options)
	vm.s = pos
	vm.sstart = pos
	vm.keep = pos
	vm.startOfSearch = startOfSearch
	vm.rightRange = rightRange
	vm.initRightRange = rightRange

	pc := 0
	for {
		if pc == finishPC {
			return vm.finish()
		}
		if pc < 0 || pc >= len(prog.Ops) {
			return ErrUndefinedBytecode
		}
		op := &prog.Ops[pc]
		action, next, err := vm.step(op, pc)
		if err != nil {
			return err
		}

		switch action {
		case actAdvance:
			pc = next
			continue
		case actFinished:
			return vm.finish()
		case actMatched:
			return nil // region already written by stepEnd
		}

		// actFail: pop and resume at the stored alternative.
		if err := mp.noteFail(time.Now); err != nil {
			return err
		}
		f, ok := vm.stack.popNormal(vm, prog.StackPopLevel)
		if !ok {
			return ErrStackBug
		}
		pc = f.pc
		vm.s = f.pos
		vm.poppedZID = f.zid
	}
}

// finish implements OP_FINISH: end the interpreter without a match at this
// start position. In longest mode the running best lives in the
// MatchParam; the search driver consults it after the range is exhausted.
func (vm *vmState) finish() error {
	return ErrMismatch
}

// stepEnd implements OP_END. It enforces the MATCH_WHOLE_STRING and
// FIND_NOT_EMPTY options, then either reports the match (first-match
// mode), or records it as the running best and forces a retry so the rest
// of the range is still explored (FIND_LONGEST), or hands the match to the
// each-match callback and retries.
func (vm *vmState) stepEnd() (stepAction, int, error) {
	if vm.options.has(MatchWholeString) && vm.s != len(vm.subject) {
		return actFail, 0, nil
	}
	n := vm.s - vm.sstart
	if n == 0 && vm.options.has(FindNotEmpty) {
		return actFail, 0, nil
	}

	if vm.options.has(FindLongest) {
		if n > vm.mp.bestLen {
			vm.mp.bestLen = n
			vm.mp.bestStart = vm.sstart
			vm.fillRegion()
		} else if vm.s >= vm.rightRange && vm.mp.bestStart == vm.sstart {
			// The best already extends to the right edge; nothing longer
			// can exist. Report it without refilling the region: it still
			// holds the best match, which the current shorter one is not.
			return actMatched, 0, nil
		} else {
			return actFail, 0, nil
		}
		if err := vm.fireEachMatch(); err != nil {
			return 0, 0, err
		}
		return actFail, 0, nil
	}

	vm.fillRegion()
	if vm.options.has(CallbackEachMatch) && vm.mp.EachMatchCallback != nil {
		if err := vm.fireEachMatch(); err != nil {
			return 0, 0, err
		}
		return actFail, 0, nil // keep enumerating
	}
	return actMatched, 0, nil
}

func (vm *vmState) fireEachMatch() error {
	if !vm.options.has(CallbackEachMatch) || vm.mp.EachMatchCallback == nil {
		return nil
	}
	if r := vm.mp.EachMatchCallback(vm.sstart, vm.s, vm.region, vm.mp.CalloutUserData); r < 0 {
		return ErrInvalidArgument
	}
	return nil
}

// fillRegion writes the whole-match span and every capture into the
// caller's region, plus the capture-history tree when the program asked
// for one. Undefined captures get NotPos.
func (vm *vmState) fillRegion() {
	keep := vm.keep
	if keep > vm.s {
		keep = vm.s
	}
	vm.region.resize(vm.prog.NumMem + 1)
	vm.region.Beg[0] = keep
	vm.region.End[0] = vm.s
	for i := 1; i <= vm.prog.NumMem; i++ {
		if vm.curBeg[i] != NotPos && vm.curEnd[i] != NotPos {
			vm.region.Beg[i] = vm.curBeg[i]
			vm.region.End[i] = vm.curEnd[i]
		} else {
			vm.region.Beg[i] = NotPos
			vm.region.End[i] = NotPos
		}
	}
	if vm.prog.HasCaptureHistory() {
		vm.region.History = vm.buildHistory(keep)
	}
}

// step dispatches one opcode. It never pops the stack itself on failure;
// that discipline lives entirely in matchAt's loop so every opcode handler
// shares identical entry and exit invariants.
func (vm *vmState) step(op *Operation, pc int) (stepAction, int, error) {
	switch op.Op {
	case OP_FINISH:
		return actFinished, 0, nil
	case OP_END:
		return vm.stepEnd()
	case OP_FAIL:
		return actFail, 0, nil

	case OP_STR_1, OP_STR_2, OP_STR_3, OP_STR_4, OP_STR_5, OP_STR_N,
		OP_STR_MB2N1, OP_STR_MB2N, OP_STR_MB3N, OP_STR_MBN:
		return vm.stepLiteral(op, pc)

	case OP_CCLASS, OP_CCLASS_NOT, OP_CCLASS_MB, OP_CCLASS_MB_NOT, OP_CCLASS_MIX, OP_CCLASS_MIX_NOT:
		return vm.stepClass(op, pc)

	case OP_ANYCHAR, OP_ANYCHAR_ML:
		return vm.stepAnyChar(op, pc)
	case OP_ANYCHAR_STAR, OP_ANYCHAR_ML_STAR, OP_ANYCHAR_STAR_PEEK_NEXT, OP_ANYCHAR_ML_STAR_PEEK_NEXT:
		return vm.stepAnyCharStar(op, pc)

	case OP_WORD, OP_NO_WORD, OP_WORD_ASCII, OP_NO_WORD_ASCII:
		return vm.stepWord(op, pc)
	case OP_WORD_BOUNDARY, OP_NO_WORD_BOUNDARY:
		return vm.stepWordBoundary(op, pc)

	case OP_BEGIN_BUF, OP_END_BUF, OP_SEMI_END_BUF, OP_BEGIN_LINE, OP_END_LINE:
		return vm.stepAnchor(op, pc)
	case OP_CHECK_POSITION:
		return vm.stepCheckPosition(op, pc)

	case OP_BACKREF1, OP_BACKREF2, OP_BACKREF_N, OP_BACKREF_MULTI, OP_BACKREF_MULTI_IC,
		OP_BACKREF_WITH_LEVEL, OP_BACKREF_WITH_LEVEL_IC, OP_BACKREF_CHECK, OP_BACKREF_CHECK_WITH_LEVEL:
		return vm.stepBackref(op, pc)

	case OP_MEM_START, OP_MEM_START_PUSH, OP_MEM_END, OP_MEM_END_PUSH, OP_MEM_END_REC, OP_MEM_END_PUSH_REC:
		return vm.stepMem(op, pc)

	case OP_REPEAT, OP_REPEAT_NG, OP_REPEAT_INC, OP_REPEAT_INC_NG:
		return vm.stepRepeat(op, pc)
	case OP_EMPTY_CHECK_START, OP_EMPTY_CHECK_END, OP_EMPTY_CHECK_END_MEMST, OP_EMPTY_CHECK_END_MEMST_PUSH:
		return vm.stepEmptyCheck(op, pc)

	case OP_JUMP:
		return actAdvance, op.Addr, nil
	case OP_PUSH:
		if err := vm.stack.push(frame{kind: frameAlt, pc: op.Addr, pos: vm.s}); err != nil {
			return 0, 0, err
		}
		return actAdvance, pc + 1, nil
	case OP_PUSH_SUPER:
		if err := vm.stack.push(frame{kind: frameSuperAlt, pc: op.Addr, pos: vm.s}); err != nil {
			return 0, 0, err
		}
		return actAdvance, pc + 1, nil
	case OP_POP:
		vm.stack.popOne()
		return actAdvance, pc + 1, nil
	case OP_PUSH_OR_JUMP_EXACT1:
		if vm.s < len(vm.subject) && vm.subject[vm.s] == op.PeekByte {
			if err := vm.stack.push(frame{kind: frameAlt, pc: op.Addr, pos: vm.s}); err != nil {
				return 0, 0, err
			}
			return actAdvance, pc + 1, nil
		}
		return actAdvance, op.Addr, nil
	case OP_PUSH_IF_PEEK_NEXT:
		if vm.s < len(vm.subject) && vm.subject[vm.s] == op.PeekByte {
			if err := vm.stack.push(frame{kind: frameAlt, pc: op.Addr, pos: vm.s}); err != nil {
				return 0, 0, err
			}
		}
		return actAdvance, pc + 1, nil

	case OP_MARK, OP_POP_TO_MARK, OP_CUT_TO_MARK, OP_STEP_BACK_START, OP_STEP_BACK_NEXT:
		return vm.stepMark(op, pc)
	case OP_SAVE_VAL, OP_UPDATE_VAR:
		return vm.stepSaveVar(op, pc)

	case OP_CALL, OP_RETURN:
		return vm.stepCall(op, pc)

	case OP_CALLOUT_CONTENTS, OP_CALLOUT_NAME:
		return vm.stepCallout(op, pc)
	}
	return 0, 0, ErrUndefinedBytecode
}

func (vm *vmState) stepLiteral(op *Operation, pc int) (stepAction, int, error) {
	n := len(op.Bytes)
	if vm.s+n > len(vm.subject) {
		return actFail, 0, nil
	}
	for i := 0; i < n; i++ {
		if vm.subject[vm.s+i] != op.Bytes[i] {
			return actFail, 0, nil
		}
	}
	vm.s += n
	return actAdvance, pc + 1, nil
}

func testBitmap(bm *[32]byte, b byte) bool {
	return bm[b>>3]&(1<<(b&7)) != 0
}

func inCodeRanges(ranges []CodeRange, r rune) bool {
	for _, cr := range ranges {
		if r >= cr.Lo && r <= cr.Hi {
			return true
		}
	}
	return false
}

func (vm *vmState) stepClass(op *Operation, pc int) (stepAction, int, error) {
	if vm.s >= len(vm.subject) {
		return actFail, 0, nil
	}
	b := vm.subject[vm.s]
	isMB := vm.enc.IsMultibyteLead(b)

	switch op.Op {
	case OP_CCLASS, OP_CCLASS_NOT:
		if isMB {
			return actFail, 0, nil
		}
		match := op.Bitmap != nil && testBitmap(op.Bitmap, b)
		if op.Op == OP_CCLASS_NOT {
			match = !match
		}
		if !match {
			return actFail, 0, nil
		}
		vm.s++
		return actAdvance, pc + 1, nil

	case OP_CCLASS_MB, OP_CCLASS_MB_NOT:
		r, w := vm.enc.DecodeRune(vm.subject[vm.s:])
		if w == 0 {
			// Invalid/short multibyte sequence: the negated variant treats
			// this as a non-match of the class, i.e. success of the negation.
			if op.Op == OP_CCLASS_MB_NOT {
				vm.s++
				return actAdvance, pc + 1, nil
			}
			return actFail, 0, nil
		}
		match := inCodeRanges(op.MBRanges, r)
		if op.Op == OP_CCLASS_MB_NOT {
			match = !match
		}
		if !match {
			return actFail, 0, nil
		}
		vm.s += w
		return actAdvance, pc + 1, nil

	default: // OP_CCLASS_MIX, OP_CCLASS_MIX_NOT
		var match bool
		width := 1
		if !isMB {
			match = op.Bitmap != nil && testBitmap(op.Bitmap, b)
		} else {
			r, w := vm.enc.DecodeRune(vm.subject[vm.s:])
			if w == 0 {
				if op.Op == OP_CCLASS_MIX_NOT {
					vm.s++
					return actAdvance, pc + 1, nil
				}
				return actFail, 0, nil
			}
			match = inCodeRanges(op.MBRanges, r)
			width = w
		}
		if op.Op == OP_CCLASS_MIX_NOT {
			match = !match
		}
		if !match {
			return actFail, 0, nil
		}
		vm.s += width
		return actAdvance, pc + 1, nil
	}
}

func (vm *vmState) stepAnyChar(op *Operation, pc int) (stepAction, int, error) {
	if vm.s >= len(vm.subject) {
		return actFail, 0, nil
	}
	if op.Op == OP_ANYCHAR && vm.enc.IsNewline(vm.subject[vm.s:]) > 0 {
		return actFail, 0, nil
	}
	w := vm.enc.CharLen(vm.subject[vm.s:])
	if w == 0 {
		return actFail, 0, nil
	}
	vm.s += w
	return actAdvance, pc + 1, nil
}

// stepAnyCharStar implements the greedy ".*"/"(?m).*" families: push an
// ALT at each position then advance, so later backtracking can give
// characters back one at a time. The PEEK_NEXT variants only push that ALT
// when the next byte equals the hinted follower, pruning backtrack points
// for patterns like ".*x".
func (vm *vmState) stepAnyCharStar(op *Operation, pc int) (stepAction, int, error) {
	multiline := op.Op == OP_ANYCHAR_ML_STAR || op.Op == OP_ANYCHAR_ML_STAR_PEEK_NEXT
	peek := op.Op == OP_ANYCHAR_STAR_PEEK_NEXT || op.Op == OP_ANYCHAR_ML_STAR_PEEK_NEXT

	for {
		if vm.s >= len(vm.subject) {
			return actAdvance, pc + 1, nil
		}
		if !multiline && vm.enc.IsNewline(vm.subject[vm.s:]) > 0 {
			return actAdvance, pc + 1, nil
		}
		w := vm.enc.CharLen(vm.subject[vm.s:])
		if w == 0 {
			return actAdvance, pc + 1, nil
		}
		if !peek || (vm.s < len(vm.subject) && vm.subject[vm.s] == op.PeekByte) {
			if err := vm.stack.push(frame{kind: frameAlt, pc: pc + 1, pos: vm.s}); err != nil {
				return 0, 0, err
			}
		}
		vm.s += w
	}
}

func (vm *vmState) stepWord(op *Operation, pc int) (stepAction, int, error) {
	if vm.s >= len(vm.subject) {
		return actFail, 0, nil
	}
	ascii := op.Op == OP_WORD_ASCII || op.Op == OP_NO_WORD_ASCII
	neg := op.Op == OP_NO_WORD || op.Op == OP_NO_WORD_ASCII

	var isWord bool
	if ascii {
		isWord = vm.enc.IsWordASCII(vm.subject[vm.s:])
	} else {
		isWord = vm.enc.IsWord(vm.subject[vm.s:])
	}
	if neg {
		isWord = !isWord
	}
	if !isWord {
		return actFail, 0, nil
	}
	w := vm.enc.CharLen(vm.subject[vm.s:])
	if w == 0 {
		w = 1
	}
	vm.s += w
	return actAdvance, pc + 1, nil
}

func (vm *vmState) stepWordBoundary(op *Operation, pc int) (stepAction, int, error) {
	prevIsWord := false
	if pl := vm.enc.PrevCharLen(vm.subject, vm.s); pl > 0 {
		prevIsWord = vm.enc.IsWord(vm.subject[vm.s-pl:])
	}
	curIsWord := vm.s < len(vm.subject) && vm.enc.IsWord(vm.subject[vm.s:])
	boundary := prevIsWord != curIsWord
	if op.Op == OP_NO_WORD_BOUNDARY {
		boundary = !boundary
	}
	if !boundary {
		return actFail, 0, nil
	}
	return actAdvance, pc + 1, nil
}

func (vm *vmState) stepAnchor(op *Operation, pc int) (stepAction, int, error) {
	ok := false
	switch op.Op {
	case OP_BEGIN_BUF:
		ok = vm.s == 0 && !vm.options.has(NotBeginString)
	case OP_END_BUF:
		ok = vm.s == len(vm.subject) && !vm.options.has(NotEndString)
	case OP_SEMI_END_BUF:
		ok = vm.s == len(vm.subject)
		if !ok && vm.enc.IsNewline(vm.subject[vm.s:]) > 0 {
			w := vm.enc.IsNewline(vm.subject[vm.s:])
			ok = vm.s+w == len(vm.subject)
		}
		ok = ok && !vm.options.has(NotEndString)
	case OP_BEGIN_LINE:
		if vm.s == 0 {
			ok = !vm.options.has(NotBOL)
		} else {
			pl := vm.enc.PrevCharLen(vm.subject, vm.s)
			ok = pl > 0 && vm.enc.IsNewline(vm.subject[vm.s-pl:]) > 0
		}
	case OP_END_LINE:
		if vm.s == len(vm.subject) {
			ok = !vm.options.has(NotEOL)
		} else {
			ok = vm.enc.IsNewline(vm.subject[vm.s:]) > 0
		}
	}
	if !ok {
		return actFail, 0, nil
	}
	return actAdvance, pc + 1, nil
}

func (vm *vmState) stepCheckPosition(op *Operation, pc int) (stepAction, int, error) {
	var ok bool
	switch op.PosMode {
	case CheckSearchStart:
		ok = vm.s == vm.startOfSearch && !vm.options.has(NotBeginPosition)
	case CheckCurrentRightRange:
		ok = vm.s == vm.rightRange
	}
	if !ok {
		return actFail, 0, nil
	}
	return actAdvance, pc + 1, nil
}

// reverseHandledPop reverses the side effect a handled-pop frame recorded
// when it was pushed. allowCallout is false on the pop-to-mark path: a
// negative lookaround's abandoned trial must not fire retraction callouts.
func (vm *vmState) reverseHandledPop(f *frame, allowCallout bool) {
	switch f.kind {
	case frameMemStart, frameMemEnd:
		vm.curBeg[f.zid] = f.prevBeg
		vm.curEnd[f.zid] = f.prevEnd
	case frameRepeatInc:
		vm.repeatCount[f.zid] = f.prevCount
	case frameEmptyCheckStart:
		vm.emptyCheckPos[f.zid] = f.prevEmpty
	case frameCallFrame:
		vm.callNest--
	case frameReturn:
		vm.callNest++
	case frameCallout:
		if allowCallout && f.calloutFn != nil {
			_, _ = f.calloutFn(&CalloutContext{
				Name: f.calloutName, Num: f.calloutNum, Pos: vm.s,
				Retraction: true, UserData: vm.mp.CalloutUserData,
			})
		}
	}
}

// buildHistory reconstructs the capture-history tree rooted at group 0 by
// walking the live stack's MEM_START/MEM_END frames in push order. Only
// groups flagged in the program's CaptureHistoryMask become tree nodes;
// spans of unflagged groups flow through to their nearest flagged ancestor,
// since a capture always nests inside its stack-enclosing groups.
func (vm *vmState) buildHistory(keep int) *CaptureHistoryNode {
	root := &CaptureHistoryNode{GroupID: 0, Beg: keep, End: vm.s}
	mask := vm.prog.CaptureHistoryMask
	inMask := func(id int) bool { return id < len(mask) && mask[id] }

	var open []*CaptureHistoryNode
	attach := func(n *CaptureHistoryNode) {
		if len(open) > 0 {
			p := open[len(open)-1]
			p.Children = append(p.Children, n)
		} else {
			root.Children = append(root.Children, n)
		}
	}
	for i := 1; i <= vm.stack.top(); i++ {
		f := &vm.stack.frames[i]
		switch f.kind {
		case frameMemStart:
			if inMask(f.zid) {
				n := &CaptureHistoryNode{GroupID: f.zid, Beg: f.pos, End: NotPos}
				attach(n)
				open = append(open, n)
			}
		case frameMemEnd:
			if len(open) > 0 && open[len(open)-1].GroupID == f.zid {
				open[len(open)-1].End = f.pos
				open = open[:len(open)-1]
			}
		}
	}
	return root
}
