package onigvm

// frameKind tags a stack frame with its variant. Property bits are folded
// into the value itself: the low bit marks an alternative (a popNormal
// stop point), bit 0x0010 marks "needs handled-pop" (this frame mutated
// shared bookkeeping that a pop must reverse), and the bits collected in
// maskToVoidTarget mark frames a cut operation may erase.
// Keeping these as bits on a tagged struct, rather than a pointer graph of
// frame subclasses, is what lets popNormal and popToMark be single
// table-driven loops instead of a virtual dispatch per frame.
type frameKind uint16

const (
	maskPopUsed       frameKind = 0x0001
	maskPopHandled    frameKind = 0x0010
	maskPopHandledTil frameKind = maskPopHandled | 0x0004
	maskToVoidTarget  frameKind = 0x100e
	maskMemEndOrMark  frameKind = 0x8000
)

const (
	frameVoid     frameKind = 0x0000 // erased by a cut; skipped by every pop
	frameSuperAlt frameKind = 0x0001 // alternative that survives cut-to-mark
	frameAlt      frameKind = 0x0003 // ordinary alternative, erased by cut

	frameMemStart  frameKind = 0x0010
	frameRepeatInc frameKind = 0x0050
	frameCallout   frameKind = 0x0070

	frameCallFrame frameKind = 0x0410
	frameReturn    frameKind = 0x0510
	frameSaveVal   frameKind = 0x0600
	frameMark      frameKind = 0x0704

	frameEmptyCheckStart frameKind = 0x3010
	frameEmptyCheckEnd   frameKind = 0x5000

	frameMemEnd     frameKind = 0x8030
	frameMemEndMark frameKind = 0x8100
)

func (k frameKind) isAlt() bool           { return k&maskPopUsed != 0 }
func (k frameKind) needsHandledPop() bool { return k&maskPopHandled != 0 }
func (k frameKind) handledTil() bool      { return k&maskPopHandledTil != 0 }
func (k frameKind) isToVoidTarget() bool  { return k&maskToVoidTarget != 0 }
func (k frameKind) isMemEndOrMark() bool  { return k&maskMemEndOrMark != 0 }

// frame is one entry of the backtrack stack. Every variant's payload is a
// small fixed set of fields rather than a subclass, following the same
// tagged-struct convention as onigvm.Operation and nfa.State. zid carries
// whichever id the variant is keyed on: capture id for MEM frames, repeat
// id, empty-check id, mark id, save-val id, callout number — and, for an
// ALT pushed by STEP_BACK_START/NEXT, the remaining step-back budget.
type frame struct {
	kind frameKind
	zid  int

	// ALT / SUPER-ALT resume point; CALL-FRAME return address.
	pc int
	// ALT/MEM/EMPTY-CHECK-START/MARK subject position; SAVE-VAL saved value.
	pos int

	// MEM-START / MEM-END: side-array values to restore on pop.
	prevBeg, prevEnd int

	// REPEAT-INC: the counter value this frame recorded, and the side-array
	// value to restore on pop.
	count     int
	prevCount int

	// EMPTY-CHECK-START: side-array value to restore on pop.
	prevEmpty int

	// MARK: whether pos was recorded at push time.
	hasPos bool

	// SAVE-VAL variable kind.
	saveKind SaveValKind

	// CALLOUT retraction half.
	calloutFn   CalloutFunc
	calloutNum  int
	calloutName string
}
