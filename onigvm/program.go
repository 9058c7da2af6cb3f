package onigvm

import (
	"fmt"
	"sync"

	"github.com/coregx/coregex/prefilter"
)

// ByteRange is an inclusive [Lo, Hi] byte range, used by single-byte class
// bitmaps and by multibyte class range lists after code-point decode.
type ByteRange struct {
	Lo, Hi byte
}

// CodeRange is an inclusive [Lo, Hi] code-point range for multibyte classes.
type CodeRange struct {
	Lo, Hi rune
}

// Operation is one instruction in a compiled Program.
//
// Following nfa.State's tagged-struct layout, every field is valid only for
// the Opcode families that use it; Op determines which. This keeps the
// program representation a flat slice (cache-friendly, no pointer chasing)
// instead of an interface-per-opcode hierarchy.
type Operation struct {
	Op Opcode

	// Jump/push targets, shared by JUMP/PUSH/REPEAT/CALL/etc.
	Addr  int
	Addr2 int

	// Literal bytes for STR_* family.
	Bytes []byte

	// Single-byte class bitmap (256 bits) for CCLASS/CCLASS_NOT/CCLASS_MIX*.
	Bitmap *[256 / 8]byte
	// Multibyte class ranges for CCLASS_MB/CCLASS_MB_NOT/CCLASS_MIX*.
	MBRanges []CodeRange

	// Capture id for MEM_* and REPEAT_* families.
	MemID int
	// Repeat id, paired with RepeatRanges[RepeatID] in the owning Program.
	RepeatID int
	// Empty-check id, paired across EMPTY_CHECK_START/END.
	EmptyCheckID int
	// Bitmap of capture ids whose stability matters to EMPTY_CHECK_END_MEMST[_PUSH].
	EmptyCheckMemBits []bool

	// Backreference target capture ids (len 1 for single-capture forms,
	// >1 for the _MULTI family) and mode.
	BackrefIDs []int
	Backref    BackrefMode
	// Ancestor nest level for the _WITH_LEVEL family.
	BackrefLevel int

	// PEEK_NEXT hint byte for ANYCHAR_*_STAR_PEEK_NEXT and PUSH_IF_PEEK_NEXT.
	PeekByte byte

	// Mark id for MARK/POP_TO_MARK/CUT_TO_MARK. SavePos makes MARK record
	// the current position; RestorePos makes CUT_TO_MARK move the cursor
	// back to it (the positive-lookahead un-consume).
	MarkID     int
	SavePos    bool
	RestorePos bool

	// SAVE_VAL/UPDATE_VAR payload.
	SaveKind       SaveValKind
	SaveID         int
	UpdateVar      UpdateVarKind
	UpdateVarClear bool

	// CHECK_POSITION mode.
	PosMode CheckPositionMode

	// Callout payload.
	CalloutName string
	CalloutNum  int
	CalloutFn   CalloutFunc
	// CalloutIn is the bitmask of when the callout fires: entry, retraction, or both.
	CalloutIn CalloutTiming

	// STEP_BACK_START: fixed number of characters to step back, then an
	// optional retry budget (InfiniteLen for unbounded) resumed at Addr.
	StepBackN         int
	StepBackRemaining int
}

// UpdateVarKind selects which variable OP_UPDATE_VAR writes and where the
// value comes from.
type UpdateVarKind uint8

const (
	UpdateVarKeepFromStackLast UpdateVarKind = iota
	UpdateVarSFromStack
	UpdateVarRightRangeFromSStack
	UpdateVarRightRangeFromStack
	UpdateVarRightRangeToS
	UpdateVarRightRangeInit
)

// CalloutTiming controls when a CALLOUT frame's function is invoked.
type CalloutTiming uint8

const (
	CalloutOnProgress CalloutTiming = 1 << iota
	CalloutOnRetraction
)

// CalloutResult is the outcome of invoking a CalloutFunc.
type CalloutResult int

const (
	CalloutSuccess CalloutResult = 0
	CalloutFail    CalloutResult = 1
)

// CalloutFunc is a user-supplied callback invoked by OP_CALLOUT_CONTENTS /
// OP_CALLOUT_NAME. A negative, non-sentinel return value surfaces to the
// caller as ErrInvalidArgument.
type CalloutFunc func(ctx *CalloutContext) (CalloutResult, error)

// CalloutContext is handed to a CalloutFunc on both entry and retraction.
type CalloutContext struct {
	Name        string
	Num         int
	Pos         int
	Retraction  bool
	UserData    any
}

// RepeatRange describes one REPEAT/REPEAT_NG id's bounds and loop body.
type RepeatRange struct {
	Lower, Upper int // Upper == InfiniteLen for unbounded
	BodyAddr     int
}

// InfiniteLen marks an unbounded repeat upper bound.
const InfiniteLen = -1

// AnchorSummary records compile-time-proven anchoring facts used by the
// search driver to narrow the candidate range before invoking the VM.
type AnchorSummary struct {
	BeginBuf     bool
	BeginPos     bool
	EndBuf       bool
	SemiEndBuf   bool
	AnyCharInf   bool
	AnyCharInfML bool
	LookBehind   bool
	PrecReadNot  bool
	AncDistMin   int
	AncDistMax   int
}

// OptimizeKind selects the search driver's prefilter strategy for a Program.
type OptimizeKind uint8

const (
	OptimizeNone OptimizeKind = iota
	OptimizeStr
	OptimizeStrFast
	OptimizeStrFastStepForward
	OptimizeMap
)

// SubAnchor narrows a prefilter hit to begin-of-line or end-of-line.
type SubAnchor uint8

const (
	SubAnchorNone SubAnchor = iota
	SubAnchorBeginLine
	SubAnchorEndLine
)

// OptimizePlan is the prefilter contract handed down from the compiler:
// either an exact literal plus a 256-entry skip map (Sunday quick-search),
// or a 256-entry presence map, or nothing.
type OptimizePlan struct {
	Kind OptimizeKind

	Exact    []byte
	ExactEnd []byte
	// SkipMap[b] is the Sunday-quick-search skip distance for byte b.
	SkipMap [256]int
	// MapOffset is the byte offset (from the candidate start) the skip map keys on.
	MapOffset int
	// PresenceMap[b] is true if byte b can start a match (OptimizeMap).
	PresenceMap [256]bool

	DistMin, DistMax int
	ThresholdLen     int
	SubAnchor        SubAnchor
}

// Program is the compiled, immutable instruction stream the VM executes.
//
// A Program is built once (typically via ProgramBuilder) and may be matched
// concurrently by multiple goroutines provided each supplies its own
// subject, Region and MatchParam.
type Program struct {
	Ops []Operation

	Encoding Encoding
	Options  MatchOption

	NumMem int
	// PushMemStart[i]/PushMemEnd[i] report whether capture i's MEM_START/END
	// must push a restorable frame (true) or may write the side array
	// directly because the compiler proved no backtrack needs restoring it.
	PushMemStart []bool
	PushMemEnd   []bool

	Repeats []RepeatRange

	Anchor   AnchorSummary
	Optimize OptimizePlan

	// CaptureHistoryMask[i] requests a capture-history subtree rooted at
	// capture i. Nil means the feature is unused by this program.
	CaptureHistoryMask []bool

	// StackPopLevel is the minimum pop discipline (see btStack) that
	// preserves this program's semantics.
	StackPopLevel StackPopLevel

	// NumCall counts OP_CALL sites. When non-zero the VM resolves repeat
	// counters and empty-check marks by stack scan instead of through the
	// side-array caches, which recursion would otherwise corrupt.
	NumCall int
	// NumEmptyCheck is the number of distinct empty-check ids.
	NumEmptyCheck int

	SubexpCallMaxNestLevel int

	// pf is the SIMD-backed scanner lazily adapted from Optimize (see
	// prefilteradapter.go); built at most once per Program.
	pfOnce sync.Once
	pf     prefilter.Prefilter
}

// StackPopLevel selects how much work pop_normal must do per frame.
type StackPopLevel uint8

const (
	PopLevelFree StackPopLevel = iota
	PopLevelMemStart
	PopLevelFull
)

// HasCaptureHistory reports whether any capture id requests history tracking.
func (p *Program) HasCaptureHistory() bool {
	for _, b := range p.CaptureHistoryMask {
		if b {
			return true
		}
	}
	return false
}

// Validate checks the program's structural invariants: every jump/push
// target is in range, every capture id is in [1, NumMem], and every
// repeat id's body address is reachable.
func (p *Program) Validate() error {
	n := len(p.Ops)
	inRange := func(addr int) bool { return addr >= 0 && addr < n }
	for i, op := range p.Ops {
		switch op.Op {
		case OP_JUMP, OP_PUSH, OP_PUSH_SUPER, OP_PUSH_OR_JUMP_EXACT1, OP_PUSH_IF_PEEK_NEXT, OP_CALL:
			if !inRange(op.Addr) {
				return fmt.Errorf("onigvm: op %d (%s): target addr %d out of range", i, op.Op, op.Addr)
			}
		case OP_REPEAT, OP_REPEAT_NG:
			if op.RepeatID < 0 || op.RepeatID >= len(p.Repeats) {
				return fmt.Errorf("onigvm: op %d (%s): repeat id %d out of range", i, op.Op, op.RepeatID)
			}
		case OP_MEM_START, OP_MEM_START_PUSH, OP_MEM_END, OP_MEM_END_PUSH, OP_MEM_END_REC, OP_MEM_END_PUSH_REC:
			if op.MemID < 0 || op.MemID > p.NumMem {
				return fmt.Errorf("onigvm: op %d (%s): mem id %d out of [0,%d]", i, op.Op, op.MemID, p.NumMem)
			}
		}
	}
	for id, r := range p.Repeats {
		if !inRange(r.BodyAddr) {
			return fmt.Errorf("onigvm: repeat %d: body addr %d out of range", id, r.BodyAddr)
		}
	}
	return nil
}

// ProgramBuilder constructively assembles a Program one operation at a
// time. Callers (or tests) emit opcodes directly; parsing pattern syntax
// into opcodes is a front-end concern this package does not take on.
type ProgramBuilder struct {
	prog *Program
}

// NewProgramBuilder starts a new program against the given encoding.
func NewProgramBuilder(enc Encoding) *ProgramBuilder {
	return &ProgramBuilder{prog: &Program{Encoding: enc}}
}

// Emit appends an operation and returns its address.
func (b *ProgramBuilder) Emit(op Operation) int {
	b.prog.Ops = append(b.prog.Ops, op)
	return len(b.prog.Ops) - 1
}

// Label returns the address the next Emit call will use, for patching
// forward jumps.
func (b *ProgramBuilder) Label() int {
	return len(b.prog.Ops)
}

// Patch rewrites the Addr field of a previously emitted operation.
func (b *ProgramBuilder) Patch(addr int, target int) {
	b.prog.Ops[addr].Addr = target
}

// SetNumMem sets the capture count and (re)sizes the push bitmaps.
func (b *ProgramBuilder) SetNumMem(n int) {
	b.prog.NumMem = n
	b.prog.PushMemStart = make([]bool, n+1)
	b.prog.PushMemEnd = make([]bool, n+1)
}

// MarkMemPush records that capture id's start/end must push a restorable frame.
func (b *ProgramBuilder) MarkMemPush(id int, start, end bool) {
	if start {
		b.prog.PushMemStart[id] = true
	}
	if end {
		b.prog.PushMemEnd[id] = true
	}
}

// AddRepeat registers a repeat range and returns its id.
func (b *ProgramBuilder) AddRepeat(r RepeatRange) int {
	b.prog.Repeats = append(b.prog.Repeats, r)
	return len(b.prog.Repeats) - 1
}

// Build finalizes and validates the program: derives NumCall,
// NumEmptyCheck and the minimum stack pop level from the emitted opcodes,
// then checks the structural invariants.
func (b *ProgramBuilder) Build() (*Program, error) {
	p := b.prog
	b.prog = nil // the builder is spent; the program is immutable from here
	p.NumCall = 0
	p.NumEmptyCheck = 0
	level := PopLevelFree
	for _, op := range p.Ops {
		switch op.Op {
		case OP_CALL:
			p.NumCall++
			level = PopLevelFull
		case OP_EMPTY_CHECK_START:
			if op.EmptyCheckID+1 > p.NumEmptyCheck {
				p.NumEmptyCheck = op.EmptyCheckID + 1
			}
			level = PopLevelFull
		case OP_REPEAT, OP_REPEAT_NG, OP_RETURN,
			OP_CALLOUT_CONTENTS, OP_CALLOUT_NAME, OP_MEM_END_PUSH, OP_MEM_END_PUSH_REC:
			level = PopLevelFull
		case OP_MEM_START_PUSH:
			if level == PopLevelFree {
				level = PopLevelMemStart
			}
		}
	}
	p.StackPopLevel = level
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
