package onigvm

import "fmt"

// Opcode identifies the operation performed by one Program instruction.
//
// The families: literal/multibyte-literal matches, character classes,
// any-char variants, word/boundary tests, position anchors, backreference
// variants, capture start/end, repeat begin/inc, empty-check begin/end,
// stack control, mark/cut-to-mark, save/update variables, subexpression
// call/return, and callouts.
type Opcode uint16

const (
	// OP_FINISH unconditionally ends the interpreter loop.
	OP_FINISH Opcode = iota
	// OP_END reports a match at the current position.
	OP_END
	// OP_FAIL pops the backtrack stack.
	OP_FAIL

	// Literal / multibyte literal matches.
	OP_STR_1
	OP_STR_2
	OP_STR_3
	OP_STR_4
	OP_STR_5
	OP_STR_N
	OP_STR_MB2N1
	OP_STR_MB2N
	OP_STR_MB3N
	OP_STR_MBN

	// Character classes.
	OP_CCLASS
	OP_CCLASS_NOT
	OP_CCLASS_MB
	OP_CCLASS_MB_NOT
	OP_CCLASS_MIX
	OP_CCLASS_MIX_NOT

	// Any-char families.
	OP_ANYCHAR
	OP_ANYCHAR_ML
	OP_ANYCHAR_STAR
	OP_ANYCHAR_ML_STAR
	OP_ANYCHAR_STAR_PEEK_NEXT
	OP_ANYCHAR_ML_STAR_PEEK_NEXT

	// Word / boundary tests.
	OP_WORD
	OP_NO_WORD
	OP_WORD_ASCII
	OP_NO_WORD_ASCII
	OP_WORD_BOUNDARY
	OP_NO_WORD_BOUNDARY

	// Position anchors.
	OP_BEGIN_BUF
	OP_END_BUF
	OP_SEMI_END_BUF
	OP_BEGIN_LINE
	OP_END_LINE
	OP_CHECK_POSITION

	// Backreferences.
	OP_BACKREF1
	OP_BACKREF2
	OP_BACKREF_N
	OP_BACKREF_MULTI
	OP_BACKREF_MULTI_IC
	OP_BACKREF_WITH_LEVEL
	OP_BACKREF_WITH_LEVEL_IC
	OP_BACKREF_CHECK
	OP_BACKREF_CHECK_WITH_LEVEL

	// Captures.
	OP_MEM_START
	OP_MEM_START_PUSH
	OP_MEM_END
	OP_MEM_END_PUSH
	OP_MEM_END_REC
	OP_MEM_END_PUSH_REC

	// Repeats.
	OP_REPEAT
	OP_REPEAT_NG
	OP_REPEAT_INC
	OP_REPEAT_INC_NG

	// Empty-check.
	OP_EMPTY_CHECK_START
	OP_EMPTY_CHECK_END
	OP_EMPTY_CHECK_END_MEMST
	OP_EMPTY_CHECK_END_MEMST_PUSH

	// Stack control.
	OP_JUMP
	OP_PUSH
	OP_PUSH_SUPER
	OP_POP
	OP_PUSH_OR_JUMP_EXACT1
	OP_PUSH_IF_PEEK_NEXT

	// Lookaround / atomic primitives.
	OP_MARK
	OP_POP_TO_MARK
	OP_CUT_TO_MARK
	OP_STEP_BACK_START
	OP_STEP_BACK_NEXT

	// Save/update variables.
	OP_SAVE_VAL
	OP_UPDATE_VAR

	// Subexpression call.
	OP_CALL
	OP_RETURN

	// Callouts.
	OP_CALLOUT_CONTENTS
	OP_CALLOUT_NAME

	opcodeCount
)

var opcodeNames = [...]string{
	OP_FINISH:                      "FINISH",
	OP_END:                         "END",
	OP_FAIL:                        "FAIL",
	OP_STR_1:                       "STR_1",
	OP_STR_2:                       "STR_2",
	OP_STR_3:                       "STR_3",
	OP_STR_4:                       "STR_4",
	OP_STR_5:                       "STR_5",
	OP_STR_N:                       "STR_N",
	OP_STR_MB2N1:                   "STR_MB2N1",
	OP_STR_MB2N:                    "STR_MB2N",
	OP_STR_MB3N:                    "STR_MB3N",
	OP_STR_MBN:                     "STR_MBN",
	OP_CCLASS:                      "CCLASS",
	OP_CCLASS_NOT:                  "CCLASS_NOT",
	OP_CCLASS_MB:                   "CCLASS_MB",
	OP_CCLASS_MB_NOT:               "CCLASS_MB_NOT",
	OP_CCLASS_MIX:                  "CCLASS_MIX",
	OP_CCLASS_MIX_NOT:              "CCLASS_MIX_NOT",
	OP_ANYCHAR:                     "ANYCHAR",
	OP_ANYCHAR_ML:                  "ANYCHAR_ML",
	OP_ANYCHAR_STAR:                "ANYCHAR_STAR",
	OP_ANYCHAR_ML_STAR:             "ANYCHAR_ML_STAR",
	OP_ANYCHAR_STAR_PEEK_NEXT:      "ANYCHAR_STAR_PEEK_NEXT",
	OP_ANYCHAR_ML_STAR_PEEK_NEXT:   "ANYCHAR_ML_STAR_PEEK_NEXT",
	OP_WORD:                        "WORD",
	OP_NO_WORD:                     "NO_WORD",
	OP_WORD_ASCII:                  "WORD_ASCII",
	OP_NO_WORD_ASCII:               "NO_WORD_ASCII",
	OP_WORD_BOUNDARY:               "WORD_BOUNDARY",
	OP_NO_WORD_BOUNDARY:            "NO_WORD_BOUNDARY",
	OP_BEGIN_BUF:                   "BEGIN_BUF",
	OP_END_BUF:                     "END_BUF",
	OP_SEMI_END_BUF:                "SEMI_END_BUF",
	OP_BEGIN_LINE:                  "BEGIN_LINE",
	OP_END_LINE:                    "END_LINE",
	OP_CHECK_POSITION:              "CHECK_POSITION",
	OP_BACKREF1:                    "BACKREF1",
	OP_BACKREF2:                    "BACKREF2",
	OP_BACKREF_N:                   "BACKREF_N",
	OP_BACKREF_MULTI:               "BACKREF_MULTI",
	OP_BACKREF_MULTI_IC:            "BACKREF_MULTI_IC",
	OP_BACKREF_WITH_LEVEL:          "BACKREF_WITH_LEVEL",
	OP_BACKREF_WITH_LEVEL_IC:       "BACKREF_WITH_LEVEL_IC",
	OP_BACKREF_CHECK:               "BACKREF_CHECK",
	OP_BACKREF_CHECK_WITH_LEVEL:    "BACKREF_CHECK_WITH_LEVEL",
	OP_MEM_START:                   "MEM_START",
	OP_MEM_START_PUSH:              "MEM_START_PUSH",
	OP_MEM_END:                     "MEM_END",
	OP_MEM_END_PUSH:                "MEM_END_PUSH",
	OP_MEM_END_REC:                 "MEM_END_REC",
	OP_MEM_END_PUSH_REC:            "MEM_END_PUSH_REC",
	OP_REPEAT:                      "REPEAT",
	OP_REPEAT_NG:                   "REPEAT_NG",
	OP_REPEAT_INC:                  "REPEAT_INC",
	OP_REPEAT_INC_NG:               "REPEAT_INC_NG",
	OP_EMPTY_CHECK_START:           "EMPTY_CHECK_START",
	OP_EMPTY_CHECK_END:             "EMPTY_CHECK_END",
	OP_EMPTY_CHECK_END_MEMST:       "EMPTY_CHECK_END_MEMST",
	OP_EMPTY_CHECK_END_MEMST_PUSH:  "EMPTY_CHECK_END_MEMST_PUSH",
	OP_JUMP:                        "JUMP",
	OP_PUSH:                        "PUSH",
	OP_PUSH_SUPER:                  "PUSH_SUPER",
	OP_POP:                         "POP",
	OP_PUSH_OR_JUMP_EXACT1:         "PUSH_OR_JUMP_EXACT1",
	OP_PUSH_IF_PEEK_NEXT:           "PUSH_IF_PEEK_NEXT",
	OP_MARK:                        "MARK",
	OP_POP_TO_MARK:                 "POP_TO_MARK",
	OP_CUT_TO_MARK:                 "CUT_TO_MARK",
	OP_STEP_BACK_START:             "STEP_BACK_START",
	OP_STEP_BACK_NEXT:              "STEP_BACK_NEXT",
	OP_SAVE_VAL:                    "SAVE_VAL",
	OP_UPDATE_VAR:                  "UPDATE_VAR",
	OP_CALL:                        "CALL",
	OP_RETURN:                      "RETURN",
	OP_CALLOUT_CONTENTS:            "CALLOUT_CONTENTS",
	OP_CALLOUT_NAME:                "CALLOUT_NAME",
}

// String returns a human-readable mnemonic for the opcode.
func (op Opcode) String() string {
	if int(op) >= 0 && int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", uint16(op))
}

// CheckPositionMode selects the semantics of OP_CHECK_POSITION.
type CheckPositionMode uint8

const (
	// CheckSearchStart succeeds iff s == start-of-search (and NOT_BEGIN_POSITION unset).
	CheckSearchStart CheckPositionMode = iota
	// CheckCurrentRightRange succeeds iff s == right_range.
	CheckCurrentRightRange
)

// SaveValKind selects which per-match variable a SAVE_VAL/UPDATE_VAR pair targets.
type SaveValKind uint8

const (
	SaveKeep SaveValKind = iota
	SaveS
	SaveRightRange
)

func (k SaveValKind) String() string {
	switch k {
	case SaveKeep:
		return "KEEP"
	case SaveS:
		return "S"
	case SaveRightRange:
		return "RIGHT_RANGE"
	default:
		return "UNKNOWN"
	}
}

// BackrefMode selects which of the four axes a backreference opcode exercises.
type BackrefMode struct {
	// CaseInsensitive folds both sides before comparing.
	CaseInsensitive bool
	// Multi means "try each candidate capture id, succeed on the first match".
	Multi bool
	// WithLevel means a nest-level selector chooses the ancestor call frame.
	WithLevel bool
	// CheckOnly means "succeed iff the referenced capture is defined", no byte compare.
	CheckOnly bool
}
