package onigvm

import (
	"errors"
	"fmt"
)

// ErrMismatch is the dedicated mismatch sentinel: a deliberate "no match"
// outcome, never to be confused with an error. Search and Match return
// this exact value (wrapped by nothing) so callers can compare with
// errors.Is without risking a false positive against a real error.
var ErrMismatch = errors.New("onigvm: mismatch")

// ErrorCode enumerates the engine's distinct failure classes, a typed
// enum instead of bare negative ints so a MatchError's Code is
// self-describing.
type ErrorCode int

const (
	ErrCodeMemory ErrorCode = -(iota + 1)
	ErrCodeMatchStackLimitOver
	ErrCodeRetryLimitInMatchOver
	ErrCodeRetryLimitInSearchOver
	ErrCodeTimeLimitOver
	ErrCodeSubexpCallLimitInSearchOver
	ErrCodeInvalidWideCharValue
	ErrCodeInvalidArgument
	ErrCodeUndefinedBytecode
	ErrCodeStackBug
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeMemory:
		return "MEMORY"
	case ErrCodeMatchStackLimitOver:
		return "MATCH_STACK_LIMIT_OVER"
	case ErrCodeRetryLimitInMatchOver:
		return "RETRY_LIMIT_IN_MATCH_OVER"
	case ErrCodeRetryLimitInSearchOver:
		return "RETRY_LIMIT_IN_SEARCH_OVER"
	case ErrCodeTimeLimitOver:
		return "TIME_LIMIT_OVER"
	case ErrCodeSubexpCallLimitInSearchOver:
		return "SUBEXP_CALL_LIMIT_IN_SEARCH_OVER"
	case ErrCodeInvalidWideCharValue:
		return "INVALID_WIDE_CHAR_VALUE"
	case ErrCodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case ErrCodeUndefinedBytecode:
		return "UNDEFINED_BYTECODE"
	case ErrCodeStackBug:
		return "STACK_BUG"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// MatchError is the error type every budget/validity/internal failure from
// the VM and search driver is reported as. The driver propagates the first
// non-mismatch result up to the caller verbatim.
type MatchError struct {
	Code ErrorCode
	Msg  string
}

func (e *MatchError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("onigvm: %s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("onigvm: %s", e.Code)
}

func newMatchError(code ErrorCode, msg string) *MatchError {
	return &MatchError{Code: code, Msg: msg}
}

// Sentinel errors for the specific budgets and validity conditions; each
// wraps (via errors.Is comparison against Code) to the same ErrorCode a
// *MatchError built at runtime would carry, so callers can match on either
// form.
var (
	ErrStackLimitOver         = newMatchError(ErrCodeMatchStackLimitOver, "match stack limit exceeded")
	ErrRetryLimitInMatchOver  = newMatchError(ErrCodeRetryLimitInMatchOver, "retry limit in match exceeded")
	ErrRetryLimitInSearchOver = newMatchError(ErrCodeRetryLimitInSearchOver, "retry limit in search exceeded")
	ErrTimeLimitOver          = newMatchError(ErrCodeTimeLimitOver, "time limit exceeded")
	ErrSubexpCallLimitOver    = newMatchError(ErrCodeSubexpCallLimitInSearchOver, "subexp call limit in search exceeded")
	ErrInvalidWideChar        = newMatchError(ErrCodeInvalidWideCharValue, "invalid wide character value")
	ErrInvalidArgument        = newMatchError(ErrCodeInvalidArgument, "invalid argument")
	ErrUndefinedBytecode      = newMatchError(ErrCodeUndefinedBytecode, "undefined bytecode")
	ErrStackBug               = newMatchError(ErrCodeStackBug, "stack underrun")
)

// InvalidRangeError reports a malformed (start, range) search argument pair.
type InvalidRangeError struct {
	Start, Range, Len int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("onigvm: invalid search range [start=%d range=%d len=%d]", e.Start, e.Range, e.Len)
}
