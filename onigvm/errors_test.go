package onigvm

import (
	"errors"
	"testing"
)

func TestErrorCodeString(t *testing.T) {
	for _, tc := range []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeMemory, "MEMORY"},
		{ErrCodeMatchStackLimitOver, "MATCH_STACK_LIMIT_OVER"},
		{ErrCodeRetryLimitInMatchOver, "RETRY_LIMIT_IN_MATCH_OVER"},
		{ErrCodeTimeLimitOver, "TIME_LIMIT_OVER"},
		{ErrCodeStackBug, "STACK_BUG"},
		{ErrorCode(42), "ErrorCode(42)"},
	} {
		if got := tc.code.String(); got != tc.want {
			t.Errorf("%d.String() = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestMatchErrorMessage(t *testing.T) {
	e := newMatchError(ErrCodeInvalidArgument, "bad option combination")
	if got, want := e.Error(), "onigvm: INVALID_ARGUMENT: bad option combination"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := &MatchError{Code: ErrCodeStackBug}
	if got, want := bare.Error(), "onigvm: STACK_BUG"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSentinelErrorsAreDistinctFromMismatch(t *testing.T) {
	if errors.Is(ErrStackLimitOver, ErrMismatch) {
		t.Fatal("a budget error must never compare equal to the mismatch sentinel")
	}
	if ErrStackLimitOver.Code != ErrCodeMatchStackLimitOver {
		t.Fatalf("ErrStackLimitOver.Code = %v, want %v", ErrStackLimitOver.Code, ErrCodeMatchStackLimitOver)
	}
}

func TestInvalidRangeError(t *testing.T) {
	e := &InvalidRangeError{Start: 5, Range: -2, Len: 3}
	want := "onigvm: invalid search range [start=5 range=-2 len=3]"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
