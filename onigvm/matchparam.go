package onigvm

import "time"

// MatchParam is the per-call scratch and budget object. It may be reused
// across sequential calls on the same goroutine but must not be shared
// across concurrent calls.
type MatchParam struct {
	stack *btStack

	Options MatchOption

	// Per-call budgets, read from the process-wide defaults at NewMatchParam
	// time and never mutated by a concurrent SetDefaultConfig call.
	stackLimit              int
	retryLimitInMatch       int
	retryLimitInSearchTotal int
	retryLimitInSearchLeft  int
	timeLimit               time.Duration
	deadline                time.Time
	subexpCallMaxNest       int
	subexpCallLimitInSearch int

	retryInMatchCounter int
	retryInSearchUsed   int
	subexpCallUsed      int
	failSinceTimeCheck  int

	// skipSearch is a hint, settable by callouts, telling the driver the
	// next candidate position is no earlier than a given offset.
	skipSearch int

	// bestLen/bestStart record FIND_LONGEST's running best.
	bestLen   int
	bestStart int

	ProgressCallout   CalloutFunc
	RetractionCallout CalloutFunc
	CalloutUserData   any

	// EachMatchCallback, with the CallbackEachMatch option, receives every
	// match found during a search instead of stopping at the first; a
	// negative return value aborts the search with ErrInvalidArgument.
	EachMatchCallback func(beg, end int, region *Region, userData any) int
}

// timeCheckInterval is how many fails elapse between wall-clock deadline
// checks; probing time.Now on every fail would dominate the fail path.
const timeCheckInterval = 512

// NewMatchParam creates a per-call parameter object, snapshotting the
// current process-wide defaults; later SetDefaultConfig calls do not
// affect it.
func NewMatchParam(opts MatchOption) *MatchParam {
	d := DefaultConfigSnapshot()
	return &MatchParam{
		Options:                 opts,
		stackLimit:              d.MatchStackLimit,
		retryLimitInMatch:       d.RetryLimitInMatch,
		retryLimitInSearchTotal: d.RetryLimitInSearch,
		retryLimitInSearchLeft:  d.RetryLimitInSearch,
		timeLimit:               d.TimeLimit,
		subexpCallMaxNest:       d.SubexpCallMaxNestLevel,
		subexpCallLimitInSearch: d.SubexpCallLimitInSearch,
		bestLen:                 -1,
		bestStart:               -1,
	}
}

// WithConfig overrides this call's budgets from an explicit Config rather
// than the process-wide defaults.
func (mp *MatchParam) WithConfig(c Config) *MatchParam {
	mp.stackLimit = c.MatchStackLimit
	mp.retryLimitInMatch = c.RetryLimitInMatch
	mp.retryLimitInSearchTotal = c.RetryLimitInSearch
	mp.retryLimitInSearchLeft = c.RetryLimitInSearch
	mp.timeLimit = c.TimeLimit
	mp.subexpCallMaxNest = c.SubexpCallMaxNestLevel
	mp.subexpCallLimitInSearch = c.SubexpCallLimitInSearch
	return mp
}

// resetForCall prepares the object for one VM invocation within a search,
// reusing the stack allocation from a prior sibling call.
func (mp *MatchParam) resetForCall() {
	if mp.stack == nil {
		mp.stack = newBtStack(mp.stackLimit)
	} else {
		mp.stack.reset()
	}
	mp.retryInMatchCounter = 0
	mp.failSinceTimeCheck = 0
	mp.skipSearch = -1
	if mp.timeLimit > 0 {
		mp.deadline = time.Now().Add(mp.timeLimit)
	}
}

// resetForSearch resets the counters that are scoped to an entire search
// call rather than a single VM invocation.
func (mp *MatchParam) resetForSearch() {
	mp.retryInSearchUsed = 0
	mp.retryLimitInSearchLeft = mp.retryLimitInSearchTotal
	mp.subexpCallUsed = 0
	mp.bestLen = -1
	mp.bestStart = -1
}

// noteFail increments the retry counters and checks the three budgets,
// returning a *MatchError if one is exceeded. Counters are monotonic
// non-decreasing across an entire search call.
func (mp *MatchParam) noteFail(now func() time.Time) error {
	mp.retryInMatchCounter++
	if mp.retryLimitInMatch > 0 && mp.retryInMatchCounter > mp.retryLimitInMatch {
		return ErrRetryLimitInMatchOver
	}
	if mp.retryLimitInSearchTotal > 0 {
		mp.retryInSearchUsed++
		if mp.retryInSearchUsed > mp.retryLimitInSearchTotal {
			return ErrRetryLimitInSearchOver
		}
	}
	mp.failSinceTimeCheck++
	if mp.timeLimit > 0 && mp.failSinceTimeCheck >= timeCheckInterval {
		mp.failSinceTimeCheck = 0
		if now().After(mp.deadline) {
			return ErrTimeLimitOver
		}
	}
	return nil
}

// noteCall increments the subexp-call invocation counter used to enforce
// SubexpCallLimitInSearch across an entire search.
func (mp *MatchParam) noteCall() error {
	if mp.subexpCallLimitInSearch <= 0 {
		return nil
	}
	mp.subexpCallUsed++
	if mp.subexpCallUsed > mp.subexpCallLimitInSearch {
		return ErrSubexpCallLimitOver
	}
	return nil
}

// SkipSearchHint returns the driver hint a callout set via RequestSkip, or
// -1 if none was set this call.
func (mp *MatchParam) SkipSearchHint() int { return mp.skipSearch }

// RequestSkip lets a callout tell the search driver the next candidate
// position is no earlier than pos.
func (mp *MatchParam) RequestSkip(pos int) { mp.skipSearch = pos }
