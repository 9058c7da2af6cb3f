package onigvm

import (
	"sync"

	"github.com/coregx/coregex/meta"
)

// Stats tracks execution counters for an Engine, the same debugging/tuning
// aid meta.Engine exposes via Stats()/ResetStats(). Counters are plain
// uint64s rather than atomics: callers that search an Engine concurrently
// already supply their own MatchParam per goroutine, so the Engine itself
// is read, not mutated, on the hot path; Stats updates happen only under
// the Engine's own stats mutex.
type Stats struct {
	Searches          uint64
	Matches           uint64
	Mismatches        uint64
	PrescanCandidates uint64
	PrescanRejects    uint64
	StackLimitHits    uint64
	RetryLimitHits    uint64
	TimeLimitHits     uint64
}

// Engine bundles a compiled Program with pooled MatchParam scratch state,
// mirroring meta.Engine's sync.Pool-backed thread-safety story: the Program
// itself is immutable after Build and may be shared across goroutines, while
// each search call borrows (and returns) its own MatchParam.
//
// An Engine may additionally carry a prescan: a linear-time meta.Engine
// compiled from a regular over-approximation of the program's pattern.
// Backreferences, lookaround and subexpression calls are invisible to the
// Thompson engines, but every string the backtracking program accepts is
// also accepted by a suitable regular relaxation of it (for example,
// `(ab)\1` relaxes to `(ab){2}`). With a prescan attached, Find and
// FindFrom let the meta engine's DFA/NFA strategies do the scanning and
// only invoke the backtracking VM at positions where the relaxation
// matches.
type Engine struct {
	prog    *Program
	prescan *meta.Engine

	statsMu sync.Mutex
	stats   Stats

	paramPool sync.Pool
}

// NewEngine wraps a compiled Program for repeated Find/Search calls.
func NewEngine(prog *Program) *Engine {
	e := &Engine{prog: prog}
	e.paramPool.New = func() any { return NewMatchParam(0) }
	return e
}

// WithPrescan compiles pattern with the meta engine and attaches it as
// this Engine's candidate scanner. The caller guarantees pattern is a
// regular over-approximation of the compiled program: every match of the
// program must start at a position where pattern also matches, or matches
// will be missed. Under FindLongest the prescan path reports the longest
// match at the first candidate that matches at all, not across the whole
// subject. Returns the Engine for chaining.
func (e *Engine) WithPrescan(pattern string) (*Engine, error) {
	pre, err := meta.Compile(pattern)
	if err != nil {
		return nil, err
	}
	e.prescan = pre
	return e, nil
}

// PrescanStats returns the attached meta engine's own counters, or the
// zero value when no prescan is attached.
func (e *Engine) PrescanStats() meta.Stats {
	if e.prescan == nil {
		return meta.Stats{}
	}
	return e.prescan.Stats()
}

// Stats returns a snapshot of this Engine's execution counters.
func (e *Engine) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

// ResetStats zeroes this Engine's execution counters.
func (e *Engine) ResetStats() {
	e.statsMu.Lock()
	e.stats = Stats{}
	e.statsMu.Unlock()
}

func (e *Engine) getParam() *MatchParam {
	return e.paramPool.Get().(*MatchParam)
}

func (e *Engine) putParam(mp *MatchParam) {
	e.paramPool.Put(mp)
}

// Find searches subject for the first match starting at or after 0, filling
// region on success. It borrows a pooled MatchParam for the call.
func (e *Engine) Find(subject []byte, region *Region, opts MatchOption) error {
	return e.FindFrom(subject, 0, region, opts)
}

// FindFrom searches subject for the first match at or after pos. With a
// prescan attached, the meta engine locates each candidate start position
// and the backtracking VM verifies only there; without one, the program's
// own optimize plan drives the candidate walk.
func (e *Engine) FindFrom(subject []byte, pos int, region *Region, opts MatchOption) error {
	mp := e.getParam()
	defer e.putParam(mp)

	if e.prescan == nil {
		err := Search(e.prog, subject, pos, -1, region, mp, opts)
		e.record(err)
		return err
	}

	for at := pos; at <= len(subject); {
		m := e.prescan.FindAt(subject, at)
		if m == nil {
			e.noteRejected()
			e.record(ErrMismatch)
			return ErrMismatch
		}
		cand := m.Start()
		e.noteCandidate()
		err := Match(e.prog, subject, cand, region, mp, opts)
		if err != ErrMismatch {
			e.record(err)
			return err
		}
		at = cand + 1
	}
	e.record(ErrMismatch)
	return ErrMismatch
}

// IsMatch reports whether subject contains any match, without filling a region.
func (e *Engine) IsMatch(subject []byte, opts MatchOption) (bool, error) {
	region := NewRegion(e.prog.NumMem + 1)
	err := e.Find(subject, region, opts)
	if err == ErrMismatch {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) noteCandidate() {
	e.statsMu.Lock()
	e.stats.PrescanCandidates++
	e.statsMu.Unlock()
}

func (e *Engine) noteRejected() {
	e.statsMu.Lock()
	e.stats.PrescanRejects++
	e.statsMu.Unlock()
}

func (e *Engine) record(err error) {
	e.statsMu.Lock()
	e.stats.Searches++
	switch err {
	case nil:
		e.stats.Matches++
	case ErrMismatch:
		e.stats.Mismatches++
	case ErrStackLimitOver:
		e.stats.StackLimitHits++
	case ErrRetryLimitInMatchOver, ErrRetryLimitInSearchOver:
		e.stats.RetryLimitHits++
	case ErrTimeLimitOver:
		e.stats.TimeLimitHits++
	}
	e.statsMu.Unlock()
}
