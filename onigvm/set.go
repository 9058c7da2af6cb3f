package onigvm

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/coregex/internal/sparse"
)

// SetLead selects the scanning strategy a Set.Search uses.
type SetLead int

const (
	// PositionLead tries every member at each candidate position before
	// advancing, so the hit with the leftmost start wins and ties break to
	// the lowest member index deterministically.
	PositionLead SetLead = iota
	// RegexLead runs each member's full search and keeps the hit with the
	// earliest start position.
	RegexLead
	// PriorityToRegexOrder runs members in index order and stops at the
	// first one that matches anywhere, regardless of position.
	PriorityToRegexOrder
)

// Set runs several compiled programs against the same subject as one
// logical operation. Each member keeps its own Region and MatchParam; a
// successful Search reports which member hit and leaves its captures in
// that member's Region.
type Set struct {
	members []*Program
	regions []*Region
	params  []*MatchParam

	// leadLiterals, when non-nil, is an Aho-Corasick automaton over each
	// member's required leading literal, used by the regex-lead strategies
	// to skip full searches for members whose literal never occurs.
	leadLiterals  *ahocorasick.Automaton
	literalOwners []int // automaton pattern index -> member index
	hasLiteral    []bool
}

// NewSet builds a Set over the given compiled programs. Members whose
// optimize plan carries a complete exact literal contribute it to an
// Aho-Corasick automaton; members without one always run their full
// search.
func NewSet(progs []*Program) *Set {
	s := &Set{
		members:    progs,
		regions:    make([]*Region, len(progs)),
		params:     make([]*MatchParam, len(progs)),
		hasLiteral: make([]bool, len(progs)),
	}
	builder := ahocorasick.NewBuilder()
	var owners []int
	for i, p := range progs {
		s.regions[i] = NewRegion(p.NumMem + 1)
		s.params[i] = NewMatchParam(0)
		if p.Optimize.Kind == OptimizeStr && len(p.Optimize.Exact) > 0 {
			builder.AddPattern(p.Optimize.Exact)
			owners = append(owners, i)
			s.hasLiteral[i] = true
		}
	}
	if len(owners) > 0 {
		if auto, err := builder.Build(); err == nil {
			s.leadLiterals = auto
			s.literalOwners = owners
		} else {
			for i := range s.hasLiteral {
				s.hasLiteral[i] = false
			}
		}
	}
	return s
}

// Len returns the number of member programs.
func (s *Set) Len() int { return len(s.members) }

// Region returns member i's region, valid after a Search reported i.
func (s *Set) Region(i int) *Region { return s.regions[i] }

// Search scans subject[start:rng] with the given strategy and returns the
// index of the matching member, or ErrMismatch if none matches. rng == -1
// means the end of subject.
func (s *Set) Search(subject []byte, start, rng int, lead SetLead, opts MatchOption) (int, error) {
	if rng < 0 {
		rng = len(subject)
	}
	if start < 0 || start > len(subject) || rng > len(subject) || start > rng {
		return -1, &InvalidRangeError{Start: start, Range: rng, Len: len(subject)}
	}
	switch lead {
	case PositionLead:
		return s.searchPositionLead(subject, start, rng, opts)
	default:
		return s.searchRegexLead(subject, start, rng, lead == PriorityToRegexOrder, opts)
	}
}

// searchPositionLead walks candidate positions left to right, consulting
// each member's own prefilter to skip positions it cannot start at, and
// emits the first hit in member-index order.
func (s *Set) searchPositionLead(subject []byte, start, rng int, opts MatchOption) (int, error) {
	live := sparse.NewSparseSet(uint32(len(s.members)))
	nextCand := make([]int, len(s.members))
	for i := range s.members {
		live.Insert(uint32(i))
		nextCand[i] = start
	}

	for pos := start; pos <= rng; {
		for i := range s.members {
			if !live.Contains(uint32(i)) || nextCand[i] > pos {
				continue
			}
			p := s.members[i]
			if p.Optimize.Kind != OptimizeNone {
				low, _, ok := forwardSearch(p, subject, pos, len(subject))
				if !ok {
					live.Remove(uint32(i))
					continue
				}
				if low > pos {
					nextCand[i] = low
					continue
				}
			}
			err := Match(p, subject, pos, s.regions[i], s.params[i], opts)
			if err == nil {
				return i, nil
			}
			if err != ErrMismatch {
				return -1, err
			}
			nextCand[i] = pos + 1
		}
		if live.IsEmpty() || pos >= rng {
			break
		}
		w := 1
		if pos < len(subject) {
			if cl := s.members[0].Encoding.CharLen(subject[pos:]); cl > 0 {
				w = cl
			}
		}
		pos += w
	}
	return -1, ErrMismatch
}

// searchRegexLead runs each member's full search. In priority mode the
// first member (by index) that matches wins; otherwise the hit with the
// earliest start position does, ties breaking to the lower index.
func (s *Set) searchRegexLead(subject []byte, start, rng int, priority bool, opts MatchOption) (int, error) {
	var litPresent []bool
	if s.leadLiterals != nil {
		litPresent = make([]bool, len(s.members))
		if s.leadLiterals.IsMatch(subject[start:rng]) {
			for _, idx := range s.literalOwners {
				litPresent[idx] = true
			}
		}
	}

	best := -1
	bestPos := -1
	for i, p := range s.members {
		if s.hasLiteral[i] && litPresent != nil && !litPresent[i] {
			continue // the member's required literal never occurs
		}
		err := Search(p, subject, start, rng, s.regions[i], s.params[i], opts)
		if err == ErrMismatch {
			continue
		}
		if err != nil {
			return -1, err
		}
		if priority {
			return i, nil
		}
		if pos := s.regions[i].Beg[0]; best < 0 || pos < bestPos {
			best = i
			bestPos = pos
		}
	}
	if best < 0 {
		return -1, ErrMismatch
	}
	return best, nil
}

// IsMatch reports whether any member program matches subject anywhere.
func (s *Set) IsMatch(subject []byte, opts MatchOption) (bool, error) {
	_, err := s.Search(subject, 0, -1, PriorityToRegexOrder, opts)
	if err == ErrMismatch {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MatchedPositions returns, for each member that matches subject anywhere,
// its index and first-match region, pruning literal-bearing members whose
// literal is absent before running their full program.
func (s *Set) MatchedPositions(subject []byte, opts MatchOption) ([]int, []*Region, error) {
	var litPresent []bool
	if s.leadLiterals != nil {
		litPresent = make([]bool, len(s.members))
		if s.leadLiterals.IsMatch(subject) {
			for _, idx := range s.literalOwners {
				litPresent[idx] = true
			}
		}
	}

	var idxs []int
	var regions []*Region
	for i, p := range s.members {
		if s.hasLiteral[i] && litPresent != nil && !litPresent[i] {
			continue
		}
		err := Search(p, subject, 0, -1, s.regions[i], s.params[i], opts)
		if err == ErrMismatch {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		idxs = append(idxs, i)
		regions = append(regions, s.regions[i])
	}
	return idxs, regions, nil
}
