package onigvm

// NotPos is the sentinel marking an undefined capture offset.
const NotPos = -1

// Region holds the (beg, end) offset pairs captured by a successful match.
// Index 0 is the whole-match span. The region lives with the caller: the
// engine clears and refills it on each Match/Search call.
type Region struct {
	Beg []int
	End []int

	// History is the optional capture-history tree root (group 0), built
	// only when the Program's CaptureHistoryMask requested it.
	History *CaptureHistoryNode
}

// NewRegion allocates a region sized for n capture groups (including group 0).
func NewRegion(n int) *Region {
	r := &Region{Beg: make([]int, n), End: make([]int, n)}
	r.Clear()
	return r
}

// Clear resets every slot to NotPos and drops any history tree, growing the
// slices if the caller is reusing a Region across programs with different
// capture counts.
func (r *Region) Clear() {
	for i := range r.Beg {
		r.Beg[i] = NotPos
		r.End[i] = NotPos
	}
	r.History = nil
}

// resize grows (never shrinks in place; a fresh Region is cheap) the region
// to hold n groups, preserving the caller's slice when it's already sized.
func (r *Region) resize(n int) {
	if cap(r.Beg) >= n {
		r.Beg = r.Beg[:n]
		r.End = r.End[:n]
		return
	}
	beg := make([]int, n)
	end := make([]int, n)
	copy(beg, r.Beg)
	copy(end, r.End)
	r.Beg, r.End = beg, end
}

// NumGroups returns the number of capture groups in the region, including
// group 0.
func (r *Region) NumGroups() int {
	return len(r.Beg)
}

// CaptureHistoryNode is one node of the optional capture-history tree: a
// general tree of {group-id, beg, end, children} rooted at group 0, built
// only for captures whose bit is set in the program's capture-history mask.
type CaptureHistoryNode struct {
	GroupID  int
	Beg, End int
	Children []*CaptureHistoryNode
}

// PosixRegion is the parallel (rm_so, rm_eo) array format POSIX-style
// callers expect.
type PosixRegion struct {
	So, Eo []int
}

// ToPosix converts a Region to the POSIX parallel-array format.
func (r *Region) ToPosix() PosixRegion {
	return PosixRegion{So: append([]int(nil), r.Beg...), Eo: append([]int(nil), r.End...)}
}
