// Package onigvm implements the backtracking opcode virtual machine and
// search driver that sit alongside coregex's Thompson-NFA engines.
//
// Where the nfa and dfa packages handle the regular subset of Perl-style
// syntax with guaranteed linear-time matching, onigvm executes a separate
// compiled program representation for the features that are fundamentally
// backtracking: backreferences, lookahead/lookbehind, atomic groups,
// recursive subexpression calls and capture history. A Program is built
// once (by a ProgramBuilder, or by a future compiler front-end) and then
// matched repeatedly via Match, Search or Scan; every call owns its own
// MatchParam and Region, so the same Program can be driven concurrently
// from multiple goroutines.
//
// The two engine families cooperate rather than compete: an Engine built
// with WithPrescan hands the scanning to a meta.Engine compiled from a
// regular over-approximation of the program, and the backtracking VM is
// invoked only at the candidate positions the linear-time engines accept.
//
// The design mirrors nfa.PikeVM and nfa.BoundedBacktracker: a tagged
// instruction stream, small fixed-size per-step state, and an explicit
// stack instead of native recursion. Where PikeVM tracks many threads in
// parallel, onigvm's VM commits to one thread at a time and backtracks
// through an explicit frame stack, because backreferences and recursive
// calls cannot be expressed as a DFA/Thompson construction.
package onigvm
