package onigvm

import (
	"sync/atomic"
	"time"
)

// MatchOption is the bitmask of per-call search/match options. A single
// bitmask rather than meta.Config's bag of bools, because the VM tests
// options with simple ANDs on its hot path.
type MatchOption uint32

const (
	NotBOL MatchOption = 1 << iota
	NotEOL
	NotBeginString
	NotEndString
	NotBeginPosition
	MatchWholeString
	FindLongest
	FindNotEmpty
	CheckValidityOfString
	CallbackEachMatch
	POSIXRegion
)

func (o MatchOption) has(f MatchOption) bool { return o&f != 0 }

// Config controls engine-wide tunables, following meta.Config /
// meta.DefaultConfig() / (Config).Validate() exactly in shape: a plain
// struct of scalar fields, a DefaultConfig constructor and a Validate
// method returning a *ConfigError.
type Config struct {
	// MatchStackLimit caps backtrack-stack growth in frames. 0 means unlimited.
	MatchStackLimit int

	// RetryLimitInMatch caps the number of `fail`s within a single VM call. 0 means unlimited.
	RetryLimitInMatch int

	// RetryLimitInSearch caps the number of `fail`s across an entire search call. 0 means unlimited.
	RetryLimitInSearch int

	// TimeLimit caps wall-clock time for a single search call. 0 means unlimited.
	TimeLimit time.Duration

	// SubexpCallMaxNestLevel caps CALL recursion depth before it fails the call (not an error).
	SubexpCallMaxNestLevel int

	// SubexpCallLimitInSearch caps total CALL invocations across a search call. 0 means unlimited.
	SubexpCallLimitInSearch int
}

// DefaultConfig returns sensible defaults: generous budgets that protect
// against runaway patterns without constraining ordinary ones.
func DefaultConfig() Config {
	return Config{
		MatchStackLimit:         0,
		RetryLimitInMatch:       1_000_000,
		RetryLimitInSearch:      0,
		TimeLimit:               0,
		SubexpCallMaxNestLevel:  20,
		SubexpCallLimitInSearch: 1_000_000,
	}
}

// Validate checks configuration ranges, mirroring meta.Config.Validate.
func (c Config) Validate() error {
	if c.MatchStackLimit < 0 {
		return &ConfigError{Field: "MatchStackLimit", Message: "must be >= 0"}
	}
	if c.RetryLimitInMatch < 0 {
		return &ConfigError{Field: "RetryLimitInMatch", Message: "must be >= 0"}
	}
	if c.RetryLimitInSearch < 0 {
		return &ConfigError{Field: "RetryLimitInSearch", Message: "must be >= 0"}
	}
	if c.TimeLimit < 0 {
		return &ConfigError{Field: "TimeLimit", Message: "must be >= 0"}
	}
	if c.SubexpCallMaxNestLevel < 1 || c.SubexpCallMaxNestLevel > 10_000 {
		return &ConfigError{Field: "SubexpCallMaxNestLevel", Message: "must be between 1 and 10,000"}
	}
	if c.SubexpCallLimitInSearch < 0 {
		return &ConfigError{Field: "SubexpCallLimitInSearch", Message: "must be >= 0"}
	}
	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "onigvm: invalid config: " + e.Field + ": " + e.Message
}

// Process-wide default tunables, read at match-start into the call-local
// MatchParam; updates to the defaults never affect an in-flight call.
// Stored as atomics so concurrent readers and writers never race.
var (
	defaultMatchStackLimit    atomic.Int64
	defaultRetryLimitInMatch  atomic.Int64
	defaultRetryLimitInSearch atomic.Int64
	defaultTimeLimitNanos     atomic.Int64
	defaultSubexpMaxNest      atomic.Int64
	defaultSubexpCallLimit    atomic.Int64
)

func init() {
	d := DefaultConfig()
	defaultMatchStackLimit.Store(int64(d.MatchStackLimit))
	defaultRetryLimitInMatch.Store(int64(d.RetryLimitInMatch))
	defaultRetryLimitInSearch.Store(int64(d.RetryLimitInSearch))
	defaultTimeLimitNanos.Store(int64(d.TimeLimit))
	defaultSubexpMaxNest.Store(int64(d.SubexpCallMaxNestLevel))
	defaultSubexpCallLimit.Store(int64(d.SubexpCallLimitInSearch))
}

// SetDefaultConfig atomically updates the process-wide tunables that new
// MatchParams pick up. It does not affect a MatchParam already in use.
func SetDefaultConfig(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	defaultMatchStackLimit.Store(int64(c.MatchStackLimit))
	defaultRetryLimitInMatch.Store(int64(c.RetryLimitInMatch))
	defaultRetryLimitInSearch.Store(int64(c.RetryLimitInSearch))
	defaultTimeLimitNanos.Store(int64(c.TimeLimit))
	defaultSubexpMaxNest.Store(int64(c.SubexpCallMaxNestLevel))
	defaultSubexpCallLimit.Store(int64(c.SubexpCallLimitInSearch))
	return nil
}

// DefaultConfigSnapshot reads the current process-wide tunables into a Config value.
func DefaultConfigSnapshot() Config {
	return Config{
		MatchStackLimit:         int(defaultMatchStackLimit.Load()),
		RetryLimitInMatch:       int(defaultRetryLimitInMatch.Load()),
		RetryLimitInSearch:      int(defaultRetryLimitInSearch.Load()),
		TimeLimit:               time.Duration(defaultTimeLimitNanos.Load()),
		SubexpCallMaxNestLevel:  int(defaultSubexpMaxNest.Load()),
		SubexpCallLimitInSearch: int(defaultSubexpCallLimit.Load()),
	}
}
