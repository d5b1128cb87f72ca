// Package nativeruntime implements the native function table a VM host
// consults during Execute: real hashing/crypto natives, the deterministic
// clock and random generator, the event store, ownership bookkeeping, the
// dynamic-field subsystem, and the unsupported-category stub.
package nativeruntime

import "sync/atomic"

// Default clock parameters.
const (
	DefaultBaseMs = 1704067200000 // 2024-01-01T00:00:00Z
	DefaultTickMs = 1000
)

// MockClock provides the configured timestamp tx_context/clock natives
// read during replay. Frozen mode (the default for replay) returns the
// same timestamp on every access, matching the Clock object's fixed
// on-chain timestamp for the duration of one transaction. Advancing mode
// is useful for standalone tests of time-dependent logic.
type MockClock struct {
	baseMs   uint64
	tickMs   uint64
	accesses atomic.Uint64
	frozen   bool
}

// NewClock returns a clock in advancing mode with the default base and
// tick. Replay should use FrozenClock instead.
func NewClock() *MockClock {
	return &MockClock{baseMs: DefaultBaseMs, tickMs: DefaultTickMs}
}

// ClockWithBase returns an advancing clock starting at baseMs.
func ClockWithBase(baseMs uint64) *MockClock {
	return &MockClock{baseMs: baseMs, tickMs: DefaultTickMs}
}

// FrozenClock returns a clock that always reports timestampMs: the
// correct mode for transaction replay.
func FrozenClock(timestampMs uint64) *MockClock {
	return &MockClock{baseMs: timestampMs, frozen: true}
}

// AdvancingClock returns a clock that advances by tickMs on each access.
func AdvancingClock(baseMs, tickMs uint64) *MockClock {
	return &MockClock{baseMs: baseMs, tickMs: tickMs}
}

// IsFrozen reports whether the clock is in frozen mode.
func (c *MockClock) IsFrozen() bool { return c.frozen }

// Freeze fixes the clock at its current timestamp.
func (c *MockClock) Freeze() {
	c.baseMs = c.PeekTimestampMs()
	c.frozen = true
	c.tickMs = 0
}

// Unfreeze resumes advancing mode with the given tick.
func (c *MockClock) Unfreeze(tickMs uint64) {
	c.frozen = false
	c.tickMs = tickMs
}

// TimestampMs returns the current timestamp, advancing the access counter
// in non-frozen mode.
func (c *MockClock) TimestampMs() uint64 {
	if c.frozen {
		return c.baseMs
	}
	n := c.accesses.Add(1) - 1
	return c.baseMs + n*c.tickMs
}

// PeekTimestampMs returns the current timestamp without advancing.
func (c *MockClock) PeekTimestampMs() uint64 {
	if c.frozen {
		return c.baseMs
	}
	n := c.accesses.Load()
	return c.baseMs + n*c.tickMs
}

// Reset zeroes the access counter.
func (c *MockClock) Reset() { c.accesses.Store(0) }

// AccessCount returns how many times TimestampMs has advanced the clock.
func (c *MockClock) AccessCount() uint64 { return c.accesses.Load() }
