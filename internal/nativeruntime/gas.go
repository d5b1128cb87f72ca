package nativeruntime

import "sync/atomic"

// GasSchedule is the optional native-cost schedule every native consults.
// Every native call charges unconditionally, even under the zero
// schedule: no-op natives (e.g. Unsupported, a dynamic-field has-check
// that finds nothing) still charge gas via Charge, so that gas
// accounting is uniform regardless of which schedule is installed.
type GasSchedule interface {
	// Charge records nBytes of work for the named native operation and
	// returns the cost charged.
	Charge(op string, nBytes int) uint64
	// TotalCharged returns the cumulative cost charged so far.
	TotalCharged() uint64
}

// ZeroSchedule charges nothing; every Charge call reports zero cost.
type ZeroSchedule struct {
	total atomic.Uint64
}

// NewZeroSchedule returns the default no-cost schedule.
func NewZeroSchedule() *ZeroSchedule { return &ZeroSchedule{} }

func (z *ZeroSchedule) Charge(op string, nBytes int) uint64 {
	z.total.Add(0)
	return 0
}

func (z *ZeroSchedule) TotalCharged() uint64 { return z.total.Load() }

// OpCost is one native operation's base and per-byte rate.
type OpCost struct {
	Base    uint64
	PerByte uint64
}

// CostSchedule is a configurable schedule with per-operation base and
// per-byte rates.
type CostSchedule struct {
	costs   map[string]OpCost
	total   atomic.Uint64
	Default OpCost
}

// NewCostSchedule returns a schedule with the given per-operation rates.
// Operations absent from costs fall back to Default.
func NewCostSchedule(costs map[string]OpCost, def OpCost) *CostSchedule {
	return &CostSchedule{costs: costs, Default: def}
}

func (s *CostSchedule) Charge(op string, nBytes int) uint64 {
	c, ok := s.costs[op]
	if !ok {
		c = s.Default
	}
	cost := c.Base + c.PerByte*uint64(nBytes)
	s.total.Add(cost)
	return cost
}

func (s *CostSchedule) TotalCharged() uint64 { return s.total.Load() }
