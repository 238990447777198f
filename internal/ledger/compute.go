// internal/ledger/compute.go
package ledger

// Compute budget limits and the fixed costs charged by the runtime.
const (
	DefaultComputeUnitLimit uint64 = 200_000
	MaxComputeUnitLimit     uint64 = 1_400_000

	InvokeUnits               uint64 = 1_000
	CreateProgramAddressUnits uint64 = 1_500
	LogUnits                  uint64 = 100
)

type computeMeter struct {
	limit uint64
	used  uint64
}

func newComputeMeter(limit uint64) *computeMeter {
	return &computeMeter{limit: limit}
}

func (m *computeMeter) consume(units uint64) error {
	if units > m.limit-m.used {
		m.used = m.limit
		return ErrComputationalBudgetExceeded
	}
	m.used += units
	return nil
}

func (m *computeMeter) remaining() uint64 {
	return m.limit - m.used
}
