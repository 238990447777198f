// internal/ledger/rent.go
package ledger

// AccountStorageOverhead is the per-account metadata size charged for rent.
const AccountStorageOverhead = 128

// Rent parameters. Every data-carrying account must stay rent exempt.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64 // years
}

func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2,
	}
}

// MinimumBalance returns the lamports an account holding dataLen bytes needs
// to be rent exempt.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	return (AccountStorageOverhead + uint64(dataLen)) * r.LamportsPerByteYear * r.ExemptionThreshold
}

// IsExempt reports whether lamports cover the exemption minimum.
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}
