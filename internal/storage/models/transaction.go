// internal/storage/models/transaction.go
package models

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// Transaction статусы
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Transaction is the persisted outcome of one processed transaction.
type Transaction struct {
	Signature    string
	Slot         uint64
	Status       string
	ErrorMessage string
	Logs         []string
	ComputeUnits uint64
	ProcessedAt  int64 // unix milliseconds
}

func (t *Transaction) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(t); err != nil {
		return nil, fmt.Errorf("failed to encode transaction record: %w", err)
	}
	return buf.Bytes(), nil
}

func (t *Transaction) UnmarshalBinary(data []byte) error {
	if err := bin.NewBorshDecoder(data).Decode(t); err != nil {
		return fmt.Errorf("failed to decode transaction record: %w", err)
	}
	return nil
}
