// internal/storage/models/account.go
package models

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Account хранит состояние одного адреса в леджере.
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      solana.PublicKey
	Executable bool
}

// Clone returns a deep copy, so callers never alias stored data.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	out := *a
	if a.Data != nil {
		out.Data = make([]byte, len(a.Data))
		copy(out.Data, a.Data)
	}
	return &out
}

// Equal сравнивает два состояния аккаунта побайтно.
func (a *Account) Equal(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Lamports == other.Lamports &&
		a.Owner.Equals(other.Owner) &&
		a.Executable == other.Executable &&
		bytes.Equal(a.Data, other.Data)
}

// MarshalBinary encodes the account with borsh for persistent stores.
func (a *Account) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(a); err != nil {
		return nil, fmt.Errorf("failed to encode account: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes an account written by MarshalBinary.
func (a *Account) UnmarshalBinary(data []byte) error {
	if err := bin.NewBorshDecoder(data).Decode(a); err != nil {
		return fmt.Errorf("failed to decode account: %w", err)
	}
	return nil
}
