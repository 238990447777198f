// internal/programs/system/system.go
package system

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
)

// Instruction indices, bincode u32.
const (
	InstructionCreateAccount uint32 = 0
	InstructionAssign        uint32 = 1
	InstructionTransfer      uint32 = 2
)

const (
	// MaxPermittedDataLength is the largest account a single CreateAccount may allocate.
	MaxPermittedDataLength = 10 * 1024 * 1024

	instructionUnits uint64 = 150
)

// Program is the native system program: account creation, ownership and
// lamport transfers between system-owned accounts.
type Program struct{}

var _ ledger.Program = (*Program)(nil)

func New() *Program {
	return &Program{}
}

func (p *Program) ProgramID() solana.PublicKey {
	return solana.SystemProgramID
}

func (p *Program) Process(ic *ledger.InvokeContext, data []byte) error {
	if err := ic.Consume(instructionUnits); err != nil {
		return err
	}
	if len(data) < 4 {
		return ledger.ErrInvalidInstructionData
	}
	body := data[4:]

	switch binary.LittleEndian.Uint32(data[:4]) {
	case InstructionCreateAccount:
		if len(body) < 8+8+32 {
			return ledger.ErrInvalidInstructionData
		}
		lamports := binary.LittleEndian.Uint64(body[0:8])
		space := binary.LittleEndian.Uint64(body[8:16])
		owner := solana.PublicKeyFromBytes(body[16:48])
		return createAccount(ic, lamports, space, owner)
	case InstructionAssign:
		if len(body) < 32 {
			return ledger.ErrInvalidInstructionData
		}
		return assign(ic, solana.PublicKeyFromBytes(body[:32]))
	case InstructionTransfer:
		if len(body) < 8 {
			return ledger.ErrInvalidInstructionData
		}
		return transfer(ic, binary.LittleEndian.Uint64(body[:8]))
	default:
		return ledger.ErrInvalidInstructionData
	}
}

func accounts(ic *ledger.InvokeContext, n int) ([]*ledger.AccountInfo, error) {
	infos := ic.Accounts()
	if len(infos) < n {
		return nil, ledger.ErrNotEnoughAccountKeys
	}
	return infos, nil
}

func createAccount(ic *ledger.InvokeContext, lamports, space uint64, owner solana.PublicKey) error {
	infos, err := accounts(ic, 2)
	if err != nil {
		return err
	}
	from, to := infos[0], infos[1]

	if !to.IsUninitialized() {
		_ = ic.Log("Create Account: account Address { address: %s, base: None } already in use", to.Key)
		return ErrAccountAlreadyInUse
	}
	if space > MaxPermittedDataLength {
		_ = ic.Log("Create Account: requested %d bytes, max %d", space, MaxPermittedDataLength)
		return ErrInvalidAccountDataLength
	}
	if !to.IsSigner {
		_ = ic.Log("Create Account: account %s must sign", to.Key)
		return ledger.ErrMissingRequiredSignature
	}
	if err := debit(ic, from, lamports); err != nil {
		return err
	}
	to.SetLamports(lamports)
	to.SetData(make([]byte, space))
	to.Assign(owner)
	return nil
}

func assign(ic *ledger.InvokeContext, owner solana.PublicKey) error {
	infos, err := accounts(ic, 1)
	if err != nil {
		return err
	}
	acc := infos[0]
	if acc.Owner().Equals(owner) {
		return nil
	}
	if !acc.IsSigner {
		_ = ic.Log("Assign: account %s must sign", acc.Key)
		return ledger.ErrMissingRequiredSignature
	}
	acc.Assign(owner)
	return nil
}

func transfer(ic *ledger.InvokeContext, lamports uint64) error {
	infos, err := accounts(ic, 2)
	if err != nil {
		return err
	}
	from, to := infos[0], infos[1]

	if len(from.Data()) > 0 {
		_ = ic.Log("Transfer: `from` must not carry data")
		return ledger.ErrInvalidArgument
	}
	if err := debit(ic, from, lamports); err != nil {
		return err
	}
	credited := to.Lamports() + lamports
	if credited < to.Lamports() {
		return ledger.ErrArithmeticOverflow
	}
	to.SetLamports(credited)
	return nil
}

func debit(ic *ledger.InvokeContext, from *ledger.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		_ = ic.Log("Transfer: `from` account %s must sign", from.Key)
		return ledger.ErrMissingRequiredSignature
	}
	if from.Lamports() < lamports {
		_ = ic.Log("Transfer: insufficient lamports %d, need %d", from.Lamports(), lamports)
		return fmt.Errorf("%w: %s", ErrResultWithNegativeLamports, from.Key)
	}
	from.SetLamports(from.Lamports() - lamports)
	return nil
}
