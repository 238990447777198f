// internal/programs/computebudget/computebudget.go
package computebudget

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
)

var ProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

const (
	RequestUnitsDeprecated uint8 = 0
	RequestHeapFrame       uint8 = 1
	SetComputeUnitLimit    uint8 = 2
	SetComputeUnitPrice    uint8 = 3
)

// Структуры инструкций
type SetComputeUnitLimitInstruction struct {
	Units uint32
}

type SetComputeUnitPriceInstruction struct {
	MicroLamports uint64
}

// Предопределенные профили
const (
	DefaultUnits uint32 = 200_000
	// LaunchUnits covers collection creation plus store initialization in one transaction.
	LaunchUnits uint32 = 400_000
)

// BuildInstructions создает инструкции бюджета: лимит всегда, цену только если она задана
func BuildInstructions(units uint32, microLamports uint64) ([]solana.Instruction, error) {
	if units == 0 {
		units = DefaultUnits
	}

	limitInstruction, err := (&SetComputeUnitLimitInstruction{Units: units}).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build compute unit limit instruction: %w", err)
	}
	instructions := []solana.Instruction{limitInstruction}

	if microLamports > 0 {
		priceInstruction, err := (&SetComputeUnitPriceInstruction{MicroLamports: microLamports}).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit price instruction: %w", err)
		}
		instructions = append(instructions, priceInstruction)
	}
	return instructions, nil
}

// Build создает инструкцию для установки лимита compute units
func (instr *SetComputeUnitLimitInstruction) Build() (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, SetComputeUnitLimit); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, instr.Units); err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{}, buf.Bytes()), nil
}

// Build создает инструкцию для установки цены compute units
func (instr *SetComputeUnitPriceInstruction) Build() (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, SetComputeUnitPrice); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, instr.MicroLamports); err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{}, buf.Bytes()), nil
}

// Program is the compute budget builtin. Its instructions are read by the
// ledger before execution and are no-ops when dispatched.
type Program struct{}

var _ ledger.BudgetProgram = (*Program)(nil)

func New() *Program {
	return &Program{}
}

func (p *Program) ProgramID() solana.PublicKey {
	return ProgramID
}

func (p *Program) Process(_ *ledger.InvokeContext, data []byte) error {
	_, err := decode(data)
	return err
}

// ComputeUnitLimit reports the limit requested by a SetComputeUnitLimit
// instruction. Other compute budget instructions report ok == false.
func (p *Program) ComputeUnitLimit(data []byte) (uint64, bool, error) {
	instr, err := decode(data)
	if err != nil {
		return 0, false, err
	}
	limit, ok := instr.(*SetComputeUnitLimitInstruction)
	if !ok {
		return 0, false, nil
	}
	return uint64(limit.Units), true, nil
}

func decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, ledger.ErrInvalidInstructionData
	}
	switch data[0] {
	case SetComputeUnitLimit:
		if len(data) != 1+4 {
			return nil, fmt.Errorf("%w: compute unit limit", ledger.ErrInvalidInstructionData)
		}
		return &SetComputeUnitLimitInstruction{Units: binary.LittleEndian.Uint32(data[1:])}, nil
	case SetComputeUnitPrice:
		if len(data) != 1+8 {
			return nil, fmt.Errorf("%w: compute unit price", ledger.ErrInvalidInstructionData)
		}
		return &SetComputeUnitPriceInstruction{MicroLamports: binary.LittleEndian.Uint64(data[1:])}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported compute budget instruction %d", ledger.ErrInvalidInstructionData, data[0])
	}
}
