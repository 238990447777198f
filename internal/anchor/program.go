// internal/anchor/program.go
package anchor

import (
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
)

// dispatchUnits is charged for routing an instruction to its handler.
const dispatchUnits uint64 = 500

// Handler executes one instruction; args is the instruction data after the
// discriminator.
type Handler func(ic *ledger.InvokeContext, args []byte) error

// Instruction binds a snake_case instruction name to its handler.
type Instruction struct {
	Name    string
	Handler Handler
}

// Program routes instruction data to handlers by discriminator.
type Program struct {
	id           solana.PublicKey
	instructions map[Discriminator]Instruction
}

var _ ledger.Program = (*Program)(nil)

func NewProgram(id solana.PublicKey, instructions ...Instruction) *Program {
	p := &Program{
		id:           id,
		instructions: make(map[Discriminator]Instruction, len(instructions)),
	}
	for _, ins := range instructions {
		p.instructions[InstructionDiscriminator(ins.Name)] = ins
	}
	return p
}

func (p *Program) ProgramID() solana.PublicKey {
	return p.id
}

// Process dispatches data. Anchor errors raised by the handler are written to
// the program log before being returned.
func (p *Program) Process(ic *ledger.InvokeContext, data []byte) error {
	err := p.dispatch(ic, data)
	if e, ok := AsError(err); ok {
		_ = ic.Log("%s", e.LogLine())
	}
	return err
}

func (p *Program) dispatch(ic *ledger.InvokeContext, data []byte) error {
	if err := ic.Consume(dispatchUnits); err != nil {
		return err
	}
	if len(data) < DiscriminatorLength {
		return ErrInstructionMissing
	}
	var d Discriminator
	copy(d[:], data[:DiscriminatorLength])

	ins, ok := p.instructions[d]
	if !ok {
		return ErrInstructionFallbackNotFound
	}
	if err := ic.Log("Instruction: %s", pascalCase(ins.Name)); err != nil {
		return err
	}
	return ins.Handler(ic, data[DiscriminatorLength:])
}

func pascalCase(name string) string {
	parts := strings.Split(name, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, "")
}
