// internal/programs/launchpad/program.go
package launchpad

import "github.com/rovshanmuradov/candy-launchpad/internal/anchor"

const (
	instructionInitializeCollection = "initialize_collection"
	instructionInitializeCandyStore = "initialize_candy_store"
)

// New returns the launchpad program, ready to register with a ledger.
func New() *anchor.Program {
	return anchor.NewProgram(ProgramID,
		anchor.Instruction{Name: instructionInitializeCollection, Handler: initializeCollection},
		anchor.Instruction{Name: instructionInitializeCandyStore, Handler: initializeCandyStore},
	)
}
