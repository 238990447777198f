// internal/ledger/errors.go
package ledger

import (
	"errors"
	"fmt"
)

// Transaction-level errors. These reject a transaction before or after
// instruction execution; none of them leave state behind.
var (
	ErrEmptyTransaction         = errors.New("transaction contains no instructions")
	ErrSignatureFailure         = errors.New("transaction did not pass signature verification")
	ErrBlockhashNotFound        = errors.New("blockhash not found")
	ErrAlreadyProcessed         = errors.New("this transaction has already been processed")
	ErrAccountInUse             = errors.New("account in use")
	ErrDuplicateInstruction     = errors.New("transaction contains a duplicate instruction")
	ErrInsufficientFundsForRent = errors.New("transaction results in an account with insufficient funds for rent")
)

// Instruction errors, returned by programs or by the runtime while a program runs.
var (
	ErrInvalidArgument             = errors.New("invalid program argument")
	ErrInvalidInstructionData      = errors.New("invalid instruction data")
	ErrNotEnoughAccountKeys        = errors.New("insufficient account keys for instruction")
	ErrMissingRequiredSignature    = errors.New("missing required signature for instruction")
	ErrArithmeticOverflow          = errors.New("program arithmetic overflowed")
	ErrUnsupportedProgramID        = errors.New("unsupported program id")
	ErrMissingAccount              = errors.New("an account required by the instruction is missing")
	ErrPrivilegeEscalation         = errors.New("cross-program invocation with unauthorized signer or writable account")
	ErrCallDepth                   = errors.New("cross-program invocation call depth too deep")
	ErrComputationalBudgetExceeded = errors.New("computational budget exceeded")
	ErrInvalidSeeds                = errors.New("provided seeds do not result in a valid address")
	ErrModifiedProgramID           = errors.New("instruction illegally modified the program id of an account")
	ErrExternalAccountLamportSpend = errors.New("instruction spent from the balance of an account it does not own")
	ErrExternalAccountDataModified = errors.New("instruction modified data of an account it does not own")
	ErrReadonlyLamportChange       = errors.New("instruction changed the balance of a read-only account")
	ErrReadonlyDataModified        = errors.New("instruction modified data of a read-only account")
	ErrExecutableModified          = errors.New("instruction changed executable bit of an account")
	ErrUnbalancedInstruction       = errors.New("sum of account balances before and after instruction do not match")
)

// InstructionError ties an execution failure to the top-level instruction
// that produced it.
type InstructionError struct {
	Index int
	Err   error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("error processing instruction %d: %v", e.Index, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}
