// internal/programs/system/errors.go
package system

import "fmt"

// Error is a custom system program error.
type Error struct {
	Code uint32
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("custom program error: 0x%x (%s)", e.Code, e.Msg)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrAccountAlreadyInUse        = &Error{Code: 0, Msg: "an account with the same address already exists"}
	ErrResultWithNegativeLamports = &Error{Code: 1, Msg: "account does not have enough SOL to perform the operation"}
	ErrInvalidAccountDataLength   = &Error{Code: 3, Msg: "cannot allocate account data of this length"}
)
