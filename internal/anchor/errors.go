// internal/anchor/errors.go
package anchor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorCodeOffset is the first error number available to programs.
const ErrorCodeOffset = 6000

// Error is a framework or program error with a stable number.
type Error struct {
	Code    uint32
	Name    string
	Msg     string
	Account string // set when a constraint on a named account failed
}

func NewError(code uint32, name, msg string) *Error {
	return &Error{Code: code, Name: name, Msg: msg}
}

func (e *Error) Error() string {
	if e.Account != "" {
		return fmt.Sprintf("%s (%d) on %s: %s", e.Name, e.Code, e.Account, e.Msg)
	}
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

// Is matches by error number, so account-annotated copies still match
// the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithAccount returns a copy naming the account that failed.
func (e *Error) WithAccount(name string) *Error {
	cp := *e
	cp.Account = name
	return &cp
}

// LogLine renders the error the way the program log reports it.
func (e *Error) LogLine() string {
	head := "AnchorError occurred."
	if e.Account != "" {
		head = "AnchorError caused by account: " + e.Account + "."
	}
	return fmt.Sprintf("%s Error Code: %s. Error Number: %d. Error Message: %s.", head, e.Name, e.Code, e.Msg)
}

// Instruction errors
var (
	ErrInstructionMissing           = NewError(100, "InstructionMissing", "8 byte instruction identifier not provided")
	ErrInstructionFallbackNotFound  = NewError(101, "InstructionFallbackNotFound", "Fallback functions are not supported")
	ErrInstructionDidNotDeserialize = NewError(102, "InstructionDidNotDeserialize", "The program could not deserialize the given instruction")
)

// Constraint errors
var (
	ErrConstraintMut            = NewError(2000, "ConstraintMut", "A mut constraint was violated")
	ErrConstraintHasOne         = NewError(2001, "ConstraintHasOne", "A has one constraint was violated")
	ErrConstraintSigner         = NewError(2002, "ConstraintSigner", "A signer constraint was violated")
	ErrConstraintRaw            = NewError(2003, "ConstraintRaw", "A raw constraint was violated")
	ErrConstraintOwner          = NewError(2004, "ConstraintOwner", "An owner constraint was violated")
	ErrConstraintRentExempt     = NewError(2005, "ConstraintRentExempt", "A rent exemption constraint was violated")
	ErrConstraintSeeds          = NewError(2006, "ConstraintSeeds", "A seeds constraint was violated")
	ErrConstraintExecutable     = NewError(2007, "ConstraintExecutable", "An executable constraint was violated")
	ErrConstraintState          = NewError(2008, "ConstraintState", "Deprecated Error, feel free to replace with something else")
	ErrConstraintAssociated     = NewError(2009, "ConstraintAssociated", "An associated constraint was violated")
	ErrConstraintAssociatedInit = NewError(2010, "ConstraintAssociatedInit", "An associated init constraint was violated")
	ErrConstraintClose          = NewError(2011, "ConstraintClose", "A close constraint was violated")
	ErrConstraintAddress        = NewError(2012, "ConstraintAddress", "An address constraint was violated")
	ErrConstraintZero           = NewError(2013, "ConstraintZero", "Expected zero account discriminant")
)

// Account errors
var (
	ErrAccountDiscriminatorAlreadySet = NewError(3000, "AccountDiscriminatorAlreadySet", "The account discriminator was already set on this account")
	ErrAccountDiscriminatorNotFound   = NewError(3001, "AccountDiscriminatorNotFound", "No 8 byte discriminator was found on the account")
	ErrAccountDiscriminatorMismatch   = NewError(3002, "AccountDiscriminatorMismatch", "8 byte discriminator did not match what was expected")
	ErrAccountDidNotDeserialize       = NewError(3003, "AccountDidNotDeserialize", "Failed to deserialize the account")
	ErrAccountDidNotSerialize         = NewError(3004, "AccountDidNotSerialize", "Failed to serialize the account")
	ErrAccountNotEnoughKeys           = NewError(3005, "AccountNotEnoughKeys", "Not enough account keys given to the instruction")
	ErrAccountNotMutable              = NewError(3006, "AccountNotMutable", "The given account is not mutable")
	ErrAccountOwnedByWrongProgram     = NewError(3007, "AccountOwnedByWrongProgram", "The given account is owned by a different program than expected")
	ErrInvalidProgramID               = NewError(3008, "InvalidProgramId", "Program ID was not as expected")
	ErrInvalidProgramExecutable       = NewError(3009, "InvalidProgramExecutable", "Program account is not executable")
	ErrAccountNotSigner               = NewError(3010, "AccountNotSigner", "The given account did not sign")
	ErrAccountNotSystemOwned          = NewError(3011, "AccountNotSystemOwned", "The given account is not owned by the system program")
	ErrAccountNotInitialized          = NewError(3012, "AccountNotInitialized", "The program expected this account to be already initialized")
	ErrAccountNotProgramData          = NewError(3013, "AccountNotProgramData", "The given account is not a program data account")
)

// ParseErrorLog extracts an Error from an "AnchorError ..." program log line.
func ParseErrorLog(line string) (*Error, bool) {
	idx := strings.Index(line, "AnchorError ")
	if idx < 0 {
		return nil, false
	}
	line = line[idx:]

	e := &Error{}
	if rest, ok := strings.CutPrefix(line, "AnchorError caused by account: "); ok {
		name, _, found := strings.Cut(rest, ".")
		if !found {
			return nil, false
		}
		e.Account = name
	}

	var ok bool
	if e.Name, ok = between(line, "Error Code: ", "."); !ok {
		return nil, false
	}
	number, ok := between(line, "Error Number: ", ".")
	if !ok {
		return nil, false
	}
	code, err := strconv.ParseUint(number, 10, 32)
	if err != nil {
		return nil, false
	}
	e.Code = uint32(code)

	msgStart := strings.Index(line, "Error Message: ")
	if msgStart < 0 {
		return nil, false
	}
	e.Msg = strings.TrimSuffix(line[msgStart+len("Error Message: "):], ".")
	return e, true
}

// ErrorFromLogs returns the last Anchor error reported in logs.
func ErrorFromLogs(logs []string) (*Error, bool) {
	for i := len(logs) - 1; i >= 0; i-- {
		if e, ok := ParseErrorLog(logs[i]); ok {
			return e, true
		}
	}
	return nil, false
}

// AsError unwraps err to an Anchor error if it carries one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func between(s, prefix, suffix string) (string, bool) {
	start := strings.Index(s, prefix)
	if start < 0 {
		return "", false
	}
	rest := s[start+len(prefix):]
	end := strings.Index(rest, suffix)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
