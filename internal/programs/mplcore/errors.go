// internal/programs/mplcore/errors.go
package mplcore

import "fmt"

// Error is a custom MPL Core program error.
type Error struct {
	Code uint32
	Name string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("custom program error: 0x%x (%s: %s)", e.Code, e.Name, e.Msg)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidSystemProgram = &Error{Code: 0, Name: "InvalidSystemProgram", Msg: "Invalid System Program"}
	ErrDeserialization      = &Error{Code: 1, Name: "DeserializationError", Msg: "Error deserializing account"}
	ErrSerialization        = &Error{Code: 2, Name: "SerializationError", Msg: "Error serializing account"}
	ErrPluginNotFound       = &Error{Code: 4, Name: "PluginNotFound", Msg: "Plugin not found"}
	ErrNumericalOverflow    = &Error{Code: 5, Name: "NumericalOverflow", Msg: "Numerical Overflow"}
	ErrIncorrectAccount     = &Error{Code: 6, Name: "IncorrectAccount", Msg: "Incorrect account"}
	ErrInvalidPlugin        = &Error{Code: 8, Name: "InvalidPlugin", Msg: "Invalid plugin"}
	ErrInvalidAuthority     = &Error{Code: 9, Name: "InvalidAuthority", Msg: "Invalid authority"}
	ErrNotAvailable         = &Error{Code: 11, Name: "NotAvailable", Msg: "Feature not available"}
	ErrMissingCollection    = &Error{Code: 20, Name: "MissingCollection", Msg: "Missing collection"}
	ErrPluginAlreadyExists  = &Error{Code: 28, Name: "PluginAlreadyExists", Msg: "Plugin already exists"}
	ErrConflictingAuthority = &Error{Code: 31, Name: "ConflictingAuthority", Msg: "Conflicting authority"}
)
