package cli

import "fmt"

// Process exit codes. ExitBlock is reserved for the hook verdict so hosts
// can tell a blocked mutation from a broken invocation.
const (
	ExitSuccess = 0 // Success / allow
	ExitGeneral = 1 // General/unknown error
	ExitBlock   = 2 // Hook verdict: block
	ExitConfig  = 3 // Invalid YAML, bad check records
	ExitJournal = 4 // Journal open/query fails
	ExitHook    = 5 // Hook installation/removal fails
)

// ExitCoder is an interface for errors that carry a custom exit code and message.
type ExitCoder interface {
	ExitCode() int
	Message() string
}

// cliError is a typed error that carries an exit code.
type cliError struct {
	code    int
	message string
	err     error
}

// NewCLIError creates a new cliError with the given code and message.
func NewCLIError(code int, message string) *cliError {
	return &cliError{
		code:    code,
		message: message,
	}
}

// WrapError creates a new cliError wrapping an underlying error.
func WrapError(code int, message string, err error) *cliError {
	return &cliError{
		code:    code,
		message: message,
		err:     err,
	}
}

// Error implements the error interface.
func (e *cliError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

// ExitCode returns the exit code for this error.
func (e *cliError) ExitCode() int {
	return e.code
}

// Message returns the formatted message for display.
func (e *cliError) Message() string {
	return fmt.Sprintf("Error: %s\n", e.Error())
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *cliError) Unwrap() error {
	return e.err
}

// ErrConfig creates a configuration error.
func ErrConfig(message string, err error) *cliError {
	return WrapError(ExitConfig, message, err)
}

// ErrJournal creates a journal error.
func ErrJournal(message string, err error) *cliError {
	return WrapError(ExitJournal, message, err)
}

// ErrHookFailed creates a hook wiring failure error.
func ErrHookFailed(message string, err error) *cliError {
	return WrapError(ExitHook, message, err)
}

// exitCodeError sets a process exit code for a command that has already
// written its own output; Execute prints nothing for it.
type exitCodeError struct {
	code int
}

// ExitWithCode returns an error carrying only an exit code.
func ExitWithCode(code int) error {
	return &exitCodeError{code: code}
}

// Error implements the error interface.
func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int {
	return e.code
}

// Message returns the empty string: the command already wrote its output.
func (e *exitCodeError) Message() string {
	return ""
}
