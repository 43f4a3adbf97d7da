/*
SPDX-License-Identifier: Apache-2.0
*/

package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ProgramError is a numbered error surfaced to clients of the program. The
// number ranges follow the usual on-chain conventions: framework errors sit
// below 6000, program specific errors start at 6000.
type ProgramError struct {
	Code    uint32
	Name    string
	Message string
}

// Error renders the error the way clients expect to parse it.
func (e *ProgramError) Error() string {
	return fmt.Sprintf("Error Code: %s. Error Number: %d. Error Message: %s.", e.Name, e.Code, e.Message)
}

// Is reports whether target carries the same code, so that wrapped copies of
// a sentinel still match.
func (e *ProgramError) Is(target error) bool {
	t, ok := target.(*ProgramError)
	return ok && t.Code == e.Code
}

// AsProgramError unwraps err down to its cause and returns the ProgramError,
// if any.
func AsProgramError(err error) (*ProgramError, bool) {
	if err == nil {
		return nil, false
	}
	if pe, ok := errors.Cause(err).(*ProgramError); ok {
		return pe, true
	}
	return nil, false
}

// Framework errors. These are raised by instruction dispatch and account
// resolution rather than by instruction handlers.
var (
	ErrInstructionDidNotDeserialize = &ProgramError{Code: 102, Name: "InstructionDidNotDeserialize", Message: "The program could not deserialize the given instruction"}
	ErrAccountAlreadyInitialized    = &ProgramError{Code: 3000, Name: "AccountAlreadyInitialized", Message: "The account is already in use"}
	ErrAccountInvalidAddress        = &ProgramError{Code: 3007, Name: "ConstraintSeeds", Message: "A seeds constraint was violated"}
	ErrAccountNotInitialized        = &ProgramError{Code: 3012, Name: "AccountNotInitialized", Message: "The program expected this account to be already initialized"}
	ErrAccountDidNotDeserialize     = &ProgramError{Code: 3003, Name: "AccountDidNotDeserialize", Message: "Failed to deserialize the account"}
	ErrSignerRequired               = &ProgramError{Code: 3010, Name: "AccountNotSigner", Message: "The given account did not sign"}
)
