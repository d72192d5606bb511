package payment

import (
	"errors"
	"fmt"
)

var (
	ErrMissingIdentityNumber = errors.New("identity number (CPF) not provided")
	ErrInvalidIdentityNumber = errors.New("invalid identity number (CPF)")
	ErrMissingName           = errors.New("name not provided")
	ErrTokenRequired         = errors.New("card token not provided")

	ErrSchema       = errors.New("request failed schema validation")
	ErrGateway      = errors.New("payment gateway charge failed")
	ErrStorage      = errors.New("payment record could not be stored")
	ErrNotification = errors.New("payment notification could not be sent")
)

// Error is returned by CreatePayment for every failure. Kind is one of the
// sentinels above and matches with errors.Is; Err is the error reported by
// the failing step, untouched.
type Error struct {
	State State
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("%s: %v", e.State, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.State, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Committed reports whether the gateway had already accepted the charge when
// the run failed. Such failures need manual reconciliation, retrying them
// charges the payer again.
func (e *Error) Committed() bool {
	return e.State.PastPointOfNoReturn()
}

// IsCommitted is a shortcut for errors.As + Committed.
func IsCommitted(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Committed()
	}
	return false
}
