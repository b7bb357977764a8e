package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindAlreadyInitialized ErrorKind = "AlreadyInitialized"
	KindInvalidParameter   ErrorKind = "InvalidParameter"
	KindInvalidAmount      ErrorKind = "InvalidAmount"
	KindInsufficientFunds  ErrorKind = "InsufficientFunds"
	KindUnauthorized       ErrorKind = "Unauthorized"

	// Raised by the hosting layer rather than the engines.
	KindNotInitialized ErrorKind = "NotInitialized"
	KindStaleState     ErrorKind = "StaleState"
)

// LedgerError is the failure value returned by every ledger operation.
// Two ledger errors match under errors.Is when their kinds are equal, so the
// sentinels below can be compared against errors carrying extra detail.
type LedgerError struct {
	Kind   ErrorKind
	Detail string
}

func (e *LedgerError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Detail)
}

func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	return ok && t.Kind == e.Kind
}

var (
	ErrorAlreadyInitialized = &LedgerError{Kind: KindAlreadyInitialized}
	ErrorInvalidParameter   = &LedgerError{Kind: KindInvalidParameter}
	ErrorInvalidAmount      = &LedgerError{Kind: KindInvalidAmount}
	ErrorInsufficientFunds  = &LedgerError{Kind: KindInsufficientFunds}
	ErrorUnauthorized       = &LedgerError{Kind: KindUnauthorized}
	ErrorNotInitialized     = &LedgerError{Kind: KindNotInitialized}
	ErrorStaleState         = &LedgerError{Kind: KindStaleState}
)

func NewLedgerError(kind ErrorKind, format string, args ...interface{}) *LedgerError {
	return &LedgerError{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of the first LedgerError in err's chain, or an empty
// kind when there is none.
func KindOf(err error) ErrorKind {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
