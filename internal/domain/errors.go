package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Grading errors
	ErrOracleResponseInvalid ErrorCode = "ORACLE_RESPONSE_INVALID"
	ErrOracleUnavailable     ErrorCode = "ORACLE_UNAVAILABLE"

	// Settlement errors
	ErrLedgerUnreachable ErrorCode = "LEDGER_UNREACHABLE"
	ErrClaimRejected     ErrorCode = "CLAIM_REJECTED"
	ErrSettlementFailed  ErrorCode = "SETTLEMENT_FAILED"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

// NewOracleResponseInvalidError signals that the grading oracle returned a
// payload that failed schema validation. The score is never clamped or
// defaulted; the whole submission fails instead.
func NewOracleResponseInvalidError(message string, err error) *DomainError {
	return NewError(ErrOracleResponseInvalid, message, err)
}

// NewOracleUnavailableError signals a transport or timeout failure talking
// to the grading oracle. Not retried here; a retry is a new submission.
func NewOracleUnavailableError(err error) *DomainError {
	return NewError(ErrOracleUnavailable, "Grading service is unavailable", err)
}

// NewLedgerUnreachableError signals that an eligibility read could not
// complete. Callers must treat this as "unknown", never as "eligible".
func NewLedgerUnreachableError(err error) *DomainError {
	return NewError(ErrLedgerUnreachable, "Failed to get claim status", err)
}

// NewClaimRejectedError signals that the gate or the ledger declined the
// claim. This is a normal user-facing outcome, not an internal failure.
func NewClaimRejectedError(reason string) *DomainError {
	return NewError(ErrClaimRejected, reason, nil)
}

// NewSettlementFailedError signals that a ledger write was attempted but did
// not confirm. Distinct from a rejection: the true on-chain outcome may be
// unknown, so it must never be presented as "reward definitely not granted".
func NewSettlementFailedError(message string, err error) *DomainError {
	return NewError(ErrSettlementFailed, message, err)
}
