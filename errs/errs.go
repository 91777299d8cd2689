package errs

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Error codes surfaced to API clients. These are stable identifiers;
// the caller decides whether to retry, correct, or abort based on them.
const (
	CodeValidation        = "validation_error"
	CodeDuplicatePeriod   = "duplicate_period"
	CodeDuplicateInvoice  = "duplicate_invoice"
	CodeInvalidTransition = "invalid_transition"
	CodeOverAllocation    = "over_allocation"
	CodeNotFound          = "not_found"
	CodeDatabase          = "database_error"
)

// Sentinel errors for errors.Is matching.
var (
	ErrValidation        = &DomainError{Code: CodeValidation, Message: "validation failed"}
	ErrDuplicatePeriod   = &DomainError{Code: CodeDuplicatePeriod, Message: "statement already exists for period"}
	ErrDuplicateInvoice  = &DomainError{Code: CodeDuplicateInvoice, Message: "manual invoice number already used for client"}
	ErrInvalidTransition = &DomainError{Code: CodeInvalidTransition, Message: "transition not allowed from current state"}
	ErrOverAllocation    = &DomainError{Code: CodeOverAllocation, Message: "allocation exceeds remaining amount or balance"}
	ErrNotFound          = &DomainError{Code: CodeNotFound, Message: "resource not found"}
	ErrDatabase          = &DomainError{Code: CodeDatabase, Message: "database error"}
)

var statusCodes = map[string]int{
	CodeValidation:        http.StatusUnprocessableEntity,
	CodeDuplicatePeriod:   http.StatusConflict,
	CodeDuplicateInvoice:  http.StatusConflict,
	CodeInvalidTransition: http.StatusConflict,
	CodeOverAllocation:    http.StatusConflict,
	CodeNotFound:          http.StatusNotFound,
	CodeDatabase:          http.StatusInternalServerError,
}

// DomainError is a typed, expected failure of a ledger operation.
// Field and Entity identify what the caller must correct.
type DomainError struct {
	Code    string
	Message string
	Field   string
	Entity  string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is matches on code so wrapped domain errors compare against the sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return errors.Is(e.Err, target)
	}
	return e.Code == t.Code
}

// StatusCode returns the HTTP status for the error's code.
func (e *DomainError) StatusCode() int {
	if s, ok := statusCodes[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Validation builds a validation error pinned to a field.
func Validation(field, format string, args ...any) *DomainError {
	return &DomainError{Code: CodeValidation, Message: fmt.Sprintf(format, args...), Field: field}
}

// DuplicatePeriod reports an existing live statement for (engagement, period).
func DuplicatePeriod(engagementID, period string) *DomainError {
	return &DomainError{
		Code:    CodeDuplicatePeriod,
		Message: fmt.Sprintf("statement already generated for period %s", period),
		Entity:  engagementID,
	}
}

// DuplicateInvoice reports a manual invoice number collision within a client.
func DuplicateInvoice(clientID, invoiceNo string) *DomainError {
	return &DomainError{
		Code:    CodeDuplicateInvoice,
		Message: fmt.Sprintf("manual invoice no %q already recorded for client", invoiceNo),
		Field:   "manual_invoice_no",
		Entity:  clientID,
	}
}

// InvalidTransition reports an illegal state-machine move.
func InvalidTransition(entity, from, to string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot move from %s to %s", from, to),
		Entity:  entity,
	}
}

// OverAllocation reports a would-be breach of a balance or remaining bound.
func OverAllocation(entity, format string, args ...any) *DomainError {
	return &DomainError{Code: CodeOverAllocation, Message: fmt.Sprintf(format, args...), Entity: entity}
}

// NotFound reports a missing aggregate.
func NotFound(kind, id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: kind + " not found", Entity: id}
}

// Database wraps an unexpected storage failure.
func Database(op string, err error) *DomainError {
	return &DomainError{Code: CodeDatabase, Message: op + " failed", Err: errors.Wrap(err, op)}
}

// As extracts a *DomainError from an error chain.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}
