package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrValidation           = NewDomainError("VALIDATION_ERROR", "Missing or invalid input")
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrTransportUnavailable = NewDomainError("TRANSPORT_UNAVAILABLE", "Transport gateway is not ready")
	ErrDeliveryFailed       = NewDomainError("DELIVERY_FAILED", "Message could not be delivered")
	ErrPersistence          = NewDomainError("PERSISTENCE_WARNING", "Ledger snapshot could not be written")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// IsCode reports whether err is (or wraps) a DomainError with the given code
func IsCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
