package dto

import "net/http"

// Error code constants
// Format: ERR_<DESCRIPTION>
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is used when required input is missing or invalid
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeNotFound is used when an order or recipient is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeTransportUnavailable is used when the gateway is not ready;
	// callers may retry later
	ErrCodeTransportUnavailable = "ERR_TRANSPORT_UNAVAILABLE"
	// ErrCodeDeliveryFailed is used when the gateway rejected the send
	// (e.g. the recipient has DMs disabled); not auto-retried
	ErrCodeDeliveryFailed = "ERR_DELIVERY_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:             http.StatusInternalServerError,
	ErrCodeValidation:           http.StatusBadRequest,
	ErrCodeBadRequest:           http.StatusBadRequest,
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeTransportUnavailable: http.StatusServiceUnavailable,
	ErrCodeDeliveryFailed:       http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to API error codes
var domainErrorCodeMapping = map[string]string{
	"VALIDATION_ERROR":      ErrCodeValidation,
	"NOT_FOUND":             ErrCodeNotFound,
	"TRANSPORT_UNAVAILABLE": ErrCodeTransportUnavailable,
	"DELIVERY_FAILED":       ErrCodeDeliveryFailed,
	"INVALID_STATE":         ErrCodeBadRequest,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes map to ERR_INTERNAL so internals never leak to customers.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return ErrCodeInternal
}
