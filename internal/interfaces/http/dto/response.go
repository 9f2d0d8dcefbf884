package dto

// Response represents a standard API response envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// OrderSubmitResponse is the flat customer-facing body for a submitted
// order, kept compatible with the legacy order form
type OrderSubmitResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
}

// ReplyResponse is the body for a delivered reply
type ReplyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
