package responses

import (
	"fmt"
	"net/http"
)

// DetailsLimit maximum number of characters of an upstream body in Error.Details
const DetailsLimit = 500

// Error describes an error for humans and machines
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("status:%d, message:%q, details:%q", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("status:%d, message:%q", e.Status, e.Message)
}

// NewError - a brand new error
func NewError(status int, message string) *Error {
	return &Error{
		Status:  status,
		Message: message,
	}
}

// NewErrorf - a brand new error using fmt.Sprintf
func NewErrorf(status int, message string, args ...interface{}) *Error {
	return NewError(status, fmt.Sprintf(message, args...))
}

// NewBadRequest client side error, never retried
func NewBadRequest(message string) *Error {
	return NewError(http.StatusBadRequest, message)
}

// NewBadGateway upstream error carrying a truncated excerpt of the upstream body
func NewBadGateway(message, details string) *Error {
	e := NewError(http.StatusBadGateway, message)
	e.Details = Truncate(details, DetailsLimit)
	return e
}

// Truncate cuts s after max characters
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
