package loans

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeForbidden       Code = "FORBIDDEN"
	CodeRetryable       Code = "RETRYABLE"
	CodeInternal        Code = "INTERNAL"
)

// Conflict の内訳。クライアントが分岐できるよう安定した値にする
const (
	ReasonUnavailable     = "unavailable"
	ReasonDuplicate       = "duplicate"
	ReasonLimitReached    = "limit_reached"
	ReasonAlreadyReturned = "already_returned"
)

type APIError struct {
	Code    Code   `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrInvalid(msg string) *APIError   { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError  { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrForbidden(msg string) *APIError { return &APIError{Code: CodeForbidden, Message: msg} }
func ErrInternal(msg string) *APIError  { return &APIError{Code: CodeInternal, Message: msg} }

func ErrConflict(reason, msg string) *APIError {
	return &APIError{Code: CodeConflict, Reason: reason, Message: msg}
}

// ロック待ちタイムアウトやデッドロック。呼び出し側がリトライしてよい
func ErrRetryable(msg string) *APIError {
	return &APIError{Code: CodeRetryable, Message: msg}
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeForbidden:
			return 403
		case CodeConflict, CodeRetryable:
			return 409
		default:
			return 500
		}
	}
	return 500
}
