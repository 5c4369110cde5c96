package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラー種別（レスポンスの code）
type ErrorCode string

const (
	CodeValidation   ErrorCode = "validation"
	CodeMismatch     ErrorCode = "mismatch"
	CodeMissingField ErrorCode = "missing_field"
	CodeNotFound     ErrorCode = "not_found"
	CodeUnauthorized ErrorCode = "unauthorized"
	CodeConflict     ErrorCode = "conflict"
	CodeServerError  ErrorCode = "server_error"
)

type HTTPError struct {
	Status  int
	Code    ErrorCode
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func NewHTTPError(status int, code ErrorCode, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func errValidation(msg string) error {
	return NewHTTPError(http.StatusBadRequest, CodeValidation, msg)
}

func errMissingField(field string) error {
	return NewHTTPError(http.StatusBadRequest, CodeMissingField, "missing field: "+field)
}

func errNotFound(msg string) error {
	return NewHTTPError(http.StatusNotFound, CodeNotFound, msg)
}

func errUnauthorized(msg string) error {
	return NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, msg)
}

// 詳細はログにだけ出す
func errServer() error {
	return NewHTTPError(http.StatusInternalServerError, CodeServerError, "server error")
}
