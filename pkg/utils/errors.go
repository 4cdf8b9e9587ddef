package utils

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrValidation        = errors.New("validation failed")
	ErrPrecondition      = errors.New("precondition failed")
	ErrIO                = errors.New("i/o failure")
	ErrUnsupportedFormat = errors.New("unsupported model format")
	ErrKernelUnavailable = errors.New("kernel unavailable")
	ErrInternal          = errors.New("internal error")
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeValidation        = "VALIDATION_ERROR"
	CodePrecondition      = "PRECONDITION_FAILED"
	CodeIO                = "IO_ERROR"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeKernelUnavailable = "KERNEL_UNAVAILABLE"
	CodeInternal          = "INTERNAL_ERROR"
)

type AppError struct {
	Code    string
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Messages returns the validation messages attached under the "errors" detail,
// or nil when the error carries none.
func Messages(err error) []string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return nil
	}
	msgs, _ := appErr.Details["errors"].([]string)
	return msgs
}

func hasCode(err error, code string) bool {
	var appErr *AppError
	return err != nil && errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || hasCode(err, CodeNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists) || hasCode(err, CodeAlreadyExists)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || hasCode(err, CodeValidation)
}

func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition) || hasCode(err, CodePrecondition)
}

func IsIO(err error) bool {
	return errors.Is(err, ErrIO) || hasCode(err, CodeIO)
}

func IsUnsupportedFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) || hasCode(err, CodeUnsupportedFormat)
}

func IsKernelUnavailable(err error) bool {
	return errors.Is(err, ErrKernelUnavailable) || hasCode(err, CodeKernelUnavailable)
}

func WrapError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
