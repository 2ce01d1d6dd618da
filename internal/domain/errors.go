package domain

import "fmt"

type ErrCode string

const (
	CodeValidation   ErrCode = "validation_error"
	CodeNotFound     ErrCode = "not_found"
	CodeUnauthorized ErrCode = "unauthorized"
	CodeUnavailable  ErrCode = "unavailable"
)

type AppError struct {
	Code    ErrCode
	Message string
	Meta    map[string]string

	cause error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	if len(e.Meta) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Meta)
}

func (e *AppError) Unwrap() error { return e.cause }

func ErrValidation(msg string) error { return &AppError{Code: CodeValidation, Message: msg} }
func ErrValidationMeta(msg string, meta map[string]string) error {
	return &AppError{Code: CodeValidation, Message: msg, Meta: meta}
}
func ErrNotFound(msg string) error     { return &AppError{Code: CodeNotFound, Message: msg} }
func ErrUnauthorized(msg string) error { return &AppError{Code: CodeUnauthorized, Message: msg} }

// ErrUnavailable reports that a data source (event log, catalog) could not
// serve op. The cause stays reachable through errors.Is/As but is never
// rendered to clients.
func ErrUnavailable(op string, cause error) error {
	return &AppError{Code: CodeUnavailable, Message: op, cause: cause}
}

func IsCode(err error, code ErrCode) bool {
	for err != nil {
		if ae, ok := err.(*AppError); ok {
			return ae.Code == code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
