// Package apperr описывает классы ошибок конвейера решений.
package apperr

import (
	"errors"
	"net/http"
)

// Kind машиночитаемый класс ошибки.
type Kind string

const (
	KindInvalidImage          Kind = "InvalidImage"
	KindClassifierUnavailable Kind = "ClassifierUnavailable"
	KindPersistenceFailure    Kind = "PersistenceFailure"
	KindValidation            Kind = "ValidationError"
	KindCameraUnavailable     Kind = "CameraUnavailable"
	KindInternal              Kind = "Internal"
)

// HTTPStatus сопоставляет класс ошибки HTTP-статусу ответа.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidImage, KindValidation:
		return http.StatusBadRequest
	case KindClassifierUnavailable, KindCameraUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error ошибка с классом и исходной причиной.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по классу.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New создаёт ошибку без причины.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap создаёт ошибку с причиной.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf возвращает класс ошибки; ошибки без класса считаются внутренними.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Sentinel-значения для errors.Is.
var (
	ErrInvalidImage          = New(KindInvalidImage, "invalid image")
	ErrClassifierUnavailable = New(KindClassifierUnavailable, "classifier unavailable")
	ErrPersistenceFailure    = New(KindPersistenceFailure, "persistence failure")
	ErrValidation            = New(KindValidation, "validation error")
	ErrCameraUnavailable     = New(KindCameraUnavailable, "camera unavailable")
)
