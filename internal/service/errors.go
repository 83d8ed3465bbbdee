package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnsupportedMedia   = errors.New("only image and video files are allowed")
	ErrTooLarge           = errors.New("file too large")
)

// Actor — кто выполняет операцию (из токена или из CLI).
type Actor struct {
	ID    int64
	Name  string
	Email string
	Admin bool
}

// notFoundError — «<сущность> not found»; в цепочке и ErrNotFound, и исходная ошибка.
type notFoundError struct {
	what string
	err  error
}

func (e *notFoundError) Error() string   { return e.what + " not found" }
func (e *notFoundError) Unwrap() []error { return []error{ErrNotFound, e.err} }

// notFound превращает gorm.ErrRecordNotFound в ошибку с ErrNotFound, остальное не трогает.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &notFoundError{what: what, err: err}
	}
	return err
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
