package apperr

import (
	"errors"
	"strings"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindMissingHeader Kind = "missing_header"
	KindIO            Kind = "io"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
)

// Error carries a machine-readable kind and a Portuguese message safe to show
// to the user. Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is checks by kind.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrMissingHeader = &Error{Kind: KindMissingHeader}
	ErrIO            = &Error{Kind: KindIO}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrNotFound      = &Error{Kind: KindNotFound}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. A target carrying a message
// must also match the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// MissingHeader reports a required CSV column that no alias matched.
func MissingHeader(field string) error {
	return &Error{Kind: KindMissingHeader, Message: "cabeçalho obrigatório não encontrado: " + field}
}

func IO(msg string, err error) error {
	return &Error{Kind: KindIO, Message: msg, Err: err}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// is not an application error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// UserMessage renders err for display. Unclassified errors get a generic
// message with the original text appended.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	text := strings.TrimSpace(err.Error())
	if text == "" {
		return "Erro inesperado"
	}
	return "Erro inesperado: " + text
}
