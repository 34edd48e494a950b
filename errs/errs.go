// Package errs defines the error taxonomy shared by the diarization pipeline.
//
// Every failure that callers may want to branch on carries a Kind. Errors of
// a given kind match the corresponding sentinel with errors.Is, so
//
//	if errors.Is(err, errs.ErrConfiguration) { ... }
//
// works regardless of how many times the error was wrapped.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindAudioFormat   Kind = "audio_format"
	KindPrecondition  Kind = "precondition"
	KindService       Kind = "service"
	KindInvariant     Kind = "invariant"
)

// Sentinels for errors.Is matching.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrAudioFormat   = errors.New("audio format error")
	ErrPrecondition  = errors.New("precondition failed")
	ErrService       = errors.New("model service error")
	ErrInvariant     = errors.New("invariant violated")
)

// Error is the structured error type used across packages.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindAudioFormat:
		return ErrAudioFormat
	case KindPrecondition:
		return ErrPrecondition
	case KindService:
		return ErrService
	case KindInvariant:
		return ErrInvariant
	}
	return nil
}

func newf(k Kind, op, format string, args ...any) *Error {
	return &Error{Kind: k, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Configuration reports a missing or invalid setting.
func Configuration(op, format string, args ...any) *Error {
	return newf(KindConfiguration, op, format, args...)
}

// AudioFormat reports an undecodable or unsupported audio file.
func AudioFormat(op string, cause error, format string, args ...any) *Error {
	e := newf(KindAudioFormat, op, format, args...)
	e.Cause = cause
	return e
}

// Precondition reports input that is valid audio but violates a mode's assumptions.
func Precondition(op, format string, args ...any) *Error {
	return newf(KindPrecondition, op, format, args...)
}

// Service reports a failed call to an external model service.
func Service(op string, cause error, format string, args ...any) *Error {
	e := newf(KindService, op, format, args...)
	e.Cause = cause
	return e
}

// Invariant reports a collaborator that broke a count or ordering contract.
func Invariant(op, format string, args ...any) *Error {
	return newf(KindInvariant, op, format, args...)
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
