package app

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"picky/internal/adapters/observability"
	"picky/internal/domain"
)

type ErrorKind string

const (
	KindNotFound ErrorKind = "not_found"
	KindInvalid  ErrorKind = "invalid"
	KindInternal ErrorKind = "internal"
)

type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// Result is what every tool returns. Exactly one of Data and Error is meaningful.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Err returns the failure as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalid, fmt.Sprintf(format, args...))
}

func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return KindNotFound
	case errors.Is(err, domain.ErrInvalid):
		return KindInvalid
	}
	return KindInternal
}

// run executes one tool call, converting errors and panics into a Result.
func run[T any](tool string, fn func() (T, error)) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Str("tool", tool).Interface("panic", p).Bytes("stack", debug.Stack()).Msg("tool panicked")
			observability.ObserveTool(tool, string(KindInternal))
			res = Result[T]{Error: &Error{Kind: KindInternal, Message: fmt.Sprintf("internal error: %v", p)}}
		}
	}()

	data, err := fn()
	if err != nil {
		kind := kindOf(err)
		ev := log.Warn()
		if kind == KindInternal {
			ev = log.Error()
		}
		ev.Err(err).Str("tool", tool).Str("kind", string(kind)).Msg("tool failed")
		observability.ObserveTool(tool, string(kind))
		return Result[T]{Error: &Error{Kind: kind, Message: err.Error()}}
	}
	observability.ObserveTool(tool, "ok")
	return Result[T]{Success: true, Data: data}
}
