package llm

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrorPrefix marks model failures in any text that reaches the user.
const ErrorPrefix = "AI_ERROR:"

type ErrorKind string

const (
	KindNotInitialized ErrorKind = "not_initialized"
	KindBlocked        ErrorKind = "blocked"
	KindIncomplete     ErrorKind = "incomplete"
	KindTransport      ErrorKind = "transport"
)

// Error is the single failure type returned by Client implementations.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotInitialized:
		return ErrorPrefix + " model is not initialized"
	case KindBlocked:
		return fmt.Sprintf("%s request was blocked (%s)", ErrorPrefix, e.Detail)
	case KindIncomplete:
		return ErrorPrefix + " incomplete response from model"
	default:
		return fmt.Sprintf("%s unexpected error: %s", ErrorPrefix, e.Detail)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func errNotInitialized() *Error { return &Error{Kind: KindNotInitialized} }

func errBlocked(reason string) *Error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "UNSPECIFIED"
	}
	return &Error{Kind: KindBlocked, Detail: reason}
}

func errIncomplete() *Error { return &Error{Kind: KindIncomplete} }

func errTransport(err error) *Error {
	return &Error{Kind: KindTransport, Detail: errorCategory(err), Err: err}
}

// AsError converts any error into *Error, treating unknown errors as transport failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return errTransport(err)
}

// IsErrorText reports whether text carries the model failure marker.
func IsErrorText(text string) bool {
	return strings.Contains(text, ErrorPrefix)
}

// errorCategory names the error's concrete type, skipping fmt wrappers.
func errorCategory(err error) string {
	for err != nil {
		t := reflect.TypeOf(err)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.PkgPath() == "fmt" {
			if inner := errors.Unwrap(err); inner != nil {
				err = inner
				continue
			}
		}
		if name := t.Name(); name != "" {
			return name
		}
		return t.String()
	}
	return "unknown"
}
