package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/vango-dev/routegen/pkg/routes"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryFS      Category = "filesystem"
	CategoryCheck   Category = "check"
	CategoryPublish Category = "publish"
	CategoryDev     Category = "dev"
	CategoryCLI     Category = "cli"
)

// Error is a structured error with a code, an explanation and a fix hint.
type Error struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Path is the file or folder the error is about, if any.
	Path string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithPath records the file or folder the error is about.
func (e *Error) WithPath(p string) *Error {
	e.Path = p
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// sentinelCodes maps library sentinel errors to registered codes.
var sentinelCodes = []struct {
	err  error
	code string
}{
	{routes.ErrPagesRootNotFound, CodePagesRootNotFound},
	{routes.ErrProbe, CodeProbeFailed},
	{routes.ErrDiscover, CodeDiscoverFailed},
	{routes.ErrWrite, CodeWriteFailed},
	{routes.ErrInvalidPattern, CodeInvalidPattern},
}

// FromError wraps a standard error in an Error. Known sentinels from the
// routes package select their own code; anything else gets fallback.
func FromError(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var re *Error
	if stderrors.As(err, &re) {
		return re
	}

	code := fallback
	for _, s := range sentinelCodes {
		if stderrors.Is(err, s.err) {
			code = s.code
			break
		}
	}

	out := New(code).Wrap(err)
	var pathErr *fs.PathError
	if stderrors.As(err, &pathErr) {
		out.Path = pathErr.Path
	}
	return out
}

// CodeOf returns the code of err, or "" when err carries none.
func CodeOf(err error) string {
	var re *Error
	if stderrors.As(err, &re) {
		return re.Code
	}
	return ""
}
