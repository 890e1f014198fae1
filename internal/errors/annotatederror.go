package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// AnnotatedError includes more context than a plain error that is useful for troubleshooting.
type AnnotatedError struct {
	// msg is the error message.
	msg string
	// pc is the program counter for the location of the error provided by runtime.Callers.
	pc uintptr
	// attrs are slog attributes that are added to the log event to provide more context for the error.
	attrs []slog.Attr
	// wrapped is the cause of the error, if any.
	wrapped error
}

func newAnnotated(msg string, wrapped error, attrs []slog.Attr) AnnotatedError {
	var pcs [1]uintptr
	// Skip runtime.Callers, this function and the exported constructor.
	runtime.Callers(3, pcs[:]) //nolint:mnd // see above
	return AnnotatedError{
		msg:     msg,
		pc:      pcs[0],
		attrs:   attrs,
		wrapped: wrapped,
	}
}

// New creates a new AnnotatedError with the given message and attributes.
func New(msg string, attrs ...slog.Attr) error {
	return newAnnotated(msg, nil, attrs)
}

// NewSentinel creates a plain error without other context that can be used as sentinel error that can be
// detected with errors.Is.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Wrap adds context to err. It returns nil if err is nil so that it can be used in return statements directly.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return newAnnotated(msg, err, attrs)
}

// Error implements error interface.
func (err AnnotatedError) Error() string {
	if err.wrapped == nil {
		return err.msg
	}
	return fmt.Sprintf("%s: %s", err.msg, err.wrapped.Error())
}

// Unwrap returns the wrapped cause.
func (err AnnotatedError) Unwrap() error {
	return err.wrapped
}

func (err AnnotatedError) source() string {
	frames := runtime.CallersFrames([]uintptr{err.pc})
	frame, _ := frames.Next()
	return fmt.Sprintf("%s:%d", frame.File, frame.Line)
}

// LogValue formats the error for useful logging.
func (err AnnotatedError) LogValue() slog.Value {
	// Retrieve the source location of the error so that developers can locate it faster.
	attrs := append(
		[]slog.Attr{slog.String("source", err.source())},
		err.attrs...,
	)
	return slog.GroupValue(attrs...)
}

// SlogError returns an attribute describing err with the message, the source of the outermost annotation and
// the attributes collected from the whole chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Any("error", nil)
	}
	attrs := []slog.Attr{slog.String("message", err.Error())}
	sourceSet := false
	for e := err; e != nil; e = errors.Unwrap(e) {
		var annotated AnnotatedError
		if !errors.As(e, &annotated) {
			break
		}
		if !sourceSet {
			attrs = append(attrs, slog.String("source", annotated.source()))
			sourceSet = true
		}
		attrs = append(attrs, annotated.attrs...)
		e = annotated
	}
	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

// As exposes stdlib errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is exposes stdlib errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap exposes stdlib errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
