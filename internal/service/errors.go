package service

import (
	"errors"
	"fmt"
)

// Kind classifies a path resolution failure.
type Kind string

const (
	KindInvalidInput          Kind = "invalid_input"
	KindNoPathFound           Kind = "no_path_found"
	KindUpstreamFailure       Kind = "upstream_failure"
	KindInternalInconsistency Kind = "internal_inconsistency"
)

var (
	// ErrBoundaryNotFound means no node exists at the distance a chunk boundary needs.
	ErrBoundaryNotFound = errors.New("boundary node not found")
	// ErrSegmentNotFound means the store returned no path for a planned segment.
	ErrSegmentNotFound = errors.New("segment path not found")
	// ErrContiguity means assembled edges do not join end to start.
	ErrContiguity = errors.New("path contiguity violated")
)

// Error is returned by PathService for every failed resolution.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from err, treating unclassified errors as upstream failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstreamFailure
}

func invalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func upstream(err error, format string, args ...any) *Error {
	return &Error{Kind: KindUpstreamFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

func inconsistent(format string, args ...any) *Error {
	return &Error{Kind: KindInternalInconsistency, Message: fmt.Sprintf(format, args...), Err: ErrContiguity}
}
