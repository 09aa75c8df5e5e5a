package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")
	ErrNotConfigured = errors.New("not configured")

	// ErrDomainFailure is the category every business-rule violation raised
	// from a use case handler belongs to. Only errors in this category make
	// the lifecycle runner invoke the use case's rollback.
	ErrDomainFailure = errors.New("domain failure")

	// ErrUnsupportedNodeKind marks a rewrite attempted on a declaration that
	// cannot carry an implements clause (interfaces, traits, enums).
	ErrUnsupportedNodeKind = errors.New("unsupported node kind")
)

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// DomainFailure is a business-rule violation surfaced by a use case. It is
// matched by errors.Is(err, ErrDomainFailure) and also unwraps to its cause,
// so callers can test for both the category and the concrete reason.
type DomainFailure struct {
	Msg string
	Err error
}

// NewDomainFailure returns a DomainFailure with the given message and no cause.
func NewDomainFailure(msg string) *DomainFailure {
	return &DomainFailure{Msg: msg}
}

// WrapDomainFailure classifies err as a domain failure with a message prefix.
// A nil err yields nil.
func WrapDomainFailure(msg string, err error) error {
	if err == nil {
		return nil
	}
	return &DomainFailure{Msg: msg, Err: err}
}

func (e *DomainFailure) Error() string {
	switch {
	case e.Msg == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	default:
		return e.Msg
	}
}

// Unwrap exposes both the category sentinel and the cause.
func (e *DomainFailure) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDomainFailure}
	}
	return []error{ErrDomainFailure, e.Err}
}

// IsDomainFailure reports whether err belongs to the domain failure category.
func IsDomainFailure(err error) bool {
	return errors.Is(err, ErrDomainFailure)
}
